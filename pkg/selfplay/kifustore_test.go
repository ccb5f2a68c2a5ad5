package selfplay

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteKifuParquetWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kifu.parquet")

	kifus := []Kifu{
		{Sfen: "startpos", FlipTurn: false, Result: BlackWin},
		{Sfen: "startpos", FlipTurn: true, Result: WhiteWin},
		{Sfen: "startpos", FlipTurn: false, Result: Draw},
	}

	if err := WriteKifuParquet(path, kifus, 1, ""); err != nil {
		t.Fatalf("WriteKifuParquet() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("kifu file is empty")
	}
}

func TestValidateKifuSchemaRejectsMismatch(t *testing.T) {
	schema := KifuSchema{Fields: []KifuSchemaField{{Name: "sfen"}, {Name: "flip_turn"}}}
	if err := validateKifuSchema(schema, KifuRecord{}); err == nil {
		t.Fatalf("expected a schema mismatch error (missing result field)")
	}
}

func TestValidateKifuSchemaAcceptsMatch(t *testing.T) {
	schema := KifuSchema{Fields: []KifuSchemaField{
		{Name: "sfen"}, {Name: "flip_turn"}, {Name: "result"},
	}}
	if err := validateKifuSchema(schema, KifuRecord{}); err != nil {
		t.Fatalf("validateKifuSchema() error = %v", err)
	}
}
