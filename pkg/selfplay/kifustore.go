package selfplay

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// KifuRecord is one finished game in the Parquet kifu schema: the base
// starting position (without a move list), the flip_turn pairing flag,
// and the final result name.
type KifuRecord struct {
	Sfen     string `parquet:"name=sfen, type=BYTE_ARRAY, convertedtype=UTF8"`
	FlipTurn bool   `parquet:"name=flip_turn, type=BOOLEAN"`
	Result   string `parquet:"name=result, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// KifuSchema mirrors the teacher's parquet_schema.json shape, letting a
// store validate its Go struct against an externally maintained schema
// file before writing.
type KifuSchema struct {
	Name   string            `json:"name"`
	Fields []KifuSchemaField `json:"fields"`
}

// KifuSchemaField is one field entry in a KifuSchema document.
type KifuSchemaField struct {
	Name     string      `json:"name"`
	Type     interface{} `json:"type"`
	Nullable bool        `json:"nullable"`
}

func kifuRecordFromKifu(k Kifu) KifuRecord {
	return KifuRecord{Sfen: k.Sfen, FlipTurn: k.FlipTurn, Result: k.Result.String()}
}

// WriteKifuParquet persists kifus to a Parquet file at path, compressed
// with Snappy. If schemaPath is non-empty, the on-disk schema document
// is loaded and checked against KifuRecord's field names before any
// writing happens.
func WriteKifuParquet(path string, kifus []Kifu, parallel int64, schemaPath string) error {
	if schemaPath != "" {
		schema, err := loadKifuSchema(schemaPath)
		if err != nil {
			return err
		}
		if err := validateKifuSchema(schema, KifuRecord{}); err != nil {
			return err
		}
	}

	fileWriter, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer fileWriter.Close()

	parquetWriter, err := writer.NewParquetWriter(fileWriter, new(KifuRecord), parallel)
	if err != nil {
		return err
	}
	parquetWriter.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, k := range kifus {
		if err := parquetWriter.Write(kifuRecordFromKifu(k)); err != nil {
			return err
		}
	}
	if err := parquetWriter.WriteStop(); err != nil {
		return err
	}
	return fileWriter.Close()
}

func loadKifuSchema(path string) (KifuSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return KifuSchema{}, err
	}
	var schema KifuSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return KifuSchema{}, err
	}
	return schema, nil
}

func validateKifuSchema(schema KifuSchema, sample any) error {
	schemaFields := make(map[string]struct{}, len(schema.Fields))
	for _, field := range schema.Fields {
		schemaFields[field.Name] = struct{}{}
	}
	structFields := kifuStructFieldNames(sample)
	missing := diffKifuKeys(schemaFields, structFields)
	extra := diffKifuKeys(structFields, schemaFields)
	if len(missing) > 0 || len(extra) > 0 {
		return fmt.Errorf("kifu parquet schema mismatch: missing=%v extra=%v", missing, extra)
	}
	return nil
}

func kifuStructFieldNames(sample any) map[string]struct{} {
	fields := map[string]struct{}{}
	v := reflect.TypeOf(sample)
	for i := 0; i < v.NumField(); i++ {
		name := parseKifuParquetName(v.Field(i).Tag.Get("parquet"))
		if name != "" {
			fields[name] = struct{}{}
		}
	}
	return fields
}

func parseKifuParquetName(tag string) string {
	if tag == "" {
		return ""
	}
	for _, part := range strings.Split(tag, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) == 2 && kv[0] == "name" {
			return kv[1]
		}
	}
	return ""
}

func diffKifuKeys(a, b map[string]struct{}) []string {
	var diff []string
	for key := range a {
		if _, ok := b[key]; !ok {
			diff = append(diff, key)
		}
	}
	return diff
}
