package usilog

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

func TestLogWritesUTF8BOMFile(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, true, false)
	if err := l.Print("hello", false); err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one log file, got %d", len(entries))
	}

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	bom := []byte{0xEF, 0xBB, 0xBF}
	if len(data) < 3 || string(data[:3]) != string(bom) {
		n := 3
		if len(data) < n {
			n = len(data)
		}
		t.Fatalf("log file missing UTF-8 BOM prefix: %x", data[:n])
	}

	_, _, err = transform.Bytes(unicode.UTF8BOM.NewDecoder(), data)
	if err != nil {
		t.Fatalf("decoding logged BOM content: %v", err)
	}
}

func TestSingletonGetReturnsSameInstance(t *testing.T) {
	a := SingletonGet()
	b := SingletonGet()
	if a != b {
		t.Fatalf("SingletonGet() returned different instances")
	}
}

func TestLogFileLoggingDisabledWritesNoFile(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, false, false)
	if err := l.Print("hello", false); err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no log file when file logging disabled, got %d entries", len(entries))
	}
}

