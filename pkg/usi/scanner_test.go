package usi

import "testing"

func TestScannerGetAndPeek(t *testing.T) {
	s := NewLineScanner("info depth 10 score cp 53")
	tok, ok := s.Get()
	if !ok || tok != "info" {
		t.Fatalf("Get() = %q, %v; want info, true", tok, ok)
	}
	peek, ok := s.Peek()
	if !ok || peek != "depth" {
		t.Fatalf("Peek() = %q, %v; want depth, true", peek, ok)
	}
	tok, _ = s.Get()
	if tok != "depth" {
		t.Fatalf("Get() after peek = %q; want depth", tok)
	}
}

func TestScannerGetIntMalformed(t *testing.T) {
	s := NewLineScanner("multipv abc")
	s.Get()
	v, ok := s.GetInt()
	if ok {
		t.Fatalf("GetInt() on malformed token returned ok=true, v=%d", v)
	}
	if !s.IsEOF() {
		t.Fatalf("GetInt() must still advance past a malformed token")
	}
}

func TestScannerGetIntSigned(t *testing.T) {
	s := NewLineScanner("-3")
	v, ok := s.GetInt()
	if !ok || v != -3 {
		t.Fatalf("GetInt() = %d, %v; want -3, true", v, ok)
	}
}

func TestScannerRest(t *testing.T) {
	s := NewLineScanner("pv 7g7f 3c3d 2g2f")
	s.Get()
	rest := s.Rest()
	if rest != "7g7f 3c3d 2g2f" {
		t.Fatalf("Rest() = %q", rest)
	}
	if !s.IsEOF() {
		t.Fatalf("Rest() must advance the cursor to EOF")
	}
}

func TestScannerEOF(t *testing.T) {
	s := NewLineScanner("")
	if !s.IsEOF() {
		t.Fatalf("empty scanner should be EOF")
	}
	if _, ok := s.Get(); ok {
		t.Fatalf("Get() at EOF should return ok=false")
	}
	if _, ok := s.Peek(); ok {
		t.Fatalf("Peek() at EOF should return ok=false")
	}
}
