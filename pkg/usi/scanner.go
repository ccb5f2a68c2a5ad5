package usi

import (
	"strconv"
	"strings"
)

// Scanner walks a whitespace-split token stream with lookahead, used to
// parse the USI "info" line grammar. Every operation is total: scanning
// past the end of the token stream returns the zero value rather than
// panicking or erroring.
type Scanner struct {
	tokens []string
	index  int
}

// NewScanner builds a Scanner positioned at the given index into tokens.
func NewScanner(tokens []string, index int) *Scanner {
	return &Scanner{tokens: tokens, index: index}
}

// NewLineScanner splits line on whitespace and returns a Scanner starting
// at the first token (index 0).
func NewLineScanner(line string) *Scanner {
	return NewScanner(strings.Fields(line), 0)
}

// IsEOF reports whether the cursor has passed the last token.
func (s *Scanner) IsEOF() bool {
	return s.index >= len(s.tokens)
}

// Peek returns the next token without advancing, or ("", false) at EOF.
func (s *Scanner) Peek() (string, bool) {
	if s.IsEOF() {
		return "", false
	}
	return s.tokens[s.index], true
}

// Get returns the next token and advances, or ("", false) at EOF.
func (s *Scanner) Get() (string, bool) {
	if s.IsEOF() {
		return "", false
	}
	tok := s.tokens[s.index]
	s.index++
	return tok, true
}

// GetInt parses the next token as an integer and advances. Returns
// (0, false) at EOF or on a malformed token; the cursor still advances
// past a malformed token, matching the original scanner's get_integer.
func (s *Scanner) GetInt() (int, bool) {
	tok, ok := s.Get()
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Rest concatenates the remaining tokens with single spaces and advances
// the cursor to the end.
func (s *Scanner) Rest() string {
	rest := strings.Join(s.tokens[s.index:], " ")
	s.index = len(s.tokens)
	return rest
}

// Original reconstructs the full token stream, ignoring cursor position.
func (s *Scanner) Original() string {
	return strings.Join(s.tokens, " ")
}
