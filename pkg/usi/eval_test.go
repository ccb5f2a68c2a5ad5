package usi

import "testing"

func TestEvalValueClassification(t *testing.T) {
	cases := []struct {
		v         EvalValue
		wantMate  bool
		wantMated bool
	}{
		{EvalValue(53), false, false},
		{MateInPly(5), true, false},
		{MatedInPly(5), false, true},
		{EvalValue(ValueMate), true, false},
		{EvalValue(ValueMated), false, true},
	}
	for _, c := range cases {
		if got := c.v.IsMateScore(); got != c.wantMate {
			t.Errorf("EvalValue(%d).IsMateScore() = %v, want %v", c.v, got, c.wantMate)
		}
		if got := c.v.IsMatedScore(); got != c.wantMated {
			t.Errorf("EvalValue(%d).IsMatedScore() = %v, want %v", c.v, got, c.wantMated)
		}
	}
}

func TestEvalValueString(t *testing.T) {
	if got := EvalValue(53).String(); got != "cp 53" {
		t.Errorf("cp String() = %q", got)
	}
	if got := MateInPly(5).String(); got != "mate 5" {
		t.Errorf("mate String() = %q", got)
	}
	if got := MatedInPly(5).String(); got != "mate -5" {
		t.Errorf("mated String() = %q", got)
	}
}

func TestBoundString(t *testing.T) {
	if got := BoundUpper.String(); got != "upperbound" {
		t.Errorf("BoundUpper.String() = %q", got)
	}
	if got := BoundLower.String(); got != "lowerbound" {
		t.Errorf("BoundLower.String() = %q", got)
	}
	if got := BoundExact.String(); got != "" {
		t.Errorf("BoundExact.String() = %q, want empty", got)
	}
}
