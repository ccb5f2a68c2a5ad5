package selfplay

import "testing"

func TestCalcEvenMatchIsZeroRating(t *testing.T) {
	r := Calc(50, 50, 0, 50, 50)
	if r.WinRate != 0.5 {
		t.Fatalf("WinRate = %v, want 0.5", r.WinRate)
	}
	if r.Rating != 0 {
		t.Fatalf("Rating = %v, want 0", r.Rating)
	}
}

func TestCalcDominantMatchIsPositiveRating(t *testing.T) {
	r := Calc(80, 20, 0, 40, 40)
	if r.Rating <= 0 {
		t.Fatalf("Rating = %v, want > 0 for an 80%% win rate", r.Rating)
	}
	if r.LowerBound > r.Rating || r.Rating > r.UpperBound {
		t.Fatalf("rating %v not within bounds [%v, %v]", r.Rating, r.LowerBound, r.UpperBound)
	}
}

func TestCalcNoGamesIsZeroWinRate(t *testing.T) {
	r := Calc(0, 0, 0, 0, 0)
	if r.WinRate != 0 {
		t.Fatalf("WinRate = %v, want 0 with no games played", r.WinRate)
	}
}

func TestPrettyStringContainsTally(t *testing.T) {
	r := Calc(10, 5, 3, 8, 7)
	s := r.PrettyString()
	if s == "" {
		t.Fatalf("PrettyString() returned empty string")
	}
}
