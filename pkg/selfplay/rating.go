package selfplay

import (
	"fmt"
	"math"
)

// eloCriticalValue is the one-sided 95% normal critical value used for
// the win-rate confidence interval (z such that Phi(z) = 0.95).
const eloCriticalValue = 1.644854

// Rating summarizes a completed match's win/loss/draw tally as an Elo
// estimate with a one-sided-normal-test confidence interval, following
// the original self-play server's rating computation.
type Rating struct {
	Player1Wins int
	Player2Wins int
	Draws       int
	BlackWins   int
	WhiteWins   int

	WinRate      float64
	WinRateBlack float64
	WinRateWhite float64
	Rating       float64
	LowerBound   float64
	UpperBound   float64
}

// Calc computes a Rating from raw tallies.
func Calc(player1Wins, player2Wins, draws, blackWins, whiteWins int) Rating {
	r := Rating{
		Player1Wins: player1Wins,
		Player2Wins: player2Wins,
		Draws:       draws,
		BlackWins:   blackWins,
		WhiteWins:   whiteWins,
	}

	r.WinRate = winRate(player1Wins, player2Wins)
	r.WinRateBlack = winRate(blackWins, whiteWins)
	r.WinRateWhite = winRate(whiteWins, blackWins)

	n := player1Wins + player2Wins
	r.Rating = round2(calcRating(r.WinRate))
	r.LowerBound = round2(calcRatingLowerBound(r.WinRate, n))
	r.UpperBound = round2(calcRatingUpperBound(r.WinRate, n))
	return r
}

func winRate(wins, losses int) float64 {
	total := wins + losses
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// calcRating converts a win rate into an Elo rating delta.
func calcRating(r float64) float64 {
	switch r {
	case 0:
		return -9999
	case 1:
		return 9999
	default:
		return -400 * math.Log10(1/r-1)
	}
}

// solveHypothesisTesting solves the one-sided normal-approximation
// confidence bound for a binomial win rate r observed over n trials,
// returning the lower root of the resulting quadratic in p.
func solveHypothesisTesting(r float64, n int) float64 {
	if n <= 0 {
		return r
	}
	a := eloCriticalValue
	nf := float64(n)
	// (nf + a*a) p^2 - (2*nf*r + a*a) p + nf*r*r = 0
	A := nf + a*a
	B := -(2*nf*r + a*a)
	C := nf * r * r
	disc := B*B - 4*A*C
	if disc < 0 {
		disc = 0
	}
	sq := math.Sqrt(disc)
	return (-B - sq) / (2 * A)
}

func calcRatingLowerBound(r float64, n int) float64 {
	p := solveHypothesisTesting(r, n)
	return calcRating(p)
}

func calcRatingUpperBound(r float64, n int) float64 {
	p := solveHypothesisTesting(1-r, n)
	return -calcRating(p)
}

// PrettyString renders the summary line the original server prints after
// a match: win/draw/loss counts, percentage, rating with its confidence
// interval, and the black/white win-rate split.
func (r Rating) PrettyString() string {
	total := r.Player1Wins + r.Player2Wins + r.Draws
	pct := 0.0
	if total > 0 {
		pct = 100 * float64(r.Player1Wins) / float64(total)
	}
	return fmt.Sprintf(
		"%d - %d - %d(%.1f%% R%.2f[%.2f,%.2f]) winrate black , white = %.2f%% , %.2f%%",
		r.Player1Wins, r.Draws, r.Player2Wins, pct, r.Rating, r.LowerBound, r.UpperBound,
		r.WinRateBlack*100, r.WinRateWhite*100,
	)
}
