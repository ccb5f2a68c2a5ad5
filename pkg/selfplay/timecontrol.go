package selfplay

import (
	"fmt"

	"github.com/yoshi486x/ayane/pkg/usi"
)

// allowedTimeTokens is the set of tokens a time-setting string may carry;
// anything else is rejected with ErrInvalidTime.
var allowedTimeTokens = map[string]bool{
	"time":      true,
	"time1p":    true,
	"time2p":    true,
	"byoyomi":   true,
	"byoyomi1p": true,
	"byoyomi2p": true,
	"inc":       true,
	"inc1p":     true,
	"inc2p":     true,
}

// TimeSetting holds the millisecond time budget, byoyomi, and increment
// for both players of a pairing.
type TimeSetting struct {
	Time1p    int
	Time2p    int
	Byoyomi1p int
	Byoyomi2p int
	Inc1p     int
	Inc2p     int
}

// DefaultTimeSetting matches the original server's "byoyomi 100" default:
// no main time, a 100ms byoyomi, no increment.
func DefaultTimeSetting() TimeSetting {
	return TimeSetting{Byoyomi1p: 100, Byoyomi2p: 100}
}

// ParseTimeSetting parses a space-separated "token value" sequence (e.g.
// "byoyomi 1000" or "time1p 60000 time2p 60000 inc 1000") into a
// TimeSetting, fanning an unqualified token ("time"/"byoyomi"/"inc") out
// to both players and letting a "1p"/"2p"-suffixed token override just
// one side.
func ParseTimeSetting(setting string) (TimeSetting, error) {
	ts := TimeSetting{}
	sc := usi.NewLineScanner(setting)
	for !sc.IsEOF() {
		token, ok := sc.Get()
		if !ok {
			break
		}
		if !allowedTimeTokens[token] {
			return TimeSetting{}, fmt.Errorf("%s: %w", token, usi.ErrInvalidTime)
		}
		value, ok := sc.GetInt()
		if !ok {
			return TimeSetting{}, fmt.Errorf("%s: missing value: %w", token, usi.ErrInvalidTime)
		}
		switch token {
		case "time":
			ts.Time1p, ts.Time2p = value, value
		case "time1p":
			ts.Time1p = value
		case "time2p":
			ts.Time2p = value
		case "byoyomi":
			ts.Byoyomi1p, ts.Byoyomi2p = value, value
		case "byoyomi1p":
			ts.Byoyomi1p = value
		case "byoyomi2p":
			ts.Byoyomi2p = value
		case "inc":
			ts.Inc1p, ts.Inc2p = value, value
		case "inc1p":
			ts.Inc1p = value
		case "inc2p":
			ts.Inc2p = value
		}
	}
	return ts, nil
}

// RestTime returns the starting clock, in milliseconds, for player index
// 0 or 1.
func (ts TimeSetting) RestTime(playerIdx int) int {
	if playerIdx == 0 {
		return ts.Time1p
	}
	return ts.Time2p
}

// Byoyomi returns the byoyomi, in milliseconds, for player index 0 or 1.
func (ts TimeSetting) Byoyomi(playerIdx int) int {
	if playerIdx == 0 {
		return ts.Byoyomi1p
	}
	return ts.Byoyomi2p
}

// Inc returns the increment, in milliseconds, for player index 0 or 1.
func (ts TimeSetting) Inc(playerIdx int) int {
	if playerIdx == 0 {
		return ts.Inc1p
	}
	return ts.Inc2p
}
