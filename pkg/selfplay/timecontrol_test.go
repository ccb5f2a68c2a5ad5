package selfplay

import (
	"errors"
	"testing"

	"github.com/yoshi486x/ayane/pkg/usi"
)

func TestParseTimeSettingUnqualifiedFansOutToBothSides(t *testing.T) {
	ts, err := ParseTimeSetting("byoyomi 1000")
	if err != nil {
		t.Fatalf("ParseTimeSetting() error = %v", err)
	}
	if ts.Byoyomi1p != 1000 || ts.Byoyomi2p != 1000 {
		t.Fatalf("byoyomi did not fan out to both sides: %+v", ts)
	}
}

func TestParseTimeSettingPerSideOverride(t *testing.T) {
	ts, err := ParseTimeSetting("time1p 60000 time2p 30000 inc 100")
	if err != nil {
		t.Fatalf("ParseTimeSetting() error = %v", err)
	}
	if ts.Time1p != 60000 || ts.Time2p != 30000 {
		t.Fatalf("per-side time override failed: %+v", ts)
	}
	if ts.Inc1p != 100 || ts.Inc2p != 100 {
		t.Fatalf("unqualified inc did not fan out: %+v", ts)
	}
}

func TestParseTimeSettingRejectsUnknownToken(t *testing.T) {
	_, err := ParseTimeSetting("bogus 100")
	if !errors.Is(err, usi.ErrInvalidTime) {
		t.Fatalf("expected ErrInvalidTime, got %v", err)
	}
}

func TestParseTimeSettingRejectsMissingValue(t *testing.T) {
	_, err := ParseTimeSetting("byoyomi")
	if !errors.Is(err, usi.ErrInvalidTime) {
		t.Fatalf("expected ErrInvalidTime, got %v", err)
	}
}

func TestDefaultTimeSetting(t *testing.T) {
	ts := DefaultTimeSetting()
	if ts.Byoyomi1p != 100 || ts.Byoyomi2p != 100 {
		t.Fatalf("default time setting should be byoyomi 100, got %+v", ts)
	}
	if ts.Time1p != 0 || ts.Time2p != 0 {
		t.Fatalf("default time setting should carry no main time, got %+v", ts)
	}
}
