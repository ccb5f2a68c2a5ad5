package selfplay

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yoshi486x/ayane/pkg/usi"
)

// writeResigningEngine writes a fake USI engine that plays exactly one
// move then resigns, so a pairing between two of them finishes quickly
// and deterministically.
func writeResigningEngine(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skipf("no /bin/sh available to run the fake engine: %v", err)
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "fake-resigning-engine")
	const body = `#!/bin/sh
moved=0
while IFS= read -r line; do
  case "$line" in
    usi) echo "id name FakeResigner"; echo "usiok" ;;
    isready) echo "readyok" ;;
    usinewgame) moved=0 ;;
    position*) : ;;
    go*)
      if [ "$moved" -eq 0 ]; then
        echo "bestmove 7g7f"
        moved=1
      else
        echo "bestmove resign"
      fi
      ;;
    side) echo "black" ;;
    quit) exit 0 ;;
  esac
done
`
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("writing fake engine: %v", err)
	}
	return script
}

func connectedFakeDriver(t *testing.T) *usi.Driver {
	t.Helper()
	d := usi.New()
	require.NoError(t, d.Connect(writeResigningEngine(t)))
	require.NoError(t, d.WaitForState(usi.WaitCommand))
	return d
}

func TestPairServerPlaysToResignation(t *testing.T) {
	e0 := connectedFakeDriver(t)
	e1 := connectedFakeDriver(t)

	srv := NewPairServer(e0, e1)
	srv.MovesToDraw = 320
	require.NoError(t, srv.GameStart("startpos", 0))

	deadline := time.After(5 * time.Second)
	for srv.Result() == Playing {
		select {
		case <-deadline:
			t.Fatal("game did not finish in time")
		case <-time.After(10 * time.Millisecond):
		}
	}

	require.True(t, srv.Result().IsBlackOrWhiteWin())
	srv.Terminate()
}

func TestPairServerRejectsConcurrentStart(t *testing.T) {
	e0 := connectedFakeDriver(t)
	e1 := connectedFakeDriver(t)

	srv := NewPairServer(e0, e1)
	require.NoError(t, srv.GameStart("startpos", 0))
	err := srv.GameStart("startpos", 0)
	require.Error(t, err)
	srv.Terminate()
}
