package selfplay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yoshi486x/ayane/pkg/usi"
)

func TestMultiServerTalliesAcrossRestarts(t *testing.T) {
	path := writeResigningEngine(t)

	ms := NewMultiServer()
	ms.MovesToDraw = 320
	ms.TimeSetting = DefaultTimeSetting()
	ms.AddPairing(path, usi.Options{}, path, usi.Options{})

	require.NoError(t, ms.Start())

	deadline := time.After(8 * time.Second)
	for len(ms.Kifus()) < 2 {
		select {
		case <-deadline:
			t.Fatal("fewer than two games completed in time")
		case <-time.After(50 * time.Millisecond):
		}
	}

	ms.Stop()

	rating := ms.Rating()
	require.NotEmpty(t, rating.PrettyString())
	require.GreaterOrEqual(t, len(ms.Kifus()), 2)
}
