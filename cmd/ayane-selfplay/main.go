// Command ayane-selfplay runs N concurrent engine-vs-engine games under a
// shared time control, reporting win/loss/draw tallies and an Elo
// estimate, and, when -kifu-out is set, writes every finished game's kifu
// to a Parquet file.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yoshi486x/ayane/internal/usilog"
	"github.com/yoshi486x/ayane/pkg/selfplay"
	"github.com/yoshi486x/ayane/pkg/usi"
)

func main() {
	engine1 := flag.String("engine1", "", "path to the first engine binary")
	engine2 := flag.String("engine2", "", "path to the second engine binary")
	games := flag.Int("games", 1, "number of concurrent pairings")
	duration := flag.Duration("duration", 60*time.Second, "how long to run self-play before reporting")
	timeSetting := flag.String("time-setting", "byoyomi 1000", "USI time setting, e.g. \"byoyomi 1000\" or \"time1p 60000 time2p 60000 inc 1000\"")
	movesToDraw := flag.Int("moves-to-draw", 320, "ply count at which an undecided game is ruled a draw")
	flipEveryGame := flag.Bool("flip-turn-every-game", true, "alternate which engine plays Black each restart")
	startSfens := flag.String("start-sfens", "startpos", "comma-separated starting positions (USI position syntax)")
	kifuOut := flag.String("kifu-out", "", "if set, write a Parquet kifu file here on exit")
	logDir := flag.String("log-dir", "log", "directory for the run log")
	flag.Parse()

	if *engine1 == "" || *engine2 == "" {
		fatal(fmt.Errorf("-engine1 and -engine2 are required"))
	}

	ts, err := selfplay.ParseTimeSetting(*timeSetting)
	if err != nil {
		fatal(err)
	}

	log := usilog.New(*logDir, true, true)
	defer log.Close()

	ms := selfplay.NewMultiServer()
	ms.StartSfens = strings.Split(*startSfens, ",")
	ms.FlipTurnEveryGame = *flipEveryGame
	ms.TimeSetting = ts
	ms.MovesToDraw = *movesToDraw

	for i := 0; i < *games; i++ {
		ms.AddPairing(*engine1, usi.Options{}, *engine2, usi.Options{})
	}

	if err := ms.Start(); err != nil {
		fatal(err)
	}
	_ = log.Print(fmt.Sprintf("started %d pairing(s): %s vs %s", *games, *engine1, *engine2), true)

	time.Sleep(*duration)
	ms.Stop()

	rating := ms.Rating()
	_ = log.Print(rating.PrettyString(), true)
	fmt.Println(rating.PrettyString())

	if *kifuOut != "" {
		kifus := ms.Kifus()
		if err := selfplay.WriteKifuParquet(*kifuOut, kifus, 4, ""); err != nil {
			fatal(fmt.Errorf("writing kifu: %w", err))
		}
		_ = log.Print(fmt.Sprintf("wrote %d kifu record(s) to %s", len(kifus), *kifuOut), true)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
