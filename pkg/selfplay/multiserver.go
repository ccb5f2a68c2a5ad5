package selfplay

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/seekerror/logw"
	"github.com/yoshi486x/ayane/pkg/usi"
)

// pairing bundles one running PairServer with the engine-path/options
// pair it was built from, so a finished game can be restarted in place.
type pairing struct {
	server     *PairServer
	enginePath [2]string
	engineOpts [2]usi.Options
}

// MultiServer supervises a pool of PairServers, restarting each one as
// its game finishes, and tallies results across the whole run.
type MultiServer struct {
	StartSfens        []string
	StartGameply      int
	FlipTurnEveryGame bool
	TimeSetting       TimeSetting
	MovesToDraw       int

	mu          sync.Mutex
	pairs       []*pairing
	kifus       []Kifu
	player1Wins int
	player2Wins int
	blackWins   int
	whiteWins   int
	draws       int
	stopReq     bool

	done chan struct{}
}

// NewMultiServer returns an empty MultiServer; call AddPairing for each
// concurrent game, then Start.
func NewMultiServer() *MultiServer {
	return &MultiServer{
		StartSfens:   []string{"startpos"},
		StartGameply: 1,
		TimeSetting:  DefaultTimeSetting(),
		MovesToDraw:  320,
	}
}

// AddPairing registers one concurrent game slot. path1/path2 are engine
// executables, opts1/opts2 their USI options.
func (m *MultiServer) AddPairing(path1 string, opts1 usi.Options, path2 string, opts2 usi.Options) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairs = append(m.pairs, &pairing{
		enginePath: [2]string{path1, path2},
		engineOpts: [2]usi.Options{opts1, opts2},
	})
}

// Start connects every pairing's engines, launches their first games,
// and begins the supervision loop.
func (m *MultiServer) Start() error {
	m.mu.Lock()
	m.player1Wins, m.player2Wins, m.blackWins, m.whiteWins, m.draws = 0, 0, 0, 0, 0
	m.kifus = nil
	m.stopReq = false
	m.mu.Unlock()

	for i, pr := range m.pairs {
		flip := m.FlipTurnEveryGame && i%2 == 1
		if err := m.startPairing(pr, flip); err != nil {
			return err
		}
	}

	m.done = make(chan struct{})
	go m.superviseLoop()
	return nil
}

func (m *MultiServer) startPairing(pr *pairing, flipTurn bool) error {
	e0 := usi.New()
	e1 := usi.New()
	e0.SetOptions(pr.engineOpts[0])
	e1.SetOptions(pr.engineOpts[1])
	if err := e0.Connect(pr.enginePath[0]); err != nil {
		return err
	}
	if err := e1.Connect(pr.enginePath[1]); err != nil {
		return err
	}

	srv := NewPairServer(e0, e1)
	srv.FlipTurn = flipTurn
	srv.TimeSetting = m.TimeSetting
	srv.MovesToDraw = m.MovesToDraw
	pr.server = srv

	sfen := m.StartSfens[rand.Intn(len(m.StartSfens))]
	return srv.GameStart(sfen, m.StartGameply)
}

// superviseLoop polls every pairing once a second, restarting any server
// whose game has finished, until Stop is called.
func (m *MultiServer) superviseLoop() {
	defer close(m.done)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.mu.Lock()
		stop := m.stopReq
		m.mu.Unlock()
		if stop {
			for _, pr := range m.pairs {
				if pr.server != nil {
					pr.server.Terminate()
				}
			}
			return
		}

		for _, pr := range m.pairs {
			if pr.server == nil {
				continue
			}
			if pr.server.Result().IsGameOver() {
				m.countResult(pr.server)
				flip := m.FlipTurnEveryGame && !pr.server.FlipTurn
				pr.server.Engines[0].Disconnect()
				pr.server.Engines[1].Disconnect()
				if err := m.startPairing(pr, flip); err != nil {
					logw.Errorf(context.Background(), "restarting pairing: %v", err)
				}
			}
		}
	}
}

func (m *MultiServer) countResult(srv *PairServer) {
	result := srv.Result()
	kifu := srv.Kifu()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.kifus = append(m.kifus, kifu)

	switch {
	case result.IsPlayer1Win(srv.FlipTurn):
		m.player1Wins++
	case result.IsBlackOrWhiteWin():
		m.player2Wins++
	default:
		m.draws++
	}

	switch result {
	case BlackWin:
		m.blackWins++
	case WhiteWin:
		m.whiteWins++
	}
}

// Stop requests the supervision loop end and every running game
// terminate, then waits for that to complete.
func (m *MultiServer) Stop() {
	m.mu.Lock()
	m.stopReq = true
	done := m.done
	m.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Rating snapshots the current win/loss/draw tally as an Elo estimate.
func (m *MultiServer) Rating() Rating {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Calc(m.player1Wins, m.player2Wins, m.draws, m.blackWins, m.whiteWins)
}

// Kifus returns every completed game's record so far.
func (m *MultiServer) Kifus() []Kifu {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Kifu, len(m.kifus))
	copy(out, m.kifus)
	return out
}
