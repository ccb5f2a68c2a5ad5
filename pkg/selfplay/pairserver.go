package selfplay

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/seekerror/logw"
	"github.com/yoshi486x/ayane/pkg/usi"
)

// communicationGraceMs is subtracted from each measured move time before
// billing the clock, absorbing USI round-trip latency the engine itself
// did not spend thinking.
const communicationGraceMs = 300

// timeoutToleranceMs is how far a player's clock may go negative (after
// crediting byoyomi) before the move is ruled a timeout loss.
const timeoutToleranceMs = 2000

// PairServer runs two engines against each other, one game at a time,
// under a shared time control.
type PairServer struct {
	Engines     [2]*usi.Driver
	TimeSetting TimeSetting
	MovesToDraw int
	FlipTurn    bool

	mu         sync.Mutex
	restTimeMs [2]int
	result     Result
	gamePly    int
	sfenBase   string
	moves      []string
	stopReq    bool
	kifu       Kifu

	done chan struct{}
}

// NewPairServer returns a PairServer with the original default time
// control (a 100ms byoyomi, no main time) and a 320-ply draw limit.
func NewPairServer(e0, e1 *usi.Driver) *PairServer {
	return &PairServer{
		Engines:     [2]*usi.Driver{e0, e1},
		MovesToDraw: 320,
		TimeSetting: DefaultTimeSetting(),
		result:      Init,
	}
}

func (p *PairServer) playerIndex(turn usi.Turn) int {
	idx := int(turn)
	if p.FlipTurn {
		idx ^= 1
	}
	return idx
}

// Result returns the current/final game result.
func (p *PairServer) Result() Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Kifu returns the record of the most recently finished game.
func (p *PairServer) Kifu() Kifu {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.kifu
}

// GameStart begins a new game from startSfen (USI "position" syntax,
// e.g. "startpos" or "startpos moves 7g7f ..."). If startGameply is
// nonzero, the move list is truncated to startGameply-1 plies before
// play resumes, matching game_worker's index = moves_idx +
// start_gameply - 1. Requires both engines connected and no game
// already running.
func (p *PairServer) GameStart(startSfen string, startGameply int) error {
	p.mu.Lock()
	if p.result == Playing {
		p.mu.Unlock()
		return fmt.Errorf("game already in progress: %w", usi.ErrInvalidState)
	}
	for _, e := range p.Engines {
		if e == nil || !e.IsConnected() {
			p.mu.Unlock()
			return fmt.Errorf("engine not connected: %w", usi.ErrConnection)
		}
	}

	base, moves := splitSfenMoves(startSfen)
	if startGameply != 0 && startGameply-1 < len(moves) {
		moves = moves[:startGameply-1]
	}
	p.sfenBase = base
	p.moves = moves
	p.gamePly = 0
	p.restTimeMs = [2]int{p.TimeSetting.RestTime(0), p.TimeSetting.RestTime(1)}
	p.stopReq = false
	p.result = Playing
	p.mu.Unlock()

	startTurn, err := p.Engines[0].GetSideToMove()
	if err != nil {
		startTurn = usi.Black
	}

	for _, e := range p.Engines {
		e.SendCommand("usinewgame")
	}

	p.done = make(chan struct{})
	go p.gameWorker(startTurn)
	return nil
}

// Terminate requests the running game stop, waits for the game loop to
// exit, and disconnects both engines.
func (p *PairServer) Terminate() {
	p.mu.Lock()
	p.stopReq = true
	done := p.done
	p.mu.Unlock()

	if done != nil {
		<-done
	}
	for _, e := range p.Engines {
		if e != nil {
			e.Disconnect()
		}
	}
}

func (p *PairServer) positionCommand() string {
	if len(p.moves) == 0 {
		return p.sfenBase
	}
	return p.sfenBase + " moves " + strings.Join(p.moves, " ")
}

// buildGoArgs renders the "go" argument string for the side to move,
// carrying both clocks plus either byoyomi or both increments per the
// original server's rule: an increment suppresses byoyomi for that side,
// and binc/winc are always emitted as a pair, matching game_worker's
// "binc {0} winc {1}".format(inc[black], inc[white]).
func (p *PairServer) buildGoArgs(turn usi.Turn) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	bIdx := p.playerIndex(usi.Black)
	wIdx := p.playerIndex(usi.White)
	args := fmt.Sprintf("btime %d wtime %d", p.restTimeMs[bIdx], p.restTimeMs[wIdx])

	idx := p.playerIndex(turn)
	if inc := p.TimeSetting.Inc(idx); inc != 0 {
		args += fmt.Sprintf(" binc %d winc %d", p.TimeSetting.Inc(bIdx), p.TimeSetting.Inc(wIdx))
	} else {
		args += fmt.Sprintf(" byoyomi %d", p.TimeSetting.Byoyomi(idx))
	}
	return args
}

// gameWorker is the game loop, run on its own goroutine for the
// lifetime of one game.
func (p *PairServer) gameWorker(turn usi.Turn) {
	defer close(p.done)

	for {
		p.mu.Lock()
		ply := p.gamePly
		stopReq := p.stopReq
		p.mu.Unlock()

		if stopReq {
			p.finish(StopGame)
			return
		}
		if ply >= p.MovesToDraw {
			p.finish(MaxMoves)
			return
		}

		idx := p.playerIndex(turn)
		eng := p.Engines[idx]

		p.mu.Lock()
		posCmd := p.positionCommand()
		p.mu.Unlock()
		eng.UsiPosition(posCmd)

		goArgs := p.buildGoArgs(turn)

		start := time.Now()
		result, err := eng.UsiGoAndWaitBestmove(goArgs)
		elapsed := time.Since(start)
		if err != nil {
			p.finish(StopGame)
			return
		}

		billedMs := billedMoveTimeMs(elapsed)

		p.mu.Lock()
		p.restTimeMs[idx] -= billedMs
		timedOut := p.restTimeMs[idx]+p.TimeSetting.Byoyomi(idx) < -timeoutToleranceMs
		if p.restTimeMs[idx] < 0 {
			p.restTimeMs[idx] = 0
		}
		p.mu.Unlock()

		if timedOut {
			logw.Warningf(context.Background(), "Error! : player timeup")
			p.finish(FromWinTurn(turn.Flip() == usi.Black))
			return
		}

		bm := "none"
		if result != nil && result.Bestmove != nil {
			bm = *result.Bestmove
		}

		switch bm {
		case "resign":
			p.finish(FromWinTurn(turn.Flip() == usi.Black))
			return
		case "win":
			p.finish(FromWinTurn(turn == usi.Black))
			return
		default:
			p.mu.Lock()
			p.moves = append(p.moves, bm)
			p.gamePly++
			p.restTimeMs[idx] += p.TimeSetting.Inc(idx)
			p.mu.Unlock()
			turn = turn.Flip()
		}
	}
}

// billedMoveTimeMs converts a wall-clock move duration into the amount
// debited from the mover's clock: the communication grace is subtracted
// first, then the remainder is rounded up to the next whole second.
func billedMoveTimeMs(elapsed time.Duration) int {
	sec := elapsed.Seconds() - float64(communicationGraceMs)/1000
	billed := int(sec + 0.999)
	if billed < 0 {
		billed = 0
	}
	return billed * 1000
}

func (p *PairServer) finish(result Result) {
	p.mu.Lock()
	p.result = result
	p.kifu = Kifu{Sfen: p.sfenBase, FlipTurn: p.FlipTurn, Result: result}
	p.mu.Unlock()

	switch {
	case result.IsDraw():
		for _, e := range p.Engines {
			e.SendCommand("gameover draw")
		}
	case result.IsBlackOrWhiteWin():
		winnerTurn := usi.Black
		if result == WhiteWin {
			winnerTurn = usi.White
		}
		winIdx := p.playerIndex(winnerTurn)
		p.Engines[winIdx].SendCommand("gameover win")
		p.Engines[winIdx^1].SendCommand("gameover lose")
	}
}

// splitSfenMoves separates a USI position string's base (startpos or
// "sfen ...") from its trailing move list.
func splitSfenMoves(s string) (string, []string) {
	const sep = " moves "
	if idx := strings.Index(s, sep); idx != -1 {
		return s[:idx], strings.Fields(s[idx+len(sep):])
	}
	if strings.HasSuffix(s, " moves") {
		return strings.TrimSuffix(s, " moves"), nil
	}
	return s, nil
}
