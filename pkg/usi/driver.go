// Package usi implements a driver for engines speaking the USI
// (Universal Shogi Interface) text protocol over a subprocess's standard
// streams: spawning, a writer goroutine that gates commands on the
// protocol's state machine, a reader goroutine that parses inbound
// lines, and condition-variable based synchronous/asynchronous request
// styles for callers.
package usi

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/seekerror/logw"
)

var instanceCounter int64

func nextInstanceID() int64 {
	return atomic.AddInt64(&instanceCounter, 1)
}

// Driver wraps one USI engine subprocess and its protocol state machine.
// Each Driver exclusively owns its subprocess handle, its reader/writer
// goroutines, its command queue, its state condition variable, and its
// current Result.
type Driver struct {
	instanceID int64

	// DebugPrint, when true, logs every line sent to and received from
	// the engine. ErrorPrint, when true, logs any received line
	// containing "Error" regardless of DebugPrint.
	DebugPrint bool
	ErrorPrint bool

	options Options

	mu        sync.Mutex
	cond      *sync.Cond
	state     State
	lastLine  *string
	result    *Result
	exitState *string // nil: still running; "": clean exit; else diagnostic

	cmd    *exec.Cmd
	stdin  *os.File
	path   string
	closed bool

	queue      *commandQueue
	writerDone chan struct{}
	readerDone chan struct{}
}

// New returns an unconnected Driver. Call SetOptions then Connect.
func New() *Driver {
	d := &Driver{instanceID: nextInstanceID()}
	d.cond = sync.NewCond(&d.mu)
	return d
}

// InstanceID is the process-wide diagnostic identifier for this driver,
// assigned from a monotonic atomic counter; no relative ordering between
// drivers is implied.
func (d *Driver) InstanceID() int64 {
	return d.instanceID
}

// SetOptions stashes the option map to be replayed as setoption lines
// immediately after the engine spawns. Must be called before Connect.
func (d *Driver) SetOptions(opts Options) {
	d.options = opts
}

// Connect spawns the executable at path with piped stdio, sets the
// working directory to the binary's own directory, and starts the
// reader and writer goroutines. Returns ErrNotFound if path does not
// exist, or a wrapped ErrConnection if the process fails to spawn.
func (d *Driver) Connect(path string) error {
	d.mu.Lock()
	d.path = path
	d.state = WaitConnecting
	d.exitState = nil
	d.mu.Unlock()

	if _, err := os.Stat(path); err != nil {
		d.mu.Lock()
		d.state = Disconnected
		d.mu.Unlock()
		return fmt.Errorf("%s not found: %w", path, ErrNotFound)
	}

	cmd := exec.Command(path)
	cmd.Dir = filepath.Dir(path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", ErrConnection)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", ErrConnection)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		d.mu.Lock()
		d.state = Disconnected
		d.mu.Unlock()
		return fmt.Errorf("starting %s: %w", path, ErrConnection)
	}

	d.mu.Lock()
	d.cmd = cmd
	d.queue = newCommandQueue()
	d.lastLine = nil
	d.closed = false
	d.mu.Unlock()

	d.changeState(Connected)

	d.writerDone = make(chan struct{})
	d.readerDone = make(chan struct{})

	stdinFile, _ := stdin.(*os.File)
	d.stdin = stdinFile
	go d.writerLoop(stdin)
	go d.readerLoop(stdout)

	return nil
}

// IsConnected reports whether Connect has produced a live subprocess
// handle (it does not probe liveness beyond that).
func (d *Driver) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cmd != nil
}

// SendCommand enqueues a raw command line (no trailing newline). Never
// blocks the caller beyond an uncontended mutex.
func (d *Driver) SendCommand(line string) {
	d.mu.Lock()
	q := d.queue
	d.mu.Unlock()
	if q == nil {
		return
	}
	q.push(line)
}

// Disconnect enqueues "quit", joins the reader and writer goroutines,
// and transitions to Disconnected. Idempotent.
func (d *Driver) Disconnect() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	cmd := d.cmd
	q := d.queue
	d.mu.Unlock()

	if cmd == nil {
		return
	}

	q.push("quit")

	<-d.writerDone
	<-d.readerDone

	_ = cmd.Wait()

	d.changeState(Disconnected)
}

// WaitForState blocks until the driver reaches state s. Returns
// ErrDisconnectedWhileWaiting if the driver reaches Disconnected first.
func (d *Driver) WaitForState(s State) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for {
		if d.state == s {
			return nil
		}
		if d.state == Disconnected {
			return ErrDisconnectedWhileWaiting
		}
		d.cond.Wait()
	}
}

// SendCommandAndGetLine requires WaitCommand, sends cmd, and blocks until
// exactly one response line has been received, returning it.
func (d *Driver) SendCommandAndGetLine(cmd string) (string, error) {
	if err := d.WaitForState(WaitCommand); err != nil {
		return "", err
	}

	d.mu.Lock()
	d.lastLine = nil
	q := d.queue
	d.mu.Unlock()

	q.push(cmd)

	d.mu.Lock()
	defer d.mu.Unlock()
	for d.lastLine == nil {
		if d.state == Disconnected {
			return "", ErrDisconnectedWhileWaiting
		}
		d.cond.Wait()
	}
	return *d.lastLine, nil
}

// UsiPosition sends "position <sfen>".
func (d *Driver) UsiPosition(sfen string) {
	d.SendCommand("position " + sfen)
}

// UsiGo allocates a fresh Result and sends "go <opts>".
func (d *Driver) UsiGo(opts string) {
	d.mu.Lock()
	d.result = NewResult()
	d.mu.Unlock()
	d.SendCommand("go " + opts)
}

// UsiGoAndWaitBestmove sends "go <opts>" and blocks until a bestmove has
// arrived, returning the Result.
func (d *Driver) UsiGoAndWaitBestmove(opts string) (*Result, error) {
	d.UsiGo(opts)
	return d.WaitBestmove()
}

// UsiGoAndWaitCheckmate sends "go <opts>" and blocks until a checkmate
// answer has arrived, returning the Result.
func (d *Driver) UsiGoAndWaitCheckmate(opts string) (*Result, error) {
	d.UsiGo(opts)
	return d.WaitCheckmate()
}

// WaitBestmove blocks until the current Result's bestmove is set.
func (d *Driver) WaitBestmove() (*Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.result == nil || !d.result.Done() {
		if d.state == Disconnected {
			return nil, ErrDisconnectedWhileWaiting
		}
		d.cond.Wait()
	}
	return d.result, nil
}

// WaitCheckmate blocks until the current Result's checkmate answer is set.
func (d *Driver) WaitCheckmate() (*Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.result == nil || !d.result.CheckmateDone() {
		if d.state == Disconnected {
			return nil, ErrDisconnectedWhileWaiting
		}
		d.cond.Wait()
	}
	return d.result, nil
}

// UsiStop sends "stop". Best-effort: the writer drops it silently if no
// search is active (spec §9.3), and callers are not notified either way.
func (d *Driver) UsiStop() {
	d.SendCommand("stop")
}

// GetMoves sends the "moves" USI extension and returns the one-line reply.
func (d *Driver) GetMoves() (string, error) {
	return d.SendCommandAndGetLine("moves")
}

// GetSideToMove sends the "side" USI extension and returns the side to
// move; Black iff the engine's reply is the literal "black".
func (d *Driver) GetSideToMove() (Turn, error) {
	line, err := d.SendCommandAndGetLine("side")
	if err != nil {
		return Black, err
	}
	if line == "black" {
		return Black, nil
	}
	return White, nil
}

// State returns the driver's current protocol state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// ExitState returns the writer/reader goroutines' exit diagnostic: nil
// while the driver is still running, "" on a clean exit, or a diagnostic
// string on error.
func (d *Driver) ExitState() *string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.exitState
}

// changeState applies the single state-transition gate: ignores attempts
// to leave Disconnected, enforces that WaitBestmove is only reachable
// from WaitCommand, and notifies every waiter on the state condvar
// exactly once.
func (d *Driver) changeState(s State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.changeStateLocked(s)
}

func (d *Driver) changeStateLocked(s State) {
	if d.state == Disconnected {
		return
	}
	if s == WaitBestmove && d.state != WaitCommand {
		panic(fmt.Sprintf("%d: cannot send go command when state != WaitCommand", d.instanceID))
	}
	d.state = s
	d.cond.Broadcast()
}

// writerLoop issues the setoption/isready handshake, then drains the
// command queue, gating each message on the protocol's state-dependent
// preconditions before writing it to the engine's stdin.
func (d *Driver) writerLoop(stdin io.WriteCloser) {
	defer close(d.writerDone)
	ctx := context.Background()

	write := func(line string) error {
		_, err := fmt.Fprintf(stdin, "%s\n", line)
		if d.DebugPrint {
			logw.Infof(ctx, "[%d:<] %s", d.instanceID, line)
		}
		return err
	}

	for k, v := range d.options {
		if err := write(fmt.Sprintf("setoption name %s value %s", k, v)); err != nil {
			d.recordExitDiagnostic(err)
			return
		}
	}
	if err := write("isready"); err != nil {
		d.recordExitDiagnostic(err)
		return
	}
	d.changeState(WaitReadyOk)

	for {
		message, ok := d.queue.pop()
		if !ok {
			return
		}

		fields := strings.Fields(message)
		token := ""
		if len(fields) > 0 {
			token = fields[0]
		}

		switch token {
		case "stop":
			if d.State() != WaitBestmove {
				continue
			}
		case "go":
			if err := d.WaitForState(WaitCommand); err != nil {
				return
			}
			d.changeState(WaitBestmove)
		case "position":
			if err := d.WaitForState(WaitCommand); err != nil {
				return
			}
		case "moves", "side":
			if err := d.WaitForState(WaitCommand); err != nil {
				return
			}
			d.changeState(WaitOneLine)
		case "usinewgame", "gameover":
			if err := d.WaitForState(WaitCommand); err != nil {
				return
			}
		}

		if err := write(message); err != nil {
			d.recordExitDiagnostic(err)
			return
		}

		if token == "quit" {
			_ = stdin.Close()
			d.changeState(Disconnected)
			return
		}
	}
}

func (d *Driver) recordExitDiagnostic(err error) {
	msg := fmt.Sprintf("%d : Engine error write_worker failed , EngineFullPath = %s : %v", d.instanceID, d.path, err)
	d.mu.Lock()
	d.exitState = &msg
	d.mu.Unlock()
	logw.Errorf(context.Background(), "%s", msg)
}

// readerLoop reads the engine's stdout line by line and dispatches each
// line to the protocol state machine.
func (d *Driver) readerLoop(stdout io.Reader) {
	defer close(d.readerDone)
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n \t")
		d.dispatchMessage(line)
	}

	ok := ""
	d.mu.Lock()
	if d.exitState == nil {
		d.exitState = &ok
	}
	d.mu.Unlock()
}

// dispatchMessage interprets one line received from the engine.
func (d *Driver) dispatchMessage(message string) {
	ctx := context.Background()
	if d.DebugPrint || (d.ErrorPrint && strings.Contains(message, "Error")) {
		logw.Infof(ctx, "[%d:>] %s", d.instanceID, message)
	}

	d.mu.Lock()
	d.lastLine = &message
	waitingOneLine := d.state == WaitOneLine
	d.mu.Unlock()

	if waitingOneLine {
		d.changeState(WaitCommand)
		return
	}

	token := message
	if idx := strings.IndexByte(message, ' '); idx != -1 {
		token = message[:idx]
	}

	switch token {
	case "readyok":
		d.changeState(WaitCommand)
	case "bestmove":
		d.handleBestmove(message)
		d.changeState(WaitCommand)
	case "info":
		d.handleInfo(message)
	case "checkmate":
		d.handleCheckmate(message)
		d.changeState(WaitCommand)
	}
}

func (d *Driver) handleBestmove(message string) {
	fields := strings.Fields(message)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.result == nil {
		return
	}
	if len(fields) >= 4 && fields[2] == "ponder" {
		ponder := fields[3]
		d.result.Ponder = &ponder
	}
	if len(fields) >= 2 {
		bm := fields[1]
		d.result.Bestmove = &bm
	} else {
		none := "none"
		d.result.Bestmove = &none
	}
}

func (d *Driver) handleCheckmate(message string) {
	rest := ""
	if parts := strings.SplitN(message, " ", 2); len(parts) > 1 {
		rest = parts[1]
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.result == nil {
		return
	}
	d.result.Checkmate = &rest
}

// handleInfo parses the "info" line grammar (spec §4.2). Encountering
// "string" abandons the entire line, discarding whatever had been parsed
// so far, matching the original driver's early-return behavior. Unknown
// tokens are logged and scanning continues.
func (d *Driver) handleInfo(message string) {
	d.mu.Lock()
	hasResult := d.result != nil
	d.mu.Unlock()
	if !hasResult {
		return
	}

	sc := NewLineScanner(message)
	sc.Get() // consume the leading "info" token

	pv := &PV{}
	multipv := 1

	for !sc.IsEOF() {
		token, _ := sc.Get()
		switch token {
		case "string":
			return
		case "depth":
			if v, ok := sc.Get(); ok {
				pv.Depth = &v
			}
		case "seldepth":
			if v, ok := sc.Get(); ok {
				pv.SelDepth = &v
			}
		case "nodes":
			if v, ok := sc.Get(); ok {
				pv.Nodes = &v
			}
		case "nps":
			if v, ok := sc.Get(); ok {
				pv.Nps = &v
			}
		case "hashfull":
			if v, ok := sc.Get(); ok {
				pv.Hashfull = &v
			}
		case "time":
			if v, ok := sc.Get(); ok {
				pv.Time = &v
			}
		case "pv":
			rest := sc.Rest()
			pv.PV = &rest
		case "multipv":
			if v, ok := sc.GetInt(); ok {
				multipv = v
			} else {
				logw.Warningf(context.Background(), "%d : ParseError : token = multipv , line = %s", d.instanceID, message)
			}
		case "score":
			d.parseScore(sc, pv)
		default:
			logw.Warningf(context.Background(), "%d : ParseError : token = %s , line = %s", d.instanceID, token, message)
		}
	}

	if multipv >= 1 {
		d.mu.Lock()
		if d.result != nil {
			d.result.setPV(multipv, pv)
		}
		d.mu.Unlock()
	}
}

// parseScore handles the "score {cp N | mate [+-]N} [upperbound|lowerbound]"
// sub-grammar.
func (d *Driver) parseScore(sc *Scanner, pv *PV) {
	kind, ok := sc.Get()
	if !ok {
		return
	}
	switch kind {
	case "mate":
		peek, _ := sc.Peek()
		isMinus := strings.HasPrefix(peek, "-")
		ply, ok := sc.GetInt()
		if !ok {
			ply = ValueMaxMatePly
		}
		var v EvalValue
		if isMinus {
			v = MatedInPly(-ply)
		} else {
			v = MateInPly(ply)
		}
		pv.Eval = &v
	case "cp":
		if v, ok := sc.GetInt(); ok {
			ev := EvalValue(v)
			pv.Eval = &ev
		} else {
			logw.Warningf(context.Background(), "%d : ParseError : token = cp , line = %s", d.instanceID, sc.Original())
			return
		}
	}

	next, hasNext := sc.Peek()
	switch {
	case hasNext && next == "upperbound":
		sc.Get()
		b := BoundUpper
		pv.Bound = &b
	case hasNext && next == "lowerbound":
		sc.Get()
		b := BoundLower
		pv.Bound = &b
	default:
		b := BoundExact
		pv.Bound = &b
	}
}
