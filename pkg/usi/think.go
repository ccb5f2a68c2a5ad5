package usi

import (
	"fmt"
	"strings"
)

// PV holds the latest line reported for one multipv slot by an "info"
// message. Every field is a pointer so "not yet reported" is
// distinguishable from the zero value. depth/seldepth/nodes/nps/hashfull/
// time are stored verbatim as the token the engine sent, not parsed to
// int, matching the original driver.
type PV struct {
	Depth    *string
	SelDepth *string
	Nodes    *string
	Nps      *string
	Hashfull *string
	Time     *string
	PV       *string
	Eval     *EvalValue
	Bound    *Bound
}

// String renders the PV for debugging/logging, in the same field order
// the original engine driver used.
func (p *PV) String() string {
	if p == nil {
		return ""
	}
	var parts []string
	appendField(&parts, "depth", p.Depth)
	appendField(&parts, "seldepth", p.SelDepth)
	if p.Eval != nil {
		parts = append(parts, p.Eval.String())
	}
	if p.Bound != nil {
		parts = append(parts, "bound", p.Bound.String())
	}
	appendField(&parts, "nodes", p.Nodes)
	appendField(&parts, "time", p.Time)
	appendField(&parts, "hashfull", p.Hashfull)
	appendField(&parts, "nps", p.Nps)
	if p.PV != nil {
		parts = append(parts, "pv", *p.PV)
	}
	return strings.Join(parts, " ")
}

func appendField(parts *[]string, name string, v *string) {
	if v != nil {
		*parts = append(*parts, name, *v)
	}
}

// Result accumulates everything produced by one "go" command: the
// per-multipv PVs, the final bestmove/ponder pair, and a mate-search
// answer. A fresh Result is allocated on every Go call.
type Result struct {
	Bestmove  *string
	Ponder    *string
	PVs       []*PV
	Checkmate *string
}

// NewResult returns an empty Result, ready to be filled in by the reader
// goroutine as lines arrive.
func NewResult() *Result {
	return &Result{}
}

// Done reports whether the search that produced this Result has finished
// (a bestmove line has been seen).
func (r *Result) Done() bool {
	return r.Bestmove != nil
}

// CheckmateDone reports whether a checkmate-search answer has arrived.
func (r *Result) CheckmateDone() bool {
	return r.Checkmate != nil
}

// setPV installs pv at 1-based multipv index, growing the slice with nil
// padding as needed.
func (r *Result) setPV(multipv int, pv *PV) {
	if multipv < 1 {
		return
	}
	for len(r.PVs) < multipv {
		r.PVs = append(r.PVs, nil)
	}
	r.PVs[multipv-1] = pv
}

// String renders the result for debugging, in the original's
// multipv-then-bestmove-then-ponder order.
func (r *Result) String() string {
	var sb strings.Builder
	switch len(r.PVs) {
	case 0:
	case 1:
		sb.WriteString(r.PVs[0].String())
	default:
		for i, p := range r.PVs {
			fmt.Fprintf(&sb, "multipv %d %s\n", i+1, p.String())
		}
	}
	if r.Bestmove != nil {
		sb.WriteString("bestmove " + *r.Bestmove)
	}
	if r.Ponder != nil {
		sb.WriteString(" ponder " + *r.Ponder)
	}
	return sb.String()
}
