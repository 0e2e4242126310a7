// Package interp implements the content-stream interpreter: it tokenizes a
// decoded stream, maintains the operand stack and graphics-state stack, and
// dispatches each operator to the rendering device.
package interp

import (
	"github.com/novvoo/pdfstream/internal/content"
	"github.com/novvoo/pdfstream/internal/device"
	"github.com/novvoo/pdfstream/internal/gstate"
	"github.com/novvoo/pdfstream/internal/operand"
	"github.com/novvoo/pdfstream/internal/renderctx"
)

// Interpreter drives one content stream against one device. It is not
// safe for concurrent use; render N pages concurrently by giving each its
// own Interpreter, Device and font cache (§5 of the component design).
type Interpreter struct {
	gs  *gstate.Stack
	dev device.Device
	ops *operand.Stack
	ctx *renderctx.Context

	clipPending bool
	clipEvenOdd bool
}

// New returns an Interpreter ready to run content streams against dev.
func New(dev device.Device, ctx *renderctx.Context) *Interpreter {
	return &Interpreter{
		gs:  gstate.NewStack(),
		dev: dev,
		ops: operand.New(),
		ctx: ctx,
	}
}

// Run tokenizes data and dispatches every operator in stream order. Each
// token is fully processed, including device mutations, before the next
// one is read.
func (ip *Interpreter) Run(data []byte) {
	tok := content.New(data)
	for {
		t := tok.Next()
		switch t.Kind {
		case content.EOF:
			return
		case content.Number:
			ip.ops.PushNumber(t.Num)
		case content.Name:
			ip.ops.PushName(t.Name)
		case content.String:
			ip.ops.PushString(t.Str)
		case content.ArrayOpen, content.ArrayClose:
			// no operand-stack effect
		case content.Operator:
			ip.dispatch(t.Op)
			ip.ops.Clear()
		}
	}
}

func (ip *Interpreter) dispatch(op string) {
	fn, ok := lookup(op)
	if !ok {
		if ip.ctx != nil {
			ip.ctx.Log.Verbosef("interp: unknown operator %q, operands dropped", op)
		}
		return
	}
	fn(ip)
}

func (ip *Interpreter) save() {
	if err := ip.gs.Save(); err != nil {
		ip.verbosef("q: %v", err)
		return
	}
	if err := ip.dev.SaveState(); err != nil {
		ip.verbosef("q: device: %v", err)
	}
}

func (ip *Interpreter) restore() {
	if err := ip.gs.Restore(); err != nil {
		ip.verbosef("Q: %v", err)
		return
	}
	if err := ip.dev.RestoreState(); err != nil {
		ip.verbosef("Q: device: %v", err)
	}
}

func (ip *Interpreter) verbosef(format string, args ...any) {
	if ip.ctx != nil {
		ip.ctx.Log.Verbosef(format, args...)
	}
}

// resetFillRule is a no-op: the device never retains a fill rule between
// calls (each Fill/FillThenStroke/Clip takes evenOdd as an explicit
// argument), so the fill-rule-purity invariant (Testable Property 6) holds
// by construction. Kept as an explicit call site so the invariant stays
// visible at every paint/clip handler rather than being implicit.
func (ip *Interpreter) resetFillRule() {}

// applyPendingClip consumes a clip request recorded by W/W* at the next
// painting operator (or `n`), per the spec's "applied at the next painting
// op or end of object" rule.
func (ip *Interpreter) applyPendingClip() {
	if !ip.clipPending {
		return
	}
	ip.dev.Clip(ip.clipEvenOdd)
	ip.clipPending = false
}
