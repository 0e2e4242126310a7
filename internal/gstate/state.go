package gstate

import "fmt"

// ColorSpace identifies the color space a fill/stroke color was last set
// through; kept for `cs`/`CS` bookkeeping even though painting always goes
// through the resolved RGB triple.
type ColorSpace int

const (
	DeviceGray ColorSpace = iota
	DeviceRGB
	DeviceCMYK
)

// FontFace is an opaque handle to a loaded font, supplied by the device
// package and stored here only as a pointer so gstate has no dependency on
// the font/glyph-rendering machinery.
type FontFace interface{}

// State is one entry of the graphics-state stack: everything q/Q must
// save and restore.
type State struct {
	FillRGB, StrokeRGB     [3]float64
	FillAlpha, StrokeAlpha float64
	LineWidth              float64
	FillSpace, StrokeSpace ColorSpace

	CTM Matrix

	TextMatrix, TextLineMatrix Matrix
	TextLeading                float64
	FontSize                   float64
	FontName                   string
	FontFace                   FontFace
	Encoding                   Encoding
	TextRenderMode             int
}

// NewDefault returns the initial graphics state a page begins rendering
// with.
func NewDefault() State {
	return State{
		FillRGB:     [3]float64{0, 0, 0},
		StrokeRGB:   [3]float64{0, 0, 0},
		FillAlpha:   1,
		StrokeAlpha: 1,
		LineWidth:   1,
		CTM:         Identity(),
		TextMatrix:  Identity(),
		TextLineMatrix: Identity(),
		Encoding:    DefaultEncoding(),
	}
}

// SetFillCMYK converts CMYK to RGB and records the fill color, per the
// conversion R=(1-c)(1-k), G=(1-m)(1-k), B=(1-y)(1-k).
func (s *State) SetFillCMYK(c, m, y, k float64) {
	s.FillRGB = cmykToRGB(c, m, y, k)
	s.FillSpace = DeviceCMYK
}

// SetStrokeCMYK is the stroke-color equivalent of SetFillCMYK.
func (s *State) SetStrokeCMYK(c, m, y, k float64) {
	s.StrokeRGB = cmykToRGB(c, m, y, k)
	s.StrokeSpace = DeviceCMYK
}

func cmykToRGB(c, m, y, k float64) [3]float64 {
	return [3]float64{
		(1 - c) * (1 - k),
		(1 - m) * (1 - k),
		(1 - y) * (1 - k),
	}
}

// MaxDepth bounds the graphics-state stack; depths above it indicate a
// malformed content stream and are rejected rather than silently growing
// without bound.
const MaxDepth = 64

// Stack is a bounded stack of graphics states, always initialized with one
// default record.
type Stack struct {
	frames []State
}

// NewStack creates a stack seeded with the default graphics state.
func NewStack() *Stack {
	return &Stack{frames: []State{NewDefault()}}
}

// Top returns a pointer to the current (top) state for in-place mutation.
func (s *Stack) Top() *State {
	return &s.frames[len(s.frames)-1]
}

// Depth reports the current stack depth (always >= 1).
func (s *Stack) Depth() int {
	return len(s.frames)
}

// Save clones the top state and pushes the clone, implementing `q`. It
// reports an error (logged by the caller, never fatal) on overflow.
func (s *Stack) Save() error {
	if len(s.frames) >= MaxDepth {
		return fmt.Errorf("graphics state stack overflow at depth %d", len(s.frames))
	}
	top := s.Top()
	s.frames = append(s.frames, *top)
	return nil
}

// Restore pops the top state, implementing `Q`. On underflow it is a
// logged no-op; the bottom default record is never popped.
func (s *Stack) Restore() error {
	if len(s.frames) <= 1 {
		return fmt.Errorf("graphics state stack underflow")
	}
	s.frames = s.frames[:len(s.frames)-1]
	return nil
}
