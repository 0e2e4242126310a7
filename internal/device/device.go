// Package device implements the rendering-device contract: the single
// raster backend the interpreter drives to turn path/paint/text operators
// into pixels.
package device

import "github.com/novvoo/pdfstream/internal/gstate"

// Device is the interface the interpreter drives. There is one concrete
// implementation, Raster; the interface exists so the interpreter package
// never depends on image/freetype details directly.
type Device interface {
	SaveState() error
	RestoreState() error

	SetLineWidth(w float64)
	SetFillRGB(r, g, b float64)
	SetStrokeRGB(r, g, b float64)
	SetFillAlpha(a float64)
	SetStrokeAlpha(a float64)
	ApplyExtGState(name string)
	ConcatCTM(m gstate.Matrix)

	MoveTo(x, y float64)
	LineTo(x, y float64)
	CurveTo(x1, y1, x2, y2, x3, y3 float64)
	Rectangle(x, y, w, h float64)
	ClosePath()

	Stroke()
	Fill(evenOdd bool)
	FillThenStroke(evenOdd bool)
	Clip(evenOdd bool)
	DiscardPath()
	PathEmpty() bool

	BeginText()
	EndText()
	SetFont(name string, size float64)
	SetTextRenderMode(mode int)
	SetTextMatrix(m gstate.Matrix)
	ShowText(bytes []byte, encoding gstate.Encoding) (advance float64)

	SaveImage(path string) error
}
