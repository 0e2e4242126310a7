package device

import (
	"image/color"
	"testing"

	"github.com/novvoo/pdfstream/internal/gstate"
)

func rectPath(x, y, w, h float64) []pathOp {
	return []pathOp{
		{kind: opMoveTo, pts: [3]point{{x, y}}, npts: 1},
		{kind: opLineTo, pts: [3]point{{x + w, y}}, npts: 1},
		{kind: opLineTo, pts: [3]point{{x + w, y + h}}, npts: 1},
		{kind: opLineTo, pts: [3]point{{x, y + h}}, npts: 1},
		{kind: opClose},
	}
}

// TestRasterFillSolidRectangle covers scenario S1: a filled rectangle lands
// the fill color inside its bounds and leaves the background outside.
func TestRasterFillSolidRectangle(t *testing.T) {
	r := NewRaster(100, 100, 72, nil)
	r.SetFillRGB(1, 0, 0)
	r.MoveTo(10, 10)
	r.LineTo(90, 10)
	r.LineTo(90, 90)
	r.LineTo(10, 90)
	r.ClosePath()
	r.Fill(false)

	inside := r.surface.RGBAAt(50, 50)
	if inside.R != 255 || inside.G != 0 || inside.B != 0 {
		t.Errorf("inside pixel = %+v, want opaque red", inside)
	}
	outside := r.surface.RGBAAt(2, 2)
	if outside != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("outside pixel = %+v, want white background", outside)
	}
	if !r.PathEmpty() {
		t.Error("path should be cleared after Fill (Testable Property 2)")
	}
}

// TestRasterNonzeroVsEvenOdd covers scenario S3: two same-wound nested
// rectangles fill solid under nonzero winding but leave a hole under
// even-odd.
func TestRasterNonzeroVsEvenOdd(t *testing.T) {
	build := func() *Raster {
		r := NewRaster(100, 100, 72, nil)
		r.SetFillRGB(0, 0, 1)
		r.path = append(r.path, rectPath(10, 10, 80, 80)...)
		r.path = append(r.path, rectPath(30, 30, 40, 40)...)
		return r
	}

	nonzero := build()
	nonzero.Fill(false)
	if c := nonzero.surface.RGBAAt(50, 50); c.B != 255 {
		t.Errorf("nonzero center = %+v, want filled blue (both subpaths wind the same way)", c)
	}

	evenOdd := build()
	evenOdd.Fill(true)
	if c := evenOdd.surface.RGBAAt(50, 50); c.B == 255 && c.R == 0 && c.G == 0 {
		t.Errorf("even-odd center = %+v, want the hole left unfilled", c)
	}
	if c := evenOdd.surface.RGBAAt(15, 15); c.B != 255 {
		t.Errorf("even-odd outer ring = %+v, want filled blue", c)
	}
}

// TestRasterClipThenPaintSamePath is a regression test: W followed by a
// painting operator on the SAME path (e.g. `re W f`) must still paint,
// since the clip must not discard the path before Fill/Stroke consume it.
func TestRasterClipThenPaintSamePath(t *testing.T) {
	r := NewRaster(100, 100, 72, nil)
	r.SetFillRGB(0, 1, 0)
	r.MoveTo(10, 10)
	r.LineTo(90, 10)
	r.LineTo(90, 90)
	r.LineTo(10, 90)
	r.ClosePath()

	r.Clip(false)
	if r.PathEmpty() {
		t.Fatal("Clip must not clear the path; a painting operator still needs it")
	}
	r.Fill(false)

	if c := r.surface.RGBAAt(50, 50); c.G != 255 {
		t.Errorf("center after clip+fill = %+v, want filled green", c)
	}
}

func TestRasterClipRestrictsSubsequentFill(t *testing.T) {
	r := NewRaster(100, 100, 72, nil)
	r.MoveTo(0, 0)
	r.LineTo(50, 0)
	r.LineTo(50, 100)
	r.LineTo(0, 100)
	r.ClosePath()
	r.Clip(false)
	r.DiscardPath()

	r.SetFillRGB(1, 0, 0)
	r.MoveTo(0, 0)
	r.LineTo(100, 0)
	r.LineTo(100, 100)
	r.LineTo(0, 100)
	r.ClosePath()
	r.Fill(false)

	if c := r.surface.RGBAAt(25, 50); c.R != 255 {
		t.Errorf("inside clip = %+v, want filled red", c)
	}
	if c := r.surface.RGBAAt(75, 50); c != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("outside clip = %+v, want left as white background", c)
	}
}

// TestRasterCTMConcatenationScalesCoordinates covers scenario S8.
func TestRasterCTMConcatenationScalesCoordinates(t *testing.T) {
	r := NewRaster(100, 100, 72, nil)
	r.ConcatCTM(gstate.Matrix{A: 2, B: 0, C: 0, D: 2, E: 0, F: 0})

	got := r.toDevice(10, 10)
	// scale-by-2 then the top-left flip: user (10,10) -> ctm (20,20) ->
	// device scale (dpi/72 = 1) -> y-flip against height 100.
	want := point{20, 80}
	if got != want {
		t.Errorf("toDevice(10,10) with 2x CTM = %+v, want %+v", got, want)
	}
}

func TestRasterSaveRestoreClipIndependent(t *testing.T) {
	r := NewRaster(100, 100, 72, nil)
	r.top().clip = []point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	r.SaveState()
	r.top().clip[0] = point{99, 99}

	r.RestoreState()
	if r.top().clip[0] != (point{0, 0}) {
		t.Errorf("clip[0] after restore = %+v, want {0 0} (clip slice must be cloned, not aliased)", r.top().clip[0])
	}
}

func TestRasterStrokeClearsPath(t *testing.T) {
	r := NewRaster(100, 100, 72, nil)
	r.SetLineWidth(2)
	r.MoveTo(10, 10)
	r.LineTo(90, 90)
	r.Stroke()

	if !r.PathEmpty() {
		t.Error("path should be cleared after Stroke")
	}
}
