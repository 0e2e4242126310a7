package device

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/novvoo/pdfstream/internal/gstate"
	"github.com/novvoo/pdfstream/pkg/pdfdoc"
)

type pathOpKind int

const (
	opMoveTo pathOpKind = iota
	opLineTo
	opCurveTo
	opClose
)

type pathOp struct {
	kind   pathOpKind
	pts    [3]point
	npts   int
}

type point struct{ x, y float64 }

// backendState is the device's own graphics-state mirror, pushed/popped in
// lockstep with the interpreter's gstate.Stack by SaveState/RestoreState so
// the two stacks never drift apart.
type backendState struct {
	ctm          gstate.Matrix
	fillColor    color.RGBA
	strokeColor  color.RGBA
	fillAlpha    float64
	strokeAlpha  float64
	lineWidth    float64
	clip         []point // convex/simple polygon in device space; nil means unclipped
	fontName     string
	fontSize     float64
	textMatrix   gstate.Matrix
	renderMode   int
}

func newBackendState() backendState {
	return backendState{
		ctm:         gstate.Identity(),
		fillColor:   color.RGBA{0, 0, 0, 255},
		strokeColor: color.RGBA{0, 0, 0, 255},
		fillAlpha:   1,
		strokeAlpha: 1,
		lineWidth:   1,
		textMatrix:  gstate.Identity(),
	}
}

// Raster is the pure-Go rendering backend: a scanline rasterizer onto an
// *image.RGBA surface, with a parallel graphics-state stack and font cache
// driven entirely by the interpreter's operator handlers.
type Raster struct {
	width, height int
	dpi           float64
	surface       *image.RGBA

	states []backendState
	path   []pathOp
	cur    point
	start  point

	page  *pdfdoc.Page
	fonts *fontCache
}

// NewRaster allocates a surface sized for a mediaWidth x mediaHeight (in PDF
// user-space points) page rendered at dpi, with the PDF-origin-at-bottom-left
// convention flipped to image-origin-at-top-left at draw time.
func NewRaster(mediaWidth, mediaHeight, dpi float64, page *pdfdoc.Page) *Raster {
	scale := dpi / 72.0
	w := int(mediaWidth*scale + 0.5)
	h := int(mediaHeight*scale + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	surface := image.NewRGBA(image.Rect(0, 0, w, h))
	// white background, matching pdftoppm/pdftocairo's default page fill
	for i := range surface.Pix {
		surface.Pix[i] = 0xff
	}
	return &Raster{
		width:   w,
		height:  h,
		dpi:     dpi,
		surface: surface,
		states:  []backendState{newBackendState()},
		page:    page,
		fonts:   newFontCache(dpi),
	}
}

func (r *Raster) top() *backendState { return &r.states[len(r.states)-1] }

// deviceScale converts PDF user-space units to device pixels.
func (r *Raster) deviceScale() float64 { return r.dpi / 72.0 }

// toDevice maps a user-space point through the current CTM, the DPI scale,
// and the PDF-bottom-left-to-image-top-left flip.
func (r *Raster) toDevice(x, y float64) point {
	ux, uy := r.top().ctm.Transform(x, y)
	s := r.deviceScale()
	return point{ux * s, float64(r.height) - uy*s}
}

func (r *Raster) SaveState() error {
	top := r.top()
	clipCopy := append([]point(nil), top.clip...)
	cp := *top
	cp.clip = clipCopy
	r.states = append(r.states, cp)
	return nil
}

func (r *Raster) RestoreState() error {
	if len(r.states) <= 1 {
		return fmt.Errorf("device state stack underflow")
	}
	r.states = r.states[:len(r.states)-1]
	return nil
}

func (r *Raster) SetLineWidth(w float64) { r.top().lineWidth = w }

func (r *Raster) SetFillRGB(rr, g, b float64) {
	r.top().fillColor = toRGBA(rr, g, b, r.top().fillAlpha)
}

func (r *Raster) SetStrokeRGB(rr, g, b float64) {
	r.top().strokeColor = toRGBA(rr, g, b, r.top().strokeAlpha)
}

func (r *Raster) SetFillAlpha(a float64) {
	top := r.top()
	top.fillAlpha = a
	top.fillColor.A = alphaByte(a)
}

func (r *Raster) SetStrokeAlpha(a float64) {
	top := r.top()
	top.strokeAlpha = a
	top.strokeColor.A = alphaByte(a)
}

// ApplyExtGState resolves name in the page's /ExtGState resources and
// applies ca/CA (fill/stroke alpha) and LW (line width) if present; other
// ExtGState entries (blend modes, soft masks) have no SPEC_FULL component
// to drive them and are ignored.
func (r *Raster) ApplyExtGState(name string) {
	if r.page == nil {
		return
	}
	obj, ok := r.page.ResolveResource("ExtGState", name)
	if !ok {
		return
	}
	dict, ok := obj.(pdfdoc.Dictionary)
	if !ok {
		return
	}
	if ca, ok := numberEntry(dict.Get("ca")); ok {
		r.SetFillAlpha(ca)
	}
	if CA, ok := numberEntry(dict.Get("CA")); ok {
		r.SetStrokeAlpha(CA)
	}
	if lw, ok := numberEntry(dict.Get("LW")); ok {
		r.SetLineWidth(lw)
	}
}

func numberEntry(obj pdfdoc.Object) (float64, bool) {
	switch v := obj.(type) {
	case pdfdoc.Integer:
		return float64(v), true
	case pdfdoc.Real:
		return float64(v), true
	}
	return 0, false
}

func (r *Raster) ConcatCTM(m gstate.Matrix) {
	top := r.top()
	top.ctm = m.Multiply(top.ctm)
}

func (r *Raster) MoveTo(x, y float64) {
	p := r.toDevice(x, y)
	r.path = append(r.path, pathOp{kind: opMoveTo, pts: [3]point{p}, npts: 1})
	r.cur = p
	r.start = p
}

func (r *Raster) LineTo(x, y float64) {
	p := r.toDevice(x, y)
	r.path = append(r.path, pathOp{kind: opLineTo, pts: [3]point{p}, npts: 1})
	r.cur = p
}

func (r *Raster) CurveTo(x1, y1, x2, y2, x3, y3 float64) {
	p1, p2, p3 := r.toDevice(x1, y1), r.toDevice(x2, y2), r.toDevice(x3, y3)
	r.path = append(r.path, pathOp{kind: opCurveTo, pts: [3]point{p1, p2, p3}, npts: 3})
	r.cur = p3
}

func (r *Raster) Rectangle(x, y, w, h float64) {
	r.MoveTo(x, y)
	r.LineTo(x+w, y)
	r.LineTo(x+w, y+h)
	r.LineTo(x, y+h)
	r.ClosePath()
}

func (r *Raster) ClosePath() {
	r.path = append(r.path, pathOp{kind: opClose})
	r.cur = r.start
}

func (r *Raster) DiscardPath() { r.path = nil }

func (r *Raster) PathEmpty() bool { return len(r.path) == 0 }

func (r *Raster) Stroke() {
	top := r.top()
	halfWidth := top.lineWidth * r.deviceScale() / 2
	if halfWidth <= 0 {
		halfWidth = 0.5
	}
	start := 0
	for i := 1; i <= len(r.path); i++ {
		if i < len(r.path) && r.path[i].kind != opMoveTo {
			continue
		}
		pts := flattenPath(r.path[start:i])
		for j := 0; j+1 < len(pts); j++ {
			r.drawSegment(pts[j], pts[j+1], top.strokeColor, halfWidth, top.clip)
		}
		start = i
	}
	r.path = nil
}

func (r *Raster) Fill(evenOdd bool) {
	r.fillCurrentPath(evenOdd)
	r.path = nil
}

func (r *Raster) FillThenStroke(evenOdd bool) {
	r.fillCurrentPath(evenOdd)
	r.Stroke()
}

func (r *Raster) fillCurrentPath(evenOdd bool) {
	top := r.top()
	subpaths := flattenSubpaths(r.path)
	fillSubpaths(r.surface, r.width, r.height, subpaths, top.fillColor, evenOdd, top.clip)
}

// Clip narrows the current clip region by the current path. A path with a
// single subpath is kept as an exact polygon; a path with several subpaths
// is reduced to their common bounding box. When a clip region already
// exists, the new region is the intersection of the two regions' bounding
// boxes, not a true polygon-boolean intersection. The clip region is always
// tested with an even-odd point-in-polygon test: evenOdd does not change
// the result, so W and W* clip alike.
func (r *Raster) Clip(evenOdd bool) {
	subpaths := flattenSubpaths(r.path)
	if len(subpaths) == 0 {
		return
	}
	// Single-subpath clip paths (the overwhelmingly common case: `re W n`)
	// are kept as an exact polygon; multi-subpath clips fall back to the
	// bounding box of all subpaths.
	top := r.top()
	var newClip []point
	if len(subpaths) == 1 {
		newClip = subpaths[0]
	} else {
		minX, minY, maxX, maxY := boundsOf(subpaths)
		newClip = []point{{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}}
	}
	if top.clip == nil {
		top.clip = newClip
	} else {
		// Accumulate by bounding-box intersection of the existing clip and
		// the new one; exact polygon intersection is out of scope.
		aMinX, aMinY, aMaxX, aMaxY := boundsOfPoly(top.clip)
		bMinX, bMinY, bMaxX, bMaxY := boundsOfPoly(newClip)
		minX := maxF(aMinX, bMinX)
		minY := maxF(aMinY, bMinY)
		maxX := minF(aMaxX, bMaxX)
		maxY := minF(aMaxY, bMaxY)
		top.clip = []point{{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}}
	}
	// The path is deliberately left intact: W/W* only mark a pending clip,
	// and the same path is still consumed by whichever painting operator
	// (f, S, B, or n) follows per the content-stream grammar.
}

func (r *Raster) SaveImage(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, r.surface); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

func toRGBA(r, g, b, a float64) color.RGBA {
	return color.RGBA{
		R: clampByte(r * 255),
		G: clampByte(g * 255),
		B: clampByte(b * 255),
		A: alphaByte(a),
	}
}

func alphaByte(a float64) uint8 { return clampByte(a * 255) }

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
