package device

import (
	"image"
	"image/color"
	"math"
)

// flattenPath walks one subpath's op list into a polyline in device space;
// Stroke calls it once per subpath so separate subpaths are never joined.
func flattenPath(path []pathOp) []point {
	var out []point
	var cur, start point
	for _, op := range path {
		switch op.kind {
		case opMoveTo:
			cur = op.pts[0]
			start = cur
			out = append(out, cur)
		case opLineTo:
			cur = op.pts[0]
			out = append(out, cur)
		case opCurveTo:
			out = append(out, flattenBezier(cur, op.pts[0], op.pts[1], op.pts[2], 16)...)
			cur = op.pts[2]
		case opClose:
			cur = start
			out = append(out, cur)
		}
	}
	return out
}

// flattenSubpaths splits the op list at each MoveTo into independent closed
// polygons, which is what the nonzero/even-odd fill rules operate over.
func flattenSubpaths(path []pathOp) [][]point {
	var subpaths [][]point
	var cur []point
	var pos point
	flush := func() {
		if len(cur) >= 2 {
			subpaths = append(subpaths, cur)
		}
		cur = nil
	}
	for _, op := range path {
		switch op.kind {
		case opMoveTo:
			flush()
			pos = op.pts[0]
			cur = append(cur, pos)
		case opLineTo:
			pos = op.pts[0]
			cur = append(cur, pos)
		case opCurveTo:
			pts := flattenBezier(pos, op.pts[0], op.pts[1], op.pts[2], 16)
			cur = append(cur, pts...)
			pos = op.pts[2]
		case opClose:
			if len(cur) > 0 {
				cur = append(cur, cur[0])
			}
		}
	}
	flush()
	return subpaths
}

func flattenBezier(p0, p1, p2, p3 point, steps int) []point {
	pts := make([]point, steps)
	for i := 0; i < steps; i++ {
		t := float64(i+1) / float64(steps)
		mt := 1 - t
		a := mt * mt * mt
		b := 3 * mt * mt * t
		c := 3 * mt * t * t
		d := t * t * t
		pts[i] = point{
			x: a*p0.x + b*p1.x + c*p2.x + d*p3.x,
			y: a*p0.y + b*p1.y + c*p2.y + d*p3.y,
		}
	}
	return pts
}

type crossing struct {
	x   float64
	dir int // +1 if the edge goes upward in y, -1 if downward
}

// fillSubpaths rasterizes subpaths onto surface with either the nonzero
// winding rule (count crossings signed by edge direction, inside wherever
// the running total is nonzero) or the even-odd rule (inside after an odd
// number of crossings), intersected against an optional clip polygon.
func fillSubpaths(surface *image.RGBA, width, height int, subpaths [][]point, col color.RGBA, evenOdd bool, clip []point) {
	if len(subpaths) == 0 {
		return
	}
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, sp := range subpaths {
		for _, p := range sp {
			if p.y < minY {
				minY = p.y
			}
			if p.y > maxY {
				maxY = p.y
			}
		}
	}
	y0 := int(math.Floor(minY))
	y1 := int(math.Ceil(maxY))
	if y0 < 0 {
		y0 = 0
	}
	if y1 >= height {
		y1 = height - 1
	}

	for y := y0; y <= y1; y++ {
		fy := float64(y) + 0.5
		var crossings []crossing
		for _, sp := range subpaths {
			n := len(sp)
			for i := 0; i < n; i++ {
				p1 := sp[i]
				p2 := sp[(i+1)%n]
				if p1.y == p2.y {
					continue
				}
				if (p1.y <= fy && p2.y > fy) || (p2.y <= fy && p1.y > fy) {
					t := (fy - p1.y) / (p2.y - p1.y)
					x := p1.x + t*(p2.x-p1.x)
					dir := 1
					if p2.y < p1.y {
						dir = -1
					}
					crossings = append(crossings, crossing{x: x, dir: dir})
				}
			}
		}
		if len(crossings) == 0 {
			continue
		}
		sortCrossings(crossings)

		spans := spansFromCrossings(crossings, evenOdd)
		for _, sp := range spans {
			x0 := int(math.Floor(sp[0]))
			x1 := int(math.Ceil(sp[1]))
			if x0 < 0 {
				x0 = 0
			}
			if x1 >= width {
				x1 = width - 1
			}
			for x := x0; x <= x1; x++ {
				if clip != nil && !pointInPolygon(point{float64(x) + 0.5, fy}, clip) {
					continue
				}
				blendPixel(surface, x, y, col)
			}
		}
	}
}

func sortCrossings(c []crossing) {
	for i := 1; i < len(c); i++ {
		for j := i; j > 0 && c[j].x < c[j-1].x; j-- {
			c[j], c[j-1] = c[j-1], c[j]
		}
	}
}

// spansFromCrossings reduces a sorted crossing list to inside/outside
// intervals under the requested fill rule.
func spansFromCrossings(crossings []crossing, evenOdd bool) [][2]float64 {
	var spans [][2]float64
	winding := 0
	inside := false
	var spanStart float64
	for i, c := range crossings {
		wasInside := inside
		if evenOdd {
			inside = i%2 == 0
		} else {
			winding += c.dir
			inside = winding != 0
		}
		if inside && !wasInside {
			spanStart = c.x
		} else if !inside && wasInside {
			spans = append(spans, [2]float64{spanStart, c.x})
		}
	}
	return spans
}

func boundsOf(subpaths [][]point) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, sp := range subpaths {
		for _, p := range sp {
			minX, minY = math.Min(minX, p.x), math.Min(minY, p.y)
			maxX, maxY = math.Max(maxX, p.x), math.Max(maxY, p.y)
		}
	}
	return
}

func boundsOfPoly(poly []point) (minX, minY, maxX, maxY float64) {
	return boundsOf([][]point{poly})
}

// pointInPolygon is a standard even-odd ray-cast test, adequate for the
// axis-aligned rectangular clip regions the interpreter constructs.
func pointInPolygon(p point, poly []point) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := poly[i], poly[j]
		if (pi.y > p.y) != (pj.y > p.y) {
			x := pj.x + (p.y-pj.y)*(pi.x-pj.x)/(pi.y-pj.y)
			if p.x < x {
				inside = !inside
			}
		}
	}
	return inside
}

func (r *Raster) drawSegment(p1, p2 point, col color.RGBA, halfWidth float64, clip []point) {
	dx := p2.x - p1.x
	dy := p2.y - p1.y
	length := math.Sqrt(dx*dx + dy*dy)
	if length == 0 {
		return
	}
	dx /= length
	dy /= length
	px := -dy * halfWidth
	py := dx * halfWidth
	quad := [][]point{{
		{p1.x + px, p1.y + py},
		{p2.x + px, p2.y + py},
		{p2.x - px, p2.y - py},
		{p1.x - px, p1.y - py},
	}}
	fillSubpaths(r.surface, r.width, r.height, quad, col, false, clip)
}

func blendPixel(surface *image.RGBA, x, y int, col color.RGBA) {
	if col.A == 255 {
		surface.SetRGBA(x, y, col)
		return
	}
	existing := surface.RGBAAt(x, y)
	alpha := float64(col.A) / 255
	inv := 1 - alpha
	surface.SetRGBA(x, y, color.RGBA{
		R: uint8(float64(col.R)*alpha + float64(existing.R)*inv),
		G: uint8(float64(col.G)*alpha + float64(existing.G)*inv),
		B: uint8(float64(col.B)*alpha + float64(existing.B)*inv),
		A: 255,
	})
}
