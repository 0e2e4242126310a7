package interp

import (
	"github.com/novvoo/pdfstream/internal/gstate"
	"github.com/novvoo/pdfstream/internal/operand"
)

func opSave(ip *Interpreter) { ip.save() }

func opRestore(ip *Interpreter) { ip.restore() }

func opConcat(ip *Interpreter) {
	nums, ok := ip.ops.Numbers(6)
	if !ok {
		return
	}
	m := gstate.Matrix{A: nums[0], B: nums[1], C: nums[2], D: nums[3], E: nums[4], F: nums[5]}
	ip.gs.Top().CTM = m.Multiply(ip.gs.Top().CTM)
	ip.dev.ConcatCTM(m)
}

func opSetLineWidth(ip *Interpreter) {
	nums, ok := ip.ops.Numbers(1)
	if !ok {
		return
	}
	ip.gs.Top().LineWidth = nums[0]
	ip.dev.SetLineWidth(nums[0])
}

// opSetRGB returns a handler for rg (stroke=false) or RG (stroke=true).
func opSetRGB(stroke bool) handler {
	return func(ip *Interpreter) {
		nums, ok := ip.ops.Numbers(3)
		if !ok {
			return
		}
		rgb := [3]float64{nums[0], nums[1], nums[2]}
		top := ip.gs.Top()
		if stroke {
			top.StrokeRGB = rgb
			top.StrokeSpace = gstate.DeviceRGB
			ip.dev.SetStrokeRGB(rgb[0], rgb[1], rgb[2])
		} else {
			top.FillRGB = rgb
			top.FillSpace = gstate.DeviceRGB
			ip.dev.SetFillRGB(rgb[0], rgb[1], rgb[2])
		}
	}
}

func opSetGray(stroke bool) handler {
	return func(ip *Interpreter) {
		nums, ok := ip.ops.Numbers(1)
		if !ok {
			return
		}
		gr := nums[0]
		rgb := [3]float64{gr, gr, gr}
		top := ip.gs.Top()
		if stroke {
			top.StrokeRGB = rgb
			top.StrokeSpace = gstate.DeviceGray
			ip.dev.SetStrokeRGB(rgb[0], rgb[1], rgb[2])
		} else {
			top.FillRGB = rgb
			top.FillSpace = gstate.DeviceGray
			ip.dev.SetFillRGB(rgb[0], rgb[1], rgb[2])
		}
	}
}

func opSetCMYK(stroke bool) handler {
	return func(ip *Interpreter) {
		nums, ok := ip.ops.Numbers(4)
		if !ok {
			return
		}
		top := ip.gs.Top()
		if stroke {
			top.SetStrokeCMYK(nums[0], nums[1], nums[2], nums[3])
			ip.dev.SetStrokeRGB(top.StrokeRGB[0], top.StrokeRGB[1], top.StrokeRGB[2])
		} else {
			top.SetFillCMYK(nums[0], nums[1], nums[2], nums[3])
			ip.dev.SetFillRGB(top.FillRGB[0], top.FillRGB[1], top.FillRGB[2])
		}
	}
}

// opSetColorSpace records the named color space for cs/CS; painting always
// goes through the resolved RGB triple set by rg/g/k, so there is no device
// call here, only bookkeeping on the graphics-state record.
func opSetColorSpace(stroke bool) handler {
	return func(ip *Interpreter) {
		name, ok := ip.ops.LastName()
		if !ok {
			return
		}
		space := colorSpaceFromName(name)
		top := ip.gs.Top()
		if stroke {
			top.StrokeSpace = space
		} else {
			top.FillSpace = space
		}
	}
}

func colorSpaceFromName(name string) gstate.ColorSpace {
	switch name {
	case "DeviceGray", "CalGray":
		return gstate.DeviceGray
	case "DeviceCMYK":
		return gstate.DeviceCMYK
	default:
		return gstate.DeviceRGB
	}
}

func opExtGState(ip *Interpreter) {
	name, ok := ip.ops.LastName()
	if !ok {
		return
	}
	ip.dev.ApplyExtGState(name)
}

func opMoveTo(ip *Interpreter) {
	nums, ok := ip.ops.Numbers(2)
	if !ok {
		return
	}
	ip.dev.MoveTo(nums[0], nums[1])
}

func opLineTo(ip *Interpreter) {
	nums, ok := ip.ops.Numbers(2)
	if !ok {
		return
	}
	ip.dev.LineTo(nums[0], nums[1])
}

func opCurveTo(ip *Interpreter) {
	nums, ok := ip.ops.Numbers(6)
	if !ok {
		return
	}
	ip.dev.CurveTo(nums[0], nums[1], nums[2], nums[3], nums[4], nums[5])
}

func opRectangle(ip *Interpreter) {
	nums, ok := ip.ops.Numbers(4)
	if !ok {
		return
	}
	ip.dev.Rectangle(nums[0], nums[1], nums[2], nums[3])
}

func opClosePath(ip *Interpreter) {
	ip.dev.ClosePath()
}

func opStroke(ip *Interpreter) {
	ip.applyPendingClip()
	ip.dev.Stroke()
	ip.resetFillRule()
}

// opFill returns the f/F ("evenOdd" always false) and f* (evenOdd true)
// nonzero/even-odd fill handlers.
func opFill(evenOdd bool) handler {
	return func(ip *Interpreter) {
		ip.applyPendingClip()
		ip.dev.Fill(evenOdd)
		ip.resetFillRule()
	}
}

func opFillStroke(evenOdd bool) handler {
	return func(ip *Interpreter) {
		ip.applyPendingClip()
		ip.dev.FillThenStroke(evenOdd)
		ip.resetFillRule()
	}
}

func opCloseFillStroke(evenOdd bool) handler {
	return func(ip *Interpreter) {
		ip.dev.ClosePath()
		ip.applyPendingClip()
		ip.dev.FillThenStroke(evenOdd)
		ip.resetFillRule()
	}
}

func opDiscard(ip *Interpreter) {
	ip.applyPendingClip()
	ip.dev.DiscardPath()
	ip.resetFillRule()
}

// opClip returns W (evenOdd false) / W* (evenOdd true): the clip doesn't
// take effect until the next painting operator consumes the same path.
func opClip(evenOdd bool) handler {
	return func(ip *Interpreter) {
		ip.clipPending = true
		ip.clipEvenOdd = evenOdd
	}
}

func opBeginText(ip *Interpreter) {
	top := ip.gs.Top()
	top.TextMatrix = gstate.Identity()
	top.TextLineMatrix = gstate.Identity()
	ip.dev.BeginText()
	ip.dev.SetTextMatrix(top.TextMatrix)
}

func opEndText(ip *Interpreter) {
	ip.dev.EndText()
}

func opTf(ip *Interpreter) {
	all := ip.ops.All()
	if len(all) < 2 {
		return
	}
	sizeOp := all[len(all)-1]
	nameOp := all[len(all)-2]
	if sizeOp.Kind != operand.KindNumber || nameOp.Kind != operand.KindName {
		return
	}
	top := ip.gs.Top()
	top.FontName = nameOp.Name
	top.FontSize = sizeOp.Num
	ip.dev.SetFont(nameOp.Name, sizeOp.Num)
}

func opTm(ip *Interpreter) {
	nums, ok := ip.ops.Numbers(6)
	if !ok {
		return
	}
	m := gstate.Matrix{A: nums[0], B: nums[1], C: nums[2], D: nums[3], E: nums[4], F: nums[5]}
	top := ip.gs.Top()
	top.TextMatrix = m
	top.TextLineMatrix = m
	ip.dev.SetTextMatrix(m)
}

func opTd(ip *Interpreter) {
	nums, ok := ip.ops.Numbers(2)
	if !ok {
		return
	}
	moveTextLine(ip, nums[0], nums[1])
}

func opTD(ip *Interpreter) {
	nums, ok := ip.ops.Numbers(2)
	if !ok {
		return
	}
	ip.gs.Top().TextLeading = -nums[1]
	moveTextLine(ip, nums[0], nums[1])
}

func opTStar(ip *Interpreter) {
	leading := ip.gs.Top().TextLeading
	moveTextLine(ip, 0, -leading)
}

// moveTextLine implements Td's matrix update: Tlm := translate(tx,ty) . Tlm,
// then Tm := Tlm.
func moveTextLine(ip *Interpreter, tx, ty float64) {
	top := ip.gs.Top()
	translate := gstate.Translation(tx, ty)
	top.TextLineMatrix = translate.Multiply(top.TextLineMatrix)
	top.TextMatrix = top.TextLineMatrix
	ip.dev.SetTextMatrix(top.TextMatrix)
}

func opTL(ip *Interpreter) {
	nums, ok := ip.ops.Numbers(1)
	if !ok {
		return
	}
	ip.gs.Top().TextLeading = nums[0]
}

func opTr(ip *Interpreter) {
	nums, ok := ip.ops.Numbers(1)
	if !ok {
		return
	}
	mode := int(nums[0])
	ip.gs.Top().TextRenderMode = mode
	ip.dev.SetTextRenderMode(mode)
}

func opTj(ip *Interpreter) {
	str, ok := ip.ops.LastString()
	if !ok {
		return
	}
	showString(ip, str)
}

// opTJ walks a TJ array's operand sequence in order: strings show and
// advance, numbers translate Tm by (-value/1000)*font_size.
func opTJ(ip *Interpreter) {
	for _, o := range ip.ops.All() {
		switch o.Kind {
		case operand.KindString:
			showString(ip, o.Str)
		case operand.KindNumber:
			top := ip.gs.Top()
			shift := -o.Num / 1000 * top.FontSize
			translateTm(ip, shift, 0)
		}
	}
}

func showString(ip *Interpreter, str []byte) {
	top := ip.gs.Top()
	advance := ip.dev.ShowText(str, top.Encoding)
	translateTm(ip, advance, 0)
}

// translateTm applies a text-space translation to Tm only, never Tlm, per
// the text-matrix update rule.
func translateTm(ip *Interpreter, dx, dy float64) {
	top := ip.gs.Top()
	top.TextMatrix = gstate.Translation(dx, dy).Multiply(top.TextMatrix)
	ip.dev.SetTextMatrix(top.TextMatrix)
}
