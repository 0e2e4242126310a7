package interp

import "sort"

// handler is an operator implementation; it reads whatever operands it
// needs from the interpreter's operand stack and is a no-op if the types
// or arity don't match (permissive parsing, matching real-world producers).
type handler func(ip *Interpreter)

type dispatchEntry struct {
	name string
	fn   handler
}

// table is the operator dispatch table, kept strictly sorted by operator
// name so lookup is a binary search (Testable Property 7). Its order is
// verified by dispatch_test.go; sortedness is checked once at init time as
// a cheap internal-consistency guard, not a substitute for that test.
var table = []dispatchEntry{
	{"B", opFillStroke(false)},
	{"B*", opFillStroke(true)},
	{"BT", opBeginText},
	{"CS", opSetColorSpace(true)},
	{"ET", opEndText},
	{"F", opFill(false)},
	{"G", opSetGray(true)},
	{"K", opSetCMYK(true)},
	{"Q", opRestore},
	{"RG", opSetRGB(true)},
	{"S", opStroke},
	{"T*", opTStar},
	{"TD", opTD},
	{"TJ", opTJ},
	{"TL", opTL},
	{"Td", opTd},
	{"Tf", opTf},
	{"Tj", opTj},
	{"Tm", opTm},
	{"Tr", opTr},
	{"W", opClip(false)},
	{"W*", opClip(true)},
	{"b", opCloseFillStroke(false)},
	{"b*", opCloseFillStroke(true)},
	{"c", opCurveTo},
	{"cm", opConcat},
	{"cs", opSetColorSpace(false)},
	{"f", opFill(false)},
	{"f*", opFill(true)},
	{"g", opSetGray(false)},
	{"gs", opExtGState},
	{"h", opClosePath},
	{"k", opSetCMYK(false)},
	{"l", opLineTo},
	{"m", opMoveTo},
	{"n", opDiscard},
	{"q", opSave},
	{"re", opRectangle},
	{"rg", opSetRGB(false)},
	{"w", opSetLineWidth},
}

func init() {
	if !sort.SliceIsSorted(table, func(i, j int) bool { return table[i].name < table[j].name }) {
		panic("interp: dispatch table is not sorted by operator name")
	}
}

// lookup binary-searches table for name, returning (handler, true) on a
// hit or (nil, false) on a miss.
func lookup(name string) (handler, bool) {
	i := sort.Search(len(table), func(i int) bool { return table[i].name >= name })
	if i < len(table) && table[i].name == name {
		return table[i].fn, true
	}
	return nil, false
}
