package gstate

// Encoding maps content-stream string bytes to Unicode codepoints. It is an
// array value, so each State holds its own copy: writing a per-font
// /Differences table into one state's copy never changes the default table
// or another state's copy.
type Encoding [256]rune

// winAnsi is the default single-byte encoding (PDF 1.7 Appendix D.2),
// represented as direct Unicode codepoints rather than glyph names: bytes
// 0x00-0x1F, 0x7F, 0x81, 0x8D, 0x8F, 0x90 and 0x9D have no assigned glyph
// and map to 0 (unmapped); 0x20-0x7E are ASCII; 0x80-0x9F hold the Windows
// code-page-1252 punctuation block; 0xA0-0xFF coincide with Latin-1.
var winAnsi = buildWinAnsi()

func buildWinAnsi() Encoding {
	var e Encoding
	for b := rune(0x20); b <= 0x7E; b++ {
		e[b] = b
	}
	special := map[byte]rune{
		0x80: 0x20AC, // Euro
		0x82: 0x201A, // quotesinglbase
		0x83: 0x0192, // florin
		0x84: 0x201E, // quotedblbase
		0x85: 0x2026, // ellipsis
		0x86: 0x2020, // dagger
		0x87: 0x2021, // daggerdbl
		0x88: 0x02C6, // circumflex
		0x89: 0x2030, // perthousand
		0x8A: 0x0160, // Scaron
		0x8B: 0x2039, // guilsinglleft
		0x8C: 0x0152, // OE
		0x8E: 0x017D, // Zcaron
		0x91: 0x2018, // quoteleft
		0x92: 0x2019, // quoteright
		0x93: 0x201C, // quotedblleft
		0x94: 0x201D, // quotedblright
		0x95: 0x2022, // bullet
		0x96: 0x2013, // endash
		0x97: 0x2014, // emdash
		0x98: 0x02DC, // tilde
		0x99: 0x2122, // trademark
		0x9A: 0x0161, // scaron
		0x9B: 0x203A, // guilsinglright
		0x9C: 0x0153, // oe
		0x9E: 0x017E, // zcaron
		0x9F: 0x0178, // Ydieresis
	}
	for b, r := range special {
		e[b] = r
	}
	for b := rune(0xA0); b <= 0xFF; b++ {
		e[b] = b
	}
	return e
}

// DefaultEncoding returns a fresh copy of WinAnsiEncoding, safe to mutate
// into a per-font Differences table without affecting other callers.
func DefaultEncoding() Encoding {
	return winAnsi
}

// Lookup maps a single content-stream byte to its codepoint; 0 means
// unmapped (no glyph), in which case the device's ShowText uses the byte
// value itself as the codepoint. A byte is never used as a raw glyph index.
func (e Encoding) Lookup(b byte) rune {
	return e[b]
}
