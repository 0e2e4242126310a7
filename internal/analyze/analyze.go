// Package analyze implements the `--analyze` CLI mode: a tally of operator
// frequencies across a content stream, reported sorted by count descending
// then lexically by name, matching the original C tool's tie-break.
package analyze

import "sort"

// Count pairs an operator name with its occurrence count.
type Count struct {
	Name  string
	Count int
}

// Tally walks data with the package's own whitespace-delimited tokenizer
// and counts every token that isn't classified as numeric.
//
// This tokenizer intentionally does NOT share internal/content's
// Tokenizer: the original analyzer classifies a token as numeric solely by
// its first byte being a digit, '.', or '-' (a leading '+' is therefore
// miscounted as an operator), and this mode exists to reproduce that
// tool's tallies byte-for-byte, not to parse content streams correctly.
// internal/content's tokenizer additionally accepts a leading '+' as
// numeric because the interpreter's correctness depends on it; the two
// tokenizers are intentionally different (documented in DESIGN.md).
func Tally(data []byte) []Count {
	counts := make(map[string]int)
	var order []string

	for _, tok := range splitTokens(data) {
		if isNumericToken(tok) {
			continue
		}
		if _, seen := counts[tok]; !seen {
			order = append(order, tok)
		}
		counts[tok]++
	}

	results := make([]Count, 0, len(order))
	for _, name := range order {
		results = append(results, Count{Name: name, Count: counts[name]})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Count != results[j].Count {
			return results[i].Count > results[j].Count
		}
		return results[i].Name < results[j].Name
	})
	return results
}

func isNumericToken(tok string) bool {
	if tok == "" {
		return false
	}
	b := tok[0]
	return (b >= '0' && b <= '9') || b == '.' || b == '-'
}

// splitTokens splits on whitespace only, mirroring pdfioStreamGetToken's
// coarse token boundaries; it is deliberately simpler than
// internal/content's delimiter-aware tokenizer.
func splitTokens(data []byte) []string {
	var tokens []string
	start := -1
	for i, b := range data {
		if isSpace(b) {
			if start >= 0 {
				tokens = append(tokens, string(data[start:i]))
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, string(data[start:]))
	}
	return tokens
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\f':
		return true
	}
	return false
}
