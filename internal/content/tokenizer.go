package content

import (
	"bufio"
	"bytes"
	"strconv"
)

func isWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return isWhitespace(b)
}

// Tokenizer consumes decoded content-stream bytes and yields one Token per
// call to Next.
type Tokenizer struct {
	r   *bufio.Reader
}

// New wraps data in a Tokenizer.
func New(data []byte) *Tokenizer {
	return &Tokenizer{r: bufio.NewReader(bytes.NewReader(data))}
}

func (t *Tokenizer) readByte() (byte, error) {
	return t.r.ReadByte()
}

func (t *Tokenizer) unreadByte() {
	t.r.UnreadByte()
}

func (t *Tokenizer) peekByte() (byte, bool) {
	b, err := t.r.Peek(1)
	if err != nil {
		return 0, false
	}
	return b[0], true
}

func (t *Tokenizer) skipWhitespaceAndComments() {
	for {
		b, err := t.readByte()
		if err != nil {
			return
		}
		if isWhitespace(b) {
			continue
		}
		if b == '%' {
			for {
				c, err := t.readByte()
				if err != nil || c == '\n' || c == '\r' {
					break
				}
			}
			continue
		}
		t.unreadByte()
		return
	}
}

// Next returns the next lexeme, or a Kind==EOF token once the stream is
// exhausted.
func (t *Tokenizer) Next() Token {
	t.skipWhitespaceAndComments()

	b, err := t.readByte()
	if err != nil {
		return Token{Kind: EOF}
	}

	switch {
	case b == '/':
		return t.readName()
	case b == '(':
		return t.readLiteralString()
	case b == '<':
		nb, ok := t.peekByte()
		if ok && nb == '<' {
			t.readByte()
			return t.skipDictDelimiter(true)
		}
		return t.readHexString()
	case b == '>':
		nb, ok := t.peekByte()
		if ok && nb == '>' {
			t.readByte()
		}
		return t.skipDictDelimiter(false)
	case b == '[':
		return Token{Kind: ArrayOpen}
	case b == ']':
		return Token{Kind: ArrayClose}
	case b == '+' || b == '-' || b == '.' || (b >= '0' && b <= '9'):
		t.unreadByte()
		return t.readNumber()
	default:
		t.unreadByte()
		return t.readOperator()
	}
}

// skipDictDelimiter discards an inline-image-parameter dictionary
// delimiter and returns the next real token, per the tokenizer contract
// that dictionary tokens are accepted and ignored.
func (t *Tokenizer) skipDictDelimiter(open bool) Token {
	return t.Next()
}

func (t *Tokenizer) readName() Token {
	var buf bytes.Buffer
	for {
		b, ok := t.peekByte()
		if !ok || isDelimiter(b) {
			break
		}
		t.readByte()
		if b == '#' {
			if hi, ok1 := t.peekByte(); ok1 && isHex(hi) {
				t.readByte()
				if lo, ok2 := t.peekByte(); ok2 && isHex(lo) {
					t.readByte()
					v, err := strconv.ParseUint(string([]byte{hi, lo}), 16, 8)
					if err == nil {
						buf.WriteByte(byte(v))
						continue
					}
				}
			}
			buf.WriteByte(b)
			continue
		}
		buf.WriteByte(b)
	}
	return Token{Kind: Name, Name: buf.String()}
}

func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// readLiteralString tracks balanced parentheses and PDF string escapes. An
// unterminated string at EOF yields whatever bytes were accumulated rather
// than an error.
func (t *Tokenizer) readLiteralString() Token {
	var buf bytes.Buffer
	depth := 1
	for depth > 0 {
		b, err := t.readByte()
		if err != nil {
			break
		}
		switch b {
		case '(':
			depth++
			buf.WriteByte(b)
		case ')':
			depth--
			if depth > 0 {
				buf.WriteByte(b)
			}
		case '\\':
			t.readEscape(&buf)
		default:
			buf.WriteByte(b)
		}
	}
	return Token{Kind: String, Str: buf.Bytes()}
}

func (t *Tokenizer) readEscape(buf *bytes.Buffer) {
	b, err := t.readByte()
	if err != nil {
		return
	}
	switch b {
	case 'n':
		buf.WriteByte('\n')
	case 'r':
		buf.WriteByte('\r')
	case 't':
		buf.WriteByte('\t')
	case 'b':
		buf.WriteByte('\b')
	case 'f':
		buf.WriteByte('\f')
	case '(', ')', '\\':
		buf.WriteByte(b)
	case '\r':
		if nb, ok := t.peekByte(); ok && nb == '\n' {
			t.readByte()
		}
	case '\n':
		// line continuation, no output
	default:
		if b >= '0' && b <= '7' {
			octal := []byte{b}
			for i := 0; i < 2; i++ {
				nb, ok := t.peekByte()
				if !ok || nb < '0' || nb > '7' {
					break
				}
				t.readByte()
				octal = append(octal, nb)
			}
			v, _ := strconv.ParseUint(string(octal), 8, 16)
			buf.WriteByte(byte(v))
			return
		}
		buf.WriteByte(b)
	}
}

func (t *Tokenizer) readHexString() Token {
	var hex bytes.Buffer
	for {
		b, err := t.readByte()
		if err != nil || b == '>' {
			break
		}
		if isWhitespace(b) {
			continue
		}
		hex.WriteByte(b)
	}
	s := hex.String()
	if len(s)%2 != 0 {
		s += "0"
	}
	out := make([]byte, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		v, err := strconv.ParseUint(s[i:i+2], 16, 8)
		if err != nil {
			v = 0
		}
		out[i/2] = byte(v)
	}
	return Token{Kind: String, Str: out}
}

func (t *Tokenizer) readNumber() Token {
	var buf bytes.Buffer
	for {
		b, ok := t.peekByte()
		if !ok {
			break
		}
		if (b >= '0' && b <= '9') || b == '+' || b == '-' || b == '.' || b == 'e' || b == 'E' {
			t.readByte()
			buf.WriteByte(b)
			continue
		}
		break
	}
	v, err := strconv.ParseFloat(buf.String(), 64)
	if err != nil {
		v = 0
	}
	return Token{Kind: Number, Num: v}
}

func (t *Tokenizer) readOperator() Token {
	var buf bytes.Buffer
	for {
		b, ok := t.peekByte()
		if !ok || isDelimiter(b) {
			break
		}
		t.readByte()
		buf.WriteByte(b)
	}
	return Token{Kind: Operator, Op: buf.String()}
}
