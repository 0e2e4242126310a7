package pdfdoc

import (
	"bytes"
	"compress/zlib"
	"testing"
)

func TestScalarObjectStringers(t *testing.T) {
	cases := []struct {
		obj  Object
		want string
	}{
		{Integer(42), "42"},
		{Real(3.14), "3.14"},
		{Boolean(true), "true"},
		{Boolean(false), "false"},
		{Name("Font"), "/Font"},
		{Null{}, "null"},
		{Reference{ObjectNumber: 1, GenerationNumber: 0}, "1 0 R"},
	}
	for _, c := range cases {
		if got := c.obj.String(); got != c.want {
			t.Errorf("%#v.String() = %q, want %q", c.obj, got, c.want)
		}
	}
}

func TestDictionaryAccessors(t *testing.T) {
	dict := Dictionary{
		Name("Type"):      Name("Font"),
		Name("FirstChar"): Integer(32),
		Name("Widths"):    Array{Integer(278), Integer(278)},
	}

	if n, ok := dict.GetName("Type"); !ok || n != "Font" {
		t.Errorf("GetName(Type) = (%v,%v), want (Font,true)", n, ok)
	}
	if v, ok := dict.GetInt("FirstChar"); !ok || v != 32 {
		t.Errorf("GetInt(FirstChar) = (%v,%v), want (32,true)", v, ok)
	}
	if arr, ok := dict.GetArray("Widths"); !ok || len(arr) != 2 {
		t.Errorf("GetArray(Widths) = (%v,%v), want len 2", arr, ok)
	}
	if dict.Get("Missing") != nil {
		t.Error("Get(Missing) should be nil")
	}
}

// TestStreamDecodeNoFilter covers the common case device/font.go's FontFile
// loading relies on: a stream with no /Filter entry passes its data through
// unchanged.
func TestStreamDecodeNoFilter(t *testing.T) {
	stream := Stream{
		Dictionary: Dictionary{Name("Length"): Integer(5)},
		Data:       []byte("Hello"),
	}
	decoded, err := stream.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(decoded) != "Hello" {
		t.Errorf("Decode() = %q, want Hello", decoded)
	}
}

// TestStreamDecodeFlate covers a /FlateDecode content stream, the filter a
// PDF producer almost always uses to compress page content and font
// program streams.
func TestStreamDecodeFlate(t *testing.T) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write([]byte("1 0 0 1 0 0 cm"))
	w.Close()

	stream := Stream{
		Dictionary: Dictionary{Name("Filter"): Name("FlateDecode")},
		Data:       buf.Bytes(),
	}
	decoded, err := stream.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(decoded) != "1 0 0 1 0 0 cm" {
		t.Errorf("Decode() = %q, want the original content stream", decoded)
	}
}

func TestStreamDecodeUnsupportedFilter(t *testing.T) {
	stream := Stream{
		Dictionary: Dictionary{Name("Filter"): Name("NoSuchFilter")},
		Data:       []byte("x"),
	}
	if _, err := stream.Decode(); err == nil {
		t.Error("Decode() with an unsupported filter should error")
	}
}

func TestASCIIHexDecode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"48656C6C6F>", "Hello"},
		{"48 65 6C 6C 6F>", "Hello"},
		{"ABC>", "\xab\xc0"}, // odd digit count pads with a trailing zero nibble
	}
	for _, tt := range tests {
		result, err := asciiHexDecode([]byte(tt.input))
		if err != nil {
			t.Errorf("asciiHexDecode(%q): %v", tt.input, err)
			continue
		}
		if string(result) != tt.expected {
			t.Errorf("asciiHexDecode(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestASCII85Decode(t *testing.T) {
	result, err := ascii85Decode([]byte("87cURD]j7BEbo7~>"))
	if err != nil {
		t.Fatalf("ascii85Decode: %v", err)
	}
	if string(result) != "Hello world" {
		t.Errorf("ascii85Decode(...) = %q, want %q", result, "Hello world")
	}
}

func TestRunLengthDecode(t *testing.T) {
	// length byte 2 means "copy the next 3 literal bytes", then EOD (128).
	input := []byte{2, 'A', 'B', 'C', 128}
	result, err := runLengthDecode(input)
	if err != nil {
		t.Fatalf("runLengthDecode: %v", err)
	}
	if string(result) != "ABC" {
		t.Errorf("runLengthDecode(...) = %q, want ABC", result)
	}
}

func TestRunLengthDecodeRepeat(t *testing.T) {
	// length byte 255 means "repeat the next byte 257-255=2 times".
	input := []byte{255, 'X', 128}
	result, err := runLengthDecode(input)
	if err != nil {
		t.Fatalf("runLengthDecode: %v", err)
	}
	if string(result) != "XX" {
		t.Errorf("runLengthDecode(...) = %q, want XX", result)
	}
}
