package pdfdoc

import (
	"bytes"
	"testing"
)

func TestNewDocumentParsesHeaderAndVersion(t *testing.T) {
	doc, err := NewDocument(minimalPDF())
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	defer doc.Close()

	if doc.Version != "1.4" {
		t.Errorf("Version = %q, want 1.4", doc.Version)
	}
}

func TestInvalidPDFRejected(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"not pdf", []byte("This is not a PDF file")},
		{"header only", []byte("%PDF-")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDocument(tt.data); err == nil {
				t.Error("NewDocument succeeded, want an error")
			}
		})
	}
}

func TestGetPageReturnsContentAndDimensions(t *testing.T) {
	doc, err := NewDocument(minimalPDF())
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	defer doc.Close()

	if doc.NumPages() != 1 {
		t.Fatalf("NumPages() = %d, want 1", doc.NumPages())
	}

	pg, err := doc.GetPage(1)
	if err != nil {
		t.Fatalf("GetPage(1): %v", err)
	}
	if pg.Width() != 612 || pg.Height() != 792 {
		t.Errorf("Width/Height = %v/%v, want 612/792", pg.Width(), pg.Height())
	}

	contents, err := pg.GetContents()
	if err != nil {
		t.Fatalf("GetContents: %v", err)
	}
	if string(contents) != "0 0 1 rg 10 10 50 50 re f" {
		t.Errorf("GetContents() = %q, want the page's raw content stream", contents)
	}
}

func TestGetPageOutOfRange(t *testing.T) {
	doc, err := NewDocument(minimalPDF())
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	defer doc.Close()

	for _, n := range []int{0, -1, 1000000} {
		if _, err := doc.GetPage(n); err == nil {
			t.Errorf("GetPage(%d) succeeded, want an error", n)
		}
	}
}

// TestResolveResourceWalksPageThenParent exercises the font cascade's
// lookup path: a resource present only on the page's own Resources
// dictionary.
func TestResolveResourceWalksPageThenParent(t *testing.T) {
	doc, err := NewDocument(minimalPDF())
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	defer doc.Close()

	pg, err := doc.GetPage(1)
	if err != nil {
		t.Fatalf("GetPage(1): %v", err)
	}

	obj, ok := pg.ResolveResource("Font", "F1")
	if !ok {
		t.Fatal("ResolveResource(Font, F1) not found")
	}
	resolved, err := doc.ResolveObject(obj)
	if err != nil {
		t.Fatalf("ResolveObject: %v", err)
	}
	dict, ok := resolved.(Dictionary)
	if !ok {
		t.Fatalf("ResolveObject(ResolveResource(Font, F1)) = %T, want Dictionary", resolved)
	}
	if sub, _ := dict.GetName("Subtype"); sub != "Type1" {
		t.Errorf("font Subtype = %q, want Type1", sub)
	}

	if _, ok := pg.ResolveResource("Font", "NoSuchFont"); ok {
		t.Error("ResolveResource(Font, NoSuchFont) should not be found")
	}
}

func TestResolveObjectFollowsReference(t *testing.T) {
	doc, err := NewDocument(minimalPDF())
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	defer doc.Close()

	resolved, err := doc.ResolveObject(Reference{ObjectNumber: 1, GenerationNumber: 0})
	if err != nil {
		t.Fatalf("ResolveObject: %v", err)
	}
	dict, ok := resolved.(Dictionary)
	if !ok {
		t.Fatalf("ResolveObject(1 0 R) = %T, want Dictionary", resolved)
	}
	if typ, _ := dict.GetName("Type"); typ != "Catalog" {
		t.Errorf("resolved Type = %q, want Catalog", typ)
	}

	// A non-reference object resolves to itself.
	same, err := doc.ResolveObject(Integer(5))
	if err != nil || same.(Integer) != 5 {
		t.Errorf("ResolveObject(Integer(5)) = (%v,%v), want (5,nil)", same, err)
	}
}

func TestDocumentCloseClearsState(t *testing.T) {
	doc, err := NewDocument(minimalPDF())
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if doc.data != nil {
		t.Error("data should be nil after Close")
	}
}

// minimalPDF builds a single-page PDF with a traditional (non-stream) xref
// table, a Font resource, and a short content stream -- enough to exercise
// Open/GetPage/GetContents/ResolveResource/ResolveObject without a fixture
// file on disk.
func minimalPDF() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	buf.WriteString("%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, 5)

	offsets[0] = buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets[1] = buf.Len()
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")

	offsets[2] = buf.Len()
	buf.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
		"/Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>\nendobj\n")

	content := "0 0 1 rg 10 10 50 50 re f"
	offsets[3] = buf.Len()
	buf.WriteString("4 0 obj\n<< /Length ")
	buf.WriteString(itoa(len(content)))
	buf.WriteString(" >>\nstream\n")
	buf.WriteString(content)
	buf.WriteString("\nendstream\nendobj\n")

	offsets[4] = buf.Len()
	buf.WriteString("5 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	xrefOffset := buf.Len()
	buf.WriteString("xref\n0 6\n0000000000 65535 f \n")
	for _, off := range offsets {
		buf.WriteString(pad10(off) + " 00000 n \n")
	}

	buf.WriteString("trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n")
	buf.WriteString(itoa(xrefOffset))
	buf.WriteString("\n%%EOF\n")

	return buf.Bytes()
}

func pad10(n int) string {
	s := itoa(n)
	for len(s) < 10 {
		s = "0" + s
	}
	return s
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
