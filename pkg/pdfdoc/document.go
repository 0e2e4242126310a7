package pdfdoc

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Document represents a PDF document
type Document struct {
	data     []byte
	Version  string
	Trailer  Dictionary
	Root     Dictionary
	Pages    []*Page
	objects  map[int]Object
	xref     map[int]xrefEntry
}

// xrefEntry represents an entry in the cross-reference table
type xrefEntry struct {
	Offset     int64
	Generation int
	InUse      bool
	// For compressed objects
	StreamObjNum int
	Index        int
}

// Page represents a PDF page
type Page struct {
	doc        *Document
	Dictionary Dictionary
	Number     int
	MediaBox   Rectangle
	Resources  Dictionary
}

// Rectangle represents a PDF rectangle
type Rectangle struct {
	LLX, LLY, URX, URY float64
}

// Open opens a PDF file
func Open(filename string) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewDocument(data)
}

// NewDocument creates a new document from PDF data
func NewDocument(data []byte) (*Document, error) {
	doc := &Document{
		data:    data,
		objects: make(map[int]Object),
		xref:    make(map[int]xrefEntry),
	}

	if err := doc.parse(); err != nil {
		return nil, err
	}

	return doc, nil
}

// parse parses the PDF document
func (d *Document) parse() error {
	// Check PDF header
	if !bytes.HasPrefix(d.data, []byte("%PDF-")) {
		return fmt.Errorf("not a PDF file")
	}

	// Get version
	idx := bytes.Index(d.data, []byte("\n"))
	if idx < 0 {
		idx = bytes.Index(d.data, []byte("\r"))
	}
	if idx > 0 {
		d.Version = string(d.data[5:idx])
	}

	// Find startxref
	startxref, err := d.findStartXRef()
	if err != nil {
		return err
	}

	// Parse xref and trailer
	if err := d.parseXRef(startxref); err != nil {
		return err
	}

	// Get document catalog (Root)
	rootRef := d.Trailer.Get("Root")
	if rootRef == nil {
		return fmt.Errorf("missing Root in trailer")
	}
	rootObj, err := d.ResolveObject(rootRef)
	if err != nil {
		return err
	}
	root, ok := rootObj.(Dictionary)
	if !ok {
		return fmt.Errorf("Root is not a dictionary")
	}
	d.Root = root

	// Parse pages
	if err := d.parsePages(); err != nil {
		return err
	}

	return nil
}

// findStartXRef finds the startxref position
func (d *Document) findStartXRef() (int64, error) {
	// Search from end of file
	searchLen := 1024
	if len(d.data) < searchLen {
		searchLen = len(d.data)
	}

	tail := d.data[len(d.data)-searchLen:]
	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		return 0, fmt.Errorf("startxref not found")
	}

	// Parse the offset
	start := idx + 9 // len("startxref")
	for start < len(tail) && isWhitespace(tail[start]) {
		start++
	}

	end := start
	for end < len(tail) && tail[end] >= '0' && tail[end] <= '9' {
		end++
	}

	offset, err := strconv.ParseInt(string(tail[start:end]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid startxref offset")
	}

	return offset, nil
}

// parseXRef parses the cross-reference table
func (d *Document) parseXRef(offset int64) error {
	// Skip whitespace at offset
	pos := offset
	for pos < int64(len(d.data)) && isWhitespace(d.data[pos]) {
		pos++
	}

	// Check if it's an xref stream or traditional xref table
	if pos+4 <= int64(len(d.data)) && string(d.data[pos:pos+4]) == "xref" {
		return d.parseXRefTable(pos)
	}
	return d.parseXRefStream(pos)
}

// parseXRefTable parses a traditional xref table
func (d *Document) parseXRefTable(offset int64) error {
	lexer := NewLexerFromBytes(d.data[offset:])

	// Skip "xref" keyword
	lexer.ReadLine()

	// Parse xref sections
	for {
		line, err := lexer.ReadLine()
		if err != nil {
			return err
		}

		lineStr := string(bytes.TrimSpace(line))
		if lineStr == "" {
			continue
		}
		if lineStr == "trailer" {
			break
		}

		// Parse section header: start count
		parts := bytes.Fields(line)
		if len(parts) != 2 {
			continue
		}

		start, err := strconv.Atoi(string(parts[0]))
		if err != nil {
			continue
		}
		count, err := strconv.Atoi(string(parts[1]))
		if err != nil {
			continue
		}

		// Parse entries
		for i := 0; i < count; i++ {
			entryLine, err := lexer.ReadLine()
			if err != nil {
				return err
			}

			// Entry format: nnnnnnnnnn ggggg n/f (20 bytes including EOL)
			// We need at least 17 characters: 10 digits + space + 5 digits + space + n/f
			entryStr := string(entryLine)
			if len(entryStr) < 17 {
				// Try to read more if entry is too short
				continue
			}

			// Parse offset (first 10 characters)
			offsetStr := strings.TrimSpace(entryStr[0:10])
			entryOffset, _ := strconv.ParseInt(offsetStr, 10, 64)

			// Parse generation (characters 11-15)
			genStr := strings.TrimSpace(entryStr[11:16])
			gen, _ := strconv.Atoi(genStr)

			// Parse in-use flag (character 17)
			inUse := len(entryStr) > 17 && entryStr[17] == 'n'

			objNum := start + i
			if _, exists := d.xref[objNum]; !exists {
				d.xref[objNum] = xrefEntry{
					Offset:     entryOffset,
					Generation: gen,
					InUse:      inUse,
				}
			}
		}
	}

	// Parse trailer dictionary
	parser := NewParser(lexer)
	trailerObj, err := parser.ParseObject()
	if err != nil {
		return err
	}

	trailer, ok := trailerObj.(Dictionary)
	if !ok {
		return fmt.Errorf("trailer is not a dictionary")
	}

	// Merge with existing trailer (for incremental updates)
	if d.Trailer == nil {
		d.Trailer = trailer
	} else {
		for k, v := range trailer {
			if _, exists := d.Trailer[k]; !exists {
				d.Trailer[k] = v
			}
		}
	}

	// Check for previous xref
	if prevRef := trailer.Get("Prev"); prevRef != nil {
		if prevOffset, ok := prevRef.(Integer); ok {
			return d.parseXRef(int64(prevOffset))
		}
	}

	return nil
}

// parseXRefStream parses an xref stream
func (d *Document) parseXRefStream(offset int64) error {
	parser := NewParserFromBytes(d.data[offset:])

	objNum, _, obj, err := parser.ParseIndirectObject()
	if err != nil {
		return err
	}

	stream, ok := obj.(Stream)
	if !ok {
		return fmt.Errorf("xref stream expected at offset %d", offset)
	}

	// Decode stream
	data, err := stream.Decode()
	if err != nil {
		return err
	}

	// Get W array (field widths)
	wArray, ok := stream.Dictionary.GetArray("W")
	if !ok || len(wArray) != 3 {
		return fmt.Errorf("invalid xref stream W array")
	}

	w := make([]int, 3)
	for i, obj := range wArray {
		if n, ok := obj.(Integer); ok {
			w[i] = int(n)
		}
	}

	// Get Index array (optional)
	var indices []int
	if indexArray, ok := stream.Dictionary.GetArray("Index"); ok {
		for _, obj := range indexArray {
			if n, ok := obj.(Integer); ok {
				indices = append(indices, int(n))
			}
		}
	} else {
		// Default: [0 Size]
		if size, ok := stream.Dictionary.GetInt("Size"); ok {
			indices = []int{0, int(size)}
		}
	}

	// Parse entries
	entrySize := w[0] + w[1] + w[2]
	pos := 0

	for i := 0; i < len(indices); i += 2 {
		start := indices[i]
		count := indices[i+1]

		for j := 0; j < count; j++ {
			if pos+entrySize > len(data) {
				break
			}

			entry := data[pos : pos+entrySize]
			pos += entrySize

			// Parse fields
			field1 := readXRefField(entry, 0, w[0])
			field2 := readXRefField(entry, w[0], w[1])
			field3 := readXRefField(entry, w[0]+w[1], w[2])

			objNum := start + j

			// Default type is 1 if w[0] is 0
			entryType := field1
			if w[0] == 0 {
				entryType = 1
			}

			switch entryType {
			case 0: // Free object
				d.xref[objNum] = xrefEntry{
					InUse: false,
				}
			case 1: // Uncompressed object
				d.xref[objNum] = xrefEntry{
					Offset:     int64(field2),
					Generation: field3,
					InUse:      true,
				}
			case 2: // Compressed object
				d.xref[objNum] = xrefEntry{
					StreamObjNum: field2,
					Index:        field3,
					InUse:        true,
				}
			}
		}
	}

	// Use stream dictionary as trailer
	if d.Trailer == nil {
		d.Trailer = stream.Dictionary
	}

	// Check for previous xref
	if prevRef := stream.Dictionary.Get("Prev"); prevRef != nil {
		if prevOffset, ok := prevRef.(Integer); ok {
			return d.parseXRef(int64(prevOffset))
		}
	}

	_ = objNum // Suppress unused variable warning
	return nil
}

// readXRefField reads a field from xref stream entry
func readXRefField(data []byte, offset, width int) int {
	if width == 0 {
		return 0
	}

	result := 0
	for i := 0; i < width; i++ {
		result = result<<8 | int(data[offset+i])
	}
	return result
}

// ResolveObject resolves an object, following references
func (d *Document) ResolveObject(obj Object) (Object, error) {
	ref, ok := obj.(Reference)
	if !ok {
		return obj, nil
	}

	return d.GetObject(ref.ObjectNumber)
}

// GetObject gets an object by number
func (d *Document) GetObject(objNum int) (Object, error) {
	// Check cache
	if obj, ok := d.objects[objNum]; ok {
		return obj, nil
	}

	entry, ok := d.xref[objNum]
	if !ok {
		return Null{}, nil
	}

	if !entry.InUse {
		return Null{}, nil
	}

	var obj Object
	var err error

	if entry.StreamObjNum > 0 {
		// Compressed object
		obj, err = d.getCompressedObject(entry.StreamObjNum, entry.Index)
	} else {
		// Uncompressed object
		obj, err = d.getUncompressedObject(entry.Offset)
	}

	if err != nil {
		return nil, err
	}

	d.objects[objNum] = obj
	return obj, nil
}

// getUncompressedObject reads an uncompressed object
func (d *Document) getUncompressedObject(offset int64) (Object, error) {
	parser := NewParserFromBytes(d.data[offset:])
	_, _, obj, err := parser.ParseIndirectObject()
	return obj, err
}

// getCompressedObject reads a compressed object from an object stream
func (d *Document) getCompressedObject(streamObjNum, index int) (Object, error) {
	// Get the object stream
	streamObj, err := d.GetObject(streamObjNum)
	if err != nil {
		return nil, err
	}

	stream, ok := streamObj.(Stream)
	if !ok {
		return nil, fmt.Errorf("object stream %d is not a stream", streamObjNum)
	}

	// Decode stream
	data, err := stream.Decode()
	if err != nil {
		return nil, err
	}

	// Get First (offset to first object)
	first, ok := stream.Dictionary.GetInt("First")
	if !ok {
		return nil, fmt.Errorf("object stream missing First")
	}

	// Get N (number of objects)
	n, ok := stream.Dictionary.GetInt("N")
	if !ok {
		return nil, fmt.Errorf("object stream missing N")
	}

	// Parse object number/offset pairs
	headerParser := NewParserFromBytes(data[:first])
	offsets := make([]int64, n)

	for i := int64(0); i < n; i++ {
		// Object number (we don't need it)
		_, err := headerParser.ParseObject()
		if err != nil {
			return nil, err
		}

		// Offset
		offsetObj, err := headerParser.ParseObject()
		if err != nil {
			return nil, err
		}
		if offset, ok := offsetObj.(Integer); ok {
			offsets[i] = int64(offset)
		}
	}

	// Parse the requested object
	if index >= len(offsets) {
		return nil, fmt.Errorf("object index %d out of range", index)
	}

	objOffset := first + offsets[index]
	objParser := NewParserFromBytes(data[objOffset:])
	return objParser.ParseObject()
}

// parsePages parses the page tree
func (d *Document) parsePages() error {
	pagesRef := d.Root.Get("Pages")
	if pagesRef == nil {
		return fmt.Errorf("missing Pages in catalog")
	}

	pagesObj, err := d.ResolveObject(pagesRef)
	if err != nil {
		return err
	}

	pagesDict, ok := pagesObj.(Dictionary)
	if !ok {
		return fmt.Errorf("Pages is not a dictionary")
	}

	return d.parsePagesNode(pagesDict, nil, 1)
}

// parsePagesNode recursively parses page tree nodes
func (d *Document) parsePagesNode(node Dictionary, inheritedResources Dictionary, pageNum int) error {
	nodeType, _ := node.GetName("Type")

	// Inherit resources
	resources := inheritedResources
	if res := node.Get("Resources"); res != nil {
		resObj, err := d.ResolveObject(res)
		if err == nil {
			if resDict, ok := resObj.(Dictionary); ok {
				resources = resDict
			}
		}
	}

	// Get MediaBox (may be inherited)
	var mediaBox Rectangle
	if mb := node.Get("MediaBox"); mb != nil {
		mbObj, err := d.ResolveObject(mb)
		if err == nil {
			if mbArray, ok := mbObj.(Array); ok && len(mbArray) == 4 {
				mediaBox = arrayToRectangle(mbArray)
			}
		}
	}

	if nodeType == "Pages" {
		// Pages node - recurse into kids
		kidsRef := node.Get("Kids")
		if kidsRef == nil {
			return nil
		}

		kidsObj, err := d.ResolveObject(kidsRef)
		if err != nil {
			return err
		}

		kids, ok := kidsObj.(Array)
		if !ok {
			return fmt.Errorf("Kids is not an array")
		}

		for _, kidRef := range kids {
			kidObj, err := d.ResolveObject(kidRef)
			if err != nil {
				continue
			}

			kidDict, ok := kidObj.(Dictionary)
			if !ok {
				continue
			}

			// Pass inherited resources and mediabox
			if resources != nil {
				if kidDict.Get("Resources") == nil {
					kidDict[Name("Resources")] = resources
				}
			}
			if kidDict.Get("MediaBox") == nil && mediaBox != (Rectangle{}) {
				kidDict[Name("MediaBox")] = rectangleToArray(mediaBox)
			}

			if err := d.parsePagesNode(kidDict, resources, pageNum); err != nil {
				return err
			}
			pageNum = len(d.Pages) + 1
		}
	} else if nodeType == "Page" {
		// Leaf page node
		page := &Page{
			doc:        d,
			Dictionary: node,
			Number:     len(d.Pages) + 1,
			MediaBox:   mediaBox,
			Resources:  resources,
		}

		d.Pages = append(d.Pages, page)
	}

	return nil
}

// arrayToRectangle converts a PDF array to a Rectangle
func arrayToRectangle(arr Array) Rectangle {
	var r Rectangle
	if len(arr) >= 4 {
		r.LLX = objectToFloat(arr[0])
		r.LLY = objectToFloat(arr[1])
		r.URX = objectToFloat(arr[2])
		r.URY = objectToFloat(arr[3])
	}
	return r
}

// rectangleToArray converts a Rectangle to a PDF array
func rectangleToArray(r Rectangle) Array {
	return Array{
		Real(r.LLX),
		Real(r.LLY),
		Real(r.URX),
		Real(r.URY),
	}
}

// objectToFloat converts a PDF object to float64
func objectToFloat(obj Object) float64 {
	switch v := obj.(type) {
	case Integer:
		return float64(v)
	case Real:
		return float64(v)
	}
	return 0
}

// NumPages returns the number of pages
func (d *Document) NumPages() int {
	return len(d.Pages)
}

// GetPage returns a page by number (1-indexed)
func (d *Document) GetPage(num int) (*Page, error) {
	if num < 1 || num > len(d.Pages) {
		return nil, fmt.Errorf("page %d out of range", num)
	}
	return d.Pages[num-1], nil
}

// GetContents returns the page contents as decoded bytes
func (p *Page) GetContents() ([]byte, error) {
	contentsRef := p.Dictionary.Get("Contents")
	if contentsRef == nil {
		return nil, nil
	}

	contentsObj, err := p.doc.ResolveObject(contentsRef)
	if err != nil {
		return nil, err
	}

	switch contents := contentsObj.(type) {
	case Stream:
		return contents.Decode()
	case Array:
		// Multiple content streams - concatenate
		var buf bytes.Buffer
		for _, ref := range contents {
			streamObj, err := p.doc.ResolveObject(ref)
			if err != nil {
				continue
			}
			if stream, ok := streamObj.(Stream); ok {
				data, err := stream.Decode()
				if err != nil {
					continue
				}
				buf.Write(data)
				buf.WriteByte('\n')
			}
		}
		return buf.Bytes(), nil
	}

	return nil, fmt.Errorf("invalid Contents type")
}

// Width returns the page width
func (p *Page) Width() float64 {
	return p.MediaBox.URX - p.MediaBox.LLX
}

// Height returns the page height
func (p *Page) Height() float64 {
	return p.MediaBox.URY - p.MediaBox.LLY
}

// Close closes the document
func (d *Document) Close() error {
	d.data = nil
	d.objects = nil
	d.xref = nil
	return nil
}

// Document returns the Document a Page was parsed from, for callers (the
// device package's font cascade) that need to resolve indirect references
// reachable from a resource dictionary entry.
func (p *Page) Document() *Document {
	return p.doc
}

// ResolveResource looks up name within the named resource category
// (ExtGState, Font, XObject, ...) of the page's own Resources dictionary,
// walking up to 10 Parent links when the direct dictionary lacks the name.
func (p *Page) ResolveResource(category, name string) (Object, bool) {
	dict := p.Dictionary
	resources := p.Resources

	for depth := 0; depth <= 10; depth++ {
		if resources != nil {
			if catObj := resources.Get(category); catObj != nil {
				if catDict, err := p.doc.ResolveObject(catObj); err == nil {
					if cd, ok := catDict.(Dictionary); ok {
						if obj := cd.Get(name); obj != nil {
							return obj, true
						}
					}
				}
			}
		}

		parentRef := dict.Get("Parent")
		if parentRef == nil {
			break
		}
		parentObj, err := p.doc.ResolveObject(parentRef)
		if err != nil {
			break
		}
		parentDict, ok := parentObj.(Dictionary)
		if !ok {
			break
		}
		dict = parentDict
		resources = nil
		if res := dict.Get("Resources"); res != nil {
			if resObj, err := p.doc.ResolveObject(res); err == nil {
				if rd, ok := resObj.(Dictionary); ok {
					resources = rd
				}
			}
		}
	}

	return nil, false
}

