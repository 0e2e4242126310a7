package device

import (
	"image"
	"os"
	"path/filepath"
	"runtime"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/novvoo/pdfstream/internal/gstate"
	"github.com/novvoo/pdfstream/pkg/pdfdoc"
)

// fontCache loads and caches truetype.Font values keyed by the PDF font
// object's indirect reference (a font given as a direct dictionary has no
// object identity and is loaded on every lookup, never cached), plus one
// fallback face that each cache loads once, at construction, from the
// system font cascade.
type fontCache struct {
	dpi      float64
	byObject map[string]*truetype.Font
	fallback *truetype.Font
}

func newFontCache(dpi float64) *fontCache {
	fc := &fontCache{dpi: dpi, byObject: make(map[string]*truetype.Font)}
	fc.fallback = loadSystemFallback()
	return fc
}

// systemFontPaths lists the fallback faces tried in order, platform by
// platform, mirroring the cascade a poppler-backed renderer falls through
// to when a PDF's font isn't embedded.
func systemFontPaths() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/System/Library/Fonts/Helvetica.ttc",
			"/Library/Fonts/Arial.ttf",
		}
	case "windows":
		windir := os.Getenv("WINDIR")
		if windir == "" {
			windir = `C:\Windows`
		}
		return []string{
			filepath.Join(windir, "Fonts", "arial.ttf"),
			filepath.Join(windir, "Fonts", "times.ttf"),
		}
	default:
		return []string{
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
			"/usr/share/fonts/truetype/noto/NotoSans-Regular.ttf",
			"/usr/share/fonts/truetype/freefont/FreeSans.ttf",
		}
	}
}

func loadSystemFallback() *truetype.Font {
	for _, path := range systemFontPaths() {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if f, err := truetype.Parse(data); err == nil {
			return f
		}
	}
	return nil
}

// resolveFont implements the embedded-font-then-fallback cascade: it reads
// the named entry from the page's /Font resources, looks for FontFile2,
// FontFile3 or FontFile on the (possibly Type0-descendant) FontDescriptor,
// and falls back to the cache's system font when nothing embeds cleanly. A
// miss at every stage returns nil, which callers treat as a silent no-op.
func (fc *fontCache) resolveFont(page *pdfdoc.Page, name string) *truetype.Font {
	if page == nil {
		return fc.fallback
	}
	obj, ok := page.ResolveResource("Font", name)
	if !ok {
		return fc.fallback
	}
	key := cacheKey(obj)
	if key != "" {
		if f, ok := fc.byObject[key]; ok {
			return f
		}
	}

	f := fc.loadFromFontObject(page, obj)
	if f == nil {
		f = fc.fallback
	}
	if key != "" {
		fc.byObject[key] = f
	}
	return f
}

func cacheKey(obj pdfdoc.Object) string {
	if ref, ok := obj.(pdfdoc.Reference); ok {
		return ref.String()
	}
	return ""
}

func (fc *fontCache) loadFromFontObject(page *pdfdoc.Page, obj pdfdoc.Object) *truetype.Font {
	resolved, err := page.Document().ResolveObject(obj)
	if err != nil {
		return nil
	}
	dict, ok := resolved.(pdfdoc.Dictionary)
	if !ok {
		return nil
	}

	if subtype, ok := dict.GetName("Subtype"); ok && string(subtype) == "Type0" {
		if descendants, ok := dict.Get("DescendantFonts").(pdfdoc.Array); ok && len(descendants) > 0 {
			if descObj, err := page.Document().ResolveObject(descendants[0]); err == nil {
				if descDict, ok := descObj.(pdfdoc.Dictionary); ok {
					if f := fc.loadFromDescriptor(page, descDict); f != nil {
						return f
					}
				}
			}
		}
	}

	return fc.loadFromDescriptor(page, dict)
}

func (fc *fontCache) loadFromDescriptor(page *pdfdoc.Page, fontDict pdfdoc.Dictionary) *truetype.Font {
	descObj := fontDict.Get("FontDescriptor")
	descriptor := fontDict
	if descObj != nil {
		if resolved, err := page.Document().ResolveObject(descObj); err == nil {
			if d, ok := resolved.(pdfdoc.Dictionary); ok {
				descriptor = d
			}
		}
	}

	for _, key := range []string{"FontFile2", "FontFile3", "FontFile"} {
		streamObj := descriptor.Get(key)
		if streamObj == nil {
			continue
		}
		resolved, err := page.Document().ResolveObject(streamObj)
		if err != nil {
			continue
		}
		stream, ok := resolved.(pdfdoc.Stream)
		if !ok {
			continue
		}
		data, err := stream.Decode()
		if err != nil {
			continue
		}
		if f, err := truetype.Parse(data); err == nil {
			return f
		}
	}
	return nil
}

func (r *Raster) BeginText() {
	top := r.top()
	top.textMatrix = gstate.Identity()
}

func (r *Raster) EndText() {}

func (r *Raster) SetFont(name string, size float64) {
	top := r.top()
	top.fontName = name
	top.fontSize = size
}

func (r *Raster) SetTextRenderMode(mode int) { r.top().renderMode = mode }

func (r *Raster) SetTextMatrix(m gstate.Matrix) { r.top().textMatrix = m }

// ShowText draws bytes at the device's current text position and returns
// the total text-space advance, in font units scaled by font_size, that
// the interpreter applies to the text matrix afterward. Invisible render
// modes (3, 7) still measure but never paint.
func (r *Raster) ShowText(bytes []byte, encoding gstate.Encoding) float64 {
	top := r.top()
	ttf := r.fonts.resolveFont(r.page, top.fontName)

	runes := make([]rune, 0, len(bytes))
	for _, b := range bytes {
		if ru := encoding.Lookup(b); ru != 0 {
			runes = append(runes, ru)
		} else {
			runes = append(runes, rune(b))
		}
	}
	text := string(runes)

	if ttf == nil || top.fontSize <= 0 {
		return float64(len(bytes)) * top.fontSize * 0.5
	}

	face := truetype.NewFace(ttf, &truetype.Options{
		Size: top.fontSize,
		DPI:  r.dpi,
	})
	defer face.Close()

	pixelAdvance := font.MeasureString(face, text)
	scale := r.deviceScale()
	advance := float64(pixelAdvance) / 64.0 / scale

	invisible := top.renderMode == 3 || top.renderMode == 7
	if !invisible {
		devOrigin := r.textOrigin(top)

		ctx := freetype.NewContext()
		ctx.SetDPI(r.dpi)
		ctx.SetFont(ttf)
		ctx.SetFontSize(top.fontSize)
		ctx.SetClip(r.surface.Bounds())
		ctx.SetDst(r.surface)
		ctx.SetSrc(image.NewUniform(top.fillColor))

		pt := freetype.Pt(int(devOrigin.x), int(devOrigin.y))
		ctx.DrawString(text, pt)
	}

	return advance
}

// textOrigin maps the text-space origin (0,0) through TextMatrix*CTM into
// device pixels, the same composition the PDF text-rendering model applies
// before glyph-space scaling.
func (r *Raster) textOrigin(top *backendState) point {
	ux, uy := top.textMatrix.Transform(0, 0)
	ux, uy = top.ctm.Transform(ux, uy)
	s := r.deviceScale()
	return point{ux * s, float64(r.height) - uy*s}
}
