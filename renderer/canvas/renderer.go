package canvasrenderer

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/image/math/f64"

	"github.com/ByLCY/panes/fonts"
	"github.com/ByLCY/panes/layout"
	"github.com/ByLCY/panes/metrics"
	"github.com/ByLCY/panes/renderer"
)

// ErrFontNotFound is returned when a glyph or measurement references a font that
// cannot be resolved. There is no silent fallback to another font.
var ErrFontNotFound = fonts.ErrNotFound

// ErrMissingGlyph is returned when a font has no glyph for a measured character.
var ErrMissingGlyph = metrics.ErrMissingGlyph

// Format selects the output encoding.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
)

// DefaultDPMM is the PNG resolution used when Options.DPMM is not set.
const DefaultDPMM = 8.0

// Meta is written into the PDF info dictionary.
type Meta struct {
	Title    string
	Subject  string
	Author   string
	Creator  string
	Keywords []string
}

// Options configures the canvas renderer.
type Options struct {
	Fonts  *fonts.Library // nil uses a library that only knows the embedded fonts
	Format Format         // defaults to PDF
	DPMM   float64        // dots per millimetre for raster output
	Meta   Meta
}

// Renderer draws scenes via github.com/tdewolff/canvas and measures text with the same
// font faces, so layout and output agree on every advance width.
type Renderer struct {
	fonts  *fonts.Library
	format Format
	dpmm   float64
	meta   Meta

	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily
	faces    map[faceKey]*canvas.FontFace
}

type faceKey struct {
	font string
	size float64
	col  layout.Color
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Metrics    = (*Renderer)(nil)
)

// NewRenderer creates a canvas-based renderer.
func NewRenderer(opts Options) *Renderer {
	lib := opts.Fonts
	if lib == nil {
		lib = fonts.NewLibrary("")
	}
	format := opts.Format
	if format == "" {
		format = FormatPDF
	}
	dpmm := opts.DPMM
	if dpmm <= 0 {
		dpmm = DefaultDPMM
	}
	return &Renderer{
		fonts:    lib,
		format:   format,
		dpmm:     dpmm,
		meta:     opts.Meta,
		families: map[string]*canvas.FontFamily{},
		faces:    map[faceKey]*canvas.FontFace{},
	}
}

// ParseFormat maps a file extension or format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "pdf":
		return FormatPDF, nil
	case "png":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("不支持的输出格式 %q", s)
	}
}

// AdvanceWidth implements layout.Metrics. size is in points, the result in millimetres.
// Widths are the sum of hmtx advances plus kerning, in the face's mm-per-em scale.
func (r *Renderer) AdvanceWidth(font string, size float64, s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	face, err := r.faceLocked(font, size, layout.Black)
	if err != nil {
		return 0, err
	}

	sfnt := face.Font.SFNT
	var units int64
	var prev uint16
	for i, ch := range s {
		id := sfnt.GlyphIndex(ch)
		if id == 0 {
			return 0, fmt.Errorf("%w: %q (font %q)", ErrMissingGlyph, ch, font)
		}
		if i > 0 {
			units += int64(sfnt.Kerning(prev, id))
		}
		units += int64(sfnt.GlyphAdvance(id))
		prev = id
	}
	return face.MmPerEm * float64(units), nil
}

// LineHeight implements layout.Metrics.
func (r *Renderer) LineHeight(font string, size float64) (float64, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	face, err := r.faceLocked(font, size, layout.Black)
	if err != nil {
		return 0, err
	}
	return face.Metrics().LineHeight, nil
}

// Render encodes the scene in the configured format. The page is the bounding box of the
// transformed root rectangle, so translated or scaled scenes are never clipped.
func (r *Renderer) Render(scene *layout.Scene) ([]byte, error) {
	if scene == nil {
		return nil, errors.New("渲染场景为空")
	}
	bounds := scene.Bounds()
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return nil, fmt.Errorf("场景尺寸无效: %gx%g", bounds.Width, bounds.Height)
	}

	c := canvas.New(bounds.Width, bounds.Height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	page := &pageCanvas{r: r, ctx: ctx, origin: layout.Translate(-bounds.X, -bounds.Y)}
	for _, box := range scene.Boxes {
		if err := page.FillRect(box.Rect, box.Color, scene.Transform); err != nil {
			return nil, err
		}
	}
	for _, g := range scene.Glyphs {
		if err := page.DrawGlyph(g, scene.Transform); err != nil {
			return nil, err
		}
	}
	layout.Logger().Debug("canvas render",
		"format", string(r.format), "width", bounds.Width, "height", bounds.Height,
		"boxes", len(scene.Boxes), "glyphs", len(scene.Glyphs))

	var buf bytes.Buffer
	switch r.format {
	case FormatPNG:
		img := rasterizer.Draw(c, canvas.DPMM(r.dpmm), canvas.DefaultColorSpace)
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("写入 PNG 失败: %w", err)
		}
	case FormatPDF:
		writer := pdf.New(&buf, bounds.Width, bounds.Height, nil)
		r.applyMeta(writer)
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 PDF 失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("不支持的输出格式 %q", r.format)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF) {
	keywords := strings.Join(r.meta.Keywords, ", ")
	writer.SetInfo(r.meta.Title, r.meta.Subject, keywords, r.meta.Author, r.meta.Creator)
}

// pageCanvas adapts a canvas.Context to layout.Canvas. origin moves the scene bounds to
// the page origin after the scene transform has been applied.
type pageCanvas struct {
	r      *Renderer
	ctx    *canvas.Context
	origin f64.Aff3
}

var _ layout.Canvas = (*pageCanvas)(nil)

func (p *pageCanvas) FillRect(rect layout.Rect, c layout.Color, t f64.Aff3) error {
	corners := layout.ApplyRect(layout.Compose(p.origin, t), rect)
	path := &canvas.Path{}
	path.MoveTo(corners[0].X, corners[0].Y)
	for _, pt := range corners[1:] {
		path.LineTo(pt.X, pt.Y)
	}
	path.Close()

	p.ctx.SetFillColor(colorFromLayout(c))
	p.ctx.SetStrokeColor(canvas.Transparent)
	p.ctx.DrawPath(0, 0, path)
	return nil
}

// DrawGlyph places the glyph's top-left corner at the transformed position. The font size
// follows the transform's linear scale; glyph outlines are not rotated or sheared.
func (p *pageCanvas) DrawGlyph(g layout.Glyph, t f64.Aff3) error {
	full := layout.Compose(p.origin, t)
	size := g.Size * layout.ScaleFactor(full)
	if size <= 0 || g.Char == "" {
		return nil
	}
	p.r.fontMu.Lock()
	face, err := p.r.faceLocked(g.Font, size, g.Color)
	p.r.fontMu.Unlock()
	if err != nil {
		return err
	}
	pos := layout.Apply(full, g.Pos)
	baseline := pos.Y + face.Metrics().Ascent
	p.ctx.DrawText(pos.X, baseline, canvas.NewTextLine(face, g.Char, canvas.Left))
	return nil
}

func (r *Renderer) faceLocked(font string, size float64, col layout.Color) (*canvas.FontFace, error) {
	key := faceKey{font: font, size: size, col: col}
	if face, ok := r.faces[key]; ok {
		return face, nil
	}
	family, err := r.familyLocked(font)
	if err != nil {
		return nil, err
	}
	face := family.Face(size, colorFromLayout(col), canvas.FontRegular, canvas.FontNormal)
	r.faces[key] = face
	return face, nil
}

func (r *Renderer) familyLocked(font string) (*canvas.FontFamily, error) {
	if family, ok := r.families[font]; ok {
		return family, nil
	}
	data, err := r.fonts.Bytes(font)
	if err != nil {
		return nil, err
	}
	name := font
	if name == "" {
		name = fonts.Default
	}
	family := canvas.NewFontFamily(name)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %q 失败: %w", font, err)
	}
	r.families[font] = family
	layout.Logger().Debug("canvas font loaded", "font", name)
	return family, nil
}

func colorFromLayout(c layout.Color) color.Color {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
