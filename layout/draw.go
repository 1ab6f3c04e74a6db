package layout

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Glyph 是交给渲染方的单个字符绘制指令。
type Glyph struct {
	Char  string  `json:"char"`
	Pos   Point   `json:"pos"`
	Line  int     `json:"line"`
	Font  string  `json:"font,omitempty"`
	Size  float64 `json:"size"`
	Color Color   `json:"color"`
}

// Canvas 是外部渲染方：负责把背景矩形与字形合成到目标表面。
// t 为调用方提供的统一坐标变换，渲染方需将其应用到所有位置与矩形上。
type Canvas interface {
	FillRect(r Rect, c Color, t f64.Aff3) error
	DrawGlyph(g Glyph, t f64.Aff3) error
}

// Draw 以先序遍历把已 Resolve 的树交给 dst：先背景，再文本，最后子 Pane。
// 度量或渲染方返回的错误原样返回。
func Draw(p Pane, m Metrics, t f64.Aff3, dst Canvas) error {
	type frame struct{ node Pane }
	stack := []frame{{node: p}}
	for len(stack) > 0 {
		node := stack[len(stack)-1].node
		stack = stack[:len(stack)-1]

		if c, ok := node.Color(); ok {
			if err := dst.FillRect(node.rect, c, t); err != nil {
				return err
			}
		}
		switch c := node.Contents().(type) {
		case Text:
			chars, err := node.Chars(m)
			if err != nil {
				return err
			}
			for _, ch := range chars {
				g := Glyph{
					Char:  ch.Char,
					Pos:   ch.Pos,
					Line:  ch.Line,
					Font:  c.Format.Font,
					Size:  c.Format.Size,
					Color: c.Format.Color,
				}
				if err := dst.DrawGlyph(g, t); err != nil {
					return err
				}
			}
		case Children:
			for i := len(c) - 1; i >= 0; i-- {
				stack = append(stack, frame{node: c[i]})
			}
		case Empty:
		}
	}
	return nil
}

// Box 是一个带背景色的矩形。
type Box struct {
	Rect  Rect  `json:"rect"`
	Color Color `json:"color"`
}

// Scene 记录 Draw 产生的全部绘制指令，供渲染器与调试 JSON 使用。
// Boxes 与 Glyphs 保存未变换的坐标，Transform 单独保存。
type Scene struct {
	Root      Rect     `json:"root"`
	Transform f64.Aff3 `json:"transform"`
	Boxes     []Box    `json:"boxes"`
	Glyphs    []Glyph  `json:"glyphs"`
}

var _ Canvas = (*Scene)(nil)

// Record 将树绘制到一个新的 Scene 中。
func Record(p Pane, m Metrics, t f64.Aff3) (*Scene, error) {
	s := &Scene{Root: p.rect, Transform: t}
	if err := Draw(p, m, t, s); err != nil {
		return nil, err
	}
	Logger().Debug("scene recorded", "boxes", len(s.Boxes), "glyphs", len(s.Glyphs))
	return s, nil
}

// FillRect 实现 Canvas。
func (s *Scene) FillRect(r Rect, c Color, _ f64.Aff3) error {
	s.Boxes = append(s.Boxes, Box{Rect: r, Color: c})
	return nil
}

// DrawGlyph 实现 Canvas。
func (s *Scene) DrawGlyph(g Glyph, _ f64.Aff3) error {
	s.Glyphs = append(s.Glyphs, g)
	return nil
}

// Bounds 返回根矩形经 Transform 变换后的轴对齐包围盒。
func (s *Scene) Bounds() Rect {
	corners := ApplyRect(s.Transform, s.Root)
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		minX, maxX = math.Min(minX, c.X), math.Max(maxX, c.X)
		minY, maxY = math.Min(minY, c.Y), math.Max(maxY, c.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
