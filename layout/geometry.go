package layout

import (
	"math"

	"golang.org/x/image/math/f64"
)

// 该文件定义布局所用的基本几何类型：矩形、点、尺寸、方向与仿射变换。
// 坐标系原点在左上角，y 轴向下，单位为毫米（mm）。

// Point 表示一个二维坐标。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size 表示宽高。
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect 以左上角与宽高描述矩形。
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Size 返回矩形的宽高。
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Right 返回右边界 x。
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom 返回下边界 y。
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Empty 报告矩形面积是否为零（含负尺寸）。
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// WithSize 保持左上角不变替换宽高。
func (r Rect) WithSize(s Size) Rect {
	r.Width, r.Height = s.Width, s.Height
	return r
}

// Inset 在四边各收缩 margin。
// 当 2*margin 超过某一维时，该维收缩为 0，原点停在外矩形内部，不报错。
func (r Rect) Inset(margin float64) Rect {
	if margin < 0 {
		margin = 0
	}
	return Rect{
		X:      r.X + insetOffset(r.Width, margin),
		Y:      r.Y + insetOffset(r.Height, margin),
		Width:  math.Max(r.Width-2*margin, 0),
		Height: math.Max(r.Height-2*margin, 0),
	}
}

func insetOffset(extent, margin float64) float64 {
	if extent <= 0 {
		return 0
	}
	return math.Min(margin, extent/2)
}

// Orientation 决定子 Pane 的排列轴向。
type Orientation int

const (
	// Horizontal 子 Pane 从左到右并排（零值）。
	Horizontal Orientation = iota
	// Vertical 子 Pane 从上到下堆叠。
	Vertical
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "unknown"
	}
}

// MarshalText 让调试 JSON 输出可读的方向名。
func (o Orientation) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Split 沿主轴按权重切分 inner，返回与 weights 等长的矩形序列。
// 段边界为 start + extent*cum/sum，最后一段的终点严格等于 inner 的边界（吸收余数），
// 因此各段之间既无缝隙也无重叠。非正权重按 1 处理。
func (o Orientation) Split(inner Rect, weights []float64) []Rect {
	if len(weights) == 0 {
		return nil
	}
	sum := 0.0
	for _, w := range weights {
		sum += normalizeWeight(w)
	}

	start, extent := inner.X, inner.Width
	if o == Vertical {
		start, extent = inner.Y, inner.Height
	}
	end := start + extent

	out := make([]Rect, len(weights))
	cum := 0.0
	from := start
	for i, w := range weights {
		cum += normalizeWeight(w)
		to := start + extent*cum/sum
		if i == len(weights)-1 {
			to = end
		}
		seg := inner
		if o == Vertical {
			seg.Y, seg.Height = from, to-from
		} else {
			seg.X, seg.Width = from, to-from
		}
		out[i] = seg
		from = to
	}
	return out
}

func normalizeWeight(w float64) float64 {
	if w <= 0 || math.IsNaN(w) {
		return 1
	}
	return w
}

// Color 采用 0-255 的 RGBA 数值。
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// 常用颜色。
var (
	Red         = Color{R: 255, A: 255}
	Orange      = Color{R: 255, G: 128, A: 255}
	Yellow      = Color{R: 255, G: 255, A: 255}
	Green       = Color{G: 255, A: 255}
	Cyan        = Color{G: 255, B: 255, A: 255}
	Blue        = Color{B: 255, A: 255}
	Purple      = Color{R: 128, B: 128, A: 255}
	Magenta     = Color{R: 255, B: 255, A: 255}
	Black       = Color{A: 255}
	Gray        = Color{R: 128, G: 128, B: 128, A: 255}
	White       = Color{R: 255, G: 255, B: 255, A: 255}
	Transparent = Color{}
)

// Identity 返回单位变换。
func Identity() f64.Aff3 { return f64.Aff3{1, 0, 0, 0, 1, 0} }

// Translate 返回平移变换。
func Translate(tx, ty float64) f64.Aff3 { return f64.Aff3{1, 0, tx, 0, 1, ty} }

// Scale 返回缩放变换。
func Scale(sx, sy float64) f64.Aff3 { return f64.Aff3{sx, 0, 0, 0, sy, 0} }

// Compose 返回先应用 inner 再应用 outer 的变换。
func Compose(outer, inner f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		outer[0]*inner[0] + outer[1]*inner[3],
		outer[0]*inner[1] + outer[1]*inner[4],
		outer[0]*inner[2] + outer[1]*inner[5] + outer[2],
		outer[3]*inner[0] + outer[4]*inner[3],
		outer[3]*inner[1] + outer[4]*inner[4],
		outer[3]*inner[2] + outer[4]*inner[5] + outer[5],
	}
}

// Apply 对点应用变换。
func Apply(t f64.Aff3, p Point) Point {
	return Point{
		X: t[0]*p.X + t[1]*p.Y + t[2],
		Y: t[3]*p.X + t[4]*p.Y + t[5],
	}
}

// ApplyRect 返回矩形四角（左上、右上、右下、左下）变换后的位置。
func ApplyRect(t f64.Aff3, r Rect) [4]Point {
	return [4]Point{
		Apply(t, Point{X: r.X, Y: r.Y}),
		Apply(t, Point{X: r.Right(), Y: r.Y}),
		Apply(t, Point{X: r.Right(), Y: r.Bottom()}),
		Apply(t, Point{X: r.X, Y: r.Bottom()}),
	}
}

// ScaleFactor 返回变换的平均线性缩放（面积缩放的平方根），用于换算字号。
func ScaleFactor(t f64.Aff3) float64 {
	return math.Sqrt(math.Abs(t[0]*t[4] - t[1]*t[3]))
}
