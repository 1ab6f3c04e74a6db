package layout

import "slices"

// Contents 是 Pane 内容的和类型：Empty、Text 或 Children 三选一。
// 只有本包内的类型实现该接口，使用处需穷举这三种情况。
type Contents interface {
	isContents()
}

// Empty 表示没有内容。
type Empty struct{}

// Text 表示一段带格式的文本。
type Text struct {
	Value  string     `json:"value"`
	Format TextFormat `json:"format"`
}

// Children 表示有序的子 Pane 列表。
type Children []Pane

func (Empty) isContents()    {}
func (Text) isContents()     {}
func (Children) isContents() {}

// Pane 是布局树中的一个矩形区域。
//
// 零值即默认 Pane：零矩形、零边距、无背景色、水平方向、无内容。
// 所有 With* 方法都返回替换了单个字段的新值，父节点独占其子节点。
type Pane struct {
	rect        Rect
	margin      float64
	color       *Color
	orientation Orientation
	contents    Contents
	weight      float64
	name        string
}

// New 返回默认 Pane。
func New() Pane { return Pane{} }

// Rect 返回 Pane 的外矩形。
func (p Pane) Rect() Rect { return p.rect }

// Inner 返回扣除边距后的内矩形。
func (p Pane) Inner() Rect { return p.rect.Inset(p.margin) }

// Margin 返回四边统一的边距。
func (p Pane) Margin() float64 { return p.margin }

// Color 返回背景色，未设置时 ok 为 false。
func (p Pane) Color() (Color, bool) {
	if p.color == nil {
		return Color{}, false
	}
	return *p.color, true
}

// Orientation 返回子 Pane 的排列方向。
func (p Pane) Orientation() Orientation { return p.orientation }

// Contents 返回内容，未设置时为 Empty{}。
func (p Pane) Contents() Contents {
	if p.contents == nil {
		return Empty{}
	}
	return p.contents
}

// Weight 返回在父节点中所占的相对份额，默认 1。
func (p Pane) Weight() float64 { return normalizeWeight(p.weight) }

// Name 返回 Pane 的名称，可用于在父节点中查找。
func (p Pane) Name() string { return p.name }

// Children 返回子 Pane 的副本；非容器 Pane 返回 nil。
func (p Pane) Children() []Pane {
	kids, ok := p.contents.(Children)
	if !ok {
		return nil
	}
	return slices.Clone(kids)
}

// Child 按下标返回子 Pane。
func (p Pane) Child(i int) (Pane, bool) {
	kids, ok := p.contents.(Children)
	if !ok || i < 0 || i >= len(kids) {
		return Pane{}, false
	}
	return kids[i], true
}

// Named 按名称返回第一个匹配的直接子 Pane。
func (p Pane) Named(name string) (Pane, bool) {
	i := p.indexOf(name)
	if i < 0 {
		return Pane{}, false
	}
	return p.Child(i)
}

func (p Pane) indexOf(name string) int {
	kids, ok := p.contents.(Children)
	if !ok || name == "" {
		return -1
	}
	for i, kid := range kids {
		if kid.name == name {
			return i
		}
	}
	return -1
}

func (p Pane) WithRect(r Rect) Pane { p.rect = r; return p }

// WithSize 保持左上角不变替换尺寸。
func (p Pane) WithSize(width, height float64) Pane {
	p.rect = p.rect.WithSize(Size{Width: width, Height: height})
	return p
}

// WithMargin 设置边距，负值按 0 处理。
func (p Pane) WithMargin(margin float64) Pane {
	if margin < 0 {
		margin = 0
	}
	p.margin = margin
	return p
}

func (p Pane) WithColor(c Color) Pane { p.color = &c; return p }
func (p Pane) WithoutColor() Pane     { p.color = nil; return p }

func (p Pane) WithOrientation(o Orientation) Pane { p.orientation = o; return p }
func (p Pane) WithWeight(weight float64) Pane     { p.weight = weight; return p }
func (p Pane) WithName(name string) Pane          { p.name = name; return p }

// WithText 以文本替换当前内容（包括子 Pane）。
func (p Pane) WithText(value string, format TextFormat) Pane {
	p.contents = Text{Value: value, Format: format}
	return p
}

// WithChildren 以子 Pane 列表替换当前内容（包括文本）。传入空列表是合法的。
func (p Pane) WithChildren(children ...Pane) Pane {
	kids := make(Children, len(children))
	copy(kids, children)
	p.contents = kids
	return p
}

// WithContents 直接替换内容。
func (p Pane) WithContents(c Contents) Pane {
	if kids, ok := c.(Children); ok {
		c = slices.Clone(kids)
	}
	p.contents = c
	return p
}

// WithNoContents 清空内容。
func (p Pane) WithNoContents() Pane { p.contents = Empty{}; return p }

// MapChild 返回第 i 个子 Pane 被 fn 替换后的新 Pane；下标越界时原样返回。
func (p Pane) MapChild(i int, fn func(Pane) Pane) Pane {
	kids, ok := p.contents.(Children)
	if !ok || i < 0 || i >= len(kids) {
		return p
	}
	next := slices.Clone(kids)
	next[i] = fn(next[i])
	p.contents = next
	return p
}

// MapNamed 与 MapChild 相同，但按名称查找子 Pane。
func (p Pane) MapNamed(name string, fn func(Pane) Pane) Pane {
	return p.MapChild(p.indexOf(name), fn)
}

func (p Pane) childWeights() []float64 {
	kids, _ := p.contents.(Children)
	weights := make([]float64, len(kids))
	for i, kid := range kids {
		weights[i] = kid.Weight()
	}
	return weights
}
