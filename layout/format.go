package layout

// Justification 是文本在水平方向上的对齐方式。
type Justification int

const (
	JustifyLeft Justification = iota
	JustifyCenter
	JustifyRight
)

func (j Justification) String() string {
	switch j {
	case JustifyCenter:
		return "center"
	case JustifyRight:
		return "right"
	default:
		return "left"
	}
}

// MarshalText 让调试 JSON 输出可读的对齐名。
func (j Justification) MarshalText() ([]byte, error) { return []byte(j.String()), nil }

// offset 返回宽度为 width 的内容在 container 中的起始偏移。
func (j Justification) offset(container, width float64) float64 {
	switch j {
	case JustifyCenter:
		return (container - width) / 2
	case JustifyRight:
		return container - width
	default:
		return 0
	}
}

// VerticalAlign 是文本块在垂直方向上的对齐方式。
type VerticalAlign int

const (
	AlignTop VerticalAlign = iota
	AlignCenter
	AlignBottom
)

func (a VerticalAlign) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignBottom:
		return "bottom"
	default:
		return "top"
	}
}

// MarshalText 让调试 JSON 输出可读的对齐名。
func (a VerticalAlign) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a VerticalAlign) offset(container, height float64) float64 {
	switch a {
	case AlignCenter:
		return (container - height) / 2
	case AlignBottom:
		return container - height
	default:
		return 0
	}
}

// TextFormat 描述一段文本的排版参数。值类型，所有修改方法都返回新副本。
// Size 单位为 pt；Font 为字体资源名，由 Metrics 实现解释，空串表示默认字体。
type TextFormat struct {
	Font        string        `json:"font,omitempty"`
	Size        float64       `json:"size"`
	Justify     Justification `json:"justify"`
	Align       VerticalAlign `json:"align"`
	Color       Color         `json:"color"`
	LineSpacing float64       `json:"lineSpacing,omitempty"` // 行高倍数，0 视为 1

	FirstLineIndent float64 `json:"firstLineIndent,omitempty"` // 段首行缩进（mm）
	LinesIndent     float64 `json:"linesIndent,omitempty"`     // 段内后续行缩进（mm）
}

// NewTextFormat 返回左上对齐、黑色、单倍行距的格式。
func NewTextFormat(size float64) TextFormat {
	return TextFormat{Size: size, Color: Black, LineSpacing: 1}
}

func (f TextFormat) Left() TextFormat     { f.Justify = JustifyLeft; return f }
func (f TextFormat) Centered() TextFormat { f.Justify = JustifyCenter; return f }
func (f TextFormat) Right() TextFormat    { f.Justify = JustifyRight; return f }
func (f TextFormat) Top() TextFormat      { f.Align = AlignTop; return f }
func (f TextFormat) Middle() TextFormat   { f.Align = AlignCenter; return f }
func (f TextFormat) Bottom() TextFormat   { f.Align = AlignBottom; return f }

func (f TextFormat) WithJustify(j Justification) TextFormat { f.Justify = j; return f }
func (f TextFormat) WithAlign(a VerticalAlign) TextFormat   { f.Align = a; return f }
func (f TextFormat) WithFont(font string) TextFormat        { f.Font = font; return f }
func (f TextFormat) WithSize(size float64) TextFormat       { f.Size = size; return f }
func (f TextFormat) WithColor(c Color) TextFormat           { f.Color = c; return f }

// WithLineSpacing 设置行高倍数。
func (f TextFormat) WithLineSpacing(spacing float64) TextFormat {
	f.LineSpacing = spacing
	return f
}

// WithFirstLineIndent 设置每段首行的缩进（mm），负值按 0 处理。
func (f TextFormat) WithFirstLineIndent(indent float64) TextFormat {
	f.FirstLineIndent = indent
	return f
}

// WithLinesIndent 设置段内折出的后续行的缩进（mm），负值按 0 处理。
func (f TextFormat) WithLinesIndent(indent float64) TextFormat {
	f.LinesIndent = indent
	return f
}

func (f TextFormat) firstIndent() float64 { return max(f.FirstLineIndent, 0) }
func (f TextFormat) linesIndent() float64 { return max(f.LinesIndent, 0) }

func (f TextFormat) spacing() float64 {
	if f.LineSpacing <= 0 {
		return 1
	}
	return f.LineSpacing
}
