package layout

import (
	"math"
	"strings"

	"github.com/rivo/uniseg"
)

// Metrics 提供字形度量，是布局核心唯一依赖的外部能力。
// size 单位为 pt，返回值单位为 mm；同样的输入必须得到同样的结果。
// 实现返回的错误（缺字、字体加载失败等）会原样传递给调用方。
type Metrics interface {
	AdvanceWidth(font string, size float64, s string) (float64, error)
	LineHeight(font string, size float64) (float64, error)
}

// PositionedChar 是排好位置的单个字符（字素簇）。Pos 为该字符所在行的顶部左侧。
type PositionedChar struct {
	Char string `json:"char"`
	Pos  Point  `json:"pos"`
	Line int    `json:"line"`
}

// Line 是折行后的一行文本。Indent 为行首缩进（mm），计入行宽。
type Line struct {
	Text   string  `json:"text"`
	Indent float64 `json:"indent,omitempty"`
}

// LineTexts 返回各行的文本。
func LineTexts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = line.Text
	}
	return out
}

// widthTolerance 是判断行宽超限时的相对容差，吸收矩形切分带来的浮点舍入。
const widthTolerance = 1e-9

func exceeds(w, width float64) bool {
	return w > width+math.Abs(width)*widthTolerance
}

// Wrap 使用贪心算法将文本折成宽度不超过 width 的行。
//
// 文本先按 \n 分段，段内按空白切词，词之间以单个空格连接；
// 每段首行缩进 FirstLineIndent，折出的后续行缩进 LinesIndent，缩进计入行宽。
// 单词本身超宽时独占一行（不做断字）。空文本返回零行，纯空白段落返回一个空行。
func Wrap(text string, format TextFormat, width float64, m Metrics) ([]Line, error) {
	if text == "" {
		return nil, nil
	}
	paragraphs := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	lines := make([]Line, 0, len(paragraphs))
	for _, para := range paragraphs {
		words := strings.Fields(strings.TrimSuffix(para, "\r"))
		if len(words) == 0 {
			lines = append(lines, Line{})
			continue
		}
		indent := format.firstIndent()
		current := words[0]
		for _, word := range words[1:] {
			candidate := current + " " + word
			w, err := m.AdvanceWidth(format.Font, format.Size, candidate)
			if err != nil {
				return nil, err
			}
			if exceeds(indent+w, width) {
				lines = append(lines, Line{Text: current, Indent: indent})
				current, indent = word, format.linesIndent()
				continue
			}
			current = candidate
		}
		lines = append(lines, Line{Text: current, Indent: indent})
	}
	return lines, nil
}

// lineHeight 返回应用行距倍数后的行高。
func lineHeight(format TextFormat, m Metrics) (float64, error) {
	lh, err := m.LineHeight(format.Font, format.Size)
	if err != nil {
		return 0, err
	}
	return lh * format.spacing(), nil
}

// PositionChars 计算每个字符在 area 内的位置。
//
// 文本块高度为 行数*行高，按 Align 决定相对 area.Y 的偏移；每行连同缩进按 Justify
// 决定起始 x，行内字符按累计前进宽度从左到右排列。结果只取决于参数本身。
func PositionChars(lines []Line, format TextFormat, area Rect, m Metrics) ([]PositionedChar, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	lh, err := lineHeight(format, m)
	if err != nil {
		return nil, err
	}
	top := area.Y + format.Align.offset(area.Height, float64(len(lines))*lh)

	var out []PositionedChar
	for i, line := range lines {
		lineWidth, err := m.AdvanceWidth(format.Font, format.Size, line.Text)
		if err != nil {
			return nil, err
		}
		x := area.X + format.Justify.offset(area.Width, line.Indent+lineWidth) + line.Indent
		y := top + float64(i)*lh

		g := uniseg.NewGraphemes(line.Text)
		for g.Next() {
			char := g.Str()
			out = append(out, PositionedChar{Char: char, Pos: Point{X: x, Y: y}, Line: i})
			adv, err := m.AdvanceWidth(format.Font, format.Size, char)
			if err != nil {
				return nil, err
			}
			x += adv
		}
	}
	return out, nil
}

// MeasureText 返回文本在给定宽度下折行后的包围尺寸及折好的行。
func MeasureText(text string, format TextFormat, width float64, m Metrics) (Size, []Line, error) {
	lines, err := Wrap(text, format, width, m)
	if err != nil {
		return Size{}, nil, err
	}
	size, err := measureLines(lines, format, m)
	if err != nil {
		return Size{}, nil, err
	}
	return size, lines, nil
}

func measureLines(lines []Line, format TextFormat, m Metrics) (Size, error) {
	if len(lines) == 0 {
		return Size{}, nil
	}
	lh, err := lineHeight(format, m)
	if err != nil {
		return Size{}, err
	}
	widest := 0.0
	for _, line := range lines {
		w, err := m.AdvanceWidth(format.Font, format.Size, line.Text)
		if err != nil {
			return Size{}, err
		}
		widest = math.Max(widest, line.Indent+w)
	}
	return Size{Width: widest, Height: float64(len(lines)) * lh}, nil
}

// Chars 返回文本 Pane 在其当前内矩形中的字符位置；非文本 Pane 返回 nil。
func (p Pane) Chars(m Metrics) ([]PositionedChar, error) {
	switch c := p.Contents().(type) {
	case Text:
		inner := p.Inner()
		lines, err := Wrap(c.Value, c.Format, inner.Width, m)
		if err != nil {
			return nil, err
		}
		return PositionChars(lines, c.Format, inner, m)
	case Children, Empty:
		return nil, nil
	default:
		return nil, nil
	}
}
