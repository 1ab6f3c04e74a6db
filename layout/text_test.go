package layout

import (
	"errors"
	"reflect"
	"testing"
)

func TestWrapShortTextIsSingleLine(t *testing.T) {
	format := NewTextFormat(10)
	text := "hello world"
	lines, err := Wrap(text, format, 1000, stubMetrics{})
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}
	if len(lines) != 1 || lines[0].Text != text {
		t.Fatalf("短文本应原样返回一行，实际 %q", LineTexts(lines))
	}
}

func TestWrapGreedy(t *testing.T) {
	format := NewTextFormat(10) // 每字符 5mm
	// "aaa bbb" = 7 字符 = 35mm，宽度 40 时可放下；再加 " ccc" 超出。
	lines, err := Wrap("aaa bbb ccc dd", format, 40, stubMetrics{})
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}
	want := []string{"aaa bbb", "ccc dd"}
	if got := LineTexts(lines); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestWrapExactWidthStaysOnLine(t *testing.T) {
	format := NewTextFormat(10)
	// "ab cd" = 25mm，恰好等于宽度时不换行。
	lines, err := Wrap("ab cd", format, 25, stubMetrics{})
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("恰好等宽时不应换行: %q", LineTexts(lines))
	}
}

func TestWrapOverlongWordAlone(t *testing.T) {
	format := NewTextFormat(10)
	lines, err := Wrap("a extraordinarily b", format, 20, stubMetrics{})
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}
	want := []string{"a", "extraordinarily", "b"}
	if got := LineTexts(lines); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestWrapEmptyAndParagraphs(t *testing.T) {
	format := NewTextFormat(10)
	lines, err := Wrap("", format, 100, stubMetrics{})
	if err != nil || len(lines) != 0 {
		t.Fatalf("空文本应返回零行: %q %v", LineTexts(lines), err)
	}

	lines, err = Wrap("foo\n\n  bar   baz\r\n", format, 100, stubMetrics{})
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}
	want := []string{"foo", "", "bar baz"}
	if got := LineTexts(lines); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q want %q", got, want)
	}

	lines, err = Wrap("   ", format, 100, stubMetrics{})
	if err != nil || len(lines) != 1 || lines[0].Text != "" {
		t.Fatalf("纯空白文本应返回一个空行: %q %v", LineTexts(lines), err)
	}
}

func TestPositionCharsCenterScenario(t *testing.T) {
	format := NewTextFormat(10).Centered()
	// 8 个字符 × 5mm = 40mm
	chars, err := PositionChars(plain("abcdefgh"), format, Rect{Width: 100, Height: 50}, stubMetrics{})
	if err != nil {
		t.Fatalf("PositionChars error: %v", err)
	}
	if len(chars) != 8 {
		t.Fatalf("字符数错误: %d", len(chars))
	}
	if chars[0].Pos.X != 30 {
		t.Fatalf("居中起点应为 30，实际 %g", chars[0].Pos.X)
	}
	for i, c := range chars {
		if c.Pos.X != 30+float64(i)*5 || c.Pos.Y != 0 || c.Line != 0 {
			t.Fatalf("char %d 位置错误: %+v", i, c)
		}
	}
}

func TestPositionCharsHorizontalJustify(t *testing.T) {
	area := Rect{X: 7, Y: 3, Width: 60, Height: 20}
	base := NewTextFormat(10)

	// 12 字符 = 60mm，恰好铺满时三种对齐起点相同。
	full := plain("abcdefghijkl")
	var starts []float64
	for _, f := range []TextFormat{base.Left(), base.Centered(), base.Right()} {
		chars, err := PositionChars(full, f, area, stubMetrics{})
		if err != nil {
			t.Fatalf("PositionChars error: %v", err)
		}
		starts = append(starts, chars[0].Pos.X)
	}
	if starts[0] != area.X || starts[1] != area.X || starts[2] != area.X {
		t.Fatalf("铺满时起点应一致: %v", starts)
	}

	chars, err := PositionChars(plain("abcd"), base.Right(), area, stubMetrics{})
	if err != nil {
		t.Fatalf("PositionChars error: %v", err)
	}
	if want := area.X + area.Width - 20; chars[0].Pos.X != want {
		t.Fatalf("右对齐起点应为 %g，实际 %g", want, chars[0].Pos.X)
	}
}

func TestPositionCharsVerticalAlign(t *testing.T) {
	area := Rect{Y: 10, Width: 100, Height: 100}
	lines := plain("ab", "cd") // 块高 20
	cases := map[VerticalAlign]float64{
		AlignTop:    10,
		AlignCenter: 50,
		AlignBottom: 90,
	}
	for align, wantY := range cases {
		chars, err := PositionChars(lines, NewTextFormat(10).WithAlign(align), area, stubMetrics{})
		if err != nil {
			t.Fatalf("PositionChars error: %v", err)
		}
		if chars[0].Pos.Y != wantY {
			t.Fatalf("%v: 首行 y=%g want %g", align, chars[0].Pos.Y, wantY)
		}
		if chars[2].Pos.Y != wantY+10 || chars[2].Line != 1 {
			t.Fatalf("%v: 第二行位置错误 %+v", align, chars[2])
		}
	}
}

func TestPositionCharsLineSpacing(t *testing.T) {
	format := NewTextFormat(10).WithLineSpacing(1.5)
	chars, err := PositionChars(plain("a", "b"), format, Rect{Width: 10, Height: 10}, stubMetrics{})
	if err != nil {
		t.Fatalf("PositionChars error: %v", err)
	}
	if chars[1].Pos.Y != 15 {
		t.Fatalf("行距 1.5 时第二行 y 应为 15，实际 %g", chars[1].Pos.Y)
	}
}

func TestPositionCharsGraphemes(t *testing.T) {
	// "e" + 组合重音符是一个字素簇。
	chars, err := PositionChars(plain("e\u0301x"), NewTextFormat(10), Rect{Width: 100, Height: 10}, stubMetrics{})
	if err != nil {
		t.Fatalf("PositionChars error: %v", err)
	}
	if len(chars) != 2 || chars[0].Char != "e\u0301" || chars[1].Pos.X != 10 {
		t.Fatalf("字素簇处理错误: %+v", chars)
	}
}

func TestPositionCharsDeterministic(t *testing.T) {
	lines := plain("one two", "three")
	format := NewTextFormat(12).Centered().Middle()
	area := Rect{X: 1, Y: 2, Width: 77, Height: 55}
	a, err := PositionChars(lines, format, area, stubMetrics{})
	if err != nil {
		t.Fatalf("PositionChars error: %v", err)
	}
	b, _ := PositionChars(lines, format, area, stubMetrics{})
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("相同输入结果不同")
	}
}

func TestMetricsErrorsPropagate(t *testing.T) {
	m := failingMetrics{bad: "☃"}
	format := NewTextFormat(10)
	if _, err := Wrap("snow ☃ man", format, 100, m); !errors.Is(err, errGlyph) {
		t.Fatalf("Wrap 应原样返回度量错误，实际 %v", err)
	}
	if _, err := PositionChars(plain("☃"), format, Rect{Width: 10, Height: 10}, m); !errors.Is(err, errGlyph) {
		t.Fatalf("PositionChars 应原样返回度量错误，实际 %v", err)
	}
	p := Resolve(New().WithText("a ☃", format), Rect{Width: 100, Height: 100})
	if _, err := p.Chars(m); !errors.Is(err, errGlyph) {
		t.Fatalf("Chars 应原样返回度量错误，实际 %v", err)
	}
}

func TestMeasureText(t *testing.T) {
	size, lines, err := MeasureText("aaa bbb ccc", NewTextFormat(10), 40, stubMetrics{})
	if err != nil {
		t.Fatalf("MeasureText error: %v", err)
	}
	if len(lines) != 2 || size != (Size{Width: 35, Height: 20}) {
		t.Fatalf("size=%+v lines=%q", size, LineTexts(lines))
	}
}

func TestChars(t *testing.T) {
	p := Resolve(New().WithMargin(5).WithText("hi there", NewTextFormat(10)), Rect{Width: 40, Height: 40})
	chars, err := p.Chars(stubMetrics{})
	if err != nil {
		t.Fatalf("Chars error: %v", err)
	}
	// 内宽 30：第一行 "hi"，第二行 "there"。
	if len(chars) != 7 || chars[0].Pos != (Point{X: 5, Y: 5}) || chars[2].Pos != (Point{X: 5, Y: 15}) {
		t.Fatalf("chars=%+v", chars)
	}
	none, err := New().WithChildren(New()).Chars(stubMetrics{})
	if err != nil || none != nil {
		t.Fatalf("容器 Pane 不应产生字符: %v %v", none, err)
	}
}

func TestWrapIndents(t *testing.T) {
	// 首行缩进 10mm，后续行缩进 5mm，每字符 5mm，宽度 40。
	format := NewTextFormat(10).WithFirstLineIndent(10).WithLinesIndent(5)
	lines, err := Wrap("aa bb cc dd\nee", format, 40, stubMetrics{})
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}
	// 首行："aa bb" 25mm + 10 = 35 可放下，"aa bb cc" 40+10 超出。
	// 次行："cc dd" 25 + 5 = 30。新段落重新使用首行缩进。
	want := []Line{{Text: "aa bb", Indent: 10}, {Text: "cc dd", Indent: 5}, {Text: "ee", Indent: 10}}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("got %+v want %+v", lines, want)
	}

	size, _, err := MeasureText("aa bb cc dd\nee", format, 40, stubMetrics{})
	if err != nil {
		t.Fatalf("MeasureText error: %v", err)
	}
	if size.Width != 35 {
		t.Fatalf("缩进应计入宽度，实际 %g", size.Width)
	}

	if got := NewTextFormat(10).WithFirstLineIndent(-3); got.firstIndent() != 0 {
		t.Fatalf("负缩进应按 0 处理")
	}
}

func TestPositionCharsIndents(t *testing.T) {
	area := Rect{X: 2, Width: 50, Height: 40}
	lines := []Line{{Text: "ab", Indent: 10}, {Text: "cd", Indent: 4}}

	chars, err := PositionChars(lines, NewTextFormat(10), area, stubMetrics{})
	if err != nil {
		t.Fatalf("PositionChars error: %v", err)
	}
	if chars[0].Pos.X != 12 || chars[1].Pos.X != 17 || chars[2].Pos.X != 6 {
		t.Fatalf("左对齐缩进错误: %+v", chars)
	}

	// 居中时缩进与文本一起居中：(50-(10+10))/2 + 10。
	chars, err = PositionChars(lines[:1], NewTextFormat(10).Centered(), area, stubMetrics{})
	if err != nil {
		t.Fatalf("PositionChars error: %v", err)
	}
	if chars[0].Pos.X != 2+15+10 {
		t.Fatalf("居中缩进错误: %+v", chars[0])
	}

	// 右对齐时行尾贴右边界，缩进不影响位置。
	chars, err = PositionChars(lines[:1], NewTextFormat(10).Right(), area, stubMetrics{})
	if err != nil {
		t.Fatalf("PositionChars error: %v", err)
	}
	if chars[1].Pos.X+5 != area.Right() {
		t.Fatalf("右对齐缩进错误: %+v", chars)
	}

	p := Resolve(New().WithText("ab cd", NewTextFormat(10).WithFirstLineIndent(10).WithLinesIndent(4)), Rect{Width: 30, Height: 30})
	got, err := p.Chars(stubMetrics{})
	if err != nil {
		t.Fatalf("Chars error: %v", err)
	}
	if got[0].Pos.X != 10 || got[2].Pos != (Point{X: 4, Y: 10}) {
		t.Fatalf("Chars 应应用缩进: %+v", got)
	}
}
