package layout

import (
	"errors"
	"testing"
)

func TestFitTextDerivesRootSizeFromContent(t *testing.T) {
	root := New().WithMargin(2).WithText("hello world", NewTextFormat(10))
	got, err := FitText(root, stubMetrics{}, FitOptions{})
	if err != nil {
		t.Fatalf("FitText error: %v", err)
	}
	// 不限宽折行：一行 11 字符 = 55mm，行高 10，加上两侧边距。
	if want := (Rect{Width: 59, Height: 14}); got.Rect() != want {
		t.Fatalf("root rect=%+v want %+v", got.Rect(), want)
	}
	assertTextFits(t, got)
}

func TestFitTextHorizontalContainer(t *testing.T) {
	root := New().WithChildren(
		New().WithText("aa", NewTextFormat(10)),
		New().WithText("aaaa", NewTextFormat(10)),
	)
	got, err := FitText(root, stubMetrics{}, FitOptions{})
	if err != nil {
		t.Fatalf("FitText error: %v", err)
	}
	// 等分时较宽的子节点决定主轴：20mm × 2。
	if want := (Rect{Width: 40, Height: 10}); got.Rect() != want {
		t.Fatalf("root rect=%+v want %+v", got.Rect(), want)
	}
	assertTextFits(t, got)
}

func TestFitTextWeightedVerticalContainer(t *testing.T) {
	root := New().WithOrientation(Vertical).WithChildren(
		New().WithWeight(1).WithText("a", NewTextFormat(10)),
		New().WithWeight(3).WithText("b", NewTextFormat(10)),
	)
	got, err := FitText(root, stubMetrics{}, FitOptions{})
	if err != nil {
		t.Fatalf("FitText error: %v", err)
	}
	// 权重 1 的子节点只分到 1/4 高度，需要 10mm，因此总高 40mm。
	if want := (Rect{Width: 5, Height: 40}); got.Rect() != want {
		t.Fatalf("root rect=%+v want %+v", got.Rect(), want)
	}
	assertTextFits(t, got)
}

func TestFitTextGrowsHeightForWrappedLines(t *testing.T) {
	root := New().WithText("aaa bbb ccc", NewTextFormat(10)).WithRect(Rect{X: 4, Y: 6, Width: 30, Height: 5})
	got, err := FitText(root, stubMetrics{}, FitOptions{})
	if err != nil {
		t.Fatalf("FitText error: %v", err)
	}
	if want := (Rect{X: 4, Y: 6, Width: 30, Height: 30}); got.Rect() != want {
		t.Fatalf("root rect=%+v want %+v", got.Rect(), want)
	}
	assertTextFits(t, got)
}

func TestFitTextNeverShrinksBelowText(t *testing.T) {
	root := New().WithMargin(1).WithText("aa", NewTextFormat(10)).WithRect(Rect{Width: 500, Height: 500})

	grown, err := FitText(root, stubMetrics{}, FitOptions{})
	if err != nil {
		t.Fatalf("FitText error: %v", err)
	}
	if grown.Rect() != root.Rect() {
		t.Fatalf("只增模式下不应缩小: %+v", grown.Rect())
	}

	shrunk, err := FitText(root, stubMetrics{}, FitOptions{Shrink: true})
	if err != nil {
		t.Fatalf("FitText error: %v", err)
	}
	if want := (Rect{Width: 12, Height: 12}); shrunk.Rect() != want {
		t.Fatalf("shrink rect=%+v want %+v", shrunk.Rect(), want)
	}
	assertTextFits(t, shrunk)
}

func TestFitTextNestedTree(t *testing.T) {
	root := New().WithMargin(3).WithOrientation(Vertical).WithChildren(
		New().WithMargin(1).WithText("title words here", NewTextFormat(14).Centered()),
		New().WithChildren(
			New().WithText("left column with several words", NewTextFormat(10)),
			New().WithWeight(2).WithMargin(2).WithText("right", NewTextFormat(12).Right().Bottom()),
			New(),
		),
		New().WithChildren(),
	).WithRect(Rect{Width: 80, Height: 20})

	got, err := FitText(root, stubMetrics{}, FitOptions{})
	if err != nil {
		t.Fatalf("FitText error: %v", err)
	}
	if got.Rect().Width < 80 || got.Rect().Height < 20 {
		t.Fatalf("根矩形不应缩小: %+v", got.Rect())
	}
	assertTextFits(t, got)
}

func TestFitTextPropagatesMetricsError(t *testing.T) {
	root := New().WithChildren(New().WithText("x ☃", NewTextFormat(10)))
	if _, err := FitText(root, failingMetrics{bad: "☃"}, FitOptions{}); !errors.Is(err, errGlyph) {
		t.Fatalf("应原样返回度量错误，实际 %v", err)
	}
}

func TestFitFontsChoosesLargestFittingSize(t *testing.T) {
	root := New().WithText("aaaa bbbb", NewTextFormat(20)).WithRect(Rect{Width: 50, Height: 10})
	got, err := FitFonts(root, stubMetrics{}, FontFitOptions{})
	if err != nil {
		t.Fatalf("FitFonts error: %v", err)
	}
	text := got.Contents().(Text)
	// 单行 9 字符 × s/2 ≤ 50 且行高 s ≤ 10，最大为 10。
	if text.Format.Size != 10 {
		t.Fatalf("字号应为 10，实际 %g", text.Format.Size)
	}
	assertTextFits(t, got)
}

func TestFitFontsKeepsConfiguredSizeWhenItFits(t *testing.T) {
	root := New().WithChildren(
		New().WithText("ok", NewTextFormat(8)),
	).WithRect(Rect{Width: 100, Height: 100})
	got, err := FitFonts(root, stubMetrics{}, FontFitOptions{})
	if err != nil {
		t.Fatalf("FitFonts error: %v", err)
	}
	kid, _ := got.Child(0)
	if size := kid.Contents().(Text).Format.Size; size != 8 {
		t.Fatalf("放得下时保持配置字号，实际 %g", size)
	}

	grown, err := FitFonts(root, stubMetrics{}, FontFitOptions{Max: 40})
	if err != nil {
		t.Fatalf("FitFonts error: %v", err)
	}
	kid, _ = grown.Child(0)
	if size := kid.Contents().(Text).Format.Size; size != 40 {
		t.Fatalf("指定 Max 时应放大到 40，实际 %g", size)
	}
}

func TestFitFontsFallsBackToMin(t *testing.T) {
	root := New().WithText("unfittable", NewTextFormat(12)).WithRect(Rect{Width: 1, Height: 1})
	got, err := FitFonts(root, stubMetrics{}, FontFitOptions{Min: 4})
	if err != nil {
		t.Fatalf("FitFonts error: %v", err)
	}
	if size := got.Contents().(Text).Format.Size; size != 4 {
		t.Fatalf("放不下时应使用最小字号，实际 %g", size)
	}
}

// assertTextFits 断言树中每个文本 Pane 折行后都不超出其内矩形。
func assertTextFits(t *testing.T, root Pane) {
	t.Helper()
	Walk(root, func(p Pane, _ int) bool {
		text, ok := p.Contents().(Text)
		if !ok {
			return true
		}
		inner := p.Inner()
		size, lines, err := MeasureText(text.Value, text.Format, inner.Width, stubMetrics{})
		if err != nil {
			t.Fatalf("MeasureText error: %v", err)
		}
		if size.Width > inner.Width+1e-9 || size.Height > inner.Height+1e-9 {
			t.Fatalf("文本 %q 溢出: size=%+v inner=%+v lines=%q", text.Value, size, inner, LineTexts(lines))
		}
		return true
	})
}

func TestFitTextSplitRoundingDoesNotWrap(t *testing.T) {
	for i := 1; i <= 400; i++ {
		size := float64(i) / 10
		format := NewTextFormat(size)
		root := New().WithChildren(
			New().WithText("a a", format),
			New().WithText("a a", format),
			New().WithText("a a", format),
		)
		got, err := FitText(root, stubMetrics{}, FitOptions{})
		if err != nil {
			t.Fatalf("FitText error: %v", err)
		}
		for j, kid := range got.Children() {
			lines, err := Wrap("a a", format, kid.Inner().Width, stubMetrics{})
			if err != nil {
				t.Fatalf("Wrap error: %v", err)
			}
			if len(lines) != 1 {
				t.Fatalf("size=%g child %d inner=%+v 折成了 %q", size, j, kid.Inner(), LineTexts(lines))
			}
		}
		assertTextFits(t, got)
	}
}

func TestWrapToleratesRoundingAtExactWidth(t *testing.T) {
	// 3*0.2/2 在浮点下比 0.3 大一个 ULP。
	lines, err := Wrap("a a", NewTextFormat(0.2), 0.3, stubMetrics{})
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("舍入误差不应导致换行: %q", LineTexts(lines))
	}
}
