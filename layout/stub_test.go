package layout

import (
	"errors"
	"unicode/utf8"
)

// stubMetrics 是测试用的等宽度量：每个字符宽 size/2，行高等于 size。
type stubMetrics struct{}

func (stubMetrics) AdvanceWidth(_ string, size float64, s string) (float64, error) {
	return float64(utf8.RuneCountInString(s)) * size / 2, nil
}

func (stubMetrics) LineHeight(_ string, size float64) (float64, error) {
	return size, nil
}

var errGlyph = errors.New("glyph not found")

// failingMetrics 在遇到 bad 字符时返回 errGlyph。
type failingMetrics struct {
	stubMetrics
	bad string
}

func (f failingMetrics) AdvanceWidth(font string, size float64, s string) (float64, error) {
	for _, r := range s {
		if string(r) == f.bad {
			return 0, errGlyph
		}
	}
	return f.stubMetrics.AdvanceWidth(font, size, s)
}

func eq(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}

// plain 把字符串转成无缩进的行。
func plain(texts ...string) []Line {
	lines := make([]Line, len(texts))
	for i, text := range texts {
		lines[i] = Line{Text: text}
	}
	return lines
}
