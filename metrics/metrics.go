// Package metrics 提供 layout.Metrics 的字体度量实现。
//
// SFNT 直接读取 OpenType 字形前进宽度与字偶距，Shaper 通过 HarfBuzz 整形得到前进宽度，
// Cache 为任意实现加一层记忆化。字号单位为 pt，返回值单位为 mm。
package metrics

import (
	"errors"

	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/panes/layout"
)

// ErrMissingGlyph 表示字体中没有文本所需的字形。
var ErrMissingGlyph = errors.New("missing glyph")

// FontSource 按字体名返回字体数据，fonts.Library 满足该接口。
type FontSource interface {
	Bytes(name string) ([]byte, error)
}

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(v * 64) }

// fixedToMM 把以 pt 为单位的 26.6 定点数换算为毫米。
func fixedToMM(v fixed.Int26_6) float64 { return float64(v) / 64 * layout.PtToMm }
