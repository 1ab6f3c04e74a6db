package metrics

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/panes/layout"
)

// SFNT 使用 golang.org/x/image/font/sfnt 计算前进宽度：逐字符累加 hmtx 宽度并加上 kern 字偶距。
// 解析后的字体按名称缓存。可并发使用。
type SFNT struct {
	src FontSource

	mu    sync.RWMutex
	fonts map[string]*sfnt.Font

	buffers sync.Pool
}

var _ layout.Metrics = (*SFNT)(nil)

// NewSFNT 创建从 src 读取字体的度量实现。
func NewSFNT(src FontSource) *SFNT {
	return &SFNT{
		src:   src,
		fonts: map[string]*sfnt.Font{},
		buffers: sync.Pool{
			New: func() any { return &sfnt.Buffer{} },
		},
	}
}

// AdvanceWidth 实现 layout.Metrics。字体中缺少的字符返回 ErrMissingGlyph。
func (m *SFNT) AdvanceWidth(name string, size float64, s string) (float64, error) {
	f, err := m.font(name)
	if err != nil {
		return 0, err
	}
	buf := m.buffers.Get().(*sfnt.Buffer)
	defer m.buffers.Put(buf)

	ppem := toFixed(size)
	var (
		total fixed.Int26_6
		prev  sfnt.GlyphIndex
	)
	for i, r := range s {
		idx, err := f.GlyphIndex(buf, r)
		if err != nil {
			return 0, err
		}
		if idx == 0 {
			return 0, fmt.Errorf("%w: %q (字体 %q)", ErrMissingGlyph, r, name)
		}
		if i > 0 {
			kern, err := f.Kern(buf, prev, idx, ppem, font.HintingNone)
			switch {
			case err == nil:
				total += kern
			case !errors.Is(err, sfnt.ErrNotFound):
				return 0, err
			}
		}
		adv, err := f.GlyphAdvance(buf, idx, ppem, font.HintingNone)
		if err != nil {
			return 0, err
		}
		total += adv
		prev = idx
	}
	return fixedToMM(total), nil
}

// LineHeight 实现 layout.Metrics，取字体推荐的行高。
func (m *SFNT) LineHeight(name string, size float64) (float64, error) {
	f, err := m.font(name)
	if err != nil {
		return 0, err
	}
	buf := m.buffers.Get().(*sfnt.Buffer)
	defer m.buffers.Put(buf)

	met, err := f.Metrics(buf, toFixed(size), font.HintingNone)
	if err != nil {
		return 0, err
	}
	return fixedToMM(met.Height), nil
}

func (m *SFNT) font(name string) (*sfnt.Font, error) {
	m.mu.RLock()
	f, ok := m.fonts[name]
	m.mu.RUnlock()
	if ok {
		return f, nil
	}

	data, err := m.src.Bytes(name)
	if err != nil {
		return nil, err
	}
	f, err = opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %q 失败: %w", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if cached, ok := m.fonts[name]; ok {
		return cached, nil
	}
	m.fonts[name] = f
	layout.Logger().Debug("sfnt font parsed", "font", name, "glyphs", f.NumGlyphs())
	return f, nil
}
