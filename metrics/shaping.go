package metrics

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"

	"github.com/ByLCY/panes/layout"
)

// Shaper 使用 go-text/typesetting 的 HarfBuzz 整形计算前进宽度，连字与字偶距都会计入。
//
// 解析后的 font.Font 只读，可跨 goroutine 共享；font.Face 与 HarfbuzzShaper 不是并发安全的，
// 因此每次调用新建 Face，整形器从池中获取。
type Shaper struct {
	src  FontSource
	lang language.Language

	mu    sync.RWMutex
	fonts map[string]*font.Font

	shapers sync.Pool
}

var _ layout.Metrics = (*Shaper)(nil)

// NewShaper 创建从 src 读取字体的整形度量实现。
func NewShaper(src FontSource) *Shaper {
	return &Shaper{
		src:   src,
		lang:  language.NewLanguage("en"),
		fonts: map[string]*font.Font{},
		shapers: sync.Pool{
			New: func() any { return &shaping.HarfbuzzShaper{} },
		},
	}
}

// AdvanceWidth 实现 layout.Metrics。字体中缺少的字符返回 ErrMissingGlyph。
func (s *Shaper) AdvanceWidth(name string, size float64, text string) (float64, error) {
	if text == "" {
		return 0, nil
	}
	f, err := s.font(name)
	if err != nil {
		return 0, err
	}
	face := font.NewFace(f)
	runes := []rune(text)
	for _, r := range runes {
		if _, ok := face.NominalGlyph(r); !ok {
			return 0, fmt.Errorf("%w: %q (字体 %q)", ErrMissingGlyph, r, name)
		}
	}

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      face,
		Size:      toFixed(size),
		Script:    language.LookupScript(runes[0]),
		Language:  s.lang,
	}
	hb := s.shapers.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(input)
	s.shapers.Put(hb)
	return fixedToMM(out.Advance), nil
}

// LineHeight 实现 layout.Metrics：ascender - descender + lineGap，按字号缩放。
func (s *Shaper) LineHeight(name string, size float64) (float64, error) {
	f, err := s.font(name)
	if err != nil {
		return 0, err
	}
	face := font.NewFace(f)
	ext, ok := face.FontHExtents()
	if !ok {
		return size * layout.PtToMm, nil
	}
	units := float64(ext.Ascender-ext.Descender+ext.LineGap) / float64(face.Upem())
	return units * size * layout.PtToMm, nil
}

func (s *Shaper) font(name string) (*font.Font, error) {
	s.mu.RLock()
	f, ok := s.fonts[name]
	s.mu.RUnlock()
	if ok {
		return f, nil
	}

	data, err := s.src.Bytes(name)
	if err != nil {
		return nil, err
	}
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解析字体 %q 失败: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.fonts[name]; ok {
		return cached, nil
	}
	s.fonts[name] = face.Font
	layout.Logger().Debug("shaping font parsed", "font", name)
	return face.Font, nil
}
