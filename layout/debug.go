package layout

import (
	"encoding/json"
	"os"

	"golang.org/x/image/math/f64"
)

// SceneDump 是 Scene 的调试视图：除布局坐标外，还给出经 Transform 变换后的页面坐标，
// 便于对照渲染结果检查变换是否生效。
type SceneDump struct {
	Root      Rect        `json:"root"`
	Page      Rect        `json:"page"`
	Transform f64.Aff3    `json:"transform"`
	Boxes     []BoxDump   `json:"boxes"`
	Glyphs    []GlyphDump `json:"glyphs"`
}

// BoxDump 是背景矩形及其变换后的四角（左上、右上、右下、左下）。
type BoxDump struct {
	Box
	Corners [4]Point `json:"corners"`
}

// GlyphDump 是字形及其变换后的位置与字号。
type GlyphDump struct {
	Glyph
	PagePos  Point   `json:"pagePos"`
	PageSize float64 `json:"pageSize"`
}

// Dump 生成场景的调试视图。
func (s *Scene) Dump() SceneDump {
	d := SceneDump{
		Root:      s.Root,
		Page:      s.Bounds(),
		Transform: s.Transform,
		Boxes:     make([]BoxDump, len(s.Boxes)),
		Glyphs:    make([]GlyphDump, len(s.Glyphs)),
	}
	for i, b := range s.Boxes {
		d.Boxes[i] = BoxDump{Box: b, Corners: ApplyRect(s.Transform, b.Rect)}
	}
	scale := ScaleFactor(s.Transform)
	for i, g := range s.Glyphs {
		d.Glyphs[i] = GlyphDump{Glyph: g, PagePos: Apply(s.Transform, g.Pos), PageSize: g.Size * scale}
	}
	return d
}

// WriteDebugJSON 将场景的调试视图写为 JSON。scene 为 nil 时不写文件。
func WriteDebugJSON(scene *Scene, path string) error {
	if scene == nil {
		return nil
	}
	data, err := json.MarshalIndent(scene.Dump(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
