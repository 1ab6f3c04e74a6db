package dsl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ByLCY/panes/binding"
	"github.com/ByLCY/panes/layout"
)

// ErrContents 表示同一个 pane 中同时出现了文本与子 pane。
var ErrContents = errors.New("pane 不能同时包含文本与子 pane")

// ErrNestedSize 表示在非根 pane 上使用了 size，子 pane 的矩形由父节点切分决定。
var ErrNestedSize = errors.New("size 只能用于根 pane")

// Meta 是 meta 段中的文档信息。
type Meta struct {
	Title    string
	Subject  string
	Author   string
	Creator  string
	Keywords []string
}

// Result 是由文档构建出的布局树及其附属资源。
type Result struct {
	Name    string
	Version string
	Meta    Meta
	Fonts   map[string]string // 字体名 -> 来源
	Root    layout.Pane
}

// BuildOptions 提供构建时的数据与默认文本格式。
type BuildOptions struct {
	Data []byte  // ${path} 插值使用的 JSON 数据
	Font string  // 未指定 font 时的字体名
	Size float64 // 未指定 size 时的字号（pt）
}

// Build 把语法树转换为 layout.Pane 树。文档必须恰好包含一个根 pane。
func Build(doc *Document, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, errors.New("文档为空")
	}
	if opts.Size <= 0 {
		opts.Size = 12
	}
	res := &Result{Name: doc.Name, Version: doc.Version, Fonts: map[string]string{}}
	b := builder{opts: opts}

	var root *PaneNode
	for _, sec := range doc.Sections {
		switch {
		case sec.Meta != nil:
			res.Meta = buildMeta(sec.Meta)
		case sec.Fonts != nil:
			for _, entry := range sec.Fonts.Entries {
				res.Fonts[entry.Name] = entry.Source
			}
		case sec.Pane != nil:
			if root != nil {
				return nil, fmt.Errorf("%s: 文档只能包含一个根 pane", sec.Pane.Pos)
			}
			root = sec.Pane
		}
	}
	if root == nil {
		return nil, errors.New("文档缺少根 pane")
	}

	pane, err := b.pane(root, true)
	if err != nil {
		return nil, err
	}
	res.Root = pane
	return res, nil
}

// BuildString 解析并构建 DSL 文本。
func BuildString(input string, opts BuildOptions) (*Result, error) {
	doc, err := ParseString(input)
	if err != nil {
		return nil, fmt.Errorf("解析 DSL 失败: %w", err)
	}
	return Build(doc, opts)
}

type builder struct {
	opts BuildOptions
}

func (b builder) pane(node *PaneNode, root bool) (layout.Pane, error) {
	p, err := applyPaneArgs(layout.New(), node.Args, root)
	if err != nil {
		return layout.Pane{}, err
	}

	var (
		kids     []layout.Pane
		text     []string
		format   = layout.NewTextFormat(b.opts.Size).WithFont(b.opts.Font)
		textNode bool
	)
	for _, item := range node.Items {
		switch {
		case item.Pane != nil:
			kid, err := b.pane(item.Pane, false)
			if err != nil {
				return layout.Pane{}, err
			}
			kids = append(kids, kid)
		case item.Text != nil:
			if textNode || len(text) > 0 {
				return layout.Pane{}, fmt.Errorf("%s: 一个 pane 只能包含一段文本", item.Pos)
			}
			format = applyTextArgs(format, item.Text.Args)
			text = append(text, item.Text.Lines...)
			textNode = true
		case item.Literal != nil:
			if textNode {
				return layout.Pane{}, fmt.Errorf("%s: 一个 pane 只能包含一段文本", item.Pos)
			}
			text = append(text, *item.Literal)
		}
	}

	hasText := textNode || len(text) > 0
	switch {
	case hasText && len(kids) > 0:
		return layout.Pane{}, fmt.Errorf("%s: %w", node.Pos, ErrContents)
	case hasText:
		value := binding.Interpolate(strings.Join(text, "\n"), b.opts.Data)
		if missing := binding.Missing(value, b.opts.Data); len(missing) > 0 && len(b.opts.Data) > 0 {
			layout.Logger().Warn("unresolved placeholders", "pos", node.Pos.String(), "paths", missing)
		}
		return p.WithText(value, format), nil
	case len(kids) > 0:
		return p.WithChildren(kids...), nil
	default:
		return p, nil
	}
}

func applyPaneArgs(p layout.Pane, args []*PaneArg, root bool) (layout.Pane, error) {
	for _, arg := range args {
		switch {
		case arg.Orientation == "horizontal":
			p = p.WithOrientation(layout.Horizontal)
		case arg.Orientation == "vertical":
			p = p.WithOrientation(layout.Vertical)
		case arg.Margin != nil:
			p = p.WithMargin(arg.Margin.ToMM())
		case arg.Color != nil:
			p = p.WithColor(arg.Color.Color)
		case arg.Weight != nil:
			p = p.WithWeight(*arg.Weight)
		case arg.Name != nil:
			p = p.WithName(*arg.Name)
		case arg.Size != nil:
			if !root {
				return p, fmt.Errorf("%s: %w", arg.Pos, ErrNestedSize)
			}
			p = p.WithSize(arg.Size.Width.ToMM(), arg.Size.Height.ToMM())
		}
	}
	return p, nil
}

func applyTextArgs(f layout.TextFormat, args []*TextArg) layout.TextFormat {
	for _, arg := range args {
		switch {
		case arg.Justify == "left":
			f = f.Left()
		case arg.Justify == "center":
			f = f.Centered()
		case arg.Justify == "right":
			f = f.Right()
		case arg.Align == "top":
			f = f.Top()
		case arg.Align == "middle":
			f = f.Middle()
		case arg.Align == "bottom":
			f = f.Bottom()
		case arg.Font != nil:
			f = f.WithFont(*arg.Font)
		case arg.Size != nil:
			f = f.WithSize(arg.Size.ToPT())
		case arg.Color != nil:
			f = f.WithColor(arg.Color.Color)
		case arg.Spacing != nil:
			f = f.WithLineSpacing(float64(*arg.Spacing))
		case arg.Indent != nil:
			f = f.WithFirstLineIndent(arg.Indent.ToMM())
		case arg.Hang != nil:
			f = f.WithLinesIndent(arg.Hang.ToMM())
		}
	}
	return f
}

var namedColors = map[string]layout.Color{
	"red":         layout.Red,
	"orange":      layout.Orange,
	"yellow":      layout.Yellow,
	"green":       layout.Green,
	"cyan":        layout.Cyan,
	"blue":        layout.Blue,
	"purple":      layout.Purple,
	"magenta":     layout.Magenta,
	"black":       layout.Black,
	"gray":        layout.Gray,
	"grey":        layout.Gray,
	"white":       layout.White,
	"transparent": layout.Transparent,
}

// ParseColor 解析 #rgb、#rrggbb、#rrggbbaa 或颜色名。
func ParseColor(s string) (layout.Color, error) {
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}
	alpha := uint8(255)
	hex := s
	if len(s) == 9 && strings.HasPrefix(s, "#") {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return layout.Color{}, fmt.Errorf("无法解析颜色 %q: %w", s, err)
		}
		alpha, hex = uint8(a), s[:7]
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return layout.Color{}, fmt.Errorf("无法解析颜色 %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return layout.Color{R: r, G: g, B: b, A: alpha}, nil
}

func buildMeta(sec *MetaSection) Meta {
	var meta Meta
	for _, entry := range sec.Entries {
		value := strings.Join(entry.Values, ", ")
		switch entry.Key {
		case "title":
			meta.Title = value
		case "subject":
			meta.Subject = value
		case "author":
			meta.Author = value
		case "creator":
			meta.Creator = value
		case "keywords":
			meta.Keywords = append(meta.Keywords, entry.Values...)
		default:
			layout.Logger().Debug("ignored meta key", "key", entry.Key)
		}
	}
	return meta
}
