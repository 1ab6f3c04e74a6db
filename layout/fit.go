package layout

import (
	"math"
)

// FitOptions 控制 FitText 如何调整根矩形。
type FitOptions struct {
	// Shrink 为 true 时根矩形被设为内容所需的尺寸；否则只增不减。
	Shrink bool
}

// FitText 使文本内容恰好容纳在各自的 Pane 中，返回重新布局后的树。
//
// 自底向上计算每个节点的需求尺寸：文本节点为按配置字号折行后的包围盒加边距，
// 内矩形宽度不为正时不限宽折行；容器节点在主轴上取 max(需求_i*总权重/权重_i)，
// 交叉轴取子节点最大值，再加边距。根矩形随之增长（Shrink 时取需求值），
// 然后整棵树重新 Resolve，文本不会被裁剪。
func FitText(p Pane, m Metrics, opts FitOptions) (Pane, error) {
	root := Resolve(p, p.rect)
	need, err := demand(root, m)
	if err != nil {
		return Pane{}, err
	}

	rect := root.rect
	if opts.Shrink {
		rect.Width, rect.Height = need.Width, need.Height
	} else {
		rect.Width = math.Max(rect.Width, need.Width)
		rect.Height = math.Max(rect.Height, need.Height)
	}
	if rect != root.rect {
		Logger().Debug("fit text resized root",
			"from", root.rect.Size(), "to", rect.Size(), "shrink", opts.Shrink)
	}
	return Resolve(root, rect), nil
}

// demand 以显式栈做后序遍历，返回根节点的需求尺寸。
func demand(root Pane, m Metrics) (Size, error) {
	type entry struct {
		node   Pane
		parent int
	}
	// 按层序收集节点，逆序处理即可保证子节点先于父节点。
	order := []entry{{node: root, parent: -1}}
	for i := 0; i < len(order); i++ {
		if kids, ok := order[i].node.contents.(Children); ok {
			for _, kid := range kids {
				order = append(order, entry{node: kid, parent: i})
			}
		}
	}

	needs := make([]Size, len(order))
	childNeeds := make([][]Size, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		node := order[i].node
		var content Size
		switch c := node.Contents().(type) {
		case Text:
			width := node.Inner().Width
			if width <= 0 {
				width = math.Inf(1)
			}
			size, _, err := MeasureText(c.Value, c.Format, width, m)
			if err != nil {
				return Size{}, err
			}
			content = size
		case Children:
			// childNeeds 按逆序收集，这里翻回列表顺序。
			kids := childNeeds[i]
			for l, r := 0, len(kids)-1; l < r; l, r = l+1, r-1 {
				kids[l], kids[r] = kids[r], kids[l]
			}
			content = containerDemand(node, kids)
		case Empty:
		}
		needs[i] = Size{
			Width:  content.Width + 2*node.margin,
			Height: content.Height + 2*node.margin,
		}
		if parent := order[i].parent; parent >= 0 {
			childNeeds[parent] = append(childNeeds[parent], needs[i])
		}
	}
	return needs[0], nil
}

func containerDemand(node Pane, kids []Size) Size {
	if len(kids) == 0 {
		return Size{}
	}
	weights := node.childWeights()
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	var main, cross float64
	for i, need := range kids {
		along, across := need.Width, need.Height
		if node.orientation == Vertical {
			along, across = need.Height, need.Width
		}
		main = math.Max(main, along*sum/weights[i])
		cross = math.Max(cross, across)
	}
	if node.orientation == Vertical {
		return Size{Width: cross, Height: main}
	}
	return Size{Width: main, Height: cross}
}

// FontFitOptions 控制 FitFonts 的搜索范围。
type FontFitOptions struct {
	Min  float64 // 最小字号（pt），默认 1
	Max  float64 // 最大字号（pt），0 表示使用格式中配置的字号
	Step float64 // 结果向下取整的粒度，默认 0.5
}

// FitFonts 为每个文本 Pane 选出不超过上限、且折行后能完整放入内矩形的最大字号。
// 最小字号仍放不下时使用最小字号。p 需已 Resolve。
func FitFonts(p Pane, m Metrics, opts FontFitOptions) (Pane, error) {
	if opts.Min <= 0 {
		opts.Min = 1
	}
	if opts.Step <= 0 {
		opts.Step = 0.5
	}

	root := Resolve(p, p.rect)
	stack := []*Pane{&root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch c := node.Contents().(type) {
		case Text:
			size, err := fitFontSize(c, node.Inner(), m, opts)
			if err != nil {
				return Pane{}, err
			}
			if size != c.Format.Size {
				Logger().Debug("fit fonts", "pane", node.name, "from", c.Format.Size, "to", size)
			}
			c.Format = c.Format.WithSize(size)
			node.contents = c
		case Children:
			for i := range c {
				stack = append(stack, &c[i])
			}
		case Empty:
		}
	}
	return root, nil
}

func fitFontSize(t Text, area Rect, m Metrics, opts FontFitOptions) (float64, error) {
	hi := opts.Max
	if hi <= 0 {
		hi = t.Format.Size
	}
	lo := math.Min(opts.Min, hi)
	floor := lo

	fits := func(size float64) (bool, error) {
		got, _, err := MeasureText(t.Value, t.Format.WithSize(size), area.Width, m)
		if err != nil {
			return false, err
		}
		return !exceeds(got.Width, area.Width) && !exceeds(got.Height, area.Height), nil
	}

	ok, err := fits(hi)
	if err != nil || ok {
		return hi, err
	}
	for hi-lo > opts.Step/4 {
		mid := (lo + hi) / 2
		ok, err := fits(mid)
		if err != nil {
			return 0, err
		}
		if ok {
			lo = mid
		} else {
			hi = mid
		}
	}
	size := math.Max(math.Floor(lo/opts.Step)*opts.Step, floor)
	if next := size + opts.Step; next < hi {
		ok, err := fits(next)
		if err != nil {
			return 0, err
		}
		if ok {
			size = next
		}
	}
	return size, nil
}
