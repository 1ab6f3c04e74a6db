package layout

import "slices"

// Resolve 将 outer 赋给 p 并自顶向下为整棵树分配矩形，返回新的树，p 本身不变。
//
// 容器节点的内矩形沿方向轴按子节点权重切分，子矩形恰好铺满内矩形；
// Text 与 Empty 节点不再细分。遍历使用显式栈，深树不会耗尽调用栈。
func Resolve(p Pane, outer Rect) Pane {
	root := p
	type frame struct {
		node *Pane
		rect Rect
	}
	stack := []frame{{node: &root, rect: outer}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := top.node
		node.rect = top.rect
		switch c := node.Contents().(type) {
		case Children:
			if len(c) == 0 {
				continue
			}
			kids := slices.Clone(c)
			node.contents = kids
			segments := node.orientation.Split(node.Inner(), node.childWeights())
			for i := range kids {
				stack = append(stack, frame{node: &kids[i], rect: segments[i]})
			}
		case Text, Empty:
		}
	}
	return root
}

// Walk 以先序遍历访问整棵树，fn 返回 false 时不再深入该节点的子树。
// depth 从 0 开始。
func Walk(p Pane, fn func(p Pane, depth int) bool) {
	type frame struct {
		node  Pane
		depth int
	}
	stack := []frame{{node: p}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(top.node, top.depth) {
			continue
		}
		kids, ok := top.node.contents.(Children)
		if !ok {
			continue
		}
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: kids[i], depth: top.depth + 1})
		}
	}
}
