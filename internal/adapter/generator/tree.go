package generator

import (
	"strings"

	"github-readme-generator/internal/domain"
)

const (
	branchConnector = "├── "
	lastConnector   = "└── "
	branchPadding   = "│   "
	lastPadding     = "    "
	unavailableMark = " (unavailable)"
)

// RenderTree 把目录树画成文本，子节点按名称排序
// 用显式栈做深度优先，树再深也不会爆栈；每次调用独立，没有共享状态
func RenderTree(rootName string, root *domain.Node) string {
	if root == nil {
		return ""
	}

	type frame struct {
		node   *domain.Node
		names  []string
		next   int
		prefix string
	}

	var b strings.Builder
	b.WriteString(rootName)
	b.WriteString("/\n")

	stack := []*frame{{node: root, names: root.SortedNames()}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next >= len(top.names) {
			stack = stack[:len(stack)-1]
			continue
		}

		name := top.names[top.next]
		top.next++
		child := top.node.Children[name]
		last := top.next == len(top.names)

		connector, padding := branchConnector, branchPadding
		if last {
			connector, padding = lastConnector, lastPadding
		}

		b.WriteString(top.prefix)
		b.WriteString(connector)
		b.WriteString(nodeLabel(name, child))
		b.WriteByte('\n')

		if child.IsDir() && len(child.Children) > 0 {
			stack = append(stack, &frame{
				node:   child,
				names:  child.SortedNames(),
				prefix: top.prefix + padding,
			})
		}
	}
	return b.String()
}

func nodeLabel(name string, node *domain.Node) string {
	switch {
	case node == nil:
		return name
	case node.Kind == domain.NodeDir:
		return name + "/"
	case node.Kind == domain.NodeUnavailable:
		return name + unavailableMark
	}
	return name
}
