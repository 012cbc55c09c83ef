package domain

import (
	"encoding/json"
	"sort"

	"gopkg.in/yaml.v3"
)

// NodeKind 目录树节点类型
type NodeKind string

const (
	NodeFile        NodeKind = "file"
	NodeDir         NodeKind = "dir"
	NodeUnavailable NodeKind = "unavailable"
)

// Node 是目录树的一个节点：文件叶子、目录或获取失败的子树标记。
// 树由顶层列表向下构建，没有环。
type Node struct {
	Kind     NodeKind
	Size     int
	Children map[string]*Node
	// Expanded 为 false 表示该目录只出现在扁平列表中，内容未展开
	Expanded bool
	Reason   string
}

func NewFileNode(size int) *Node {
	return &Node{Kind: NodeFile, Size: size}
}

// NewDirNode 创建已展开的目录节点
func NewDirNode(children map[string]*Node) *Node {
	if children == nil {
		children = map[string]*Node{}
	}
	return &Node{Kind: NodeDir, Children: children, Expanded: true}
}

// NewUnavailableNode 标记一棵无法获取的子树
func NewUnavailableNode(reason string) *Node {
	return &Node{Kind: NodeUnavailable, Reason: reason}
}

// FlatTree 把顶层列表转换成一层目录树，子目录不展开
func FlatTree(entries []Entry) *Node {
	children := make(map[string]*Node, len(entries))
	for _, entry := range entries {
		if entry.Kind == EntryDir {
			children[entry.Name] = &Node{Kind: NodeDir}
			continue
		}
		children[entry.Name] = NewFileNode(entry.Size)
	}
	return NewDirNode(children)
}

func (n *Node) IsDir() bool { return n != nil && n.Kind == NodeDir }

// SortedNames 按名称排序返回子节点名，保证渲染结果确定
func (n *Node) SortedNames() []string {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats 统计整棵树的文件、目录和不可用子树数量 (不含根节点)
func (n *Node) Stats() (files, dirs, unavailable int) {
	if n == nil {
		return 0, 0, 0
	}
	stack := []*Node{n}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range current.Children {
			switch child.Kind {
			case NodeFile:
				files++
			case NodeDir:
				dirs++
				stack = append(stack, child)
			case NodeUnavailable:
				unavailable++
			}
		}
	}
	return files, dirs, unavailable
}

// plain 转成 JSON/YAML 共用的普通结构
func (n *Node) plain() map[string]interface{} {
	out := map[string]interface{}{"type": string(n.Kind)}
	switch n.Kind {
	case NodeFile:
		out["size"] = n.Size
	case NodeDir:
		if !n.Expanded {
			out["expanded"] = false
			break
		}
		children := make(map[string]interface{}, len(n.Children))
		for name, child := range n.Children {
			children[name] = child.plain()
		}
		out["children"] = children
	case NodeUnavailable:
		out["reason"] = n.Reason
	}
	return out
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.plain())
}

func (n *Node) MarshalYAML() (interface{}, error) {
	return n.plain(), nil
}

// UnmarshalJSON 读取 MarshalJSON 的输出，历史记录回放时使用
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type     NodeKind         `json:"type"`
		Size     int              `json:"size"`
		Expanded *bool            `json:"expanded"`
		Reason   string           `json:"reason"`
		Children map[string]*Node `json:"children"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Node{Kind: raw.Type, Size: raw.Size, Reason: raw.Reason, Children: raw.Children}
	if raw.Type == NodeDir {
		n.Expanded = raw.Expanded == nil || *raw.Expanded
		if n.Expanded && n.Children == nil {
			n.Children = map[string]*Node{}
		}
	}
	return nil
}

var _ yaml.Marshaler = (*Node)(nil)
