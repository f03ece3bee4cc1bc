package richtext

import (
	"regexp"
	"strings"
)

// NodeType 展示节点类型
type NodeType string

const (
	NodeHeading       NodeType = "heading"
	NodeParagraph     NodeType = "paragraph"
	NodeLineBreak     NodeType = "break"
	NodeOrderedList   NodeType = "ordered_list"
	NodeUnorderedList NodeType = "unordered_list"
)

// Node 单个展示节点
// 列表节点使用 Items，其余节点使用 Text
type Node struct {
	Type  NodeType `json:"type"`
	Text  string   `json:"text,omitempty"`
	Items []string `json:"items,omitempty"`
}

// listState 行状态机：同一时刻最多打开一个列表
type listState int8

const (
	stateNone listState = iota
	stateOrdered
	stateUnordered
)

var orderedItemRe = regexp.MustCompile(`^\d+\.\s*`)

// Format 将带换行的文本转换为有序的展示节点序列
// 逐行处理：
//   - 空行产生换行节点，不关闭已打开的列表
//   - "**" 开头的行产生标题节点（去除所有 "**"），关闭打开的列表
//   - "N." 开头的行打开/延续有序列表，"* " 开头的行打开/延续无序列表，
//     两种列表互斥，开启一种会关闭另一种
//   - 其余非空行关闭打开的列表并产生段落节点
func Format(text string) []Node {
	var nodes []Node
	var items []string
	state := stateNone

	closeList := func() {
		if state == stateNone {
			return
		}
		nodeType := NodeOrderedList
		if state == stateUnordered {
			nodeType = NodeUnorderedList
		}
		nodes = append(nodes, Node{Type: nodeType, Items: items})
		items = nil
		state = stateNone
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			nodes = append(nodes, Node{Type: NodeLineBreak})
			continue
		}

		if strings.HasPrefix(trimmed, "**") {
			closeList()
			nodes = append(nodes, Node{
				Type: NodeHeading,
				Text: strings.ReplaceAll(trimmed, "**", ""),
			})
			continue
		}

		if orderedItemRe.MatchString(trimmed) {
			if state != stateOrdered {
				closeList()
				state = stateOrdered
			}
			items = append(items, orderedItemRe.ReplaceAllString(trimmed, ""))
			continue
		}

		if strings.HasPrefix(trimmed, "* ") {
			if state != stateUnordered {
				closeList()
				state = stateUnordered
			}
			items = append(items, strings.TrimPrefix(trimmed, "* "))
			continue
		}

		closeList()
		nodes = append(nodes, Node{Type: NodeParagraph, Text: trimmed})
	}

	closeList()
	return nodes
}
