package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- 测试基础节点 ---

func TestFormat_HeadingListParagraph(t *testing.T) {
	nodes := Format("**Title**\n1. one\n2. two\nplain")

	assert.Len(t, nodes, 3)
	assert.Equal(t, Node{Type: NodeHeading, Text: "Title"}, nodes[0])
	assert.Equal(t, Node{Type: NodeOrderedList, Items: []string{"one", "two"}}, nodes[1])
	assert.Equal(t, Node{Type: NodeParagraph, Text: "plain"}, nodes[2])
}

func TestFormat_Empty(t *testing.T) {
	nodes := Format("")
	// 单个空行产生一个换行节点
	assert.Equal(t, []Node{{Type: NodeLineBreak}}, nodes)
}

func TestFormat_Paragraphs(t *testing.T) {
	nodes := Format("first line\nsecond line")
	assert.Equal(t, []Node{
		{Type: NodeParagraph, Text: "first line"},
		{Type: NodeParagraph, Text: "second line"},
	}, nodes)
}

// --- 测试列表状态机 ---

func TestFormat_UnorderedList(t *testing.T) {
	nodes := Format("* apple\n* banana\ndone")
	assert.Equal(t, []Node{
		{Type: NodeUnorderedList, Items: []string{"apple", "banana"}},
		{Type: NodeParagraph, Text: "done"},
	}, nodes)
}

func TestFormat_ListSwitch(t *testing.T) {
	// 有序列表开启时关闭无序列表，反之亦然
	nodes := Format("* a\n* b\n1. x\n2. y")
	assert.Equal(t, []Node{
		{Type: NodeUnorderedList, Items: []string{"a", "b"}},
		{Type: NodeOrderedList, Items: []string{"x", "y"}},
	}, nodes)
}

func TestFormat_HeadingClosesList(t *testing.T) {
	nodes := Format("1. one\n**Section**")
	assert.Equal(t, []Node{
		{Type: NodeOrderedList, Items: []string{"one"}},
		{Type: NodeHeading, Text: "Section"},
	}, nodes)
}

func TestFormat_BlankLineKeepsListOpen(t *testing.T) {
	// 空行不关闭列表状态，列表在空行后继续
	nodes := Format("1. one\n\n2. two")
	assert.Equal(t, []Node{
		{Type: NodeLineBreak},
		{Type: NodeOrderedList, Items: []string{"one", "two"}},
	}, nodes)
}

func TestFormat_TrailingListClosedAtEOF(t *testing.T) {
	nodes := Format("1. only")
	assert.Equal(t, []Node{
		{Type: NodeOrderedList, Items: []string{"only"}},
	}, nodes)
}

func TestFormat_OrderedItemStripsPrefix(t *testing.T) {
	nodes := Format("10.   spaced item")
	assert.Equal(t, []Node{
		{Type: NodeOrderedList, Items: []string{"spaced item"}},
	}, nodes)
}
