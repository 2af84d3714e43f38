// Package report assembles nested failure reports for multi-step remote
// operations.
//
// A command like playtime fans out into several SSH operations; when one
// fails, the user gets a stable one-line summary while the log receives
// the full tree of what failed underneath, one indentation level per
// nesting level.
package report

import "strings"

// Node is one failed operation. A node either carries Detail (raw error
// or command output) or Children describing the nested failures, or both.
type Node struct {
	Op       string
	Msg      string
	Detail   string
	Children []*Node
}

// New returns a node for the named operation with a human summary.
func New(op, msg string) *Node {
	return &Node{Op: op, Msg: msg}
}

// FromError returns a leaf node whose detail is the error's full chain.
func FromError(op, msg string, err error) *Node {
	n := New(op, msg)
	if err != nil {
		n.Detail = err.Error()
	}
	return n
}

// Add appends child failures and returns the node for chaining.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// String renders the tree with one tab per nesting level:
//
//	players: "SSH command failed while reading usernames"
//	dial tcp: connection refused
func (n *Node) String() string {
	var b strings.Builder
	n.render(&b, 0)
	return b.String()
}

func (n *Node) render(b *strings.Builder, depth int) {
	indent := strings.Repeat("\t", depth)
	b.WriteString(indent)
	b.WriteString(n.Op)
	b.WriteString(": \"")
	b.WriteString(n.Msg)
	b.WriteString("\"\n")
	if n.Detail != "" {
		b.WriteString(indent)
		b.WriteString(n.Detail)
		b.WriteString("\n")
	}
	for _, child := range n.Children {
		child.render(b, depth+1)
	}
}
