package markup

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hlop3z/tzstamp/internal/alerr"
)

// MutationType classifies a MutationRecord.
type MutationType int

const (
	// ChildList records nodes added to or removed from a parent.
	ChildList MutationType = iota
)

// MutationRecord describes one change to the tree.
type MutationRecord struct {
	Type         MutationType
	Target       *html.Node
	AddedNodes   []*html.Node
	RemovedNodes []*html.Node
}

// Observe registers fn to receive each batch of records produced by the
// document's mutation methods. Batches are delivered synchronously, after the
// mutation, on the mutating goroutine.
func (d *Document) Observe(fn func([]MutationRecord)) {
	if fn == nil {
		return
	}
	d.observers = append(d.observers, fn)
}

func (d *Document) notify(records []MutationRecord) {
	if len(records) == 0 {
		return
	}
	observers := make([]func([]MutationRecord), len(d.observers))
	copy(observers, d.observers)
	for _, fn := range observers {
		fn(records)
	}
}

// detach removes child from its current parent and returns the record for it.
func detach(child *html.Node) []MutationRecord {
	if child.Parent == nil {
		return nil
	}
	old := child.Parent
	old.RemoveChild(child)
	return []MutationRecord{{Type: ChildList, Target: old, RemovedNodes: []*html.Node{child}}}
}

// AppendChild adds child as the last child of parent. A child that is already
// attached elsewhere is moved.
func (d *Document) AppendChild(parent, child *html.Node) {
	records := detach(child)
	parent.AppendChild(child)
	records = append(records, MutationRecord{Type: ChildList, Target: parent, AddedNodes: []*html.Node{child}})
	d.notify(records)
}

// InsertBefore inserts child into parent before ref; a nil ref appends.
// A ref that is not a child of parent, or is child itself, leaves the tree
// unchanged.
func (d *Document) InsertBefore(parent, child, ref *html.Node) {
	if ref != nil && (ref == child || ref.Parent != parent) {
		return
	}
	records := detach(child)
	parent.InsertBefore(child, ref)
	records = append(records, MutationRecord{Type: ChildList, Target: parent, AddedNodes: []*html.Node{child}})
	d.notify(records)
}

// RemoveChild removes child from parent.
func (d *Document) RemoveChild(parent, child *html.Node) {
	if child.Parent != parent {
		return
	}
	parent.RemoveChild(child)
	d.notify([]MutationRecord{{Type: ChildList, Target: parent, RemovedNodes: []*html.Node{child}}})
}

// AppendHTML parses fragment in the context of parent and appends the
// resulting nodes as one batch.
func (d *Document) AppendHTML(parent *html.Node, fragment string) error {
	context := parent
	if context.Type != html.ElementNode {
		context = d.Body()
	}
	if context.Type != html.ElementNode {
		context = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return alerr.Wrap(alerr.ErrMarkupParse, err, "failed to parse fragment")
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	d.notify([]MutationRecord{{Type: ChildList, Target: parent, AddedNodes: nodes}})
	return nil
}
