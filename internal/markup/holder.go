package markup

import "golang.org/x/net/html"

// Attrs names the attributes that make up the markup contract.
type Attrs struct {
	Timestamp string // raw instant
	Format    string // optional format selector
	Title     string // tooltip written for non-full formats
}

// DefaultAttrs is the stock contract: data-timestamp, data-time-format, title.
var DefaultAttrs = Attrs{
	Timestamp: "data-timestamp",
	Format:    "data-time-format",
	Title:     "title",
}

// WithDefaults fills empty attribute names from DefaultAttrs.
func (a Attrs) WithDefaults() Attrs {
	if a.Timestamp == "" {
		a.Timestamp = DefaultAttrs.Timestamp
	}
	if a.Format == "" {
		a.Format = DefaultAttrs.Format
	}
	if a.Title == "" {
		a.Title = DefaultAttrs.Title
	}
	return a
}

// IsHolder reports whether n is an element carrying the timestamp attribute.
func (a Attrs) IsHolder(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	_, ok := Attr(n, a.WithDefaults().Timestamp)
	return ok
}

// ContainsHolder reports whether n or any of its descendants is a holder.
func (a Attrs) ContainsHolder(n *html.Node) bool {
	if n == nil {
		return false
	}
	return findFirst(n, a.IsHolder) != nil
}

// Holders returns every holder under n in document order.
func (a Attrs) Holders(n *html.Node) []*html.Node {
	var out []*html.Node
	walk(n, func(c *html.Node) bool {
		if a.IsHolder(c) {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Holder is a read-only view of one timestamp holder.
type Holder struct {
	Raw      string
	Selector string // as written; empty when the attribute is absent
	Text     string
	Title    string
	HasTitle bool
}

// Describe lists the holders in a document.
func (a Attrs) Describe(d *Document) []Holder {
	a = a.WithDefaults()
	nodes := a.Holders(d.Root())
	out := make([]Holder, 0, len(nodes))
	for _, n := range nodes {
		raw, _ := Attr(n, a.Timestamp)
		sel, _ := Attr(n, a.Format)
		title, hasTitle := Attr(n, a.Title)
		out = append(out, Holder{
			Raw:      raw,
			Selector: sel,
			Text:     TextContent(n),
			Title:    title,
			HasTitle: hasTitle,
		})
	}
	return out
}
