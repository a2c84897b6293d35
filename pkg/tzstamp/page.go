package tzstamp

import (
	"io"

	"golang.org/x/net/html"

	"github.com/hlop3z/tzstamp/internal/alerr"
	"github.com/hlop3z/tzstamp/internal/markup"
)

// Page is a parsed HTML document kept current by a Formatter. Holders added
// through Append are rendered as soon as they are inserted.
//
// A Page is not safe for concurrent use.
type Page struct {
	doc     *markup.Document
	watcher *markup.Watcher
}

// Open parses a document, renders its holders and starts watching it for
// inserted holders.
func (f *Formatter) Open(r io.Reader) (*Page, error) {
	doc, err := markup.Parse(r)
	if err != nil {
		return nil, err
	}
	p := &Page{doc: doc, watcher: markup.NewWatcher(doc, f.refresher)}
	p.watcher.Start()
	return p, nil
}

// Append parses fragment and appends it to the element with the given id,
// or to the body when id is empty.
func (p *Page) Append(id, fragment string) error {
	parent, err := p.element(id)
	if err != nil {
		return err
	}
	return p.doc.AppendHTML(parent, fragment)
}

// Remove detaches the element with the given id.
func (p *Page) Remove(id string) error {
	n, err := p.element(id)
	if err != nil {
		return err
	}
	if n.Parent != nil {
		p.doc.RemoveChild(n.Parent, n)
	}
	return nil
}

// Refresh re-renders every holder, bringing relative times up to date.
func (p *Page) Refresh() Stats {
	return p.watcher.Refresh()
}

// Passes returns how many refresh passes have run, including the initial one.
func (p *Page) Passes() int {
	return p.watcher.Passes()
}

// Stats returns the stats of the most recent pass.
func (p *Page) Stats() Stats {
	return p.watcher.LastStats()
}

// Render writes the document as HTML.
func (p *Page) Render(w io.Writer) error {
	return p.doc.Render(w)
}

// String returns the document as HTML.
func (p *Page) String() string {
	return p.doc.String()
}

func (p *Page) element(id string) (*html.Node, error) {
	if id == "" {
		return p.doc.Body(), nil
	}
	n := p.doc.GetElementByID(id)
	if n == nil {
		return nil, alerr.Newf(alerr.ErrMarkupParse, "no element with id %q", id).With("id", id)
	}
	return n, nil
}
