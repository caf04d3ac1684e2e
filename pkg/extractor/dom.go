package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/MaksimSorokoumov/LP-screening/internal/models"
)

// Document is the narrow view of a parsed page the extraction steps work on.
type Document interface {
	// FindAll returns every element with the given tag name in document order.
	FindAll(tag string) []Element
	// First returns the first element with the given tag name.
	First(tag string) (Element, bool)
	// Strip removes every element with one of the given tag names.
	Strip(tags ...string)
	// VisibleText joins all remaining non-blank text nodes with single spaces.
	VisibleText() string
}

// Element is a single markup element.
type Element interface {
	Attr(name string) models.Optional[string]
	Text() string
}

// Parse builds a Document from raw markup. It never fails: markup the parser
// cannot make sense of yields an empty document.
func Parse(markup string) Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		doc = goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	}
	return &goqueryDocument{doc: doc}
}

type goqueryDocument struct {
	doc *goquery.Document
}

func (d *goqueryDocument) FindAll(tag string) []Element {
	sel := d.doc.Find(tag)
	elements := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, goqueryElement{sel: s})
	})
	return elements
}

func (d *goqueryDocument) First(tag string) (Element, bool) {
	sel := d.doc.Find(tag).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return goqueryElement{sel: sel}, true
}

func (d *goqueryDocument) Strip(tags ...string) {
	if len(tags) == 0 {
		return
	}
	d.doc.Find(strings.Join(tags, ", ")).Remove()
}

func (d *goqueryDocument) VisibleText() string {
	var parts []string
	for _, root := range d.doc.Nodes {
		parts = collectText(root, parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts []string) []string {
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			parts = append(parts, text)
		}
		return parts
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		parts = collectText(c, parts)
	}
	return parts
}

type goqueryElement struct {
	sel *goquery.Selection
}

// Attr returns the attribute value; an attribute that is missing and one that
// is present are distinguishable even when the value is empty.
func (e goqueryElement) Attr(name string) models.Optional[string] {
	if v, ok := e.sel.Attr(name); ok {
		return models.Some(v)
	}
	return models.None[string]()
}

func (e goqueryElement) Text() string {
	return e.sel.Text()
}
