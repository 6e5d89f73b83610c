// Package schema reads the declared table model out of an EML metadata
// document. The document tree is owned by the caller; this package only
// navigates it through the Node capability.
package schema

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
)

// ErrEmptyDocument is returned when an EML source has no root element.
var ErrEmptyDocument = errors.New("document has no root element")

// Node is the read-only view of one element of an EML tree.
// Names are matched on the local part, so namespace prefixes on the
// root (eml:eml) do not matter.
type Node interface {
	// Name returns the element's local tag.
	Name() string
	// Child returns the first direct child with the given tag, or nil.
	Child(name string) Node
	// Children returns every direct child with the given tag.
	Children(name string) []Node
	// Descendants returns every element below this one with the given tag,
	// in document order.
	Descendants(name string) []Node
	// Attr returns the attribute value, or "" when absent.
	Attr(name string) string
	// Text returns the element's character data with surrounding
	// whitespace removed.
	Text() string
	// RawText returns the character data as written.
	RawText() string
}

// Wrap adapts an etree element to Node. A nil element yields a nil Node.
func Wrap(el *etree.Element) Node {
	if el == nil {
		return nil
	}
	return element{el: el}
}

// Parse reads an EML document and returns its root element.
func Parse(r io.Reader) (Node, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parse eml: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, ErrEmptyDocument
	}
	return Wrap(root), nil
}

// ParseFile reads the EML document stored at path.
func ParseFile(path string) (Node, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("parse eml %s: %w", path, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, ErrEmptyDocument
	}
	return Wrap(root), nil
}

type element struct {
	el *etree.Element
}

func (e element) Name() string { return e.el.Tag }

func (e element) Child(name string) Node {
	return Wrap(e.el.SelectElement(name))
}

func (e element) Children(name string) []Node {
	return wrapAll(e.el.SelectElements(name))
}

func (e element) Descendants(name string) []Node {
	return wrapAll(e.el.FindElements(".//" + name))
}

func (e element) Attr(name string) string {
	return e.el.SelectAttrValue(name, "")
}

func (e element) Text() string {
	return strings.TrimSpace(e.el.Text())
}

func (e element) RawText() string { return e.el.Text() }

func wrapAll(els []*etree.Element) []Node {
	if len(els) == 0 {
		return nil
	}
	out := make([]Node, 0, len(els))
	for _, el := range els {
		out = append(out, element{el: el})
	}
	return out
}

// childText follows a path of direct children and returns the text of the
// last one, or "" if any step is missing.
func childText(n Node, path ...string) string {
	for _, name := range path {
		if n == nil {
			return ""
		}
		n = n.Child(name)
	}
	if n == nil {
		return ""
	}
	return n.Text()
}

// firstDescendant returns the first descendant with the given tag, or nil.
func firstDescendant(n Node, name string) Node {
	if n == nil {
		return nil
	}
	if found := n.Descendants(name); len(found) > 0 {
		return found[0]
	}
	return nil
}
