// Package confdoc wraps a device's exported config.xml in a read-only query
// surface for the automated checks. The export comes from an untrusted
// remote host; parsing goes through etree, whose underlying encoding/xml
// tokenizer never resolves external entities, so entity-expansion and XXE
// payloads cannot fire.
package confdoc

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Node is a single element of the parsed configuration tree.
type Node struct {
	el *etree.Element
}

// Document is the parsed configuration export. Discarded after one check
// run; it has no mutation operations.
type Document struct {
	root Node
}

// Parse reads a config.xml export into a Document.
func Parse(data []byte) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("invalid config.xml: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("invalid config.xml: no root element")
	}
	return &Document{root: Node{el: root}}, nil
}

// FindText returns the trimmed text of the first element matching the
// descendant path, and whether a match was found at all.
func (d *Document) FindText(path string) (string, bool) {
	return d.root.FindText(path)
}

// Find returns the first node matching the descendant path, or a zero Node.
func (d *Document) Find(path string) (Node, bool) {
	return d.root.Find(path)
}

// FindAll returns every node matching the descendant path.
func (d *Document) FindAll(path string) []Node {
	return d.root.FindAll(path)
}

// descendant rewrites a bare path into an anywhere-in-subtree search
// relative to the current node, matching how checks address config.xml
// fields.
func descendant(path string) string {
	if strings.HasPrefix(path, ".") || strings.HasPrefix(path, "/") {
		return path
	}
	return ".//" + path
}

// FindText returns the trimmed text of the first matching descendant.
func (n Node) FindText(path string) (string, bool) {
	if n.el == nil {
		return "", false
	}
	child := n.el.FindElement(descendant(path))
	if child == nil {
		return "", false
	}
	return strings.TrimSpace(child.Text()), true
}

// ChildText returns the trimmed text of a direct child element.
func (n Node) ChildText(name string) (string, bool) {
	if n.el == nil {
		return "", false
	}
	child := n.el.SelectElement(name)
	if child == nil {
		return "", false
	}
	return strings.TrimSpace(child.Text()), true
}

// Find returns the first matching descendant node.
func (n Node) Find(path string) (Node, bool) {
	if n.el == nil {
		return Node{}, false
	}
	child := n.el.FindElement(descendant(path))
	if child == nil {
		return Node{}, false
	}
	return Node{el: child}, true
}

// Child returns a direct child element by name.
func (n Node) Child(name string) (Node, bool) {
	if n.el == nil {
		return Node{}, false
	}
	child := n.el.SelectElement(name)
	if child == nil {
		return Node{}, false
	}
	return Node{el: child}, true
}

// FindAll returns every matching descendant node.
func (n Node) FindAll(path string) []Node {
	if n.el == nil {
		return nil
	}
	els := n.el.FindElements(descendant(path))
	nodes := make([]Node, 0, len(els))
	for _, el := range els {
		nodes = append(nodes, Node{el: el})
	}
	return nodes
}

// Children returns the direct child elements with the given name.
func (n Node) Children(name string) []Node {
	if n.el == nil {
		return nil
	}
	els := n.el.SelectElements(name)
	nodes := make([]Node, 0, len(els))
	for _, el := range els {
		nodes = append(nodes, Node{el: el})
	}
	return nodes
}

// HasChildren reports whether the node has any child elements.
func (n Node) HasChildren() bool {
	return n.el != nil && len(n.el.ChildElements()) > 0
}

// Text returns the node's trimmed own text.
func (n Node) Text() string {
	if n.el == nil {
		return ""
	}
	return strings.TrimSpace(n.el.Text())
}

// SubtreeText flattens the node's subtree (tags and text) into a single
// lowercase string for substring probes.
func (n Node) SubtreeText() string {
	if n.el == nil {
		return ""
	}
	var b strings.Builder
	flatten(n.el, &b)
	return strings.ToLower(b.String())
}

func flatten(el *etree.Element, b *strings.Builder) {
	b.WriteString(el.Tag)
	b.WriteByte(' ')
	b.WriteString(el.Text())
	b.WriteByte(' ')
	for _, child := range el.ChildElements() {
		flatten(child, b)
	}
}
