package builder

import (
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Node assembly helpers. User text only ever enters the tree as a TextNode or an attribute
// value; html.Render escapes both.

func el(a atom.Atom, attrs []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
	for _, c := range children {
		if c != nil {
			n.AppendChild(c)
		}
	}
	return n
}

// at builds an attribute list from key/value pairs.
func at(kv ...string) []html.Attribute {
	out := make([]html.Attribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return out
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func getAttr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}

func hasClass(n *html.Node, class string) bool {
	v, _ := getAttr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

func toggleClass(n *html.Node, class string, on bool) {
	v, _ := getAttr(n, "class")
	fields := strings.Fields(v)
	out := fields[:0]
	for _, c := range fields {
		if c != class {
			out = append(out, c)
		}
	}
	if on {
		out = append(out, class)
	}
	setAttr(n, "class", strings.Join(out, " "))
}

func clearChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

func replaceChildren(n *html.Node, children ...*html.Node) {
	clearChildren(n)
	for _, c := range children {
		if c != nil {
			n.AppendChild(c)
		}
	}
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func byClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Type == html.ElementNode && hasClass(n, class) }
}

// RenderHTML serializes a node tree.
func RenderHTML(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func itoa(i int) string { return strconv.Itoa(i) }

func disabledInput(kind string, kv ...string) *html.Node {
	return el(atom.Input, append(at("type", kind, "disabled", ""), at(kv...)...))
}

func labelled(forName, label string) *html.Node {
	return el(atom.Label, at("for", forName), text(label))
}

// field renders a labelled text input bound to an edit field.
func field(name string, index int, label, value, dir string) *html.Node {
	id := name
	if index >= 0 {
		id = name + "-" + itoa(index)
	}
	input := el(atom.Input, at("type", "text", "id", id, "name", name, "value", value, "dir", dir))
	if index >= 0 {
		setAttr(input, "data-index", itoa(index))
	}
	return el(atom.Div, at("class", "form-group"), labelled(id, label), input)
}

func numberField(name, label string, value int) *html.Node {
	input := el(atom.Input, at("type", "number", "id", name, "name", name, "value", itoa(value)))
	return el(atom.Div, at("class", "form-group"), labelled(name, label), input)
}
