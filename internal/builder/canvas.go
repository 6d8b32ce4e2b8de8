package builder

import (
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/soaringjerry/Raay/internal/utils"
)

const attrQuestionID = "data-question-id"

// Canvas is the node tree mirroring the question list. Question nodes are built once and
// kept; edits swap only the affected question's body, and reorders move existing nodes.
type Canvas struct {
	locale   string
	root     *html.Node
	nodes    map[int]*html.Node
	empty    *html.Node
	selected int
}

func NewCanvas(locale string) *Canvas {
	return &Canvas{
		locale: locale,
		root: el(atom.Div, at("id", "questions-container", "class", "survey-canvas",
			"dir", utils.Direction(locale), "lang", locale)),
		nodes: map[int]*html.Node{},
		empty: el(atom.P, at("class", "empty-state"), text(utils.T(locale, "builder.empty"))),
	}
}

func (c *Canvas) Root() *html.Node { return c.root }

// Node returns the container node for question id.
func (c *Canvas) Node(id int) *html.Node { return c.nodes[id] }

// Render rebuilds every question node.
func (c *Canvas) Render(qs []*Question) {
	clearChildren(c.root)
	c.nodes = map[int]*html.Node{}
	c.Sync(qs)
}

// Sync brings the tree in line with qs: builds missing nodes, drops nodes of deleted
// questions, puts nodes in canonical order and refreshes position labels.
func (c *Canvas) Sync(qs []*Question) {
	live := make(map[int]bool, len(qs))
	for _, q := range qs {
		live[q.ID] = true
	}
	for id, n := range c.nodes {
		if !live[id] {
			detach(n)
			delete(c.nodes, id)
		}
	}
	detach(c.empty)
	if len(qs) == 0 {
		c.root.AppendChild(c.empty)
	}
	for _, q := range qs {
		n, ok := c.nodes[q.ID]
		if !ok {
			n = c.build(q)
			c.nodes[q.ID] = n
		}
		detach(n)
		c.root.AppendChild(n)
		if num := findFirst(n, byClass("question-number")); num != nil {
			replaceChildren(num, text(itoa(q.OrderIndex+1)))
		}
	}
	c.Select(c.selected)
}

// Refresh re-renders the display text and preview of q only.
func (c *Canvas) Refresh(q *Question) bool {
	n, ok := c.nodes[q.ID]
	if !ok {
		return false
	}
	old := findFirst(n, byClass("question-body"))
	body := c.body(q)
	if old != nil {
		n.InsertBefore(body, old)
		n.RemoveChild(old)
	} else {
		n.AppendChild(body)
	}
	return true
}

// Move performs a drag gesture on the tree: question id lands at position to among the
// question nodes, clamped like QuestionList.Move. The canonical list is not touched; see
// Order.
func (c *Canvas) Move(id, to int) bool {
	n, ok := c.nodes[id]
	if !ok || n.Parent != c.root {
		return false
	}
	c.root.RemoveChild(n)
	to = max(0, to)
	pos := 0
	for child := c.root.FirstChild; child != nil; child = child.NextSibling {
		if _, ok := questionID(child); !ok {
			continue
		}
		if pos == to {
			c.root.InsertBefore(n, child)
			return true
		}
		pos++
	}
	c.root.AppendChild(n)
	return true
}

// Order reads the current top-to-bottom node order back into a permutation.
func (c *Canvas) Order() Permutation {
	var p Permutation
	for child := c.root.FirstChild; child != nil; child = child.NextSibling {
		if id, ok := questionID(child); ok {
			p = append(p, id)
		}
	}
	return p
}

// Select marks question id as the active one; 0 clears the mark.
func (c *Canvas) Select(id int) {
	c.selected = id
	for qid, n := range c.nodes {
		toggleClass(n, "selected", qid == id)
		if qid == id {
			setAttr(n, "aria-selected", "true")
		} else {
			removeAttr(n, "aria-selected")
		}
	}
}

// HTML serializes the canvas.
func (c *Canvas) HTML() (string, error) { return RenderHTML(c.root) }

func (c *Canvas) build(q *Question) *html.Node {
	id := itoa(q.ID)
	label := string(q.Type)
	if k, err := LookupKind(q.Type); err == nil {
		label = k.Label().In(c.locale)
	}
	header := el(atom.Div, at("class", "question-header"),
		el(atom.Span, at("class", "drag-handle", "role", "button", "aria-label", utils.T(c.locale, "builder.drag")), text("⋮⋮")),
		el(atom.Span, at("class", "question-number"), text(itoa(q.OrderIndex+1))),
		el(atom.Span, at("class", "badge question-type"), text(label)),
		el(atom.Div, at("class", "question-actions"),
			el(atom.Button, at("type", "button", "class", "btn-duplicate", "data-action", "duplicate", attrQuestionID, id),
				text(utils.T(c.locale, "builder.duplicate"))),
			el(atom.Button, at("type", "button", "class", "btn-delete", "data-action", "delete", attrQuestionID, id),
				text(utils.T(c.locale, "builder.delete")))))
	return el(atom.Div, at("class", "question-item", attrQuestionID, id, "data-type", string(q.Type), "draggable", "true"),
		header, c.body(q))
}

func (c *Canvas) body(q *Question) *html.Node {
	title := el(atom.Div, at("class", "question-text"), text(q.DisplayText(utils.T(c.locale, "builder.untitled"))))
	if q.Required {
		title.AppendChild(el(atom.Span, at("class", "required-marker", "title", utils.T(c.locale, "builder.required")), text("*")))
	}
	body := el(atom.Div, at("class", "question-body"), title)
	// Show the English side under the Arabic display text when both exist.
	if q.Text.Localized != "" && q.Text.Text != "" && q.Text.Localized != q.Text.Text {
		body.AppendChild(el(atom.Div, at("class", "question-text-secondary", "dir", "ltr", "lang", LocaleEnglish), text(q.Text.Text)))
	}
	if !q.Description.IsEmpty() {
		body.AppendChild(el(atom.Div, at("class", "question-description"), text(q.Description.Display())))
	}
	body.AppendChild(el(atom.Div, at("class", "question-preview"), previewOf(q, c.locale)))
	return body
}

// previewOf is the single per-type preview path shared by the canvas and the survey preview.
func previewOf(q *Question, locale string) *html.Node {
	k, err := LookupKind(q.Type)
	if err != nil {
		return nil
	}
	return k.RenderPreview(q, locale)
}

func questionID(n *html.Node) (int, bool) {
	if n.Type != html.ElementNode {
		return 0, false
	}
	v, ok := getAttr(n, attrQuestionID)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return id, true
}

func detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}
