package viewfield

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"blake.io/viewfield/internal/log"
)

var (
	// ErrViewNotFound reports a view or display that does not exist.
	ErrViewNotFound = errors.New("view not found")

	// ErrAccessDenied reports a display the viewer may not render.
	ErrAccessDenied = errors.New("access denied")
)

// Renderer resolves and renders view displays.
type Renderer interface {
	// Resolve reports whether the display can be rendered. It returns an
	// error wrapping ErrViewNotFound or ErrAccessDenied if not.
	Resolve(view, display string) error

	// RenderDisplay renders the display with positional arguments. Renders
	// nested within it must use p.
	RenderDisplay(p *Pass, view, display string, args Args) (Output, error)
}

// Output is the result of rendering a display.
type Output struct {
	Node *html.Node
	Rows int // number of result rows; zero means the display was empty
}

// ItemError reports a renderer failure for one field item.
type ItemError struct {
	Entity Key
	Delta  int
	Item   Item
	Err    error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s#%d: %s:%s: %v", e.Entity, e.Delta, e.Item.View, e.Item.Display, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// Formatter renders the items of a viewfield.
type Formatter struct {
	Renderer Renderer
	Settings Settings
	Logger   log.Logger
}

// Format renders items owned by ent within the pass p. If p is nil, Format
// starts a new pass.
//
// Items are skipped, not reported, when they are empty, name a view that is
// not allowed or cannot be resolved, belong to an entity that is already
// being rendered in p, or render no rows (unless AlwaysBuildOutput is set).
// A renderer failure stops formatting and is returned as an [*ItemError]
// along with the elements rendered so far.
func (f *Formatter) Format(p *Pass, ent Entity, items []Item) (*Elements, error) {
	if p == nil {
		p = NewPass()
	}
	if f.Settings.ForceDefault {
		items = f.Settings.Default
	}
	els := &Elements{Label: f.Settings.Label, LabelHidden: f.Settings.HideLabel}
	for delta, item := range items {
		el, ok, err := f.formatItem(p, ent, delta, item)
		if err != nil {
			return els, err
		}
		if ok {
			els.Items = append(els.Items, el)
		}
	}
	return els, nil
}

func (f *Formatter) formatItem(p *Pass, ent Entity, delta int, item Item) (Element, bool, error) {
	key := Key{Type: ent.Type(), ID: ent.ID()}
	logger := f.Logger.With(
		slog.String("entity", key.String()),
		slog.Int("delta", delta),
		slog.String("view", item.View),
		slog.String("display", item.Display),
	)

	if item.IsEmpty() {
		return Element{}, false, nil
	}
	if !f.Settings.allows(item.View) {
		logger.Debug("view not allowed")
		return Element{}, false, nil
	}
	if err := f.Renderer.Resolve(item.View, item.Display); err != nil {
		logger.Debug("view unavailable", slog.Any("error", err))
		return Element{}, false, nil
	}

	var out Output
	entered, err := p.Guard.Do(key.Type, key.ID, func() error {
		args := Replace(ParseArgs(item.Arguments), key.Type, ent)
		logger.Trace("rendering display", slog.String("args", args.String()))
		var err error
		out, err = f.Renderer.RenderDisplay(p, item.View, item.Display, args)
		return err
	})
	if !entered {
		var chain strings.Builder
		writeFrames(&chain, p.Guard.Frames(), key)
		logger.Debug("recursive render suppressed", slog.String("chain", chain.String()))
		return Element{}, false, nil
	}
	if err != nil {
		return Element{}, false, &ItemError{Entity: key, Delta: delta, Item: item, Err: err}
	}
	if out.Node == nil || (out.Rows == 0 && !f.Settings.AlwaysBuildOutput) {
		logger.Trace("empty display omitted", slog.Int("rows", out.Rows))
		return Element{}, false, nil
	}
	return Element{Delta: delta, Node: out.Node}, true, nil
}

// Elements are the rendered items of a viewfield.
type Elements struct {
	Label       string
	LabelHidden bool
	Items       []Element
}

// Element is the output of the item at Delta.
type Element struct {
	Delta int
	Node  *html.Node
}

// Node returns the elements wrapped in a field container:
//
//	<div class="field field--type-viewfield">
//	  <div class="field__label">Label</div>
//	  <div class="field__item">...</div>
//	</div>
//
// The item nodes are copied, so Node may be called more than once.
func (els *Elements) Node() *html.Node {
	field := element(atom.Div, "field field--type-viewfield")
	if els.Label != "" && !els.LabelHidden {
		label := element(atom.Div, "field__label")
		label.AppendChild(&html.Node{Type: html.TextNode, Data: els.Label})
		field.AppendChild(label)
	}
	for _, el := range els.Items {
		item := element(atom.Div, "field__item")
		item.AppendChild(cloneNode(el.Node))
		field.AppendChild(item)
	}
	return field
}

// Render writes the HTML of [Elements.Node] to w.
func (els *Elements) Render(w io.Writer) error {
	return html.Render(w, els.Node())
}

func element(a atom.Atom, class string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if class != "" {
		n.Attr = []html.Attribute{{Key: "class", Val: class}}
	}
	return n
}

func cloneNode(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneNode(child))
	}
	return c
}
