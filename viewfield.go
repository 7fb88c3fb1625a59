// Package viewfield resolves the arguments of embedded view displays and
// guards their rendering against recursion.
//
// A viewfield item names a view, one of its displays, and an argument
// expression. The expression is a comma separated list of positional
// arguments. Arguments may be quoted to include commas, and a quote inside a
// quoted argument is written twice:
//
//	1,"value with, comma",node/1
//	"say ""hi""",x
//
// # Syntax
//
// The grammar in EBNF:
//
//	expression = [ argument { "," argument } ] .
//	argument   = quoted | plain .
//	quoted     = `"` { char | `""` } `"` .
//	plain      = { char } .
//	char       = (* any byte except "," in plain, any byte except `"` in quoted *) .
//
// Parsing never fails. An unterminated quoted argument swallows the rest of
// the expression verbatim, including its opening quote. Whitespace is never
// trimmed.
//
// # Placeholders
//
// After parsing, each argument is scanned for placeholders of the form
// [type:property] which are replaced with properties of the entity that owns
// the field:
//
//	[node:nid],"[node:title]",[node:author:name]
//
// A placeholder whose type is not the entity's type, or whose property cannot
// be resolved, is left as written. Replaced text is never scanned again.
//
// # Recursion
//
// Rendering a display may render other entities, which may embed views of
// their own. A [Pass] carries the [Guard] for one top-level render; an entity
// that is already being rendered in the pass is skipped rather than rendered
// again:
//
//	p := viewfield.NewPass()
//	els, err := f.Format(p, entity, items)
//
// # Formatting
//
// A [Formatter] ties the pieces together the way a field formatter does: it
// resolves each item's view, enters the guard, parses and replaces the
// arguments, and asks its [Renderer] for the display's output.
package viewfield

import (
	"fmt"
	"slices"
)

// Item is one value of a viewfield: a view display and the argument
// expression to render it with.
type Item struct {
	View      string `yaml:"view"`
	Display   string `yaml:"display"`
	Arguments string `yaml:"arguments"`
}

// IsEmpty reports whether the item names no view.
func (it Item) IsEmpty() bool {
	return it.View == ""
}

func (it Item) String() string {
	return fmt.Sprintf("%s:%s(%s)", it.View, it.Display, it.Arguments)
}

// Settings are the field settings consulted by a [Formatter].
type Settings struct {
	// Label is shown above the rendered items unless HideLabel is set.
	Label     string `yaml:"label"`
	HideLabel bool   `yaml:"hide_label"`

	// ForceDefault ignores stored items and renders Default instead.
	ForceDefault bool   `yaml:"force_default"`
	Default      []Item `yaml:"default"`

	// AlwaysBuildOutput keeps the output of displays that produced no rows.
	AlwaysBuildOutput bool `yaml:"always_build_output"`

	// AllowedViews limits the views that may be rendered.
	// An empty list allows every view.
	AllowedViews []string `yaml:"allowed_views"`
}

func (s *Settings) allows(view string) bool {
	return len(s.AllowedViews) == 0 || slices.Contains(s.AllowedViews, view)
}

// Record supplies property values to placeholders.
type Record interface {
	// Property returns the value of the named property.
	// Values that are themselves a Record or a map[string]any
	// may be walked by chained placeholders like [node:author:name].
	Property(name string) (any, bool)
}

// Entity is the owner of a viewfield.
type Entity interface {
	Type() string
	ID() string
	Record
}

// Map is a Record backed by a map.
type Map map[string]any

// Property implements [Record].
func (m Map) Property(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// NewEntity returns an Entity of the given type and id whose properties are
// read from props.
func NewEntity(typ, id string, props map[string]any) Entity {
	return &entity{key: Key{Type: typ, ID: id}, props: props}
}

type entity struct {
	key   Key
	props Map
}

func (e *entity) Type() string   { return e.key.Type }
func (e *entity) ID() string     { return e.key.ID }
func (e *entity) String() string { return e.key.String() }

func (e *entity) Property(name string) (any, bool) {
	return e.props.Property(name)
}
