// Package site renders entities and view displays described by a YAML
// fixture. It is a small, complete [viewfield.Renderer] used by the viewfield
// command and by tests.
//
// A site file lists entities, the views they can embed, and the settings of
// the viewfield they share:
//
//	field:
//	  label: Related
//	entities:
//	  - type: node
//	    id: "1"
//	    properties: {title: Front, nid: 1}
//	    viewfield:
//	      - {view: related, display: page, arguments: "[node:nid]"}
//	views:
//	  - id: related
//	    displays:
//	      - id: page
//	        title: Related to $1
//	        rows: [node/$1]
//
// A display renders its title and text rows with positional parameters ($1,
// ${10}, $*) expanded from the arguments, then one row per entity named by
// its rows templates. Several ids may be joined with "+". Rendering an entity
// renders its viewfield items in the same pass, so an entity that lists
// itself is shown once with its viewfield suppressed.
package site

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/sahilm/fuzzy"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"blake.io/viewfield"
	"blake.io/viewfield/internal/log"
)

// ErrEntityNotFound reports an entity that is not in the site.
var ErrEntityNotFound = errors.New("entity not found")

// Error reports a problem in a site file.
type Error struct {
	File string // name of the site file
	Path string // location within the file, such as "entities[2]"
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.File, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Site holds the entities and views of a site file.
type Site struct {
	file      string
	entities  map[viewfield.Key]*Entity
	order     []viewfield.Key
	views     map[string]*View
	formatter viewfield.Formatter
}

// Entity is an entity with properties and viewfield items.
type Entity struct {
	key   viewfield.Key
	props viewfield.Map
	items []viewfield.Item
}

func (e *Entity) Type() string { return e.key.Type }
func (e *Entity) ID() string   { return e.key.ID }

// Property implements [viewfield.Record].
func (e *Entity) Property(name string) (any, bool) {
	return e.props.Property(name)
}

// Items returns the entity's viewfield items.
func (e *Entity) Items() []viewfield.Item {
	return e.items
}

// View is a named set of displays.
type View struct {
	ID       string    `yaml:"id"`
	Displays []Display `yaml:"displays"`
}

// Display describes how a view display renders.
type Display struct {
	ID    string   `yaml:"id"`
	Title string   `yaml:"title"`
	Text  []string `yaml:"text"`
	Rows  []string `yaml:"rows"`

	// Denied makes the display inaccessible.
	Denied bool `yaml:"denied"`
}

type siteFile struct {
	Field    viewfield.Settings `yaml:"field"`
	Entities []entityFile       `yaml:"entities"`
	Views    []View             `yaml:"views"`
}

type entityFile struct {
	Type       scalar           `yaml:"type"`
	ID         scalar           `yaml:"id"`
	Properties map[string]any   `yaml:"properties"`
	Items      []viewfield.Item `yaml:"viewfield"`
}

// scalar decodes any YAML scalar as a string, so that ids may be written
// unquoted.
type scalar string

func (s *scalar) UnmarshalYAML(unmarshal func(any) error) error {
	var v any
	if err := unmarshal(&v); err != nil {
		return err
	}
	switch v.(type) {
	case nil:
		*s = ""
	case map[string]any, []any:
		return fmt.Errorf("expected a scalar, got %T", v)
	default:
		*s = scalar(fmt.Sprint(v))
	}
	return nil
}

// Option configures a Site.
type Option func(*Site)

// WithLogger sets the logger used while rendering.
func WithLogger(l log.Logger) Option {
	return func(s *Site) {
		s.formatter.Logger = l
	}
}

// Open parses the named site file in fsys.
func Open(fsys fs.FS, name string, opts ...Option) (*Site, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	return Parse(name, data, opts...)
}

// Parse parses a site file. The name is used in error messages.
func Parse(name string, data []byte, opts ...Option) (*Site, error) {
	var f siteFile
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.Strict()); err != nil {
		return nil, &Error{File: name, Err: errors.New(yaml.FormatError(err, false, true))}
	}

	s := &Site{
		file:     name,
		entities: make(map[viewfield.Key]*Entity),
		views:    make(map[string]*View),
	}
	s.formatter = viewfield.Formatter{Renderer: s, Settings: f.Field}
	for _, opt := range opts {
		opt(s)
	}

	for i, ef := range f.Entities {
		where := fmt.Sprintf("entities[%d]", i)
		key := viewfield.Key{Type: string(ef.Type), ID: string(ef.ID)}
		switch {
		case key.Type == "":
			return nil, s.errorf(where, "missing type")
		case key.ID == "":
			return nil, s.errorf(where, "missing id")
		case strings.Contains(key.Type, "/"):
			return nil, s.errorf(where, "type %q contains '/'", key.Type)
		}
		if _, dup := s.entities[key]; dup {
			return nil, s.errorf(where, "duplicate entity %s", key)
		}
		s.entities[key] = &Entity{key: key, props: ef.Properties, items: ef.Items}
		s.order = append(s.order, key)
	}

	for i := range f.Views {
		v := &f.Views[i]
		where := fmt.Sprintf("views[%d]", i)
		if v.ID == "" {
			return nil, s.errorf(where, "missing id")
		}
		if _, dup := s.views[v.ID]; dup {
			return nil, s.errorf(where, "duplicate view %q", v.ID)
		}
		seen := make(map[string]bool)
		for j, d := range v.Displays {
			if d.ID == "" || seen[d.ID] {
				return nil, s.errorf(fmt.Sprintf("%s.displays[%d]", where, j), "missing or duplicate id %q", d.ID)
			}
			seen[d.ID] = true
		}
		s.views[v.ID] = v
	}
	return s, nil
}

func (s *Site) errorf(where, format string, args ...any) error {
	return &Error{File: s.file, Path: where, Err: fmt.Errorf(format, args...)}
}

// Entities returns the keys of all entities in file order.
func (s *Site) Entities() []viewfield.Key {
	return append([]viewfield.Key(nil), s.order...)
}

// Entity returns the entity with the given type and id.
func (s *Site) Entity(typ, id string) (*Entity, bool) {
	e, ok := s.entities[viewfield.Key{Type: typ, ID: id}]
	return e, ok
}

func (s *Site) display(view, display string) (*Display, error) {
	v, ok := s.views[view]
	if !ok {
		ids := slices.Sorted(maps.Keys(s.views))
		return nil, fmt.Errorf("%w: %s%s", viewfield.ErrViewNotFound, view, didYouMean(view, ids))
	}
	ids := make([]string, len(v.Displays))
	for i := range v.Displays {
		if v.Displays[i].ID == display {
			return &v.Displays[i], nil
		}
		ids[i] = v.Displays[i].ID
	}
	return nil, fmt.Errorf("%w: %s:%s%s", viewfield.ErrViewNotFound, view, display, didYouMean(display, ids))
}

// didYouMean returns a hint naming the closest fuzzy match for name among
// candidates, or "" if nothing matches.
func didYouMean(name string, candidates []string) string {
	if name == "" {
		return ""
	}
	matches := fuzzy.Find(name, candidates)
	if len(matches) == 0 {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", matches[0].Str)
}

// Resolve implements [viewfield.Renderer].
func (s *Site) Resolve(view, display string) error {
	d, err := s.display(view, display)
	if err != nil {
		return err
	}
	if d.Denied {
		return fmt.Errorf("%w: %s:%s", viewfield.ErrAccessDenied, view, display)
	}
	return nil
}

// RenderDisplay implements [viewfield.Renderer].
func (s *Site) RenderDisplay(p *viewfield.Pass, view, display string, args viewfield.Args) (viewfield.Output, error) {
	d, err := s.display(view, display)
	if err != nil {
		return viewfield.Output{}, err
	}

	out := viewfield.Output{
		Node: element(atom.Div, "view view--"+view+" view-display--"+display),
	}
	if d.Title != "" {
		out.Node.AppendChild(text(element(atom.H2, "view__title"), expand(d.Title, args)))
	}
	for _, t := range d.Text {
		out.Node.AppendChild(text(element(atom.Div, "view__row"), expand(t, args)))
		out.Rows++
	}
	for _, ref := range d.Rows {
		typ, ids, ok := strings.Cut(expand(ref, args), "/")
		if !ok {
			continue
		}
		for id := range strings.SplitSeq(ids, "+") {
			e, ok := s.Entity(typ, id)
			if !ok {
				continue
			}
			n, err := s.renderEntity(p, e)
			if err != nil {
				return viewfield.Output{}, err
			}
			row := element(atom.Div, "view__row")
			row.AppendChild(n)
			out.Node.AppendChild(row)
			out.Rows++
		}
	}
	return out, nil
}

// RenderEntity renders the entity in a new pass.
func (s *Site) RenderEntity(typ, id string) (*html.Node, error) {
	e, ok := s.Entity(typ, id)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrEntityNotFound, typ, id)
	}
	return s.renderEntity(viewfield.NewPass(), e)
}

// renderEntity renders e as
//
//	<article class="entity entity--TYPE" data-entity="TYPE/ID">
//	  <h2 class="entity__title">TITLE</h2>
//	  FIELD
//	</article>
func (s *Site) renderEntity(p *viewfield.Pass, e *Entity) (*html.Node, error) {
	n := element(atom.Article, "entity entity--"+e.key.Type)
	n.Attr = append(n.Attr, html.Attribute{Key: "data-entity", Val: e.key.String()})
	if title, ok := viewfield.Resolve(e, "title"); ok {
		n.AppendChild(text(element(atom.H2, "entity__title"), title))
	}
	if len(e.items) == 0 && !s.formatter.Settings.ForceDefault {
		return n, nil
	}
	els, err := s.formatter.Format(p, e, e.items)
	if err != nil {
		return nil, err
	}
	n.AppendChild(els.Node())
	return n, nil
}

func element(a atom.Atom, class string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     []html.Attribute{{Key: "class", Val: class}},
	}
}

func text(n *html.Node, s string) *html.Node {
	n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	return n
}
