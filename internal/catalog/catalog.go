package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Size is the grid footprint of a widget on the couple dashboard.
type Size struct {
	Columns int `yaml:"columns" json:"columns"`
	Rows    int `yaml:"rows" json:"rows"`
}

func (s Size) Valid() bool {
	return s.Columns >= 1 && s.Columns <= 3 && s.Rows >= 1 && s.Rows <= 2
}

type Widget struct {
	ID          string `yaml:"id" json:"id"`
	Label       string `yaml:"label" json:"label"`
	DefaultSize Size   `yaml:"default_size" json:"default_size"`
}

// Catalog is the immutable table of known dashboard widgets. It is supplied
// by configuration at startup and never mutated afterwards, so the layout
// resolver stays a pure function of its inputs.
type Catalog struct {
	widgets []Widget
	index   map[string]int
}

func New(widgets []Widget) (*Catalog, error) {
	index := make(map[string]int, len(widgets))
	for i, w := range widgets {
		if w.ID == "" {
			return nil, fmt.Errorf("catalog widget at position %d has empty id", i)
		}
		if _, dup := index[w.ID]; dup {
			return nil, fmt.Errorf("catalog widget %q declared twice", w.ID)
		}
		if !w.DefaultSize.Valid() {
			return nil, fmt.Errorf("catalog widget %q has invalid default size %+v", w.ID, w.DefaultSize)
		}
		index[w.ID] = i
	}
	cloned := make([]Widget, len(widgets))
	copy(cloned, widgets)
	return &Catalog{widgets: cloned, index: index}, nil
}

// LoadFile reads a catalog from a YAML file of the shape:
//
//	widgets:
//	  - id: daily_checkin
//	    label: Daily Check-In
//	    default_size: {columns: 2, rows: 1}
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var doc struct {
		Widgets []Widget `yaml:"widgets"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	if len(doc.Widgets) == 0 {
		return nil, fmt.Errorf("catalog file %s declares no widgets", path)
	}
	return New(doc.Widgets)
}

// Widgets returns the catalog entries in declared order.
func (c *Catalog) Widgets() []Widget {
	out := make([]Widget, len(c.widgets))
	copy(out, c.widgets)
	return out
}

func (c *Catalog) Len() int { return len(c.widgets) }

func (c *Catalog) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

func (c *Catalog) Widget(id string) (Widget, bool) {
	i, ok := c.index[id]
	if !ok {
		return Widget{}, false
	}
	return c.widgets[i], true
}

func (c *Catalog) DefaultSize(id string) (Size, bool) {
	w, ok := c.Widget(id)
	if !ok {
		return Size{}, false
	}
	return w.DefaultSize, true
}

// WidgetIDs returns the ids in declared order.
func (c *Catalog) WidgetIDs() []string {
	out := make([]string, len(c.widgets))
	for i, w := range c.widgets {
		out[i] = w.ID
	}
	return out
}

// Default is the built-in catalog used when no WIDGET_CATALOG_PATH is set.
func Default() *Catalog {
	c, err := New([]Widget{
		{ID: "daily_checkin", Label: "Daily Check-In", DefaultSize: Size{Columns: 2, Rows: 1}},
		{ID: "mood_tracker", Label: "Mood Tracker", DefaultSize: Size{Columns: 1, Rows: 1}},
		{ID: "shared_goals", Label: "Shared Goals", DefaultSize: Size{Columns: 2, Rows: 1}},
		{ID: "upcoming_sessions", Label: "Upcoming Sessions", DefaultSize: Size{Columns: 1, Rows: 1}},
		{ID: "love_language_tips", Label: "Love Language Tips", DefaultSize: Size{Columns: 1, Rows: 1}},
		{ID: "connection_exercises", Label: "Connection Exercises", DefaultSize: Size{Columns: 2, Rows: 2}},
		{ID: "journal_prompts", Label: "Journal Prompts", DefaultSize: Size{Columns: 1, Rows: 2}},
		{ID: "relationship_insights", Label: "Relationship Insights", DefaultSize: Size{Columns: 3, Rows: 1}},
	})
	if err != nil {
		panic(err)
	}
	return c
}
