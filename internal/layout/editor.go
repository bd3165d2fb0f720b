package layout

// Editor stages interactive layout edits client-side of the store: nothing is
// persisted until the caller reads Changes() and saves explicitly.
type Editor struct {
	order   []string
	enabled map[string]bool
	dirty   bool
}

// Changes is the payload an editor save writes through the layout upsert.
type Changes struct {
	WidgetOrder    []string
	EnabledWidgets map[string]bool
}

func NewEditor(order []string, enabled map[string]bool) *Editor {
	e := &Editor{
		order:   make([]string, len(order)),
		enabled: make(map[string]bool, len(enabled)),
	}
	copy(e.order, order)
	for k, v := range enabled {
		e.enabled[k] = v
	}
	return e
}

// Move handles a drag of draggedID onto targetID's slot. It swaps the two
// positions rather than splicing the dragged widget in front of the target;
// widgets between the two slots do not shift. Unknown ids are a no-op.
func (e *Editor) Move(draggedID, targetID string) {
	if draggedID == targetID {
		return
	}
	from, to := -1, -1
	for i, id := range e.order {
		switch id {
		case draggedID:
			from = i
		case targetID:
			to = i
		}
	}
	if from < 0 || to < 0 {
		return
	}
	e.order[from], e.order[to] = e.order[to], e.order[from]
	e.dirty = true
}

func (e *Editor) SetEnabled(id string, enabled bool) {
	if id == "" {
		return
	}
	if cur, ok := e.enabled[id]; ok && cur == enabled {
		return
	}
	e.enabled[id] = enabled
	e.dirty = true
}

func (e *Editor) Dirty() bool { return e.dirty }

func (e *Editor) Order() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

func (e *Editor) Enabled() map[string]bool {
	out := make(map[string]bool, len(e.enabled))
	for k, v := range e.enabled {
		out[k] = v
	}
	return out
}

// Changes returns the staged payload and whether anything was edited.
func (e *Editor) Changes() (Changes, bool) {
	if !e.dirty {
		return Changes{}, false
	}
	return Changes{WidgetOrder: e.Order(), EnabledWidgets: e.Enabled()}, true
}
