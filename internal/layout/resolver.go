package layout

import (
	"encoding/json"

	"github.com/attunelab/attune-backend/internal/catalog"
)

// CoupleView is the decoded layout baseline shared by both members of a couple.
type CoupleView struct {
	Order            []string
	Enabled          map[string]bool
	Sizes            map[string]catalog.Size
	ContentOverrides map[string]json.RawMessage
}

// OverrideView is one member's decoded personalization record. Order, Enabled
// and Sizes are whole-field overrides: nil means "defer to the couple layout
// for that dimension". Hidden applies whether or not UsePersonalLayout is set.
type OverrideView struct {
	UsePersonalLayout bool
	Order             []string
	Enabled           map[string]bool
	Sizes             map[string]catalog.Size
	Hidden            []string
}

// ResolvedWidget is one visible dashboard slot for a specific viewer.
type ResolvedWidget struct {
	ID              string          `json:"id"`
	Label           string          `json:"label"`
	Size            catalog.Size    `json:"size"`
	ContentOverride json.RawMessage `json:"content_override,omitempty"`
}

// Resolve computes the ordered visible widget list for one viewer. It never
// fails: every missing input has a defined fallback, so dashboard rendering
// always succeeds. Identical inputs yield identical output.
func Resolve(couple CoupleView, override *OverrideView, cat *catalog.Catalog) []ResolvedWidget {
	personal := override != nil && override.UsePersonalLayout

	// Step 1: base order. A personal order fully replaces the couple order or
	// is absent; it is never merged.
	order := couple.Order
	if personal && override.Order != nil {
		order = override.Order
	}

	// Step 2: reconcile against the catalog. Retired ids are dropped, widgets
	// missing from the stored order are appended in catalog order so new
	// widgets show up without migrating every stored row. First occurrence
	// wins if a stored order carries duplicates.
	seen := make(map[string]bool, cat.Len())
	reconciled := make([]string, 0, cat.Len())
	for _, id := range order {
		if !cat.Has(id) || seen[id] {
			continue
		}
		seen[id] = true
		reconciled = append(reconciled, id)
	}
	for _, id := range cat.WidgetIDs() {
		if !seen[id] {
			seen[id] = true
			reconciled = append(reconciled, id)
		}
	}

	// Step 4 input: personal suppression list, independent of the
	// UsePersonalLayout switch.
	hidden := make(map[string]bool)
	if override != nil {
		for _, id := range override.Hidden {
			hidden[id] = true
		}
	}

	out := make([]ResolvedWidget, 0, len(reconciled))
	for _, id := range reconciled {
		// Step 3: enabled resolution, default-enabled policy.
		enabled := true
		if personal && override.Enabled != nil {
			if v, ok := override.Enabled[id]; ok {
				enabled = v
			} else if v, ok := couple.Enabled[id]; ok {
				enabled = v
			}
		} else if v, ok := couple.Enabled[id]; ok {
			enabled = v
		}
		if !enabled || hidden[id] {
			continue
		}

		// Step 5: size resolution.
		size, sized := catalog.Size{}, false
		if personal && override.Sizes != nil {
			if s, ok := override.Sizes[id]; ok {
				size, sized = s, true
			}
		}
		if !sized {
			if s, ok := couple.Sizes[id]; ok {
				size, sized = s, true
			}
		}
		if !sized {
			size, _ = cat.DefaultSize(id)
		}

		w, _ := cat.Widget(id)
		rw := ResolvedWidget{ID: id, Label: w.Label, Size: size}
		// Step 6: content overrides are provider-authored and never personalized.
		if raw, ok := couple.ContentOverrides[id]; ok {
			rw.ContentOverride = raw
		}
		out = append(out, rw)
	}
	return out
}
