package services

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/attunelab/attune-backend/internal/catalog"
	"github.com/attunelab/attune-backend/internal/layout"
	"github.com/attunelab/attune-backend/internal/types"
)

// LayoutFields is the decoded form of the four jsonb layout columns shared by
// couple layouts and templates. A nil field means "omitted by the caller".
type LayoutFields struct {
	WidgetOrder            []string                   `json:"widget_order"`
	EnabledWidgets         map[string]bool            `json:"enabled_widgets"`
	WidgetSizes            map[string]catalog.Size    `json:"widget_sizes"`
	WidgetContentOverrides map[string]json.RawMessage `json:"widget_content_overrides"`
}

func validateSizes(sizes map[string]catalog.Size) error {
	for id, s := range sizes {
		if !s.Valid() {
			return fmt.Errorf("widget %q has invalid size {columns:%d rows:%d}", id, s.Columns, s.Rows)
		}
	}
	return nil
}

func encodeJSON(v interface{}) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// The decode helpers are tolerant on purpose: stored rows may predate widget
// retirements or schema tweaks and the resolver must keep rendering, so a
// malformed column decodes to its zero value instead of failing the request.

func decodeOrder(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func decodeEnabled(raw datatypes.JSON) map[string]bool {
	if len(raw) == 0 {
		return nil
	}
	var out map[string]bool
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func decodeSizes(raw datatypes.JSON) map[string]catalog.Size {
	if len(raw) == 0 {
		return nil
	}
	var out map[string]catalog.Size
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func decodeContent(raw datatypes.JSON) map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func coupleViewOf(row *types.CoupleLayout) layout.CoupleView {
	if row == nil {
		return layout.CoupleView{}
	}
	return layout.CoupleView{
		Order:            decodeOrder(row.WidgetOrder),
		Enabled:          decodeEnabled(row.EnabledWidgets),
		Sizes:            decodeSizes(row.WidgetSizes),
		ContentOverrides: decodeContent(row.WidgetContentOverrides),
	}
}

func overrideViewOf(row *types.IndividualLayoutOverride) *layout.OverrideView {
	if row == nil {
		return nil
	}
	return &layout.OverrideView{
		UsePersonalLayout: row.UsePersonalLayout,
		Order:             decodeOrder(row.WidgetOrder),
		Enabled:           decodeEnabled(row.EnabledWidgets),
		Sizes:             decodeSizes(row.WidgetSizes),
		Hidden:            decodeOrder(row.HiddenWidgets),
	}
}
