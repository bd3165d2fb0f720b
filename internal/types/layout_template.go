package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LayoutTemplate is a reusable named layout bundle a therapist can apply to
// any couple. Applying copies the fields; later template edits never
// retroactively change couples that already applied it.
type LayoutTemplate struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TherapistID uuid.UUID  `gorm:"type:uuid;not null;index;column:therapist_id" json:"therapist_id"`
	Therapist   *Therapist `gorm:"constraint:OnDelete:CASCADE;foreignKey:TherapistID;references:ID" json:"therapist,omitempty"`

	Name        string `gorm:"not null;column:name" json:"name"`
	Description string `gorm:"column:description" json:"description"`
	IsShared    bool   `gorm:"not null;default:false;column:is_shared" json:"is_shared"`

	WidgetOrder            datatypes.JSON `gorm:"type:jsonb;column:widget_order" json:"widget_order"`
	EnabledWidgets         datatypes.JSON `gorm:"type:jsonb;column:enabled_widgets" json:"enabled_widgets"`
	WidgetSizes            datatypes.JSON `gorm:"type:jsonb;column:widget_sizes" json:"widget_sizes"`
	WidgetContentOverrides datatypes.JSON `gorm:"type:jsonb;column:widget_content_overrides" json:"widget_content_overrides"`

	UsageCount int `gorm:"not null;default:0;column:usage_count" json:"usage_count"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (LayoutTemplate) TableName() string { return "layout_template" }
