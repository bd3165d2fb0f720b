package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CoupleLayout is the dashboard baseline every member of a couple sees unless
// they personalize. One row per couple; absence means "use the hard-coded
// default", never an error.
type CoupleLayout struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CoupleID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex;column:couple_id" json:"couple_id"`
	Couple      *Couple    `gorm:"constraint:OnDelete:CASCADE;foreignKey:CoupleID;references:ID" json:"couple,omitempty"`
	TherapistID *uuid.UUID `gorm:"type:uuid;column:therapist_id" json:"therapist_id,omitempty"`

	WidgetOrder            datatypes.JSON `gorm:"type:jsonb;column:widget_order" json:"widget_order"`
	EnabledWidgets         datatypes.JSON `gorm:"type:jsonb;column:enabled_widgets" json:"enabled_widgets"`
	WidgetSizes            datatypes.JSON `gorm:"type:jsonb;column:widget_sizes" json:"widget_sizes"`
	WidgetContentOverrides datatypes.JSON `gorm:"type:jsonb;column:widget_content_overrides" json:"widget_content_overrides"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (CoupleLayout) TableName() string { return "couple_layout" }
