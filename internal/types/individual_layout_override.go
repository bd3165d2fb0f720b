package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// IndividualLayoutOverride is one member's personal deviation from the couple
// baseline. widget_order / enabled_widgets / widget_sizes are whole-field
// overrides: a NULL column defers to the couple layout for that dimension.
// hidden_widgets always applies, whether or not use_personal_layout is set.
type IndividualLayoutOverride struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:user_id" json:"user_id"`
	User     *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	CoupleID uuid.UUID `gorm:"type:uuid;not null;index;column:couple_id" json:"couple_id"`

	UsePersonalLayout bool `gorm:"not null;default:false;column:use_personal_layout" json:"use_personal_layout"`

	WidgetOrder    datatypes.JSON `gorm:"type:jsonb;column:widget_order" json:"widget_order"`
	EnabledWidgets datatypes.JSON `gorm:"type:jsonb;column:enabled_widgets" json:"enabled_widgets"`
	WidgetSizes    datatypes.JSON `gorm:"type:jsonb;column:widget_sizes" json:"widget_sizes"`
	HiddenWidgets  datatypes.JSON `gorm:"type:jsonb;column:hidden_widgets" json:"hidden_widgets"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (IndividualLayoutOverride) TableName() string { return "individual_layout_override" }
