package types

import (
	"time"

	"github.com/google/uuid"
)

type Couple struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TherapistID *uuid.UUID `gorm:"type:uuid;column:therapist_id" json:"therapist_id,omitempty"`
	Therapist   *Therapist `gorm:"foreignKey:TherapistID;references:ID" json:"therapist,omitempty"`
	Name        string     `gorm:"column:name" json:"name"`
	CreatedAt   time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Couple) TableName() string { return "couple" }
