package model

import (
	"time"

	"github.com/google/uuid"
)

// Property is the minimal property record the ledger core needs: a stable ID
// plus display fields denormalized onto trust accounts at opening time.
// Full property/tenant CRUD lives in the portal service, not here.
type Property struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// StandNumber is the surveyor-general stand/lot identifier.
	StandNumber string `gorm:"uniqueIndex;not null"`
	Address     string `gorm:"not null"`
	Suburb      string
	City        string
	Active      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DisplayName is the label shown on statements and account lists.
func (p Property) DisplayName() string {
	name := "Stand " + p.StandNumber
	if p.Address != "" {
		name += ", " + p.Address
	}
	if p.Suburb != "" {
		name += ", " + p.Suburb
	}
	return name
}
