package models

import (
	"time"
)

// ComplaintType is the category a complaint is filed under.
type ComplaintType string

const (
	TypeCleanliness ComplaintType = "Cleanliness"
	TypeNoise       ComplaintType = "Noise"
	TypeBills       ComplaintType = "Bills"
	TypePets        ComplaintType = "Pets"
	TypeOther       ComplaintType = "Other"
)

// ComplaintTypes lists every accepted category in display order.
var ComplaintTypes = []ComplaintType{TypeCleanliness, TypeNoise, TypeBills, TypePets, TypeOther}

// Valid reports whether t is one of the known categories.
func (t ComplaintType) Valid() bool {
	for _, known := range ComplaintTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Severity describes how bad the complainer thinks the problem is.
type Severity string

const (
	SeverityMild     Severity = "Mild"
	SeverityAnnoying Severity = "Annoying"
	SeverityMajor    Severity = "Major"
	SeverityNuclear  Severity = "Nuclear"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityMild, SeverityAnnoying, SeverityMajor, SeverityNuclear:
		return true
	}
	return false
}

// Complaint is a grievance filed by a user against their flat.
// Complaints are never deleted; archival is a soft flag.
type Complaint struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Title       string        `gorm:"type:text;not null" json:"title"`
	Description string        `gorm:"type:text;not null" json:"description"`
	Type        ComplaintType `gorm:"type:text;not null" json:"type"`
	Severity    Severity      `gorm:"type:text;not null" json:"severity"`
	UserID      uint          `gorm:"not null;index" json:"userId"`
	FlatID      uint          `gorm:"not null;index" json:"flatId"`

	IsResolved      bool `gorm:"not null;default:false" json:"isResolved"`
	IsArchived      bool `gorm:"not null;default:false;index" json:"isArchived"`
	IsProblemOfWeek bool `gorm:"not null;default:false" json:"isProblemOfWeek"`

	// Upvotes and Downvotes are derived from the vote set by a full recount.
	Upvotes   int `gorm:"not null;default:0" json:"upvotes"`
	Downvotes int `gorm:"not null;default:0" json:"downvotes"`

	// Punishment is assigned once when upvotes first reach the threshold and never cleared.
	Punishment *string   `gorm:"type:text" json:"punishment"`
	CreatedAt  time.Time `gorm:"not null;index" json:"createdAt"`

	// Author is only populated by listing queries.
	Author *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
