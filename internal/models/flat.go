package models

// Flat is a shared household. Every query in the ledger is scoped by its ID.
// Flats are created on the first registration that uses an unseen code and
// are never modified afterwards.
type Flat struct {
	// ID is the auto-increment primary key.
	ID uint `gorm:"primaryKey" json:"id"`
	// Code is the human-entered join code. Unique across flats.
	Code string `gorm:"type:text;not null;uniqueIndex" json:"code"`
	// Name is the display name, "Flat <code>" for flats created on registration.
	Name string `gorm:"type:text;not null" json:"name"`
}
