package models

// User представляє мешканця квартири.
// Karma змінюється лише через нарахування за вирішені скарги.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"type:text;not null;uniqueIndex" json:"username"`
	PasswordHash string `gorm:"type:text;not null" json:"-"` // bcrypt, ніколи не серіалізується
	FlatID       *uint  `gorm:"index" json:"flatId"`
	Karma        int    `gorm:"not null;default:0" json:"karma"`

	// IsBestFlatmate зарезервовано: зберігається, але жоден компонент його не перераховує.
	IsBestFlatmate bool `gorm:"not null;default:false" json:"isBestFlatmate"`
}

// BelongsTo reports whether the user is a member of the given flat.
func (u *User) BelongsTo(flatID uint) bool {
	return u.FlatID != nil && *u.FlatID == flatID
}
