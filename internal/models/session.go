package models

import "time"

// Session maps an opaque token to a user. Expired rows are treated as invalid
// on read; deletion happens on logout or via the periodic sweep.
type Session struct {
	Token     string    `gorm:"type:varchar(64);primarykey" json:"-"`
	UserID    uint64    `gorm:"not null;index" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Expired reports whether the session is past its expiry at the given instant.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
