package models

import "time"

// Invitation is a time-boxed pending membership for an email that has no user
// account yet. Accepting it converts the row into User + OrgMembership +
// OrgRole and deletes it. At most one live invitation exists per
// (email, organization).
type Invitation struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	Email          string    `gorm:"type:varchar(255);not null;index" json:"email"`
	OrganizationID uint64    `gorm:"not null;index" json:"organization_id"`
	RoleID         RoleID    `gorm:"not null" json:"role_id"`
	ExpiresAt      time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt      time.Time `json:"created_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}
