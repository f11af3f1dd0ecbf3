package models

import (
	"time"

	"gorm.io/gorm"
)

type Organization struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	OwnerID   uint64         `gorm:"not null" json:"owner_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Owner    User            `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Members  []OrgMembership `gorm:"foreignKey:OrganizationID" json:"members,omitempty"`
	Projects []Project       `gorm:"foreignKey:OrganizationID" json:"projects,omitempty"`
}

// OrgMembership is the bare user-organization relation. A pair is either
// present or absent; role information lives in OrgRole.
type OrgMembership struct {
	OrganizationID uint64    `gorm:"primarykey" json:"organization_id"`
	UserID         uint64    `gorm:"primarykey" json:"user_id"`
	JoinedAt       time.Time `json:"joined_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	User         User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// OrgRole holds exactly one role per (user, organization) pair. Every OrgRole
// implies a matching OrgMembership, and each organization has exactly one
// RoleOrgOwner row.
type OrgRole struct {
	OrganizationID uint64 `gorm:"primarykey" json:"organization_id"`
	UserID         uint64 `gorm:"primarykey" json:"user_id"`
	RoleID         RoleID `gorm:"not null" json:"role_id"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	User         User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
