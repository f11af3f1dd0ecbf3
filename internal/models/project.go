package models

import (
	"time"

	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusArchived ProjectStatus = "archived"
)

type Project struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	OrganizationID uint64         `gorm:"not null;index" json:"organization_id"`
	Status         ProjectStatus  `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Organization Organization    `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Roles        []ProjectRole   `gorm:"foreignKey:ProjectID" json:"roles,omitempty"`
	Details      []ProjectDetail `gorm:"foreignKey:ProjectID" json:"details,omitempty"`
}

// ProjectRole holds exactly one role per (user, project) pair. The creating
// user receives RoleProjectOwner automatically.
type ProjectRole struct {
	ProjectID uint64 `gorm:"primarykey" json:"project_id"`
	UserID    uint64 `gorm:"primarykey" json:"user_id"`
	RoleID    RoleID `gorm:"not null" json:"role_id"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
