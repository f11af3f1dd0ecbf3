package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    string         `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName     string         `gorm:"type:varchar(100);not null" json:"last_name"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	ActivatedAt  *time.Time     `json:"activated_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Sessions     []Session       `gorm:"foreignKey:UserID" json:"-"`
	Memberships  []OrgMembership `gorm:"foreignKey:UserID" json:"-"`
	OrgRoles     []OrgRole       `gorm:"foreignKey:UserID" json:"-"`
	ProjectRoles []ProjectRole   `gorm:"foreignKey:UserID" json:"-"`
}
