package models

import (
	"time"

	"gorm.io/gorm"
)

type DetailStatus string

const (
	DetailStatusReady     DetailStatus = "ready"
	DetailStatusInTransit DetailStatus = "in_transit"
	DetailStatusDelayed   DetailStatus = "delayed"
)

// ValidDetailStatus reports whether s is one of the known part statuses.
func ValidDetailStatus(s DetailStatus) bool {
	switch s {
	case DetailStatusReady, DetailStatusInTransit, DetailStatusDelayed:
		return true
	}
	return false
}

// ProjectDetail is a tracked part scoped to one project. Status transitions
// are the unit of audit logging.
type ProjectDetail struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	ProjectID uint64         `gorm:"not null;index" json:"project_id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Status    DetailStatus   `gorm:"type:varchar(20);not null;default:'ready'" json:"status"`
	Location  string         `gorm:"type:varchar(255)" json:"location"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}
