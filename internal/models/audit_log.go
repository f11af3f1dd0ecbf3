package models

import "time"

// AuditLog records a part status transition. Rows are append-only and never
// updated; they are written only when a PATCH changes a detail's status.
type AuditLog struct {
	ID             uint64       `gorm:"primarykey" json:"id"`
	OrganizationID uint64       `gorm:"not null;index" json:"organization_id"`
	ProjectID      uint64       `gorm:"not null;index" json:"project_id"`
	DetailID       uint64       `gorm:"not null;index" json:"detail_id"`
	OldStatus      DetailStatus `gorm:"type:varchar(20);not null" json:"old_status"`
	NewStatus      DetailStatus `gorm:"type:varchar(20);not null" json:"new_status"`
	CreatedAt      time.Time    `json:"created_at"`

	// Relations
	Detail ProjectDetail `gorm:"foreignKey:DetailID" json:"detail,omitempty"`
}
