package dto

import (
	"time"

	"github.com/partflow/parts-tracking-api/internal/models"
)

// DetailDTO represents a tracked part in API responses
type DetailDTO struct {
	ID        uint64              `json:"id"`
	ProjectID uint64              `json:"project_id"`
	Name      string              `json:"name"`
	Status    models.DetailStatus `json:"status"`
	Location  string              `json:"location"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// AuditLogDTO represents one status transition in API responses
type AuditLogDTO struct {
	ID        uint64              `json:"id"`
	ProjectID uint64              `json:"project_id"`
	DetailID  uint64              `json:"detail_id"`
	PartName  string              `json:"part_name"`
	OldStatus models.DetailStatus `json:"old_status"`
	NewStatus models.DetailStatus `json:"new_status"`
	CreatedAt time.Time           `json:"created_at"`
}

// ToDetailDTO converts a ProjectDetail model to DetailDTO
func ToDetailDTO(detail models.ProjectDetail) DetailDTO {
	return DetailDTO{
		ID:        detail.ID,
		ProjectID: detail.ProjectID,
		Name:      detail.Name,
		Status:    detail.Status,
		Location:  detail.Location,
		CreatedAt: detail.CreatedAt,
		UpdatedAt: detail.UpdatedAt,
	}
}

// ToAuditLogDTO converts an AuditLog model to AuditLogDTO
func ToAuditLogDTO(entry models.AuditLog) AuditLogDTO {
	partName := "Unknown Part"
	if entry.Detail.ID != 0 {
		partName = entry.Detail.Name
	}
	return AuditLogDTO{
		ID:        entry.ID,
		ProjectID: entry.ProjectID,
		DetailID:  entry.DetailID,
		PartName:  partName,
		OldStatus: entry.OldStatus,
		NewStatus: entry.NewStatus,
		CreatedAt: entry.CreatedAt,
	}
}
