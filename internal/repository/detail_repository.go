package repository

import (
	"github.com/partflow/parts-tracking-api/internal/database"
	"github.com/partflow/parts-tracking-api/internal/models"
	"gorm.io/gorm"
)

// GormDetailRepository is a GORM implementation of DetailRepository
type GormDetailRepository struct {
	db *gorm.DB
}

// NewDetailRepository creates a new DetailRepository
func NewDetailRepository(db *gorm.DB) DetailRepository {
	return &GormDetailRepository{db: db}
}

// Create creates a new detail
func (r *GormDetailRepository) Create(detail *models.ProjectDetail) error {
	return r.db.Create(detail).Error
}

// FindByID finds a detail by ID with its project preloaded
func (r *GormDetailRepository) FindByID(id uint64) (*models.ProjectDetail, error) {
	var detail models.ProjectDetail
	if err := r.db.Preload("Project").First(&detail, id).Error; err != nil {
		return nil, err
	}
	return &detail, nil
}

// List retrieves details with filtering and pagination
func (r *GormDetailRepository) List(filter DetailFilter) ([]models.ProjectDetail, int64, error) {
	var details []models.ProjectDetail

	query := r.db.Model(&models.ProjectDetail{})

	if filter.ProjectID != nil {
		query = query.Where("project_details.project_id = ?", *filter.ProjectID)
	}
	if filter.OrganizationID != nil {
		projectIDs := r.db.Model(&models.Project{}).
			Select("id").
			Where("organization_id = ?", *filter.OrganizationID)
		query = query.Where("project_details.project_id IN (?)", projectIDs)
	}
	if filter.Status != nil {
		query = query.Where("project_details.status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("project_details.created_at DESC")
	if filter.Pagination.Limit > 0 {
		listQuery = listQuery.Scopes(database.Paginate(filter.Pagination))
	}

	if err := listQuery.Find(&details).Error; err != nil {
		return nil, 0, err
	}

	return details, total, nil
}

// Update updates a detail
func (r *GormDetailRepository) Update(detail *models.ProjectDetail) error {
	return r.db.Save(detail).Error
}

// Delete soft deletes a detail
func (r *GormDetailRepository) Delete(id uint64) error {
	return r.db.Delete(&models.ProjectDetail{}, id).Error
}

// AppendAuditLog writes one status-transition entry
func (r *GormDetailRepository) AppendAuditLog(entry *models.AuditLog) error {
	return r.db.Create(entry).Error
}

// ListAuditLogs returns the newest entries for a project, newest first
func (r *GormDetailRepository) ListAuditLogs(projectID uint64, limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	if err := r.db.Preload("Detail").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
