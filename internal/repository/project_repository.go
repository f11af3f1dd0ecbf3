package repository

import (
	"github.com/partflow/parts-tracking-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// CreateWithOwner creates the project and grants the creator the ProjectOwner
// role in the same transaction.
func (r *GormProjectRepository) CreateWithOwner(project *models.Project, creatorID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if project.Status == "" {
			project.Status = models.ProjectStatusActive
		}
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		role := &models.ProjectRole{
			ProjectID: project.ID,
			UserID:    creatorID,
			RoleID:    models.RoleProjectOwner,
		}
		return tx.Create(role).Error
	})
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListByOrganization lists projects of an organization
func (r *GormProjectRepository) ListByOrganization(organizationID uint64) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.Where("organization_id = ?", organizationID).
		Order("created_at ASC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Delete deletes a project and all data scoped to it in a transaction
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.AuditLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectDetail{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectRole{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, id).Error
	})
}

// FindRole finds the role row for a (user, project) pair
func (r *GormProjectRepository) FindRole(projectID, userID uint64) (*models.ProjectRole, error) {
	var role models.ProjectRole
	if err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// ListRoles lists all role rows of a project with users preloaded
func (r *GormProjectRepository) ListRoles(projectID uint64) ([]models.ProjectRole, error) {
	var roles []models.ProjectRole
	if err := r.db.Preload("User").
		Where("project_id = ?", projectID).
		Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// AddRole inserts a project role row
func (r *GormProjectRepository) AddRole(role *models.ProjectRole) error {
	return r.db.Create(role).Error
}

// UpdateRole replaces the role id for an existing (user, project) pair
func (r *GormProjectRepository) UpdateRole(projectID, userID uint64, roleID models.RoleID) error {
	return r.db.Model(&models.ProjectRole{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("role_id", roleID).Error
}

// RemoveRole deletes a project role row
func (r *GormProjectRepository) RemoveRole(projectID, userID uint64) error {
	return r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectRole{}).Error
}
