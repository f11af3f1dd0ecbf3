package dto

import (
	"time"

	"github.com/partflow/parts-tracking-api/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID             uint64               `json:"id"`
	Name           string               `json:"name"`
	OrganizationID uint64               `json:"organization_id"`
	Status         models.ProjectStatus `json:"status"`
	CreatedAt      time.Time            `json:"created_at"`
}

// ProjectWithRolesDTO pairs a project with the caller's resolved roles
type ProjectWithRolesDTO struct {
	Project     ProjectDTO    `json:"project"`
	OrgRole     models.RoleID `json:"org_role,omitempty"`
	ProjectRole models.RoleID `json:"project_role,omitempty"`
}

// ProjectMemberDTO represents a project member with their role
type ProjectMemberDTO struct {
	User     UserDTO       `json:"user"`
	RoleID   models.RoleID `json:"role_id"`
	RoleName string        `json:"role_name"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:             project.ID,
		Name:           project.Name,
		OrganizationID: project.OrganizationID,
		Status:         project.Status,
		CreatedAt:      project.CreatedAt,
	}
}

// ToProjectMemberDTO converts a project role row with its user to DTO
func ToProjectMemberDTO(role models.ProjectRole) ProjectMemberDTO {
	return ProjectMemberDTO{
		User:     ToUserDTO(role.User),
		RoleID:   role.RoleID,
		RoleName: role.RoleID.Name(),
	}
}
