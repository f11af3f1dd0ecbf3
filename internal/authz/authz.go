// Package authz resolves effective roles and answers capability questions for
// organization and project scoped operations.
package authz

import (
	"errors"
	"fmt"

	"github.com/partflow/parts-tracking-api/internal/models"
	"github.com/partflow/parts-tracking-api/internal/repository"
	"gorm.io/gorm"
)

// Capability predicates. Pure functions of a role id; None is represented by
// passing a zero RoleID.

// IsOrgAdminOrOwner reports whether the org role carries organization-wide
// administrative rights.
func IsOrgAdminOrOwner(role models.RoleID) bool {
	return role == models.RoleOrgOwner || role == models.RoleOrgAdmin
}

// IsProjectAdminOrOwner reports whether the project role carries
// project-level administrative rights.
func IsProjectAdminOrOwner(role models.RoleID) bool {
	return role == models.RoleProjectOwner || role == models.RoleProjectAdmin
}

// CanManageOrgUsers is true iff the role may add, update or remove
// organization members.
func CanManageOrgUsers(role models.RoleID) bool {
	return IsOrgAdminOrOwner(role)
}

// CanManageProjectUsers is true iff the role may add, update or remove
// project members.
func CanManageProjectUsers(role models.RoleID) bool {
	return IsProjectAdminOrOwner(role)
}

// Resolver answers role and access questions against the role tables.
type Resolver struct {
	orgRepo     repository.OrganizationRepository
	projectRepo repository.ProjectRepository
}

// NewResolver creates a Resolver on top of the role tables.
func NewResolver(orgRepo repository.OrganizationRepository, projectRepo repository.ProjectRepository) *Resolver {
	return &Resolver{
		orgRepo:     orgRepo,
		projectRepo: projectRepo,
	}
}

// OrgRole returns the user's role in the organization, or false when the user
// holds none.
func (r *Resolver) OrgRole(userID, organizationID uint64) (models.RoleID, bool, error) {
	role, err := r.orgRepo.FindRole(organizationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to resolve org role: %w", err)
	}
	return role.RoleID, true, nil
}

// ProjectRole returns the user's role in the project, or false when the user
// holds none.
func (r *Resolver) ProjectRole(userID, projectID uint64) (models.RoleID, bool, error) {
	role, err := r.projectRepo.FindRole(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to resolve project role: %w", err)
	}
	return role.RoleID, true, nil
}

// IsOrgMember reports whether the bare membership pair exists.
func (r *Resolver) IsOrgMember(userID, organizationID uint64) (bool, error) {
	_, err := r.orgRepo.FindMembership(organizationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to resolve membership: %w", err)
	}
	return true, nil
}

// CanViewProject applies the effective access rule for project-level reads:
// org Owner/Admin see every project in their organization; everyone else
// needs a role on the specific project.
func (r *Resolver) CanViewProject(userID uint64, project *models.Project) (bool, error) {
	orgRole, hasOrgRole, err := r.OrgRole(userID, project.OrganizationID)
	if err != nil {
		return false, err
	}
	if hasOrgRole && IsOrgAdminOrOwner(orgRole) {
		return true, nil
	}

	_, hasProjectRole, err := r.ProjectRole(userID, project.ID)
	if err != nil {
		return false, err
	}
	return hasProjectRole, nil
}

// CanDeleteProject is true for org Owner/Admin and for the ProjectOwner.
func (r *Resolver) CanDeleteProject(userID uint64, project *models.Project) (bool, error) {
	orgRole, hasOrgRole, err := r.OrgRole(userID, project.OrganizationID)
	if err != nil {
		return false, err
	}
	if hasOrgRole && IsOrgAdminOrOwner(orgRole) {
		return true, nil
	}

	projectRole, hasProjectRole, err := r.ProjectRole(userID, project.ID)
	if err != nil {
		return false, err
	}
	return hasProjectRole && projectRole == models.RoleProjectOwner, nil
}

// CanManageProject is true for org Owner/Admin and for project Owner/Admin.
// Used for project renames and project member management.
func (r *Resolver) CanManageProject(userID uint64, project *models.Project) (bool, error) {
	orgRole, hasOrgRole, err := r.OrgRole(userID, project.OrganizationID)
	if err != nil {
		return false, err
	}
	if hasOrgRole && IsOrgAdminOrOwner(orgRole) {
		return true, nil
	}

	projectRole, hasProjectRole, err := r.ProjectRole(userID, project.ID)
	if err != nil {
		return false, err
	}
	return hasProjectRole && CanManageProjectUsers(projectRole), nil
}
