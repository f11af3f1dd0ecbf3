package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/partflow/parts-tracking-api/internal/authz"
	"github.com/partflow/parts-tracking-api/internal/models"
	"github.com/partflow/parts-tracking-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectNameRequired  = errors.New("project name is required")
	ErrInvalidProjectRole   = errors.New("invalid project role")
	ErrTargetNotOrgMember   = errors.New("user must be a member of the organization first")
	ErrAlreadyProjectMember = errors.New("user already has a role in this project")
	ErrProjectRoleNotFound  = errors.New("user has no role in this project")
	ErrOrgAdminProjectFloor = errors.New("org Owner/Admins must retain the Project Admin role")
	ErrCannotRemoveOrgAdmin = errors.New("org Owner/Admins cannot be removed from a project")
)

// ProjectRoleInfo pairs the caller's resolved roles when reading a project.
type ProjectRoleInfo struct {
	OrgRole     models.RoleID
	ProjectRole models.RoleID
}

// ProjectService provides business logic for projects and project roles.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	resolver    *authz.Resolver
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, resolver *authz.Resolver) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		resolver:    resolver,
	}
}

// ListProjects returns the organization's projects. Organization membership
// is required; the project list is an organization-wide view.
func (s *ProjectService) ListProjects(organizationID, userID uint64) ([]models.Project, error) {
	isMember, err := s.resolver.IsOrgMember(userID, organizationID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrNotOrganizationMember
	}

	projects, err := s.projectRepo.ListByOrganization(organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// CreateProject creates a project. Only org Owner/Admin may create; the
// creator is granted the ProjectOwner role in the same transaction.
func (s *ProjectService) CreateProject(name string, organizationID, creatorID uint64) (*models.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrProjectNameRequired
	}

	orgRole, hasRole, err := s.resolver.OrgRole(creatorID, organizationID)
	if err != nil {
		return nil, err
	}
	if !hasRole || !authz.IsOrgAdminOrOwner(orgRole) {
		return nil, ErrAccessDenied
	}

	project := &models.Project{
		Name:           strings.TrimSpace(name),
		OrganizationID: organizationID,
	}
	if err := s.projectRepo.CreateWithOwner(project, creatorID); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// GetProject returns a project under the effective access rule: org
// Owner/Admin see every project in the organization, others need a role on
// this specific project.
func (s *ProjectService) GetProject(projectID, userID uint64) (*models.Project, ProjectRoleInfo, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, ProjectRoleInfo{}, err
	}

	canView, err := s.resolver.CanViewProject(userID, project)
	if err != nil {
		return nil, ProjectRoleInfo{}, err
	}
	if !canView {
		return nil, ProjectRoleInfo{}, ErrAccessDenied
	}

	orgRole, _, err := s.resolver.OrgRole(userID, project.OrganizationID)
	if err != nil {
		return nil, ProjectRoleInfo{}, err
	}
	projectRole, _, err := s.resolver.ProjectRole(userID, projectID)
	if err != nil {
		return nil, ProjectRoleInfo{}, err
	}

	return project, ProjectRoleInfo{OrgRole: orgRole, ProjectRole: projectRole}, nil
}

// RenameProject updates the project name. Project Owner/Admin or org
// Owner/Admin may rename.
func (s *ProjectService) RenameProject(projectID, actorID uint64, name string) (*models.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrProjectNameRequired
	}

	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}

	canManage, err := s.resolver.CanManageProject(actorID, project)
	if err != nil {
		return nil, err
	}
	if !canManage {
		return nil, ErrAccessDenied
	}

	project.Name = strings.TrimSpace(name)
	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

// DeleteProject removes a project with its details, roles and audit logs.
// Org Owner/Admin or the ProjectOwner may delete.
func (s *ProjectService) DeleteProject(projectID, actorID uint64) error {
	project, err := s.findProject(projectID)
	if err != nil {
		return err
	}

	canDelete, err := s.resolver.CanDeleteProject(actorID, project)
	if err != nil {
		return err
	}
	if !canDelete {
		return ErrAccessDenied
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// ListMembers returns the project's role rows under the effective access rule.
func (s *ProjectService) ListMembers(projectID, actorID uint64) ([]models.ProjectRole, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}

	canView, err := s.resolver.CanViewProject(actorID, project)
	if err != nil {
		return nil, err
	}
	if !canView {
		return nil, ErrAccessDenied
	}

	roles, err := s.projectRepo.ListRoles(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	return roles, nil
}

// AddMember grants a project role to an existing org member. Requires project
// Owner/Admin. Org Owner/Admin targets are pinned to ProjectAdmin.
func (s *ProjectService) AddMember(projectID, actorID, targetID uint64, roleID models.RoleID) error {
	project, err := s.findProject(projectID)
	if err != nil {
		return err
	}
	if err := s.requireManageProjectMembers(projectID, actorID); err != nil {
		return err
	}

	if roleID == 0 {
		roleID = models.RoleEngineer
	}
	if !roleID.IsProjectRole() {
		return ErrInvalidProjectRole
	}

	targetOrgRole, hasOrgRole, err := s.resolver.OrgRole(targetID, project.OrganizationID)
	if err != nil {
		return err
	}
	if !hasOrgRole {
		return ErrTargetNotOrgMember
	}
	if authz.IsOrgAdminOrOwner(targetOrgRole) && roleID != models.RoleProjectAdmin {
		return ErrOrgAdminProjectFloor
	}

	if _, hasProjectRole, err := s.resolver.ProjectRole(targetID, projectID); err != nil {
		return err
	} else if hasProjectRole {
		return ErrAlreadyProjectMember
	}

	role := &models.ProjectRole{
		ProjectID: projectID,
		UserID:    targetID,
		RoleID:    roleID,
	}
	if err := s.projectRepo.AddRole(role); err != nil {
		return fmt.Errorf("failed to add project member: %w", err)
	}
	return nil
}

// UpdateMemberRole changes a member's project role. A target holding org
// Owner/Admin must keep ProjectAdmin; demoting them is rejected.
func (s *ProjectService) UpdateMemberRole(projectID, actorID, targetID uint64, roleID models.RoleID) error {
	project, err := s.findProject(projectID)
	if err != nil {
		return err
	}
	if err := s.requireManageProjectMembers(projectID, actorID); err != nil {
		return err
	}

	if !roleID.IsProjectRole() {
		return ErrInvalidProjectRole
	}

	targetOrgRole, hasOrgRole, err := s.resolver.OrgRole(targetID, project.OrganizationID)
	if err != nil {
		return err
	}
	if hasOrgRole && authz.IsOrgAdminOrOwner(targetOrgRole) && roleID != models.RoleProjectAdmin {
		return ErrOrgAdminProjectFloor
	}

	if _, hasProjectRole, err := s.resolver.ProjectRole(targetID, projectID); err != nil {
		return err
	} else if !hasProjectRole {
		return ErrProjectRoleNotFound
	}

	if err := s.projectRepo.UpdateRole(projectID, targetID, roleID); err != nil {
		return fmt.Errorf("failed to update project role: %w", err)
	}
	return nil
}

// RemoveMember deletes a member's project role. Org Owner/Admin targets
// cannot be removed from a project at all.
func (s *ProjectService) RemoveMember(projectID, actorID, targetID uint64) error {
	project, err := s.findProject(projectID)
	if err != nil {
		return err
	}
	if err := s.requireManageProjectMembers(projectID, actorID); err != nil {
		return err
	}

	targetOrgRole, hasOrgRole, err := s.resolver.OrgRole(targetID, project.OrganizationID)
	if err != nil {
		return err
	}
	if hasOrgRole && authz.IsOrgAdminOrOwner(targetOrgRole) {
		return ErrCannotRemoveOrgAdmin
	}

	if _, hasProjectRole, err := s.resolver.ProjectRole(targetID, projectID); err != nil {
		return err
	} else if !hasProjectRole {
		return ErrProjectRoleNotFound
	}

	if err := s.projectRepo.RemoveRole(projectID, targetID); err != nil {
		return fmt.Errorf("failed to remove project member: %w", err)
	}
	return nil
}

func (s *ProjectService) findProject(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) requireManageProjectMembers(projectID, actorID uint64) error {
	role, hasRole, err := s.resolver.ProjectRole(actorID, projectID)
	if err != nil {
		return err
	}
	if !hasRole || !authz.CanManageProjectUsers(role) {
		return ErrAccessDenied
	}
	return nil
}
