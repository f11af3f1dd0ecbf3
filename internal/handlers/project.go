package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/partflow/parts-tracking-api/internal/dto"
	apierrors "github.com/partflow/parts-tracking-api/internal/errors"
	"github.com/partflow/parts-tracking-api/internal/middleware"
	"github.com/partflow/parts-tracking-api/internal/models"
	"github.com/partflow/parts-tracking-api/internal/services"
)

// ProjectHandler coordinates project and project-membership HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// ListProjects lists the projects of an organization for its members.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	orgID, err := strconv.ParseUint(c.Query("organization_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Missing or invalid organization_id parameter")
		return
	}

	projects, err := h.projectService.ListProjects(orgID, userID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	projectDTOs := make([]dto.ProjectDTO, len(projects))
	for i, project := range projects {
		projectDTOs[i] = dto.ToProjectDTO(project)
	}

	c.JSON(http.StatusOK, gin.H{"projects": projectDTOs})
}

// CreateProject creates a project; org Owner/Admin only. The creator is
// granted the ProjectOwner role automatically.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateProjectRequest struct {
		Name           string `json:"name" binding:"required"`
		OrganizationID uint64 `json:"organization_id" binding:"required"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(req.Name, req.OrganizationID, userID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"project": dto.ToProjectDTO(*project)})
}

// GetProject returns a project with the caller's resolved roles.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, projectID, ok := h.requestScope(c)
	if !ok {
		return
	}

	project, roles, err := h.projectService.GetProject(projectID, userID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProjectWithRolesDTO{
		Project:     dto.ToProjectDTO(*project),
		OrgRole:     roles.OrgRole,
		ProjectRole: roles.ProjectRole,
	})
}

// UpdateProject renames a project.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, projectID, ok := h.requestScope(c)
	if !ok {
		return
	}

	type UpdateProjectRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.RenameProject(projectID, userID, req.Name)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": dto.ToProjectDTO(*project)})
}

// DeleteProject deletes a project and everything scoped to it.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, projectID, ok := h.requestScope(c)
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(projectID, userID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

// ListMembers lists the project's members with their roles.
func (h *ProjectHandler) ListMembers(c *gin.Context) {
	userID, projectID, ok := h.requestScope(c)
	if !ok {
		return
	}

	roles, err := h.projectService.ListMembers(projectID, userID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	memberDTOs := make([]dto.ProjectMemberDTO, len(roles))
	for i, role := range roles {
		memberDTOs[i] = dto.ToProjectMemberDTO(role)
	}

	c.JSON(http.StatusOK, gin.H{"users": memberDTOs})
}

// AddMember grants a project role to an existing org member.
func (h *ProjectHandler) AddMember(c *gin.Context) {
	userID, projectID, ok := h.requestScope(c)
	if !ok {
		return
	}

	type AddMemberRequest struct {
		UserID uint64        `json:"user_id" binding:"required"`
		RoleID models.RoleID `json:"role_id"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "User ID is required")
		return
	}

	if err := h.projectService.AddMember(projectID, userID, req.UserID, req.RoleID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member added to project"})
}

// UpdateMemberRole changes a member's project role.
func (h *ProjectHandler) UpdateMemberRole(c *gin.Context) {
	userID, projectID, ok := h.requestScope(c)
	if !ok {
		return
	}

	type UpdateMemberRequest struct {
		UserID uint64        `json:"user_id" binding:"required"`
		RoleID models.RoleID `json:"role_id" binding:"required"`
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.projectService.UpdateMemberRole(projectID, userID, req.UserID, req.RoleID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member role updated"})
}

// RemoveMember removes a member from the project.
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	userID, projectID, ok := h.requestScope(c)
	if !ok {
		return
	}

	type RemoveMemberRequest struct {
		UserID uint64 `json:"user_id" binding:"required"`
	}

	var req RemoveMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.projectService.RemoveMember(projectID, userID, req.UserID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed from project"})
}

func (h *ProjectHandler) requestScope(c *gin.Context) (userID, projectID uint64, ok bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, 0, false
	}

	projectID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return 0, 0, false
	}

	return userID, projectID, true
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNameRequired),
		errors.Is(err, services.ErrInvalidProjectRole),
		errors.Is(err, services.ErrTargetNotOrgMember):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrProjectRoleNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAlreadyProjectMember):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrAccessDenied),
		errors.Is(err, services.ErrNotOrganizationMember),
		errors.Is(err, services.ErrOrgAdminProjectFloor),
		errors.Is(err, services.ErrCannotRemoveOrgAdmin):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
