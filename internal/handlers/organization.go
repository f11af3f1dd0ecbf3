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

// OrganizationHandler coordinates organization and membership HTTP handlers.
type OrganizationHandler struct {
	orgService *services.OrganizationService
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(orgService *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{
		orgService: orgService,
	}
}

// CreateOrganization creates a new organization owned by the caller.
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateOrgRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	org, err := h.orgService.CreateOrganization(req.Name, userID)
	if err != nil {
		respondOrgError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToOrganizationDTO(*org))
}

// ListOrganizations returns the organizations the caller belongs to.
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	roles, err := h.orgService.ListOrganizationsForUser(userID)
	if err != nil {
		respondOrgError(c, err)
		return
	}

	orgs := make([]dto.OrganizationWithRoleDTO, len(roles))
	for i, role := range roles {
		orgs[i] = dto.ToOrganizationWithRoleDTO(role)
	}

	c.JSON(http.StatusOK, gin.H{"organizations": orgs})
}

// GetOrganization returns organization details for members.
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	userID, orgID, ok := h.requestScope(c)
	if !ok {
		return
	}

	org, members, yourRole, err := h.orgService.GetOrganization(orgID, userID)
	if err != nil {
		respondOrgError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDetailDTO(*org, members, yourRole))
}

// UpdateOrganization renames an organization; owner only.
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	userID, orgID, ok := h.requestScope(c)
	if !ok {
		return
	}

	type UpdateOrgRequest struct {
		Name string `json:"name" binding:"required"`
	}

	var req UpdateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	org, err := h.orgService.UpdateOrganizationName(orgID, userID, req.Name)
	if err != nil {
		respondOrgError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*org))
}

// DeleteOrganization deletes an organization and cascades everything scoped
// to it; owner only.
func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	userID, orgID, ok := h.requestScope(c)
	if !ok {
		return
	}

	if err := h.orgService.DeleteOrganization(orgID, userID); err != nil {
		respondOrgError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Organization deleted successfully",
	})
}

// ListMembers lists the organization's members with their roles.
func (h *OrganizationHandler) ListMembers(c *gin.Context) {
	userID, orgID, ok := h.requestScope(c)
	if !ok {
		return
	}

	members, err := h.orgService.ListMembers(orgID, userID)
	if err != nil {
		respondOrgError(c, err)
		return
	}

	memberDTOs := make([]dto.OrganizationMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = dto.ToOrganizationMemberDTO(member)
	}

	c.JSON(http.StatusOK, gin.H{"users": memberDTOs})
}

// AddMember adds a collaborator by email: registered users are granted
// membership directly, unknown emails receive a time-boxed invitation.
func (h *OrganizationHandler) AddMember(c *gin.Context) {
	userID, orgID, ok := h.requestScope(c)
	if !ok {
		return
	}

	type AddMemberRequest struct {
		Email  string        `json:"email" binding:"required,email"`
		RoleID models.RoleID `json:"role_id"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Email is required")
		return
	}

	result, err := h.orgService.AddMemberByEmail(orgID, userID, req.Email, req.RoleID)
	if err != nil {
		respondOrgError(c, err)
		return
	}

	if result == services.MemberInvited {
		c.JSON(http.StatusOK, gin.H{"result": result, "message": "Invitation sent"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// UpdateMemberRole changes a member's org role, guarded against Owner edits.
func (h *OrganizationHandler) UpdateMemberRole(c *gin.Context) {
	userID, orgID, ok := h.requestScope(c)
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

	if err := h.orgService.UpdateMemberRole(orgID, userID, req.UserID, req.RoleID); err != nil {
		respondOrgError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member role updated"})
}

// RemoveMember removes a member from the organization, guarded against
// removing the Owner.
func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	userID, orgID, ok := h.requestScope(c)
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

	if err := h.orgService.RemoveMember(orgID, userID, req.UserID); err != nil {
		respondOrgError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}

func (h *OrganizationHandler) requestScope(c *gin.Context) (userID, orgID uint64, ok bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, 0, false
	}

	orgID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid organization ID")
		return 0, 0, false
	}

	return userID, orgID, true
}

func respondOrgError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidOrganizationName),
		errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrInvalidOrgRole):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrOrganizationNotFound),
		errors.Is(err, services.ErrMemberNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrAlreadyInvited):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrAccessDenied),
		errors.Is(err, services.ErrNotOrganizationOwner),
		errors.Is(err, services.ErrNotOrganizationMember),
		errors.Is(err, services.ErrCannotAssignOwnerRole),
		errors.Is(err, services.ErrCannotModifyOwner):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
