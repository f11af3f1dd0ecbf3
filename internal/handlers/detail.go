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
	"github.com/partflow/parts-tracking-api/internal/utils"
)

// DetailHandler coordinates tracked-part and audit-log HTTP handlers.
type DetailHandler struct {
	detailService *services.DetailService
}

// NewDetailHandler creates a new DetailHandler.
func NewDetailHandler(detailService *services.DetailService) *DetailHandler {
	return &DetailHandler{
		detailService: detailService,
	}
}

// ListDetails lists tracked parts scoped to a project or a whole organization,
// with optional status filtering and pagination.
func (h *DetailHandler) ListDetails(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	input := services.ListDetailsInput{UserID: userID}

	if raw := c.Query("project_id"); raw != "" {
		projectID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project_id parameter")
			return
		}
		input.ProjectID = &projectID
	} else if raw := c.Query("organization_id"); raw != "" {
		orgID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid organization_id parameter")
			return
		}
		input.OrganizationID = &orgID
	} else {
		apierrors.BadRequest(c, "project_id or organization_id parameter is required")
		return
	}

	if raw := c.Query("status"); raw != "" {
		status := models.DetailStatus(raw)
		if !models.ValidDetailStatus(status) {
			apierrors.BadRequest(c, "Invalid status parameter")
			return
		}
		input.Status = &status
	}

	pagination := utils.GetPaginationParams(c)
	input.Pagination = pagination

	details, total, err := h.detailService.ListDetails(input)
	if err != nil {
		respondDetailError(c, err)
		return
	}

	detailDTOs := make([]dto.DetailDTO, len(details))
	for i, detail := range details {
		detailDTOs[i] = dto.ToDetailDTO(detail)
	}

	c.JSON(http.StatusOK, gin.H{
		"details": detailDTOs,
		"pagination": utils.PaginationResponse{
			Page:  pagination.Page,
			Limit: pagination.Limit,
			Total: total,
		},
	})
}

// CreateDetail creates a tracked part under a project.
func (h *DetailHandler) CreateDetail(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateDetailRequest struct {
		ProjectID uint64              `json:"project_id" binding:"required"`
		Name      string              `json:"name" binding:"required"`
		Location  string              `json:"location"`
		Status    models.DetailStatus `json:"status"`
	}

	var req CreateDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	detail, err := h.detailService.CreateDetail(services.CreateDetailInput{
		ProjectID: req.ProjectID,
		Name:      req.Name,
		Location:  req.Location,
		Status:    req.Status,
		UserID:    userID,
	})
	if err != nil {
		respondDetailError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"detail": dto.ToDetailDTO(*detail)})
}

// UpdateDetail applies a partial patch to a tracked part. An empty patch is a
// no-op acknowledged without writing anything.
func (h *DetailHandler) UpdateDetail(c *gin.Context) {
	userID, detailID, ok := h.requestScope(c)
	if !ok {
		return
	}

	type UpdateDetailRequest struct {
		Name     *string              `json:"name"`
		Location *string              `json:"location"`
		Status   *models.DetailStatus `json:"status"`
	}

	var req UpdateDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	detail, changed, err := h.detailService.UpdateDetail(detailID, userID, services.UpdateDetailInput{
		Name:     req.Name,
		Location: req.Location,
		Status:   req.Status,
	})
	if err != nil {
		respondDetailError(c, err)
		return
	}

	if !changed {
		c.JSON(http.StatusOK, gin.H{
			"detail":  dto.ToDetailDTO(*detail),
			"message": "No changes",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"detail": dto.ToDetailDTO(*detail)})
}

// DeleteDetail removes a tracked part.
func (h *DetailHandler) DeleteDetail(c *gin.Context) {
	userID, detailID, ok := h.requestScope(c)
	if !ok {
		return
	}

	if err := h.detailService.DeleteDetail(detailID, userID); err != nil {
		respondDetailError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Detail deleted successfully"})
}

// GetAuditLogs returns the newest status transitions for a project.
func (h *DetailHandler) GetAuditLogs(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, err := strconv.ParseUint(c.Query("project_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Missing or invalid project_id parameter")
		return
	}

	logs, err := h.detailService.GetAuditLogs(projectID, userID)
	if err != nil {
		respondDetailError(c, err)
		return
	}

	logDTOs := make([]dto.AuditLogDTO, len(logs))
	for i, entry := range logs {
		logDTOs[i] = dto.ToAuditLogDTO(entry)
	}

	c.JSON(http.StatusOK, gin.H{"logs": logDTOs})
}

func (h *DetailHandler) requestScope(c *gin.Context) (userID, detailID uint64, ok bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, 0, false
	}

	detailID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid detail ID")
		return 0, 0, false
	}

	return userID, detailID, true
}

func respondDetailError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrDetailNameRequired),
		errors.Is(err, services.ErrInvalidDetailStatus):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrDetailNotFound),
		errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAccessDenied),
		errors.Is(err, services.ErrNotOrganizationMember):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
