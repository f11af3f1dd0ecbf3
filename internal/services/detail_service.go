package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/partflow/parts-tracking-api/internal/authz"
	"github.com/partflow/parts-tracking-api/internal/constants"
	"github.com/partflow/parts-tracking-api/internal/models"
	"github.com/partflow/parts-tracking-api/internal/repository"
	"github.com/partflow/parts-tracking-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrDetailNotFound      = errors.New("detail not found")
	ErrDetailNameRequired  = errors.New("detail name is required")
	ErrInvalidDetailStatus = errors.New("invalid detail status")
)

// DetailService provides business logic for tracked parts and their status
// audit trail.
//
// Access policy: every project-scoped detail operation (read by project,
// create, update, delete) applies the effective project-access rule. Listing
// by organization only requires org membership, since that listing is an
// organization-wide view by construction.
type DetailService struct {
	detailRepo  repository.DetailRepository
	projectRepo repository.ProjectRepository
	resolver    *authz.Resolver
}

// NewDetailService creates a new DetailService.
func NewDetailService(detailRepo repository.DetailRepository, projectRepo repository.ProjectRepository, resolver *authz.Resolver) *DetailService {
	return &DetailService{
		detailRepo:  detailRepo,
		projectRepo: projectRepo,
		resolver:    resolver,
	}
}

// ListDetailsInput represents filters for listing details. Exactly one of
// OrganizationID or ProjectID must be set.
type ListDetailsInput struct {
	UserID         uint64
	OrganizationID *uint64
	ProjectID      *uint64
	Status         *models.DetailStatus
	Pagination     utils.PaginationParams
}

// ListDetails returns details scoped to an organization or a project.
func (s *DetailService) ListDetails(input ListDetailsInput) ([]models.ProjectDetail, int64, error) {
	filter := repository.DetailFilter{
		Status:     input.Status,
		Pagination: input.Pagination,
	}

	switch {
	case input.ProjectID != nil:
		project, err := s.findProject(*input.ProjectID)
		if err != nil {
			return nil, 0, err
		}
		canView, err := s.resolver.CanViewProject(input.UserID, project)
		if err != nil {
			return nil, 0, err
		}
		if !canView {
			return nil, 0, ErrAccessDenied
		}
		filter.ProjectID = input.ProjectID

	case input.OrganizationID != nil:
		isMember, err := s.resolver.IsOrgMember(input.UserID, *input.OrganizationID)
		if err != nil {
			return nil, 0, err
		}
		if !isMember {
			return nil, 0, ErrNotOrganizationMember
		}
		filter.OrganizationID = input.OrganizationID

	default:
		return nil, 0, errors.New("organization or project id is required")
	}

	details, total, err := s.detailRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list details: %w", err)
	}
	return details, total, nil
}

// CreateDetailInput represents input for creating a part.
type CreateDetailInput struct {
	ProjectID uint64
	Name      string
	Location  string
	Status    models.DetailStatus
	UserID    uint64
}

// CreateDetail creates a part under a project.
func (s *DetailService) CreateDetail(input CreateDetailInput) (*models.ProjectDetail, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrDetailNameRequired
	}

	project, err := s.findProject(input.ProjectID)
	if err != nil {
		return nil, err
	}
	canView, err := s.resolver.CanViewProject(input.UserID, project)
	if err != nil {
		return nil, err
	}
	if !canView {
		return nil, ErrAccessDenied
	}

	if input.Status == "" {
		input.Status = models.DetailStatusReady
	}
	if !models.ValidDetailStatus(input.Status) {
		return nil, ErrInvalidDetailStatus
	}

	detail := &models.ProjectDetail{
		ProjectID: input.ProjectID,
		Name:      strings.TrimSpace(input.Name),
		Location:  input.Location,
		Status:    input.Status,
	}
	if err := s.detailRepo.Create(detail); err != nil {
		return nil, fmt.Errorf("failed to create detail: %w", err)
	}
	return detail, nil
}

// UpdateDetailInput is a partial patch; nil fields are left unchanged.
type UpdateDetailInput struct {
	Name     *string
	Location *string
	Status   *models.DetailStatus
}

// Empty reports whether the patch carries no fields at all.
func (in UpdateDetailInput) Empty() bool {
	return in.Name == nil && in.Location == nil && in.Status == nil
}

// UpdateDetail applies a partial patch to a part. An empty patch returns the
// current detail with changed=false. A status transition where old differs
// from new appends exactly one audit entry; the audit write is best-effort
// and never fails the update.
func (s *DetailService) UpdateDetail(detailID, actorID uint64, input UpdateDetailInput) (*models.ProjectDetail, bool, error) {
	detail, err := s.findDetail(detailID)
	if err != nil {
		return nil, false, err
	}

	canView, err := s.resolver.CanViewProject(actorID, &detail.Project)
	if err != nil {
		return nil, false, err
	}
	if !canView {
		return nil, false, ErrAccessDenied
	}

	if input.Empty() {
		return detail, false, nil
	}

	oldStatus := detail.Status

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, false, ErrDetailNameRequired
		}
		detail.Name = strings.TrimSpace(*input.Name)
	}
	if input.Location != nil {
		detail.Location = *input.Location
	}
	if input.Status != nil {
		if !models.ValidDetailStatus(*input.Status) {
			return nil, false, ErrInvalidDetailStatus
		}
		detail.Status = *input.Status
	}

	if err := s.detailRepo.Update(detail); err != nil {
		return nil, false, fmt.Errorf("failed to update detail: %w", err)
	}

	if detail.Status != oldStatus {
		entry := &models.AuditLog{
			OrganizationID: detail.Project.OrganizationID,
			ProjectID:      detail.ProjectID,
			DetailID:       detail.ID,
			OldStatus:      oldStatus,
			NewStatus:      detail.Status,
		}
		if err := s.detailRepo.AppendAuditLog(entry); err != nil {
			log.Printf("audit log write failed for detail %d: %v", detail.ID, err)
		}
	}

	return detail, true, nil
}

// DeleteDetail removes a part.
func (s *DetailService) DeleteDetail(detailID, actorID uint64) error {
	detail, err := s.findDetail(detailID)
	if err != nil {
		return err
	}

	canView, err := s.resolver.CanViewProject(actorID, &detail.Project)
	if err != nil {
		return err
	}
	if !canView {
		return ErrAccessDenied
	}

	if err := s.detailRepo.Delete(detailID); err != nil {
		return fmt.Errorf("failed to delete detail: %w", err)
	}
	return nil
}

// GetAuditLogs returns the newest status transitions for a project, newest
// first, capped at the audit log limit.
func (s *DetailService) GetAuditLogs(projectID, userID uint64) ([]models.AuditLog, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}

	canView, err := s.resolver.CanViewProject(userID, project)
	if err != nil {
		return nil, err
	}
	if !canView {
		return nil, ErrAccessDenied
	}

	logs, err := s.detailRepo.ListAuditLogs(projectID, constants.AuditLogLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}

func (s *DetailService) findProject(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

func (s *DetailService) findDetail(detailID uint64) (*models.ProjectDetail, error) {
	detail, err := s.detailRepo.FindByID(detailID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDetailNotFound
		}
		return nil, fmt.Errorf("failed to find detail: %w", err)
	}
	return detail, nil
}
