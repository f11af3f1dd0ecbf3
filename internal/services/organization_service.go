package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/partflow/parts-tracking-api/internal/authz"
	"github.com/partflow/parts-tracking-api/internal/constants"
	"github.com/partflow/parts-tracking-api/internal/models"
	"github.com/partflow/parts-tracking-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrAccessDenied            = errors.New("access denied")
	ErrOrganizationNotFound    = errors.New("organization not found")
	ErrInvalidOrganizationName = errors.New("organization name cannot be empty")
	ErrNotOrganizationOwner    = errors.New("only the organization owner can perform this action")
	ErrNotOrganizationMember   = errors.New("user is not a member of the organization")
	ErrAlreadyMember           = errors.New("user is already a member of this organization")
	ErrAlreadyInvited          = errors.New("user already has a pending invitation")
	ErrMemberNotFound          = errors.New("organization member not found")
	ErrEmailRequired           = errors.New("email is required")
	ErrInvalidOrgRole          = errors.New("invalid organization role")
	ErrCannotAssignOwnerRole   = errors.New("the Owner role cannot be granted through member management")
	ErrCannotModifyOwner       = errors.New("the organization Owner's role cannot be changed or removed")
)

// MemberAddResult tells the caller which of the two add paths was taken.
type MemberAddResult string

const (
	MemberAdded   MemberAddResult = "added"
	MemberInvited MemberAddResult = "invited"
)

// OrganizationService provides business logic for organizations, their
// members and pending invitations.
type OrganizationService struct {
	orgRepo  repository.OrganizationRepository
	userRepo repository.UserRepository
	resolver *authz.Resolver
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(orgRepo repository.OrganizationRepository, userRepo repository.UserRepository, resolver *authz.Resolver) *OrganizationService {
	return &OrganizationService{
		orgRepo:  orgRepo,
		userRepo: userRepo,
		resolver: resolver,
	}
}

// CreateOrganization creates a new organization owned by the caller. The
// owner's membership and Owner role are written in the same transaction.
func (s *OrganizationService) CreateOrganization(name string, ownerID uint64) (*models.Organization, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidOrganizationName
	}

	org := &models.Organization{Name: strings.TrimSpace(name)}
	if err := s.orgRepo.CreateWithOwner(org, ownerID); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	return org, nil
}

// ListOrganizationsForUser returns the caller's organizations with their role
// in each.
func (s *OrganizationService) ListOrganizationsForUser(userID uint64) ([]models.OrgRole, error) {
	roles, err := s.orgRepo.ListRolesByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return roles, nil
}

// GetOrganization returns the organization, its members and the caller's own
// role. Callers without any role in the organization are denied.
func (s *OrganizationService) GetOrganization(orgID, userID uint64) (*models.Organization, []models.OrgRole, models.RoleID, error) {
	org, err := s.findOrganization(orgID)
	if err != nil {
		return nil, nil, 0, err
	}

	yourRole, hasRole, err := s.resolver.OrgRole(userID, orgID)
	if err != nil {
		return nil, nil, 0, err
	}
	if !hasRole {
		return nil, nil, 0, ErrAccessDenied
	}

	members, err := s.orgRepo.ListMemberRoles(orgID)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to list organization members: %w", err)
	}

	return org, members, yourRole, nil
}

// UpdateOrganizationName renames an organization. Only the owner may rename.
func (s *OrganizationService) UpdateOrganizationName(orgID, actorID uint64, name string) (*models.Organization, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidOrganizationName
	}

	org, err := s.findOrganization(orgID)
	if err != nil {
		return nil, err
	}
	if org.OwnerID != actorID {
		return nil, ErrNotOrganizationOwner
	}

	org.Name = strings.TrimSpace(name)
	if err := s.orgRepo.Update(org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	return org, nil
}

// DeleteOrganization removes an organization and everything scoped to it.
// Only the owner may delete.
func (s *OrganizationService) DeleteOrganization(orgID, actorID uint64) error {
	org, err := s.findOrganization(orgID)
	if err != nil {
		return err
	}
	if org.OwnerID != actorID {
		return ErrNotOrganizationOwner
	}

	if err := s.orgRepo.Delete(orgID); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	return nil
}

// ListMembers returns the organization's members with role ids. Any member
// may list; outsiders are denied.
func (s *OrganizationService) ListMembers(orgID, actorID uint64) ([]models.OrgRole, error) {
	if _, err := s.findOrganization(orgID); err != nil {
		return nil, err
	}

	_, hasRole, err := s.resolver.OrgRole(actorID, orgID)
	if err != nil {
		return nil, err
	}
	if !hasRole {
		return nil, ErrAccessDenied
	}

	members, err := s.orgRepo.ListMemberRoles(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organization members: %w", err)
	}
	return members, nil
}

// AddMemberByEmail adds a collaborator to the organization by email. When the
// email belongs to a registered user, membership and role rows are granted
// directly; otherwise a time-boxed invitation is created so unregistered
// collaborators need no out-of-band provisioning.
func (s *OrganizationService) AddMemberByEmail(orgID, actorID uint64, email string, roleID models.RoleID) (MemberAddResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", ErrEmailRequired
	}

	if _, err := s.findOrganization(orgID); err != nil {
		return "", err
	}
	if err := s.requireManageMembers(orgID, actorID); err != nil {
		return "", err
	}

	if roleID == 0 {
		roleID = models.RoleOrgUser
	}
	if !roleID.IsOrgRole() {
		return "", ErrInvalidOrgRole
	}
	if roleID == models.RoleOrgOwner {
		return "", ErrCannotAssignOwnerRole
	}

	target, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("failed to look up user: %w", err)
		}

		// No account yet: reuse a live invitation or create a fresh one.
		if _, err := s.orgRepo.FindLiveInvitation(email, orgID, time.Now()); err == nil {
			return "", ErrAlreadyInvited
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("failed to check invitations: %w", err)
		}

		invite := &models.Invitation{
			Email:          email,
			OrganizationID: orgID,
			RoleID:         roleID,
			ExpiresAt:      time.Now().Add(constants.InvitationTTL),
		}
		if err := s.orgRepo.CreateInvitation(invite); err != nil {
			return "", fmt.Errorf("failed to create invitation: %w", err)
		}
		return MemberInvited, nil
	}

	if _, hasRole, err := s.resolver.OrgRole(target.ID, orgID); err != nil {
		return "", err
	} else if hasRole {
		return "", ErrAlreadyMember
	}

	membership := &models.OrgMembership{
		OrganizationID: orgID,
		UserID:         target.ID,
		JoinedAt:       time.Now(),
	}
	role := &models.OrgRole{
		OrganizationID: orgID,
		UserID:         target.ID,
		RoleID:         roleID,
	}
	if err := s.orgRepo.AddMemberWithRole(membership, role); err != nil {
		return "", fmt.Errorf("failed to add member: %w", err)
	}

	return MemberAdded, nil
}

// UpdateMemberRole changes a member's org role. The Owner's role is immutable
// and the Owner role cannot be granted here, keeping exactly one Owner per
// organization.
func (s *OrganizationService) UpdateMemberRole(orgID, actorID, targetID uint64, roleID models.RoleID) error {
	if _, err := s.findOrganization(orgID); err != nil {
		return err
	}
	if err := s.requireManageMembers(orgID, actorID); err != nil {
		return err
	}

	if !roleID.IsOrgRole() {
		return ErrInvalidOrgRole
	}
	if roleID == models.RoleOrgOwner {
		return ErrCannotAssignOwnerRole
	}

	targetRole, hasRole, err := s.resolver.OrgRole(targetID, orgID)
	if err != nil {
		return err
	}
	if !hasRole {
		return ErrMemberNotFound
	}
	if targetRole == models.RoleOrgOwner {
		return ErrCannotModifyOwner
	}

	if err := s.orgRepo.UpdateMemberRole(orgID, targetID, roleID); err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}
	return nil
}

// RemoveMember removes a member's role and membership. The Owner can never be
// removed.
func (s *OrganizationService) RemoveMember(orgID, actorID, targetID uint64) error {
	if _, err := s.findOrganization(orgID); err != nil {
		return err
	}
	if err := s.requireManageMembers(orgID, actorID); err != nil {
		return err
	}

	targetRole, hasRole, err := s.resolver.OrgRole(targetID, orgID)
	if err != nil {
		return err
	}
	if !hasRole {
		return ErrMemberNotFound
	}
	if targetRole == models.RoleOrgOwner {
		return ErrCannotModifyOwner
	}

	if err := s.orgRepo.RemoveMember(orgID, targetID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

func (s *OrganizationService) findOrganization(orgID uint64) (*models.Organization, error) {
	org, err := s.orgRepo.FindByID(orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	return org, nil
}

func (s *OrganizationService) requireManageMembers(orgID, actorID uint64) error {
	role, hasRole, err := s.resolver.OrgRole(actorID, orgID)
	if err != nil {
		return err
	}
	if !hasRole || !authz.CanManageOrgUsers(role) {
		return ErrAccessDenied
	}
	return nil
}
