package repository

import (
	"time"

	"github.com/partflow/parts-tracking-api/internal/models"
	"github.com/partflow/parts-tracking-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// RegisterWithOrganization creates a user, a brand-new organization owned
	// by that user, the owner membership and role rows, and the initial
	// session within a single transaction.
	RegisterWithOrganization(user *models.User, org *models.Organization, session *models.Session) error

	// RegisterFromInvitation creates a user from a live invitation: user,
	// membership and role rows for the inviting organization, invitation
	// deletion, and the initial session within a single transaction.
	RegisterFromInvitation(user *models.User, invite *models.Invitation, session *models.Session) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// List lists all users
	List() ([]models.User, error)
}

// SessionRepository defines the interface for session data access
type SessionRepository interface {
	// Create persists a new session
	Create(session *models.Session) error

	// FindByToken finds a session by its opaque token
	FindByToken(token string) (*models.Session, error)

	// Delete removes a session by token
	Delete(token string) error

	// DeleteExpired removes sessions past their expiry and returns the count
	DeleteExpired(now time.Time) (int64, error)
}

// OrganizationRepository defines the interface for organization, membership,
// role and invitation data access
type OrganizationRepository interface {
	// CreateWithOwner creates an organization plus the owner's membership and
	// Owner role row in a single transaction
	CreateWithOwner(org *models.Organization, ownerID uint64) error

	// FindByID finds an organization by ID
	FindByID(id uint64) (*models.Organization, error)

	// Update updates an organization
	Update(org *models.Organization) error

	// Delete removes an organization and cascades memberships, roles,
	// invitations, projects and everything scoped below them
	Delete(id uint64) error

	// AddMemberWithRole inserts membership and role rows atomically
	AddMemberWithRole(member *models.OrgMembership, role *models.OrgRole) error

	// RemoveMember removes a member's role and membership rows atomically
	RemoveMember(organizationID, userID uint64) error

	// UpdateMemberRole replaces the role for an existing (user, org) pair
	UpdateMemberRole(organizationID, userID uint64, roleID models.RoleID) error

	// FindMembership finds a bare membership row
	FindMembership(organizationID, userID uint64) (*models.OrgMembership, error)

	// FindRole finds the role row for a (user, org) pair
	FindRole(organizationID, userID uint64) (*models.OrgRole, error)

	// ListRolesByUserID lists a user's org roles with organizations preloaded
	ListRolesByUserID(userID uint64) ([]models.OrgRole, error)

	// ListMemberRoles lists all role rows of an organization with users preloaded
	ListMemberRoles(organizationID uint64) ([]models.OrgRole, error)

	// CreateInvitation persists a pending invitation
	CreateInvitation(invite *models.Invitation) error

	// FindLiveInvitation finds an unexpired invitation for (email, org)
	FindLiveInvitation(email string, organizationID uint64, now time.Time) (*models.Invitation, error)

	// FindLiveInvitationByEmail finds any unexpired invitation for the email
	FindLiveInvitationByEmail(email string, now time.Time) (*models.Invitation, error)
}

// ProjectRepository defines the interface for project and project-role data access
type ProjectRepository interface {
	// CreateWithOwner creates a project and grants the creator the
	// ProjectOwner role in a single transaction
	CreateWithOwner(project *models.Project, creatorID uint64) error

	// FindByID finds a project by ID
	FindByID(id uint64) (*models.Project, error)

	// ListByOrganization lists projects of an organization
	ListByOrganization(organizationID uint64) ([]models.Project, error)

	// Update updates a project
	Update(project *models.Project) error

	// Delete removes a project and cascades its details, roles and audit logs
	Delete(id uint64) error

	// FindRole finds the role row for a (user, project) pair
	FindRole(projectID, userID uint64) (*models.ProjectRole, error)

	// ListRoles lists all role rows of a project with users preloaded
	ListRoles(projectID uint64) ([]models.ProjectRole, error)

	// AddRole inserts a project role row
	AddRole(role *models.ProjectRole) error

	// UpdateRole replaces the role for an existing (user, project) pair
	UpdateRole(projectID, userID uint64, roleID models.RoleID) error

	// RemoveRole deletes a project role row
	RemoveRole(projectID, userID uint64) error
}

// DetailFilter holds filtering and pagination options for listing details
type DetailFilter struct {
	ProjectID      *uint64
	OrganizationID *uint64
	Status         *models.DetailStatus
	Pagination     utils.PaginationParams
}

// DetailRepository defines the interface for part and audit-log data access
type DetailRepository interface {
	// Create creates a new detail
	Create(detail *models.ProjectDetail) error

	// FindByID finds a detail by ID with its project preloaded
	FindByID(id uint64) (*models.ProjectDetail, error)

	// List retrieves details with filtering and pagination
	List(filter DetailFilter) ([]models.ProjectDetail, int64, error)

	// Update updates a detail
	Update(detail *models.ProjectDetail) error

	// Delete soft deletes a detail
	Delete(id uint64) error

	// AppendAuditLog writes one status-transition entry
	AppendAuditLog(entry *models.AuditLog) error

	// ListAuditLogs returns the newest entries for a project, newest first
	ListAuditLogs(projectID uint64, limit int) ([]models.AuditLog, error)
}
