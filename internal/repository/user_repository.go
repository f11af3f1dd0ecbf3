package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/partflow/parts-tracking-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateUser is returned when creating a user fails inside a registration transaction.
	ErrCreateUser = errors.New("user repository: create user failed")
	// ErrCreateOrganization is returned when creating an organization fails inside the signup transaction.
	ErrCreateOrganization = errors.New("user repository: create organization failed")
	// ErrCreateMembership is returned when membership or role rows fail inside a registration transaction.
	ErrCreateMembership = errors.New("user repository: create membership failed")
	// ErrCreateSession is returned when the initial session insert fails inside a registration transaction.
	ErrCreateSession = errors.New("user repository: create session failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// RegisterWithOrganization creates the user, their organization, the owner
// membership and role, and the initial session atomically. Any failure rolls
// back the whole sequence so a user never exists without an organization.
func (r *GormUserRepository) RegisterWithOrganization(user *models.User, org *models.Organization, session *models.Session) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateUser, err)
		}

		org.OwnerID = user.ID
		if err := tx.Create(org).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateOrganization, err)
		}

		membership := &models.OrgMembership{
			OrganizationID: org.ID,
			UserID:         user.ID,
			JoinedAt:       time.Now(),
		}
		if err := tx.Create(membership).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateMembership, err)
		}

		role := &models.OrgRole{
			OrganizationID: org.ID,
			UserID:         user.ID,
			RoleID:         models.RoleOrgOwner,
		}
		if err := tx.Create(role).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateMembership, err)
		}

		session.UserID = user.ID
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateSession, err)
		}

		return nil
	})
}

// RegisterFromInvitation creates the user, the membership and role rows for
// the inviting organization, deletes the consumed invitation, and creates the
// initial session atomically.
func (r *GormUserRepository) RegisterFromInvitation(user *models.User, invite *models.Invitation, session *models.Session) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateUser, err)
		}

		membership := &models.OrgMembership{
			OrganizationID: invite.OrganizationID,
			UserID:         user.ID,
			JoinedAt:       time.Now(),
		}
		if err := tx.Create(membership).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateMembership, err)
		}

		roleID := invite.RoleID
		if !roleID.IsOrgRole() {
			roleID = models.RoleOrgUser
		}
		role := &models.OrgRole{
			OrganizationID: invite.OrganizationID,
			UserID:         user.ID,
			RoleID:         roleID,
		}
		if err := tx.Create(role).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateMembership, err)
		}

		if err := tx.Delete(&models.Invitation{}, invite.ID).Error; err != nil {
			return fmt.Errorf("failed to consume invitation: %w", err)
		}

		session.UserID = user.ID
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateSession, err)
		}

		return nil
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List lists all users
func (r *GormUserRepository) List() ([]models.User, error) {
	var users []models.User
	if err := r.db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
