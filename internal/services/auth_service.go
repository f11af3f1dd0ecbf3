package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/partflow/parts-tracking-api/internal/constants"
	"github.com/partflow/parts-tracking-api/internal/models"
	"github.com/partflow/parts-tracking-api/internal/repository"
	"github.com/partflow/parts-tracking-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrMissingProfileFields = errors.New("first name, last name and email are required")
	ErrUserNotFound         = errors.New("user not found")
	ErrUnauthenticated      = errors.New("not authenticated")
	ErrSessionExpired       = errors.New("session expired")
	ErrInvalidInvitation    = errors.New("invalid or expired invitation")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToRegister     = errors.New("failed to complete registration")
)

// Email check outcomes, mirrored straight into the check-email response.
const (
	EmailStatusExists  = "exists"
	EmailStatusInvited = "invited"
	EmailStatusUnknown = "unknown"
)

// AuthService handles credentials, registration and the session lifecycle.
type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	orgRepo     repository.OrganizationRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, orgRepo repository.OrganizationRepository) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		orgRepo:     orgRepo,
	}
}

// SignupInput represents the required information to create a new user and
// their organization.
type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	OrgName   string
}

// Signup creates a new user, a brand-new organization owned by that user, the
// owner membership and role, and an initial session as one atomic unit.
func (s *AuthService) Signup(input SignupInput) (*models.User, *models.Organization, *models.Session, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	email := normalizeEmail(input.Email)
	orgName := strings.TrimSpace(input.OrgName)

	if firstName == "" || lastName == "" || email == "" || orgName == "" {
		return nil, nil, nil, ErrMissingProfileFields
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, nil, nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, nil, nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, nil, ErrFailedToHashPassword
	}

	now := time.Now()
	user := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     true,
		ActivatedAt:  &now,
	}
	org := &models.Organization{Name: orgName}
	session := newSession(0)

	if err := s.userRepo.RegisterWithOrganization(user, org, session); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrFailedToRegister, err)
	}

	return user, org, session, nil
}

// RegisterFromInvitationInput carries the invitee's profile and credentials.
type RegisterFromInvitationInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// RegisterFromInvitation consumes a live invitation: the new user joins the
// inviting organization with the role recorded on the invitation. The
// invitation is deleted in the same transaction.
func (s *AuthService) RegisterFromInvitation(input RegisterFromInvitationInput) (*models.User, *models.Session, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	email := normalizeEmail(input.Email)

	if firstName == "" || lastName == "" || email == "" {
		return nil, nil, ErrMissingProfileFields
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, nil, ErrPasswordTooShort
	}

	invite, err := s.orgRepo.FindLiveInvitationByEmail(email, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidInvitation
		}
		return nil, nil, fmt.Errorf("failed to look up invitation: %w", err)
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, ErrFailedToHashPassword
	}

	now := time.Now()
	user := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     true,
		ActivatedAt:  &now,
	}
	session := newSession(0)

	if err := s.userRepo.RegisterFromInvitation(user, invite, session); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFailedToRegister, err)
	}

	return user, session, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials against the stored bcrypt hash and issues a new
// session with a fresh opaque token.
func (s *AuthService) Login(input LoginInput) (*models.User, *models.Session, error) {
	user, err := s.userRepo.FindByEmail(normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.IsActive {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	session := newSession(user.ID)
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	return user, session, nil
}

// Logout destroys the session. Deleting an already-absent token is a no-op;
// the handler layer decides how to report a missing cookie.
func (s *AuthService) Logout(token string) error {
	if err := s.sessionRepo.Delete(token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ResolveSession maps an opaque token to its user. Expiry is checked lazily
// here; expired rows are left in place for the sweep.
func (s *AuthService) ResolveSession(token string) (*models.User, error) {
	session, err := s.sessionRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	if session.Expired(time.Now()) {
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.FindByID(session.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// ListUsers returns every registered user's profile. Any authenticated user
// may list; there is no tenant filter on this directory view.
func (s *AuthService) ListUsers() ([]models.User, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CheckEmail reports whether an email belongs to a registered user, a live
// invitation, or neither.
func (s *AuthService) CheckEmail(email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", ErrMissingProfileFields
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return EmailStatusExists, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to check email: %w", err)
	}

	if _, err := s.orgRepo.FindLiveInvitationByEmail(email, time.Now()); err == nil {
		return EmailStatusInvited, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to check invitations: %w", err)
	}

	return EmailStatusUnknown, nil
}

// SweepExpiredSessions removes expired session rows. Purely storage hygiene;
// expiry is enforced lazily at resolution time.
func (s *AuthService) SweepExpiredSessions() (int64, error) {
	return s.sessionRepo.DeleteExpired(time.Now())
}

func newSession(userID uint64) *models.Session {
	return &models.Session{
		Token:     utils.GenerateSessionToken(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(constants.SessionTTL),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
