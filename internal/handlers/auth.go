package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/partflow/parts-tracking-api/internal/constants"
	"github.com/partflow/parts-tracking-api/internal/dto"
	apierrors "github.com/partflow/parts-tracking-api/internal/errors"
	"github.com/partflow/parts-tracking-api/internal/middleware"
	"github.com/partflow/parts-tracking-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService   *services.AuthService
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler. secureCookies marks the session
// cookie Secure, which production deployments should enable.
func NewAuthHandler(authService *services.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		secureCookies: secureCookies,
	}
}

// Signup registers a new user along with a brand-new organization they own.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required"`
		OrgName   string `json:"org_name" binding:"required"`
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, org, session, err := h.authService.Signup(services.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		OrgName:   req.OrgName,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	h.setSessionCookie(c, session.Token)
	c.JSON(http.StatusCreated, gin.H{
		"user":         dto.ToUserDTO(*user),
		"organization": dto.ToOrganizationDTO(*org),
	})
}

// Login authenticates a user and issues a fresh session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, session, err := h.authService.Login(services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	h.setSessionCookie(c, session.Token)
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Logout destroys the session referenced by the sid cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, err := c.Cookie(constants.SessionCookieName)
	if err != nil || token == "" {
		apierrors.BadRequest(c, "No session")
		return
	}

	if err := h.authService.Logout(token); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// RegisterInvite consumes a live invitation and registers the invitee.
func (h *AuthHandler) RegisterInvite(c *gin.Context) {
	type RegisterInviteRequest struct {
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required"`
	}

	var req RegisterInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, session, err := h.authService.RegisterFromInvitation(services.RegisterFromInvitationInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	h.setSessionCookie(c, session.Token)
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// CheckEmail reports whether an email belongs to a user, a live invitation,
// or neither.
func (h *AuthHandler) CheckEmail(c *gin.Context) {
	type CheckEmailRequest struct {
		Email string `json:"email" binding:"required"`
	}

	var req CheckEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Email is required")
		return
	}

	status, err := h.authService.CheckEmail(req.Email)
	if err != nil {
		// The original surface never leaks lookup failures here.
		c.JSON(http.StatusOK, gin.H{"status": services.EmailStatusUnknown})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": dto.ToUserDTO(*user)})
}

// ListUsers returns every registered user's profile to any authenticated
// caller.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	if _, exists := middleware.GetUserID(c); !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	users, err := h.authService.ListUsers()
	if err != nil {
		apierrors.InternalError(c, "Failed to list users")
		return
	}

	userDTOs := make([]dto.UserDTO, len(users))
	for i, user := range users {
		userDTOs[i] = dto.ToUserDTO(user)
	}

	c.JSON(http.StatusOK, gin.H{"users": userDTOs})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		constants.SessionCookieName,
		token,
		constants.SessionCookieMaxAge,
		constants.SessionCookiePath,
		"",
		h.secureCookies,
		true,
	)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		constants.SessionCookieName,
		"",
		-1,
		constants.SessionCookiePath,
		"",
		h.secureCookies,
		true,
	)
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrMissingProfileFields):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidInvitation):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, err.Error())
	case errors.Is(err, services.ErrUnauthenticated), errors.Is(err, services.ErrSessionExpired):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrFailedToHashPassword), errors.Is(err, services.ErrFailedToRegister):
		apierrors.InternalError(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
