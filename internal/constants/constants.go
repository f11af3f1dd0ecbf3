package constants

import "time"

// Session
const (
	SessionCookieName   = "sid"
	SessionCookiePath   = "/"
	SessionCookieMaxAge = 86400 // seconds, mirrors SessionTTL
	SessionTTL          = 24 * time.Hour
)

// Invitations
const InvitationTTL = 7 * 24 * time.Hour

// ContextKeyUserID is the gin context key holding the authenticated user ID.
const ContextKeyUserID = "user_id"

// Validation
const MinPasswordLength = 8

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// AuditLogLimit is the number of audit entries returned per project.
const AuditLogLimit = 20
