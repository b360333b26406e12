package constants

// Session / context keys
const (
	ContextKeyUserID      = "user_id"
	ContextKeyCurrentUser = "current_user"
	SessionCookieName     = "qsights_session"
)

// Password rules
const (
	MinPasswordLength       = 8
	GeneratedPasswordLength = 12
)

// Pagination limits
const (
	MinPageSize     = 1
	DefaultPageSize = 15
	MaxPageSize     = 100
)
