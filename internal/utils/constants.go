package utils

import "time"

// Application Constants
const (
	AppName    = "SafeWatch"
	AppVersion = "1.0.0"

	DefaultTimeZone = "UTC"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL = 24 * time.Hour
	UserTypeUser      = "user"
	UserTypeAdmin     = "admin"

	// Request context keys
	ContextUserID    = "user_id"
	ContextUserType  = "user_type"
	ContextRequestID = "request_id"
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInvalidToken     = "invalid token"
	ErrInvalidInput     = "invalid input"
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized"
	ErrForbidden        = "forbidden"
	ErrValidationFailed = "validation failed"
)

// Response codes
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeBadRequest   = "BAD_REQUEST"
	CodeNotFound     = "NOT_FOUND"
	CodeNoContacts   = "NO_CONTACTS"
	CodeRateLimited  = "RATE_LIMITED"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
)

// Cache Keys
const (
	CacheUserPrefix      = "user:"
	CacheRateLimitPrefix = "rate_limit:"
	SOSRateLimitPrefix   = "sos:"
)
