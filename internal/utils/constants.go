package utils

import "time"

// Application Constants
const (
	AppName    = "DistressServer"
	AppVersion = "1.0.0"

	// Authentication
	JWTLoginTokenTTL   = 3 * time.Hour
	JWTSignupTokenTTL  = time.Hour
	JWTRefreshTokenTTL = 7 * 24 * time.Hour
	BcryptCost         = 10

	// Distress
	DefaultHistoryLimit = 1000
	MapsLinkBase        = "https://maps.google.com/?q="
	NotificationTime    = "Jan 2, 2006, 3:04 PM"

	// Audio
	MaxAudioSize      = 50 * 1024 * 1024 // 50MB
	DefaultSampleRate = 44100
	AudioKeyPrefix    = "audio"
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInvalidCredentials   = "invalid credentials"
	ErrUserNotFound         = "User not found"
	ErrEmailInUse           = "Email already in use"
	ErrPhoneInUse           = "Phone number already in use"
	ErrInvalidToken         = "Invalid token"
	ErrMissingToken         = "Authorization token required"
	ErrInternalServer       = "internal server error"
	ErrUnauthorized         = "unauthorized"
	ErrForbidden            = "Insufficient permissions"
	ErrNotFound             = "not found"
	ErrValidationFailed     = "validation failed"
	ErrDistressNotFound     = "Distress alert not found"
	ErrAlreadyEscalatedMsg  = "Distress alert has already been escalated"
	ErrNoUsersWithRole      = "No users found with this role"
	ErrNotAdmin             = "Access denied: admin only"
	ErrDeployPublishFailed  = "Failed to send drone deployment signal"
	ErrDeployPartialFailure = "Drone deployment signal sent but alert could not be updated"
	ErrNoActiveDistress     = "No active distress alert for this user"
	ErrAudioUploadFailed    = "Failed to upload audio recording"
	ErrRoleChangeNotAllowed = "Only an admin can change a user's role"
)

// Context keys
const (
	ContextUserID    = "user_id"
	ContextUserRole  = "user_role"
	ContextRequestID = "request_id"
)
