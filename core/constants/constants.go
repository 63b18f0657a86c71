package constants

import "time"

// Request handling
const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultTimeout        = 10 * time.Second
)

// Database pool
const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
	DatabaseSSLMode         = "disable"
)

// Token scopes
const (
	ScopeTokenAccess  = "access"
	ScopeTokenRefresh = "refresh"
)

// Echo context keys
const (
	ContextTokenData = "token_data"
)

// Redis key prefixes
const (
	RedisKeyTokenBlacklist = "blacklist:token:"
	RedisKeyLoginAttempt   = "login:attempt:"
	RedisKeyLedgerVersion  = "event:ledger_version:"
	RedisKeyDashboard      = "event:dashboard:"
)

// Login throttling
const (
	MaxLoginAttempts = 5
)

// Cache TTLs
const (
	TokenBlacklistTTL = 24 * time.Hour
	LoginAttemptTTL   = 15 * time.Minute
	DashboardCacheTTL = 5 * time.Second
)

// Slot generation
const (
	DefaultSlotStepMinutes = 30
)

// Recommendation defaults
const (
	DefaultRecommendLimit = 5
	MaxRecommendLimit     = 50
)

// Pagination defaults
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Notification types
const (
	NotificationTypeFinalChoice = "final_choice"
	NotificationTypeReminder    = "reminder"
)
