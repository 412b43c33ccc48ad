package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const MediaReconcileInterval = 15 * time.Minute

// Upload limits
const (
	MaxItemImageBytes    = 5 << 20  // 5MB
	MaxDisplayMediaBytes = 50 << 20 // 50MB
)

// Rate limits (requests per minute, per client IP)
const (
	AuthRateLimitPerMin    = 20
	PairingRateLimitPerMin = 30
)
