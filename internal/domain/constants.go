package domain

import "time"

// File permission constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout constants
const (
	// DefaultCloudTimeout bounds one cloud completion attempt.
	DefaultCloudTimeout = 25 * time.Second
	// DefaultLocalTimeout bounds one local inference attempt. Local models
	// can be slow to first-load, so this is generous.
	DefaultLocalTimeout = 120 * time.Second
	// DefaultProbeTimeout bounds the local health probe.
	DefaultProbeTimeout = 3 * time.Second
	// DefaultToolTimeout bounds a CLI-backed provider subprocess.
	DefaultToolTimeout = 30 * time.Second
)

// Transcript constants
const (
	// DefaultHistoryLimit is the default number of transcript rows to display.
	DefaultHistoryLimit = 20
)

// TimestampFormat is the standard timestamp format for persisted records.
const TimestampFormat = time.RFC3339
