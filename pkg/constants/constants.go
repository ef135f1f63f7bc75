// Package constants provides shared constants used throughout the mathflix codebase.
// This includes timeouts, limits, file permissions, and storage defaults
// that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// ReconcileTimeout bounds a single load, reconcile and save cycle
	ReconcileTimeout = 1 * time.Minute

	// DefaultReconcileInterval is the default interval between automatic reconciliations
	DefaultReconcileInterval = 1 * time.Hour

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 2 * time.Minute

	// ShutdownTimeout is how long the server waits for in-flight requests
	ShutdownTimeout = 10 * time.Second

	// RetryBackoff is the base backoff duration between save attempts
	RetryBackoff = 10 * time.Millisecond
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define various limits and capacities
const (
	// MaxSaveAttempts is how many times a snapshot save is retried after a version conflict
	MaxSaveAttempts = 5

	// SyntheticIDMinDigits is the minimum length of an all-digit user-created id
	SyntheticIDMinDigits = 13

	// MaxTitleLength is the maximum allowed length for game titles
	MaxTitleLength = 256

	// MaxDescriptionLength is the maximum allowed length for descriptions
	MaxDescriptionLength = 4096

	// DefaultPageSize is the default number of items per page for paginated results
	DefaultPageSize = 50

	// MaxPageSize is the upper bound on a requested page size
	MaxPageSize = 500
)

// Storage constants
const (
	// DefaultSnapshotKey is the key the catalog snapshot is stored under.
	// It matches the browser storage key of the first release so existing
	// snapshots keep loading.
	DefaultSnapshotKey = "MATHFLIX_DB_V1"

	// DefaultStore is the storage backend used when none is configured
	DefaultStore = "file"

	// AppName is used for config files and the default data directory
	AppName = "mathflix"
)
