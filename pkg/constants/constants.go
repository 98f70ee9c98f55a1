// Package constants provides shared constants used throughout the inkwell codebase.
// This includes timeouts, limits, file permissions, and other defaults that
// should be consistent across the engine, the CLI and the HTTP server.
package constants

import "time"

// Refresh constants define the background refresh policy defaults
const (
	// DefaultRefreshTimeout bounds a single remote fetch so a hung request
	// ends in a failed refresh instead of a stuck loading state
	DefaultRefreshTimeout = 30 * time.Second

	// DefaultRefreshInterval is the default interval between automatic refreshes
	DefaultRefreshInterval = 6 * time.Hour

	// MinRefreshInterval is the smallest accepted auto-refresh interval
	MinRefreshInterval = 1 * time.Minute

	// DefaultFreshnessWindow is how old the last successful refresh may be
	// before a cold start triggers a new one
	DefaultFreshnessWindow = 24 * time.Hour
)

// Remote source constants
const (
	// LorcastBaseURL is the public Lorcast API endpoint
	LorcastBaseURL = "https://api.lorcast.com/v0"

	// DefaultHTTPTimeout is the standard timeout for HTTP requests to the remote source
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultRemoteConcurrency is the number of sets fetched in parallel
	DefaultRemoteConcurrency = 4

	// RemoteCacheSize is the number of per-set responses kept by the remote client
	RemoteCacheSize = 64

	// RemoteCacheTTL is how long a cached per-set response is reused
	RemoteCacheTTL = 5 * time.Minute

	// UserAgent identifies the engine to remote sources
	UserAgent = "InkwellKeeper/1.0"
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is used for the ownership ledger (rw-------)
	SecureFilePermissions = 0600
)

// Server constants
const (
	// DefaultServerPort is the default HTTP API port
	DefaultServerPort = 8080

	// DefaultCacheTTL is how long API responses stay cached
	DefaultCacheTTL = 1 * time.Minute

	// DefaultCacheCleanup is the expired-entry sweep interval of the API cache
	DefaultCacheCleanup = 5 * time.Minute

	// ShutdownTimeout bounds graceful shutdown of the CLI and server
	ShutdownTimeout = 5 * time.Second

	// DefaultPageSize is the default number of items per page for paginated results
	DefaultPageSize = 100

	// MaxPageSize caps the limit query parameter
	MaxPageSize = 1000
)

// Ledger constants
const (
	// DefaultLedgerFile is the ledger file name inside the data directory
	DefaultLedgerFile = "collection.yaml"

	// DefaultLedgerDB is the SQLite ledger file name inside the data directory
	DefaultLedgerDB = "collection.db"

	// DefaultDataDir is the data directory under the user's home
	DefaultDataDir = ".inkwell"
)
