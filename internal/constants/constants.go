// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Naming constants
const (
	// MaxNameLength is the maximum number of characters of a cluster display name
	MaxNameLength = 200

	// DefaultNamePrefix is used for unnamed clusters ("Person 1", "Person 2", ...)
	DefaultNamePrefix = "Person"
)

// Image processing constants
const (
	// JPEGQuality is the quality used when re-encoding images for the face service
	JPEGQuality = 90
)

// Web server constants
const (
	// MaxRequestBodySize is the maximum size of a JSON request body
	MaxRequestBodySize = 1 << 20

	// ReadHeaderTimeoutSeconds limits how long the server waits for request headers
	ReadHeaderTimeoutSeconds = 10

	// ShutdownTimeoutSeconds is the grace period for in-flight requests on shutdown
	ShutdownTimeoutSeconds = 10
)
