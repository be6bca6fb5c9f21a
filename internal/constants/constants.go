package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultRequestTimeout bounds one logical action, retries included.
	DefaultRequestTimeout = 5 * time.Minute
)

// Retry policy for rate-limited requests.
const (
	// DefaultRetryWaitMin is the minimum backoff between rate-limit retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum backoff between rate-limit retries.
	DefaultRetryWaitMax = 30 * time.Second

	// RetryAttemptCeiling caps the retry loop; the effective bound on a
	// rate-limited action is the request timeout, not this count.
	RetryAttemptCeiling = 1000
)

// API defaults.
const (
	// DefaultEndpointURL is the production API endpoint.
	DefaultEndpointURL = "https://api.tablebase.io"

	// DefaultAPIVersion is the major API version path segment.
	DefaultAPIVersion = "v0"

	// DefaultUserAgent identifies this client on the wire.
	DefaultUserAgent = "tablebase-go"
)

// Pagination and display limits.
const (
	// DefaultPageSize is the service default number of records per page.
	DefaultPageSize = 100

	// MaxPageSize is the service maximum number of records per page.
	MaxPageSize = 100
)

// Environment variables honored by the client.
const (
	// EnvAPIKey supplies the API key when Config.APIKey is unset.
	EnvAPIKey = "TABLEBASE_API_KEY"

	// EnvEndpointURL supplies the endpoint when Config.EndpointURL is unset.
	EnvEndpointURL = "TABLEBASE_ENDPOINT_URL"

	// EnvDevMode gates development-only behavior such as SkipTLSVerify.
	EnvDevMode = "TABLEBASE_DEV_MODE"
)
