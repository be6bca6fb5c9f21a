package tablebase

import (
	"context"
	"time"
)

// RecordsClient provides access to the records of one table in one base.
type RecordsClient interface {
	// Find fetches a single record by id.
	Find(ctx context.Context, recordID string) (*Record, error)

	// Create creates a record from the given field values and returns the
	// server-assigned record.
	Create(ctx context.Context, fields Fields, opts *WriteOptions) (*Record, error)

	// Update patches a record: fields not named in fields are left untouched
	// server-side. The returned record reflects the merged result.
	Update(ctx context.Context, recordID string, fields Fields, opts *WriteOptions) (*Record, error)

	// Replace overwrites a record: fields not named in fields are cleared
	// server-side. The returned record reflects the replacement.
	Replace(ctx context.Context, recordID string, fields Fields, opts *WriteOptions) (*Record, error)

	// Destroy deletes a record by id.
	Destroy(ctx context.Context, recordID string) (*DeletedRecord, error)

	// ListPage fetches one page of records. Record order matches server
	// response order exactly.
	ListPage(ctx context.Context, params *ListParams) (*RecordPage, error)
}

// Client is the entry point to the Tablebase API.
type Client interface {
	// Records returns the records client for a table within a base. The table
	// may be addressed by name or by table id.
	Records(baseID, tableNameOrID string) RecordsClient
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a tablebase.Client.
//
// # Configuration precedence
//
// The concrete client implementation (see pkg/tbclient) resolves each setting
// in the following order:
//  1. The explicit Config field, when set.
//  2. The process environment: TABLEBASE_API_KEY and TABLEBASE_ENDPOINT_URL.
//  3. The built-in default (endpoint https://api.tablebase.io, API version
//     v0, five minute request timeout).
//
// Per-call settings override per-client ones: a context deadline tighter than
// RequestTimeout bounds that call, and WriteOptions apply to a single write.
//
// # Timeouts, retries, and TLS
//
// RequestTimeout bounds one logical action including all of its internal
// rate-limit retries; on expiry the action fails and no further retries are
// attempted. Retry backoff can be tuned via RetryWaitMin/RetryWaitMax.
// SkipTLSVerify is only honored when the environment variable
// TABLEBASE_DEV_MODE is set to "true" or "1"; do not use it in production.
type Config struct {
	// APIKey: bearer credential for the Tablebase API. Falls back to the
	// TABLEBASE_API_KEY environment variable.
	APIKey string

	// EndpointURL: base URL for the API (e.g., "https://api.tablebase.io").
	// tbclient.New normalizes this value by trimming a trailing slash and
	// adding "https://" if no scheme is present. Falls back to the
	// TABLEBASE_ENDPOINT_URL environment variable.
	EndpointURL string

	// APIVersion: major API version path segment. Defaults to "v0".
	APIVersion string

	// RequestTimeout bounds one logical action, inclusive of retries.
	RequestTimeout time.Duration

	// RetryWaitMin: minimum backoff between rate-limit retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between rate-limit retries.
	RetryWaitMax time.Duration

	// NoRetryIfRateLimited disables managed retry: a 429 response is surfaced
	// immediately as a rate-limit error instead of being retried.
	NoRetryIfRateLimited bool

	// SkipTLSVerify: if true, TLS verification is skipped, and only when
	// TABLEBASE_DEV_MODE is set. Intended for local development.
	SkipTLSVerify bool

	// UserAgent overrides the default User-Agent header sent by the client.
	UserAgent string

	// Debug enables verbose HTTP request/response logging when a Logger is
	// provided.
	Debug bool

	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger
}
