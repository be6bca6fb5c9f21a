// Package client contains the concrete implementation of tablebase.Client:
// the per-table records gateway wired onto the internal HTTP dispatcher.
package client

import (
	"github.com/tablebase-io/tablebase/internal/http"
	"github.com/tablebase-io/tablebase/pkg/tablebase"
)

// Client implements the tablebase.Client interface.
type Client struct {
	httpClient *http.Client
	apiVersion string
}

// New creates a new Tablebase API client from a resolved configuration. The
// caller (pkg/tbclient) is responsible for defaulting and normalizing the
// config before calling.
func New(config *tablebase.Config) (*Client, error) {
	if config == nil {
		return nil, tablebase.ErrConfigRequired
	}

	if config.APIKey == "" {
		return nil, tablebase.ErrAPIKeyRequired
	}

	httpOpts := createHTTPClientOptions(config)
	httpClient := http.NewClient(config.EndpointURL, config.APIKey, httpOpts...)

	return &Client{
		httpClient: httpClient,
		apiVersion: config.APIVersion,
	}, nil
}

// createHTTPClientOptions builds dispatcher options from config.
func createHTTPClientOptions(config *tablebase.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(&loggerAdapter{logger: config.Logger}))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.RequestTimeout > 0 {
		httpOpts = append(httpOpts, http.WithRequestTimeout(config.RequestTimeout))
	}

	if config.RetryWaitMin > 0 || config.RetryWaitMax > 0 {
		httpOpts = append(httpOpts, http.WithRetryWait(config.RetryWaitMin, config.RetryWaitMax))
	}

	if config.NoRetryIfRateLimited {
		httpOpts = append(httpOpts, http.WithRetryDisabled(true))
	}

	if config.SkipTLSVerify {
		httpOpts = append(httpOpts, http.WithSkipTLSVerify(true))
	}

	return httpOpts
}

// Records implements tablebase.Client.Records.
func (c *Client) Records(baseID, tableNameOrID string) tablebase.RecordsClient {
	return NewRecordsClient(c.httpClient, c.apiVersion, baseID, tableNameOrID)
}

// loggerAdapter adapts tablebase.Logger to http.Logger.
type loggerAdapter struct {
	logger tablebase.Logger
}

func (l *loggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, fields)
}

func (l *loggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, fields)
}

func (l *loggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, fields)
}

func (l *loggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, fields)
}
