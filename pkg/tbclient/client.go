package tbclient

import (
	"fmt"
	"os"
	"strings"

	"github.com/tablebase-io/tablebase/internal/client"
	"github.com/tablebase-io/tablebase/internal/constants"
	"github.com/tablebase-io/tablebase/pkg/tablebase"
)

// New creates a new Tablebase API client.
//
// Unset Config fields fall back to the process environment and then to the
// built-in defaults; see tablebase.Config for the full precedence rules. The
// passed Config is not mutated.
func New(config *tablebase.Config) (tablebase.Client, error) {
	if config == nil {
		return nil, tablebase.ErrConfigRequired
	}

	resolved := *config

	if resolved.APIKey == "" {
		resolved.APIKey = os.Getenv(constants.EnvAPIKey)
	}

	if resolved.APIKey == "" {
		return nil, tablebase.ErrAPIKeyRequired
	}

	if resolved.EndpointURL == "" {
		resolved.EndpointURL = os.Getenv(constants.EnvEndpointURL)
	}

	if resolved.EndpointURL == "" {
		resolved.EndpointURL = constants.DefaultEndpointURL
	}

	resolved.EndpointURL = normalizeEndpoint(resolved.EndpointURL)

	if resolved.APIVersion == "" {
		resolved.APIVersion = constants.DefaultAPIVersion
	}

	if resolved.RequestTimeout == 0 {
		resolved.RequestTimeout = constants.DefaultRequestTimeout
	}

	if resolved.SkipTLSVerify && !isDevelopmentEnvironment() {
		return nil, fmt.Errorf("%w (set %s=true)", tablebase.ErrSkipTLSOnlyInDev, constants.EnvDevMode)
	}

	tbClient, err := client.New(&resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return tbClient, nil
}

// normalizeEndpoint trims a trailing slash and defaults the scheme to https.
func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSuffix(endpoint, "/")

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

// isDevelopmentEnvironment checks if we're in a development environment.
func isDevelopmentEnvironment() bool {
	devMode := os.Getenv(constants.EnvDevMode)

	return devMode == "true" || devMode == "1"
}
