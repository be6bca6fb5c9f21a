package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tablebase-io/tablebase/internal/constants"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Masked replaces secret values in status output.
const Masked = "***"

// cliConfig is the on-disk shape of ~/.tablebase/config.yml.
type cliConfig struct {
	APIKey   string `yaml:"api-key,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Base     string `yaml:"base,omitempty"`
	Output   string `yaml:"output,omitempty"`
}

// NewAuthCommand creates the auth command group.
func NewAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
		Long:  "Store, inspect, and remove the Tablebase API key",
	}

	cmd.AddCommand(newAuthLoginCommand())
	cmd.AddCommand(newAuthLogoutCommand())
	cmd.AddCommand(newAuthStatusCommand())

	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	var endpoint string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API key",
		Long:  "Prompt for a Tablebase API key and store it in the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiKey := viper.GetString("api-key")

			if apiKey == "" {
				fmt.Print("API key: ")

				keyBytes, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read API key: %w", err)
				}

				fmt.Println()

				apiKey = strings.TrimSpace(string(keyBytes))
			}

			if apiKey == "" {
				return ErrAPIKeyInputRequired
			}

			config := loadCLIConfig()
			config.APIKey = apiKey

			if endpoint != "" {
				config.Endpoint = endpoint
			}

			if err := saveCLIConfig(config); err != nil {
				return err
			}

			fmt.Println("API key stored")

			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "set-endpoint", "", "also store a custom API endpoint")

	return cmd
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadCLIConfig()
			config.APIKey = ""

			if err := saveCLIConfig(config); err != nil {
				return err
			}

			fmt.Println("API key removed")

			return nil
		},
	}
}

func newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored authentication state",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadCLIConfig()

			type AuthStatus struct {
				APIKey   string `json:"api-key"  yaml:"api-key"`
				Endpoint string `json:"endpoint" yaml:"endpoint"`
			}

			status := AuthStatus{APIKey: NotAvailable, Endpoint: config.Endpoint}
			if config.APIKey != "" {
				status.APIKey = Masked
			}

			if status.Endpoint == "" {
				status.Endpoint = constants.DefaultEndpointURL
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(status)
			case OutputFormatYAML:
				return StandardYAMLRenderer(status)
			default:
				fmt.Println("API key:", status.APIKey)
				fmt.Println("Endpoint:", status.Endpoint)

				return nil
			}
		},
	}
}

// configFilePath returns the active config file, defaulting to
// ~/.tablebase/config.yml when no --config flag is set.
func configFilePath() (string, error) {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		return cfgFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}

	return filepath.Join(home, ".tablebase", "config.yml"), nil
}

func loadCLIConfig() *cliConfig {
	config := &cliConfig{}

	path, err := configFilePath()
	if err != nil {
		return config
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config
	}

	_ = yaml.Unmarshal(data, config)

	return config
}

func saveCLIConfig(config *cliConfig) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, constants.ConfigFilePerm); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
