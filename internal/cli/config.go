package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/tansive/ghrest/pkg/api"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default name of the config file
const DefaultConfigFile = "config.yaml"

// TokenEnvVar overrides the configured token when set.
const TokenEnvVar = "GITHUB_TOKEN"

// Config is the configuration file of the CLI. Files ending in .toml are read and written
// as TOML, anything else as YAML. Values may use {{ .ENV.NAME }} placeholders.
type Config struct {
	Version   string            `json:"version" yaml:"version" toml:"version"`
	ServerURL string            `json:"server_url" yaml:"server_url" toml:"server_url" validate:"required,url"`
	Token     string            `json:"token,omitempty" yaml:"token,omitempty" toml:"token,omitempty"`
	Login     string            `json:"login,omitempty" yaml:"login,omitempty" toml:"login,omitempty"`
	Password  string            `json:"password,omitempty" yaml:"password,omitempty" toml:"password,omitempty"`
	UserAgent string            `json:"user_agent,omitempty" yaml:"user_agent,omitempty" toml:"user_agent,omitempty"`
	Timeout   string            `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout,omitempty"`
	Headers   map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" toml:"headers,omitempty"`
	Insecure  bool              `json:"insecure,omitempty" yaml:"insecure,omitempty" toml:"insecure,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// GetDefaultConfigPath returns the default path for the config file
// It uses the OS-specific config directory (e.g., ~/.config/ghrest on Linux)
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "ghrest", DefaultConfigFile), nil
}

func isTOML(file string) bool {
	return strings.EqualFold(filepath.Ext(file), ".toml")
}

// LoadConfig reads, preprocesses and validates a config file. GITHUB_TOKEN replaces the
// configured token when set.
func LoadConfig(file string) (*Config, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}
	content, err := PreprocessConfig(raw, filepath.Dir(file))
	if err != nil {
		return nil, err
	}

	var c Config
	if isTOML(file) {
		_, err = toml.Decode(string(content), &c)
	} else {
		err = yaml.Unmarshal(content, &c)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}
	if token := os.Getenv(TokenEnvVar); token != "" {
		c.Token = token
	}
	c.ServerURL = MorphServer(c.ServerURL)
	if err := c.ValidateConfig(); err != nil {
		return nil, err
	}
	return &c, nil
}

// WriteConfig writes the configuration to file with owner-only permissions.
func (cfg *Config) WriteConfig(file string) error {
	if file == "" {
		return errors.New("file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	var out []byte
	if isTOML(file) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("unable to generate configuration: %w", err)
		}
		out = buf.Bytes()
	} else {
		var err error
		if out, err = yaml.Marshal(cfg); err != nil {
			return fmt.Errorf("unable to generate configuration: %w", err)
		}
	}
	if err := os.WriteFile(file, out, 0o600); err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}
	return nil
}

// ValidateConfig checks required fields and value formats.
func (cfg *Config) ValidateConfig() error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: server_url must be an absolute URL")
	}
	if cfg.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Timeout); err != nil {
			return fmt.Errorf("invalid config: timeout %q: %w", cfg.Timeout, err)
		}
	}
	return nil
}

// APIConfig converts the file configuration into a connection configuration.
func (cfg *Config) APIConfig() (api.Config, error) {
	out := api.DefaultConfig()
	out.BaseAddress = cfg.ServerURL
	if cfg.UserAgent != "" {
		out.UserAgent = cfg.UserAgent
	}
	switch {
	case cfg.Token != "":
		out.Credentials = api.TokenCredentials(cfg.Token)
	case cfg.Login != "":
		out.Credentials = api.BasicCredentials(cfg.Login, cfg.Password)
	}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return out, fmt.Errorf("invalid timeout %q: %w", cfg.Timeout, err)
		}
		out.Timeout = d
	}
	out.DefaultHeaders = cfg.Headers
	out.DisableCertValidation = cfg.Insecure
	return out, out.Validate()
}

// MorphServer ensures the server URL is properly formatted.
// Adds https:// if no scheme is given and a trailing slash.
func MorphServer(server string) string {
	server = strings.TrimSpace(server)
	if server == "" {
		return server
	}
	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "https://" + server
	}
	return strings.TrimRight(server, "/") + "/"
}

func redact(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}

func (a *app) newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  `Manage CLI configuration settings like the API server and authentication.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var server, token, userAgent string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a configuration file",
		Long: `Create a configuration file. The token may be a {{ .ENV.NAME }} placeholder,
resolved from the environment or a .env file next to the config file when it is loaded.

Examples:
  ghrest config create --token '{{ .ENV.GH_PAT }}'
  ghrest config create --server https://ghe.example.com/api/v3 --token ghp_xxx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.configPath()
			if err != nil {
				return err
			}
			cfg := &Config{
				Version:   "0.1.0",
				ServerURL: MorphServer(server),
				Token:     token,
				UserAgent: userAgent,
			}
			if err := cfg.ValidateConfig(); err != nil {
				return err
			}
			if err := cfg.WriteConfig(path); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			if a.jsonOutput {
				return a.printJSON(cmd, map[string]string{"server": cfg.ServerURL, "config_file": path})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Server configured: %s\n", cfg.ServerURL)
			fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", path)
			return nil
		},
	}
	createCmd.Flags().StringVar(&server, "server", api.DefaultBaseAddress, "API base address")
	createCmd.Flags().StringVar(&token, "token", "", "Personal access token or {{ .ENV.NAME }} placeholder")
	createCmd.Flags().StringVar(&userAgent, "user-agent", "", "User-Agent header sent with every request")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the active configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.configPath()
			if err != nil {
				return err
			}
			cfg, err := LoadConfig(path)
			if err != nil {
				return err
			}
			view := *cfg
			view.Token = redact(view.Token)
			view.Password = redact(view.Password)
			return a.print(cmd, map[string]any{"config_file": path, "config": view}, func() {
				okLabel.Fprintf(cmd.OutOrStdout(), "Server: ")
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", view.ServerURL)
				if view.Token != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Token: %s\n", view.Token)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", path)
			})
		},
	}

	configCmd.AddCommand(createCmd, showCmd)
	return configCmd
}
