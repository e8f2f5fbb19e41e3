// Package cli implements the ghrest command line client for the GitHub REST API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	jsonitor "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/tansive/ghrest/internal/common/logtrace"
	"sigs.k8s.io/yaml"
)

var json = jsonitor.ConfigCompatibleWithStandardLibrary

var ErrAlreadyHandled = errors.New("already handled")

var okLabel = color.New(color.FgGreen)
var errorLabel = color.New(color.FgRed)
var warnLabel = color.New(color.FgYellow)

// app holds the global flags and the configuration loaded for a command.
type app struct {
	jsonOutput bool
	yamlOutput bool
	configFile string
	retries    uint
	debug      bool

	retryDelay time.Duration
	config     *Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{retryDelay: defaultRetryDelay})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ghrest [command] [flags]",
		Short: "ghrest - a command line client for the GitHub REST API",
		Long: `ghrest is a command line client for the GitHub REST API.
It sends authenticated requests, follows pagination and prints results as text, JSON or YAML.

Examples:
  # Configure the client
  ghrest config create --token '{{ .ENV.GH_PAT }}'

  # Get a single resource
  ghrest get repos/octocat/hello-world

  # List the first two pages of open issues
  ghrest list repos/octocat/hello-world/issues -p state=open --page-size 50 --page-count 2

  # Show the rate limit
  ghrest ratelimit`,
		PersistentPreRunE: a.preRunHandlePersistents,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true, // Execute prints errors
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "", "", "Path to configuration file to override default")
	rootCmd.PersistentFlags().BoolVarP(&a.jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&a.yamlOutput, "yaml", "", false, "Output in YAML format")
	rootCmd.PersistentFlags().UintVarP(&a.retries, "retries", "", 0, "Retry transient failures this many times")
	rootCmd.PersistentFlags().BoolVarP(&a.debug, "debug", "", false, "Log requests to stderr")

	rootCmd.AddCommand(
		a.newVersionCmd(),
		a.newConfigCmd(),
		a.newGetCmd(),
		a.newListCmd(),
		a.newRateLimitCmd(),
	)
	return rootCmd
}

// Execute runs the CLI with os.Args and exits non-zero on failure.
func Execute() {
	logtrace.InitLogger()
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if errors.Is(err, ErrAlreadyHandled) {
			os.Exit(1)
		}
		jsonFlag, _ := rootCmd.PersistentFlags().GetBool("json")
		if jsonFlag {
			out, _ := json.MarshalIndent(map[string]string{"error": err.Error()}, "", "  ")
			fmt.Println(string(out))
		} else {
			errorLabel.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// preRunHandlePersistents applies global flags and loads the configuration for commands
// that talk to the API.
func (a *app) preRunHandlePersistents(cmd *cobra.Command, args []string) error {
	logtrace.SetDebug(a.debug)
	if a.jsonOutput && a.yamlOutput {
		return errors.New("--json and --yaml are mutually exclusive")
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "config" || c.Name() == "version" {
			return nil
		}
	}
	path, err := a.configPath()
	if err != nil {
		return err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file %s not found. Configure ghrest with \"ghrest config create\" first", path)
		}
		return err
	}
	a.config = cfg
	return nil
}

func (a *app) configPath() (string, error) {
	if a.configFile != "" {
		return a.configFile, nil
	}
	return GetDefaultConfigPath()
}

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of ghrest",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := a.configPath()
			if err != nil {
				configPath = "unknown"
			}
			return a.print(cmd, map[string]string{"version": getCLIVersion(), "config_file": configPath}, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "ghrest %s\n", getCLIVersion())
				fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", configPath)
			})
		},
	}
}

// print writes v as JSON or YAML when requested, and calls text otherwise.
func (a *app) print(cmd *cobra.Command, v any, text func()) error {
	switch {
	case a.jsonOutput:
		return a.printJSON(cmd, v)
	case a.yamlOutput:
		return printYAML(cmd.OutOrStdout(), v)
	}
	text()
	return nil
}

func (a *app) printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format JSON output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func printYAML(w io.Writer, v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to format YAML output: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// getCLIVersion returns the current CLI version
func getCLIVersion() string {
	return "v0.1.0"
}
