// Package cli implements the studio command-line client on top of cobra.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mzarzor/imagestudio/internal/buildinfo"
	"github.com/mzarzor/imagestudio/internal/client/api"
	"github.com/mzarzor/imagestudio/internal/client/config"
)

var (
	serverAddr string

	cfg    *config.Config
	client *api.Client
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "studio",
	Short: "Command-line client for the image studio server",
	Long: `Command-line client for the image studio server.

Generate images from text prompts, browse and export the generation
history, and manage the studio as an administrator.

Quick Start:
  studio login                      # Log in with email and password
  studio generate "a red fox"       # Generate an image
  studio history list               # Browse the generation history
  studio history export --format md # Export the history as Markdown`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.LoadConfig()
		if serverAddr != "" {
			cfg.ServerEndpointAddr = serverAddr
		}
		client = api.NewClient(cfg.ServerEndpointAddr)
		if token := loadToken(); token != "" {
			client.SetToken(token)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "", "Base URL of the studio server")
}

// loadToken reads the cached access token, empty when none is saved.
func loadToken() string {
	data, err := os.ReadFile(cfg.TokenFile)
	if err != nil {
		return ""
	}
	return string(data)
}

// saveToken caches the access token for subsequent invocations.
func saveToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(cfg.TokenFile), 0o700); err != nil {
		return err
	}
	return os.WriteFile(cfg.TokenFile, []byte(token), 0o600)
}

// dropToken removes the cached access token.
func dropToken() {
	_ = os.Remove(cfg.TokenFile)
}
