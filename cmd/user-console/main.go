package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"user-console/cmd/user-console/app"
	"user-console/cmd/user-console/server"
)

var version = "1.0.0"

var flagConfig string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "user-console",
	Short: "Console for browsing and editing users of a REST users API",
	Long: `user-console lists, pages, creates, edits and deletes user records held
by a remote REST users API.

Examples:
  user-console serve                  # web console on HTTP_PORT, users API on API_PORT
  user-console tui                    # terminal console against API_BASE_URL
  user-console serve --config ./conf  # read ./conf/app.env`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web console and, when API_ENABLED, the reference users API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := server.WithSignal(cmd.Context())
		defer stop()

		a, err := app.New(ctx, configPath())
		if err != nil {
			return err
		}
		return a.Run(ctx)
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the terminal console",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := server.WithSignal(cmd.Context())
		defer stop()

		return app.RunTUI(ctx, configPath())
	},
}

// configPath resolves the app.env directory: --config, then CONFIG_PATH, then ".".
func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "."
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "directory containing app.env (overrides CONFIG_PATH)")
	rootCmd.AddCommand(serveCmd, tuiCmd)
}
