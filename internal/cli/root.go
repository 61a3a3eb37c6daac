package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "battleship",
		Short: "Two-player battleship game server",
		Long: `battleship runs the websocket battleship server and the static
HTTP server that delivers the pre-built browser client.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
