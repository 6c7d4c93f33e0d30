package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/netchat-server/internal/client"
	"github.com/vovakirdan/netchat-server/internal/log"
)

var connectFlags struct {
	addr     string
	logLevel string
}

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to a chat server interactively",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Chat lines go to stdout; diagnostics stay on stderr.
		logger := log.NewWithOutput(connectFlags.logLevel, os.Stderr)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return client.New(connectFlags.addr, os.Stdin, os.Stdout, logger).Run(ctx)
	},
}

func init() {
	connectCmd.Flags().StringVar(&connectFlags.addr, "addr", "127.0.0.1:11000", "server address")
	connectCmd.Flags().StringVar(&connectFlags.logLevel, "log-level", "error", "log level: debug, info, warn, error")
	rootCmd.AddCommand(connectCmd)
}
