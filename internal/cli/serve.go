package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/netchat-server/internal/app"
	"github.com/vovakirdan/netchat-server/internal/config"
	"github.com/vovakirdan/netchat-server/internal/log"
)

var serveFlags struct {
	configPath      string
	addr            string
	logLevel        string
	shutdownTimeout time.Duration
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		bootLog := log.New(serveFlags.logLevel)

		cfg, path, err := config.Load(bootLog, serveFlags.configPath)
		if err != nil {
			return err
		}
		cfg.UpdateFrom(config.Config{
			Addr:            serveFlags.addr,
			LogLevel:        serveFlags.logLevel,
			ShutdownTimeout: serveFlags.shutdownTimeout,
		})

		logger := log.New(cfg.LogLevel)
		logger.Info().Str("config", path).Str("addr", cfg.Addr).Msg("starting netchat server")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := app.New(cfg, logger).Run(ctx); err != nil {
			logger.Error().Err(err).Msg("server exited with error")
			return err
		}
		logger.Info().Msg("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.configPath, "config", "c", "", "path to config.yaml")
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "TCP listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	serveCmd.Flags().DurationVar(&serveFlags.shutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
