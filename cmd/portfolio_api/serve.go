package main

import (
	"fmt"

	"github.com/UsamaZuberi/portfolio-v2/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server that exposes the portfolio data, project images, contact form
and admin endpoints. Redis, Postgres, object storage and admin tokens are enabled
when their settings are present.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides PORT and config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting portfolio API",
		zap.Int("port", cfg.Port),
		zap.Bool("remote_data", cfg.DataURL != ""),
		zap.String("blob_provider", cfg.BlobProvider),
		zap.Bool("blob_configured", cfg.BlobConfigured()),
		zap.Bool("redis", cfg.RedisURL != ""),
		zap.Bool("database", cfg.DatabaseURL != ""),
	)

	srv, err := server.Build(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(cmd.Context())
}
