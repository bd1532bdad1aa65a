package main

import (
	"fmt"
	"time"

	"github.com/UsamaZuberi/portfolio-v2/internal/observability"
	"github.com/UsamaZuberi/portfolio-v2/internal/server"
	"github.com/UsamaZuberi/portfolio-v2/internal/timeline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	timelineFilter string
	timelineJSON   bool
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Print the education and experience timeline",
	Long:  "Resolves the data document the way the server does and prints its timeline, newest first.",
	RunE:  runTimeline,
}

func init() {
	timelineCmd.Flags().StringVarP(&timelineFilter, "filter", "f", "all", "all, education or experience")
	timelineCmd.Flags().BoolVar(&timelineJSON, "json", false, "Print JSON instead of a summary")
	rootCmd.AddCommand(timelineCmd)
}

func runTimeline(cmd *cobra.Command, _ []string) error {
	filter, err := timeline.ParseFilter(timelineFilter)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	c, closeCache := server.OpenCache(cmd.Context(), cfg.RedisURL, logger)
	defer closeCache()

	resolver, err := server.NewResolver(cfg, c, logger, nil)
	if err != nil {
		return err
	}
	result := resolver.Load(cmd.Context())
	if result.Data == nil {
		return fmt.Errorf("portfolio data is not available (source: %s)", result.Source)
	}
	logger.Debug("resolved portfolio data", zap.String("source", string(result.Source)))

	items := timeline.Compose(result.Data, filter, time.Now())
	if timelineJSON {
		return writeJSON(cmd, map[string]any{"filter": filter, "items": items, "count": len(items)})
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	if verbose {
		printer.PrintDocument(result.Data, string(result.Source))
	}
	printer.PrintTimeline(items)
	return nil
}
