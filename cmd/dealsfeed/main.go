// Command dealsfeed filters a raw newline-delimited business dataset into the
// venue feed served by /api/deals.
//
// Usage:
//
//	dealsfeed --input yelp_academic_dataset_business.json --output data/filtered_businesses.json
//	dealsfeed --input s3://datasets/business.json --categories bar,club
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mellow/internal/config"
	"mellow/internal/deals"
	"mellow/internal/logging"
)

type options struct {
	input      string
	output     string
	categories string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "dealsfeed",
		Short:         "Build the venue deals feed from a raw business dataset",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeed(cmd.Context(), opts)
		},
	}

	cfg := config.Defaults()
	cmd.Flags().StringVarP(&opts.input, "input", "i", "yelp_academic_dataset_business.json", "raw dataset path or s3://bucket/key")
	cmd.Flags().StringVarP(&opts.output, "output", "o", cfg.DealsFile, "feed file to replace")
	cmd.Flags().StringVar(&opts.categories, "categories", "", "comma separated category fragments (default bar,club,restaurant)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")
	return cmd
}

func runFeed(ctx context.Context, opts *options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if opts.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, "console")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	start := time.Now()
	src, err := deals.OpenSource(ctx, opts.input, cfg.S3)
	if err != nil {
		return err
	}
	defer src.Close()

	pipeline := deals.NewPipeline(deals.ParseCategories(opts.categories), logger)
	logger.Debug("filtering", zap.String("input", opts.input), zap.Strings("categories", pipeline.Categories))

	res, err := pipeline.Run(ctx, src, opts.output)
	if err != nil {
		return fmt.Errorf("build feed: %w", err)
	}

	logger.Info("done",
		zap.Int("admitted", res.Admitted),
		zap.Int("skipped", res.Skipped),
		logging.Since(start),
	)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "dealsfeed: %v\n", err)
		stop()
		os.Exit(1)
	}
}
