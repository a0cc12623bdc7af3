package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pixbatch/config"
	"pixbatch/logger"
	"pixbatch/pipeline"
)

func main() {
	// A malformed variable only fails the run itself; history and version still work.
	cfg, envErr := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&cfg, envErr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Flag defaults come from cfg, which already
// holds the environment, so a flag only overrides what it is given for. envErr is
// the error config.Load returned, if any.
func newRootCmd(cfg *config.Config, envErr error) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pixbatch [source-dir]",
		Short: "pixbatch - resize a directory of images sequentially and concurrently and report the timings",
		Args:  cobra.MaximumNArgs(1),
		// Runtime failures are logged; usage is only for bad invocations.
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				cfg.SourceDir = args[0]
			}
			if err := setupLogger(cfg.LogFile, cfg.LogLevel); err != nil {
				return err
			}
			defer logger.Close()
			// From here on every failure goes through the logger; cobra must not repeat it.
			cmd.SilenceErrors = true

			if envErr != nil {
				logger.Errorf("%v", envErr)
				return envErr
			}
			if err := cfg.Validate(); err != nil {
				logger.Errorf("%v", err)
				return err
			}

			sum, err := pipeline.Run(cmd.Context(), *cfg)
			if err != nil {
				logger.Errorf("Run failed: %v", err)
				return err
			}
			if cmd.Context().Err() != nil {
				logger.Warnf("Run %s was interrupted; the report only covers the files that were started", sum.RunID)
			}
			return nil
		},
	}

	f := rootCmd.Flags()
	f.StringVar(&cfg.SourceDir, "source", cfg.SourceDir, "Directory holding the source images")
	f.StringVar(&cfg.OutputSubdir, "output-subdir", cfg.OutputSubdir, "Subdirectory of the source that receives the artifacts")
	f.IntSliceVar(&cfg.Resolutions, "resolutions", cfg.Resolutions, "Target heights in pixels")
	f.IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "Concurrent pass pool size")
	f.StringSliceVar(&cfg.Extensions, "extensions", cfg.Extensions, "Image file extensions to pick up")
	f.StringVar(&cfg.ReportName, "report-name", cfg.ReportName, "Report file name inside the source directory")
	f.IntVar(&cfg.JPEGQuality, "jpeg-quality", cfg.JPEGQuality, "JPEG encoder quality (1-100)")
	f.StringVar(&cfg.HistoryDir, "history-dir", cfg.HistoryDir, "Pebble directory for run history (disabled when empty)")
	f.DurationVar(&cfg.HistoryRetention, "history-retention", cfg.HistoryRetention, "Prune history records older than this")
	f.StringVar(&cfg.Mirror, "mirror", cfg.Mirror, "Copy artifacts to a remote backend: s3, gcs or sftp")
	f.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Also append logs to this file")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Minimum log level: debug, info, warn or error")

	rootCmd.AddCommand(newHistoryCmd(cfg.HistoryDir), newVersionCmd())
	return rootCmd
}

func setupLogger(file, level string) error {
	lvl, err := logger.ParseLevel(level)
	if err != nil {
		return err
	}
	if err := logger.Init(file, true); err != nil {
		return err
	}
	logger.SetLevel(lvl)
	return nil
}
