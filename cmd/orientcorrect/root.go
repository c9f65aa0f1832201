package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	kafkaadapter "github.com/couchcryptid/orient-correct/internal/adapter/kafka"
	"github.com/couchcryptid/orient-correct/internal/adapter/sacfs"
	"github.com/couchcryptid/orient-correct/internal/config"
	"github.com/couchcryptid/orient-correct/internal/observability"
	"github.com/couchcryptid/orient-correct/internal/pipeline"
	"github.com/couchcryptid/orient-correct/internal/table"
)

// execute runs the command and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{}
	}
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

type options struct {
	tablePath string
	outputDir string
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "orientcorrect <north_sac> <east_sac>",
		Short: "Correct the horizontal orientation of a seismometer recording",
		Long: "Looks up the azimuth deviation for the station and start date of the\n" +
			"north component, applies any channel swap or polarity fix, rotates both\n" +
			"components and writes correct.<basename> copies.\n\n" +
			"Flags go before the paths. Use -- before a path that starts with a dash.",
		Args:          exactPaths,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args[0], args[1], stdout, stderr)
		},
	}
	cmd.Flags().StringVar(&opts.tablePath, "table", "", "reference table CSV (overrides TABLE_PATH)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "directory for corrected files (overrides OUTPUT_DIR)")
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func exactPaths(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected 2 arguments, got %d\nusage: %s", len(args), cmd.UseLine())
	}
	return nil
}

func run(ctx context.Context, opts options, northPath, eastPath string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.tablePath != "" {
		cfg.TablePath = opts.tablePath
	}
	if opts.outputDir != "" {
		cfg.OutputDir = opts.outputDir
	}

	logger := observability.NewLogger(cfg, stderr)
	metrics := observability.NewMetrics()

	p := pipeline.New(
		sacfs.NewReader(logger),
		table.NewFileSource(cfg.TablePath, logger),
		pipeline.NewTransformer(logger),
		sacfs.NewWriter(cfg.OutputDir, cfg.OutputPrefix, logger),
		logger,
		metrics,
	)

	if cfg.KafkaEnabled() {
		publisher := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("kafka writer close error", "error", err)
			}
		}()
		p.WithPublisher(publisher)
		logger.Info("report publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	report, runErr := p.Run(ctx, northPath, eastPath)

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Warn("write metrics textfile failed", "path", cfg.MetricsTextfile, "error", err)
		}
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return errors.New("interrupted")
		}
		return runErr
	}

	fmt.Fprintln(stdout, report.Summary())
	fmt.Fprintln(stdout, "finished")
	return nil
}
