// cmd/render.go
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stylecore/internal/browser/dump"
	"github.com/xkilldash9x/stylecore/internal/browser/render"
	"github.com/xkilldash9x/stylecore/internal/config"
	"github.com/xkilldash9x/stylecore/internal/observability"
	"github.com/xkilldash9x/stylecore/internal/source"
)

func newRenderCmd() *cobra.Command {
	var (
		format      string
		concurrency int
		metricsFile string
	)

	renderCmd := &cobra.Command{
		Use:   "render [paths...]",
		Short: "Parses documents and prints their trees with computed styles",
		Long: `Parses each document, resolves the styles of its <style> elements and prints
the normalized tree with every element's computed style.

Use "-" to read standard input. Files ending in .br, .gz or .zz are decompressed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}

			// Flags override the config file and environment.
			if cmd.Flags().Changed("format") {
				cfg.SetRenderFormat(format)
			}
			if cmd.Flags().Changed("concurrency") {
				cfg.SetRenderConcurrency(concurrency)
			}
			if cmd.Flags().Changed("metrics-file") {
				cfg.SetMetricsTextfilePath(metricsFile)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return runRender(cmd.Context(), cmd.OutOrStdout(), cmd.InOrStdin(), cfg, args)
		},
	}

	renderCmd.Flags().StringVarP(&format, "format", "f", config.FormatText, "output format: text, json or xml")
	renderCmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "documents rendered in parallel (default from config)")
	renderCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write prometheus metrics to this file when done")
	return renderCmd
}

// runRender loads and renders every path and writes the results in input
// order. Documents that fail to load are reported together after the rest
// have been printed.
func runRender(ctx context.Context, out io.Writer, stdin io.Reader, cfg config.Interface, paths []string) error {
	logger := observability.GetLogger()
	metrics := observability.NewMetrics()

	loader := source.NewLoader(cfg.Render().MaxInputBytes, logger)
	loader.Stdin = stdin

	sources := make([]render.Source, len(paths))
	for i, path := range paths {
		sources[i] = render.Source{
			Name: path,
			Load: func() (string, error) { return loader.Load(path) },
		}
	}

	pipeline := render.New(logger, metrics)
	results, err := pipeline.RenderAll(ctx, sources, cfg.Render().Concurrency)

	format := cfg.Render().Format
	for _, res := range results {
		if res == nil {
			continue
		}
		if format == config.FormatText && len(paths) > 1 {
			fmt.Fprintf(out, "==> %s <==\n", res.Name)
		}
		if werr := dump.Write(out, format, res); werr != nil {
			err = multierr.Append(err, fmt.Errorf("writing %s: %w", res.Name, werr))
		}
	}

	if path := cfg.Metrics().TextfilePath; path != "" {
		err = multierr.Append(err, metrics.WriteTextfile(path))
	}

	if err != nil {
		logger.Error("Render finished with errors", zap.Int("failed", len(multierr.Errors(err))))
	}
	return err
}
