package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/files"
	"github.com/spigell/resume-screener/internal/filtering"
	"github.com/spigell/resume-screener/internal/render"
	"github.com/spigell/resume-screener/internal/resume"
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Upload a single résumé and print the parsed sections",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		parse(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringP("format", "f", render.FormatText, "output format: text or json")
}

func parse(cmd *cobra.Command, path string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, config := setup()
	format, _ := cmd.Flags().GetString("format")

	f, err := files.FromPath(path)
	if err != nil {
		logger.Fatal("reading file", zap.Error(err))
	}

	steps := []filtering.Filter{
		filtering.NewExtensions(config.AllowedExtensions),
		filtering.NewMaxSize(config.MaxFileSize),
	}
	if accepted := filtering.Run(logger, steps, nil, []*files.File{f}); len(accepted) == 0 {
		logger.Fatal("unsupported file",
			zap.String("filename", f.Name),
			zap.Strings("allowed", config.AllowedExtensions),
		)
	}

	parsed, err := newClient(config, logger).UploadSingle(ctx, f)
	if err != nil {
		logger.Fatal("parsing resume", zap.Error(err))
	}

	ai.FillSummaries(ctx, newSummarizer(ctx, config, logger), []*resume.Resume{parsed}, logger)

	if format == render.FormatJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(parsed)
	} else {
		err = render.Sections(stdout, parsed)
	}
	if err != nil {
		logger.Fatal("printing resume", zap.Error(err))
	}
}
