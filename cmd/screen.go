package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/ai/gemini"
	"github.com/spigell/resume-screener/internal/files"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/render"
	"github.com/spigell/resume-screener/internal/secrets"
	"github.com/spigell/resume-screener/internal/session"
	"github.com/spigell/resume-screener/internal/staging"
	"github.com/spigell/resume-screener/internal/upload"
)

var stdout io.Writer = os.Stdout

var screenCmd = &cobra.Command{
	Use:   "screen [FILE|DIR]...",
	Short: "Upload résumés in batches and rank them by the required skills",
	Run: func(cmd *cobra.Command, args []string) {
		screen(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringSliceP("skill", "s", nil, "required skill, may be repeated")
	screenCmd.Flags().BoolP("matching-only", "m", false, "show only résumés that have every required skill")
	screenCmd.Flags().BoolP("interactive", "i", false, "open the interactive session instead of printing a report")
	screenCmd.Flags().StringP("format", "f", render.FormatText, "report format: text, json or html")
	screenCmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")

	viper.BindPFlag("skills", screenCmd.Flags().Lookup("skill"))
	viper.BindPFlag("matching-only", screenCmd.Flags().Lookup("matching-only"))
}

func screen(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, config := setup()

	interactive, _ := cmd.Flags().GetBool("interactive")
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	sess := newSession(ctx, config, logger, interactive)
	defer sess.Close()

	staged := collect(args, config, logger)
	if len(staged) > 0 && !sess.Stage(staged...) {
		logger.Fatal("staging files", zap.Int("files", len(staged)), zap.Int("limit", config.MaxFiles))
	}

	if interactive {
		if err := runInteractive(ctx, sess, config, logger); err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		return
	}

	results, err := sess.Submit(ctx)
	if err != nil && len(results) == 0 {
		logger.Fatal("uploading files", zap.Error(err))
	}

	if err := writeReport(sess.View(), format, output, logger); err != nil {
		logger.Fatal("writing report", zap.Error(err))
	}
}

// setup builds the logger and reads the configuration.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Debug("starting the resume-screener",
		zap.String("version", version),
		zap.String("endpoint", config.Endpoint),
		zap.Strings("skills", config.Skills),
	)

	return logger, config
}

func newClient(config *Config, logger *zap.Logger) *upload.Client {
	client := upload.New(logger, config.Endpoint, config.Timeout)
	if path := strings.TrimSpace(config.UploadPath); path != "" {
		client.UploadPath = path
	}
	if ua := strings.TrimSpace(config.UserAgent); ua != "" {
		client.UserAgent = ua
	}
	return client
}

func newSession(ctx context.Context, config *Config, logger *zap.Logger, interactive bool) *session.Session {
	hooks := session.Hooks{
		Alert: func(message string) {
			fmt.Fprintln(os.Stderr, message)
		},
		Progress: func(done, total int, filename string) {
			logger.Info(fmt.Sprintf("Processing %d/%d", done, total), zap.String("filename", filename))
		},
	}

	if interactive {
		hooks.Selection = func(s staging.Selection) {
			printSelection(stdout, s)
		}
		hooks.Skills = func(tags string) {
			fmt.Fprintf(stdout, "Required skills: %s\n", tags)
		}
		hooks.Render = func(v render.View) {
			if err := render.Text(stdout, v); err != nil {
				logger.Warn("rendering results", zap.Error(err))
			}
		}
	}

	return session.New(newClient(config, logger), session.Config{
		MaxFiles:        config.MaxFiles,
		BatchSize:       config.BatchSize,
		Extensions:      config.AllowedExtensions,
		MaxFileSize:     config.MaxFileSize,
		DisabledFilters: config.DisabledFilters,
		Skills:          config.Skills,
		MatchingOnly:    config.MatchingOnly,
		Debounce:        config.RenderDebounce,
		Fade:            config.Fade,
		Summarizer:      newSummarizer(ctx, config, logger),
	}, hooks, logger)
}

// newSummarizer returns nil when AI summaries are disabled.
func newSummarizer(ctx context.Context, config *Config, log *zap.Logger) ai.Summarizer {
	if config.AI == nil || !config.AI.Enabled {
		return nil
	}

	gc := config.AI.Gemini
	if gc == nil {
		gc = &GeminiConfig{}
	}

	key, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  gc.APIKeyFile,
		Value: gc.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		log.Fatal(
			"loading gemini api key",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE or GEMINI_API_KEY, or disable ai.enabled in the configuration file"),
		)
	}

	generator, err := gemini.NewGenerator(ctx, key, gc.Model, gc.MaxRetries, log)
	if err != nil {
		log.Fatal("creating gemini client", zap.Error(err))
	}

	logger.WithProvider(log, gemini.Provider, generator.Model()).Info("ai summaries enabled")

	return gemini.NewSummarizer(generator, log, gc.MaxLogLength)
}

func collect(paths []string, config *Config, logger *zap.Logger) []*files.File {
	list := files.Collect(paths, logger)
	if config.InspectDocuments {
		list = files.InspectAll(files.PDFInspector{}, list, logger)
	}
	return list
}

func printSelection(w io.Writer, s staging.Selection) {
	if s.Count == 0 {
		fmt.Fprintln(w, "No files selected.")
		return
	}
	fmt.Fprintf(w, "Selected files (%d):\n", s.Count)
	for _, line := range s.Lines {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

// writeReport writes the view to output, or to stdout when output is empty.
func writeReport(v render.View, format, output string, logger *zap.Logger) error {
	if output == "" {
		return render.Write(stdout, format, v)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()

	if err := render.Write(f, format, v); err != nil {
		return err
	}

	logger.Info("report written", zap.String("filename", output), zap.String("format", format))
	return nil
}

// formatFor picks the report format from the file extension.
func formatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return render.FormatHTML
	case ".json":
		return render.FormatJSON
	default:
		return render.FormatText
	}
}
