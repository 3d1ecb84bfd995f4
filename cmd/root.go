// Package cmd implements the resume-screener command line.
package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-screener/internal/filtering"
	"github.com/spigell/resume-screener/internal/render"
	"github.com/spigell/resume-screener/internal/session"
	"github.com/spigell/resume-screener/internal/staging"
	"github.com/spigell/resume-screener/internal/upload"
)

const (
	app = "resume-screener"
)

type Config struct {
	Endpoint          string        `mapstructure:"endpoint"`
	UploadPath        string        `mapstructure:"upload-path"`
	UserAgent         string        `mapstructure:"user-agent"`
	Timeout           time.Duration `mapstructure:"timeout"`
	BatchSize         int           `mapstructure:"batch-size"`
	MaxFiles          int           `mapstructure:"max-files"`
	AllowedExtensions []string      `mapstructure:"allowed-extensions"`
	MaxFileSize       int64         `mapstructure:"max-file-size"`
	Skills            []string      `mapstructure:"skills"`
	MatchingOnly      bool          `mapstructure:"matching-only"`
	RenderDebounce    time.Duration `mapstructure:"render-debounce"`
	Fade              time.Duration `mapstructure:"fade"`
	InspectDocuments  bool          `mapstructure:"inspect-documents"`
	DisabledFilters   []string      `mapstructure:"disabled-filters"`
	AI                *AIConfig     `mapstructure:"ai"`
}

type AIConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Gemini  *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-screener uploads résumés to a parsing service and ranks them by required skills",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("endpoint", "RESUME_SCREENER_ENDPOINT"); err != nil {
		log.Fatalf("binding RESUME_SCREENER_ENDPOINT environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("endpoint", upload.DefaultEndpoint)
	v.SetDefault("upload-path", upload.DefaultUploadPath)
	v.SetDefault("batch-size", upload.DefaultBatchSize)
	v.SetDefault("max-files", staging.DefaultMaxFiles)
	v.SetDefault("allowed-extensions", filtering.DefaultExtensions)
	v.SetDefault("render-debounce", render.DefaultDebounce)
	v.SetDefault("fade", session.DefaultFade)
	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.gemini.max-log-length", 200)
}

func initConfig() {
	// A missing .env is fine; the variables may come from the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional unless it was given explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return config, err
	}

	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}

	return config, nil
}
