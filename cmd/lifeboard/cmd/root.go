package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hugo-lorenzo-mato/lifeboard/internal/config"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/logging"
)

var (
	cfgFile   string
	envFile   string
	logLevel  string
	logFormat string

	// Version info - set via SetVersion()
	appVersion string
	appCommit  string
	appDate    string
)

var rootCmd = &cobra.Command{
	Use:   "lifeboard",
	Short: "Life spheres, checklists and tasks behind a serverless gateway",
	Long: `lifeboard serves CRUD over life spheres, checklists and tasks stored in
PostgreSQL (or SQLite for local use).

Each entity family runs as its own serverless function ('lifeboard lambda'),
or all three run behind a local HTTP server ('lifeboard serve').`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion records build information.
func SetVersion(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// GetVersion returns the application version string.
func GetVersion() string {
	return appVersion
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: .lifeboard.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto",
		"log format (auto, text, json)")

	// Bind flags to viper (errors are nil when flag exists)
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// newLoader returns the loader shared by every command.
func newLoader() *config.Loader {
	loader := config.NewLoaderWithViper(viper.GetViper()).WithEnvFiles(envFile)
	if cfgFile != "" {
		loader.WithConfigFile(cfgFile)
	}
	return loader
}

// loadConfig resolves and validates the configuration once per command.
// Overrides come from command flags and win over every other source.
func loadConfig(overrides map[string]any) (*config.Config, error) {
	loader := newLoader()
	for key, value := range overrides {
		loader.Set(key, value)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger. Logs go to stderr so that stdout
// stays clean for command output.
func newLogger(cfg *config.Config) *logging.Logger {
	return logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
}
