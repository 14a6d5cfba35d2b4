package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hugo-lorenzo-mato/lifeboard/internal/config"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the resolved configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long: `Print the configuration after defaults, config file, dotenv file and
environment have been merged. The database password is redacted.`,
	RunE: runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print one configuration value",
	Long: `Print a single resolved configuration value by its dotted key. The
value is not validated, so this also works on a broken configuration.
Credentials embedded in values are redacted.

Examples:
  lifeboard config get api.not_found_mode
  lifeboard config get database`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(args[0])

	loader := newLoader()
	if _, err := loader.Load(); err != nil {
		return err
	}
	if !loader.IsSet(key) {
		return fmt.Errorf("unknown configuration key %q", key)
	}

	out, err := yaml.Marshal(loader.Get(key))
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), logging.NewSanitizer().Sanitize(string(out)))
	return err
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(configView(cfg))
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// configView renders cfg with readable durations and a redacted URL.
func configView(cfg *config.Config) map[string]any {
	return map[string]any{
		"log": map[string]any{
			"level":  cfg.Log.Level,
			"format": cfg.Log.Format,
		},
		"database": map[string]any{
			"url":                cfg.Database.RedactedURL(),
			"driver":             cfg.Database.Driver,
			"max_open_conns":     cfg.Database.MaxOpenConns,
			"max_idle_conns":     cfg.Database.MaxIdleConns,
			"conn_max_lifetime":  cfg.Database.ConnMaxLifetime.String(),
			"conn_max_idle_time": cfg.Database.ConnMaxIdleTime.String(),
			"connect_timeout":    cfg.Database.ConnectTimeout.String(),
		},
		"api": map[string]any{
			"not_found_mode":  cfg.API.NotFoundMode,
			"request_timeout": cfg.API.RequestTimeout.String(),
			"max_body_bytes":  cfg.API.MaxBodyBytes,
			"cors": map[string]any{
				"allow_origin": cfg.API.CORS.AllowOrigin,
				"max_age":      cfg.API.CORS.MaxAge,
			},
		},
		"server": map[string]any{
			"host":             cfg.Server.Host,
			"port":             cfg.Server.Port,
			"shutdown_timeout": cfg.Server.ShutdownTimeout.String(),
		},
	}
}
