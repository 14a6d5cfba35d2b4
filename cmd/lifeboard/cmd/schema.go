package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/lifeboard/internal/adapters/store"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect or apply the database schema",
}

var schemaApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Create missing tables and indexes",
	Long: `Create the life_spheres, checklists and tasks tables if they do not exist.

Existing tables are left untouched. This is a bootstrap for empty databases,
not a migration tool.`,
	RunE: runSchemaApply,
}

var schemaPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the bundled DDL",
	Long: `Print the bundled DDL for a dialect.

Examples:
  lifeboard schema print
  lifeboard schema print --dialect sqlite`,
	RunE: runSchemaPrint,
}

var schemaDialect string

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaApplyCmd)
	schemaCmd.AddCommand(schemaPrintCmd)

	schemaPrintCmd.Flags().StringVar(&schemaDialect, "dialect", string(store.DialectPostgres),
		"SQL dialect (postgres, sqlite)")
}

func runSchemaApply(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	st, err := openStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	if err := st.ApplySchema(cmd.Context()); err != nil {
		return err
	}
	logger.Info("schema applied", slog.String("dialect", string(st.Dialect())))
	fmt.Fprintf(cmd.OutOrStdout(), "Schema applied (%s)\n", st.Dialect())
	return nil
}

func runSchemaPrint(cmd *cobra.Command, _ []string) error {
	d := store.Dialect(strings.ToLower(schemaDialect))
	switch d {
	case store.DialectPostgres, store.DialectSQLite:
	default:
		return fmt.Errorf("unknown dialect %q (want postgres or sqlite)", schemaDialect)
	}
	_, err := fmt.Fprint(cmd.OutOrStdout(), store.SchemaDDL(d))
	return err
}
