package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/lifeboard/internal/gateway"
)

var invokeCmd = &cobra.Command{
	Use:   "invoke",
	Short: "Run a single gateway event through a function",
	Long: `Read an API gateway proxy event as JSON and print the response envelope.

Examples:
  # Create a checklist
  echo '{"httpMethod":"POST","body":"{\"title\":\"Morning routine\"}"}' | lifeboard invoke -f checklists

  # Replay a captured event
  lifeboard invoke -f tasks --event event.json`,
	RunE: runInvoke,
}

var (
	invokeFunction string
	invokeEvent    string
)

func init() {
	rootCmd.AddCommand(invokeCmd)

	invokeCmd.Flags().StringVarP(&invokeFunction, "function", "f", "",
		"entity function (spheres, checklists, tasks)")
	invokeCmd.Flags().StringVar(&invokeEvent, "event", "",
		"event file (default: stdin)")
}

func runInvoke(cmd *cobra.Command, _ []string) error {
	fn, err := resolveFunction(invokeFunction)
	if err != nil {
		return err
	}

	event, err := readEvent(cmd.InOrStdin(), invokeEvent)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	logger := newLogger(cfg).WithFunction(fn)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	out, err := gateway.Invoke(ctx, buildHandlers(st, cfg, logger, nil)[fn], event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func readEvent(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading event from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading event file: %w", err)
	}
	return data, nil
}
