package cmd

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/lifeboard/internal/adapters/store"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/gateway"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/logging"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Run one entity function under the Lambda runtime",
	Long: `Run the spheres, checklists or tasks function as a serverless handler.

The function is chosen by --function, then LIFEBOARD_FUNCTION, then the suffix
of AWS_LAMBDA_FUNCTION_NAME. The database pool is opened once per runtime
instance, shared by every invocation and closed when the runtime sends
SIGTERM.`,
	RunE: runLambda,
}

var lambdaFunction string

func init() {
	rootCmd.AddCommand(lambdaCmd)

	lambdaCmd.Flags().StringVarP(&lambdaFunction, "function", "f", "",
		"entity function (spheres, checklists, tasks)")
}

func runLambda(_ *cobra.Command, _ []string) error {
	fn, err := resolveFunction(lambdaFunction)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	logger := newLogger(cfg).WithFunction(fn)

	ctx := context.Background()
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	handler := buildHandlers(st, cfg, logger, nil)[fn]
	logger.Info("starting lambda handler", slog.String("version", appVersion))
	// Start exits the process; the pool is released from the SIGTERM hook.
	gateway.Start(ctx, handler, lambda.WithEnableSIGTERM(shutdownHook(st, logger)))
	return nil
}

// shutdownHook closes the pool when the runtime shuts the instance down.
func shutdownHook(st *store.Store, logger *logging.Logger) func() {
	return func() {
		logger.Info("runtime shutting down, closing database")
		closeStore(st, logger)
	}
}
