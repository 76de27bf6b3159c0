// Package main is the entry point of the opentele service.
//
// Overview:
//
//	The service connects to MongoDB, then joins a Kafka consumer group, and
//	only then opens its HTTP listener. SIGINT or SIGTERM triggers an ordered
//	shutdown: broker, listeners, idle monitor, document store.
//
// Usage:
//
//	MONGO_CONNECTION_STRING="mongodb://localhost:27017/stays" \
//	KAFKA_BROKERS="localhost:9092" PORT=8080 METRICS_PORT=9091 ./opentele
//
//	./opentele --env-file deploy/.env
//	./opentele version
//
// Endpoints:
//   - HTTP: 8080 (PORT), GET /getDirectories and GET /getFiles
//   - Ops: METRICS_PORT when set, /metrics and /healthz
//
// Exit codes: 0 after a clean shutdown, 1 on any configuration, startup or
// shutdown failure.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/red2n/opentele/configx"
	"github.com/red2n/opentele/servicex"
)

var envFile string

// rootCmd runs the service until SIGINT or SIGTERM.
var rootCmd = &cobra.Command{
	Use:   "opentele",
	Short: "Document store and broker backed directory service",
	Long: `opentele connects to the document store and the message broker, serves the
directory listing routes once both are up and shuts down in order on SIGINT
or SIGTERM.

Configuration is read from the environment and from the dotenv file named by
--env-file (or ENV_FILE, default .env). Environment variables win.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runService,
}

func init() {
	rootCmd.Flags().StringVar(&envFile, "env-file", "", "dotenv file to load (overrides ENV_FILE)")
}

// exitError carries a non-zero service exit code through cobra.
type exitError int

func (e exitError) Error() string {
	return "exit status " + strconv.Itoa(int(e))
}

func runService(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts servicex.Options
	if envFile != "" {
		opts.Sources = configx.DefaultSources(envFile)
	}
	if code := servicex.Run(ctx, opts); code != 0 {
		return exitError(code)
	}
	return nil
}

func main() {
	os.Exit(execute(context.Background()))
}

func execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var code exitError
	if errors.As(err, &code) {
		return int(code)
	}
	fmt.Fprintln(os.Stderr, err)
	return 1
}
