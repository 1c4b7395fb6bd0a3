// Command simcheckctl runs indexing, similarity checks and gap analyses
// in-process, with the same configuration as the API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/simcheck/internal/app"
	"github.com/kailas-cloud/simcheck/internal/config"
	logpkg "github.com/kailas-cloud/simcheck/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd := os.Args[1]; cmd {
	case "index":
		err = runIndex(ctx, os.Args[2:])
	case "check":
		err = runCheck(ctx, os.Args[2:])
	case "gaps":
		err = runGaps(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "simcheckctl %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  simcheckctl index -glob 'docs/**/*.json' [-root dir] [-collection name | -source key]")
	fmt.Println("  simcheckctl check [-source key] -file draft.md")
	fmt.Println("  simcheckctl gaps [-variant topic_aspect|funnel] [-depth quick|standard|comprehensive] [-csv out.csv]")
	fmt.Println()
	fmt.Println("Every command accepts -config path and -log-level level.")
}

// commonFlags are shared by every subcommand.
type commonFlags struct {
	configPath string
	logLevel   string
}

// setup loads the configuration, builds the logger and wires the services.
func setup(ctx context.Context, cf commonFlags) (*app.App, *zap.Logger, error) {
	cfg, err := loadConfig(cf.configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logpkg.NewLogger("cli", cf.logLevel)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.Build(logpkg.ContextWithLogger(ctx, logger), cfg, app.Options{}, logger)
	if err != nil {
		return nil, nil, err
	}
	return a, logger, nil
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Load(config.GetEnv())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("read config: %w", err)
	}
	return config.Parse(data)
}
