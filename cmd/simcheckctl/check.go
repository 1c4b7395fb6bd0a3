package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/kailas-cloud/simcheck/internal/logger"
)

func runCheck(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	var cf commonFlags
	fs.StringVar(&cf.configPath, "config", "", "config file (default: config/<ENV>.yaml)")
	fs.StringVar(&cf.logLevel, "log-level", "", "log level override")
	sourceKey := fs.String("source", "", "source key, e.g. froala or filestack")
	file := fs.String("file", "", "draft file; - reads stdin")
	style := fs.String("style", "dark", "glamour style: dark, light, notty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	draft, err := readDraft(*file)
	if err != nil {
		return err
	}

	a, log, err := setup(ctx, cf)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	report, err := a.Similarity.Check(logger.ContextWithLogger(ctx, log), draft, *sourceKey)
	if err != nil {
		return err
	}

	out, err := renderMarkdown(reportMarkdown(report), *style)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func readDraft(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read draft: %w", err)
	}
	return string(data), nil
}
