package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kailas-cloud/simcheck/internal/logger"
	"github.com/kailas-cloud/simcheck/internal/repository/source"
)

func runIndex(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	var cf commonFlags
	fs.StringVar(&cf.configPath, "config", "", "config file (default: config/<ENV>.yaml)")
	fs.StringVar(&cf.logLevel, "log-level", "", "log level override")
	root := fs.String("root", ".", "directory the glob is relative to")
	glob := fs.String("glob", "", "documents to index, e.g. 'docs/**/*.json'")
	collection := fs.String("collection", "", "target collection")
	sourceKey := fs.String("source", "", "source key mapped to a collection when -collection is empty")
	recreate := fs.Bool("recreate", false, "drop the collection before indexing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *glob == "" {
		return fmt.Errorf("-glob is required")
	}

	texts, failures, err := source.NewLoader(os.DirFS(*root)).Load(*glob)
	if err != nil {
		return err
	}

	a, log, err := setup(ctx, cf)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	for _, f := range failures {
		log.Warn("skipping unreadable file", zap.String("file", f.File), zap.Error(f.Err))
	}
	if len(texts) == 0 {
		return fmt.Errorf("no documents matched %q under %s", *glob, *root)
	}

	target := *collection
	if target == "" {
		target = a.Config.CollectionFor(*sourceKey)
	}
	ctx = logger.ContextWithLogger(ctx, log)
	if *recreate {
		if err := a.Indexer.Drop(ctx, target); err != nil {
			return err
		}
		fmt.Printf("Dropped %s\n", target)
	}
	fmt.Printf("Indexing %d documents into %s\n", len(texts), target)

	rep, err := a.Indexer.Index(ctx, target, texts)
	if err != nil {
		return err
	}
	fmt.Printf("Indexed %d/%d documents (%d chunks)\n", rep.Indexed, rep.Documents, rep.Chunks)
	for _, f := range rep.Failures {
		fmt.Printf("  failed: %s (%s): %v\n", f.Source.Title, f.Source.File, f.Err)
	}
	if rep.Cancelled {
		return fmt.Errorf("interrupted")
	}
	if n, err := a.Indexer.Count(ctx, target); err == nil {
		fmt.Printf("%s now holds %d chunks\n", target, n)
	} else {
		log.Warn("count failed", zap.Error(err))
	}
	return nil
}
