package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	domgap "github.com/kailas-cloud/simcheck/internal/domain/gap"
	"github.com/kailas-cloud/simcheck/internal/logger"
	gapuc "github.com/kailas-cloud/simcheck/internal/usecase/gap"
)

func runGaps(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("gaps", flag.ExitOnError)
	var cf commonFlags
	fs.StringVar(&cf.configPath, "config", "", "config file (default: config/<ENV>.yaml)")
	fs.StringVar(&cf.logLevel, "log-level", "", "log level override")
	var req gapuc.Request
	fs.StringVar(&req.Variant, "variant", string(domgap.VariantTopicAspect), "topic_aspect or funnel")
	fs.StringVar(&req.Source, "source", "", "source key mapped to the collection to analyse")
	fs.StringVar(&req.Depth, "depth", string(domgap.DepthQuick), "quick, standard or comprehensive")
	fs.Float64Var(&req.MinSimilarity, "min-similarity", 0, "similarity floor; 0 uses the variant default")
	fs.StringVar(&req.FunnelFocus, "funnel-focus", "", "funnel only: restrict to one stage")
	fs.StringVar(&req.IndustryFocus, "industry", "", "funnel only: industry to favour")
	csvPath := fs.String("csv", "", "write gaps as CSV to this file")
	top := fs.Int("top", 15, "gaps to print")
	style := fs.String("style", "dark", "glamour style: dark, light, notty")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, log, err := setup(ctx, cf)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	params, job, err := a.Planner.Plan(req)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Analysing %d combinations in %s\n", len(job.Combinations), params.Collection)
	job.OnBatch = func(b gapuc.BatchReport) {
		status := fmt.Sprintf("%d gaps", len(b.Gaps))
		if b.Err != nil {
			status = "failed: " + b.Err.Error()
		}
		fmt.Fprintf(os.Stderr, "  batch %d/%d: %s\n", b.Batch, b.Batches, status)
	}

	res := a.Analyzer.Analyze(logger.ContextWithLogger(ctx, log), job)

	if *csvPath != "" {
		run := domgap.Run{Params: params, Gaps: res.Gaps}
		if err := writeCSVFile(*csvPath, &run); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %d gaps to %s\n", len(res.Gaps), *csvPath)
	}

	out, err := renderMarkdown(gapsMarkdown(params, res, *top), *style)
	if err != nil {
		return err
	}
	fmt.Print(out)
	if res.Cancelled {
		return fmt.Errorf("interrupted after %d of %d combinations", res.Analyzed, len(job.Combinations))
	}
	return nil
}

func writeCSVFile(path string, run *domgap.Run) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := run.WriteCSV(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
