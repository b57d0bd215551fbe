package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/jingkaihe/skilltree/pkg/builder"
	"github.com/jingkaihe/skilltree/pkg/presenter"
	"github.com/jingkaihe/skilltree/pkg/types/tree"
)

func runGenerate(ctx context.Context, cfg builder.Config) int {
	res, err := builder.Generate(ctx, cfg)
	return reportGenerate(cfg, res, err)
}

func reportGenerate(cfg builder.Config, res *builder.Result, err error) int {
	if err != nil {
		presenter.Error(err, "skill tree build failed")
		return exitIO
	}
	printDiagnostics(res.Diagnostics)
	if res.HasErrors() {
		presenter.Error(errors.New("sitemap left untouched"), "skill tree is invalid")
		return exitInvalid
	}
	presenter.Success(fmt.Sprintf("wrote %s", cfg.ArtifactPath()))
	printStats(res)
	return exitOK
}

func runCheck(ctx context.Context, cfg builder.Config) int {
	res, err := builder.Check(ctx, cfg)
	if err != nil {
		presenter.Error(err, "skill tree check failed")
		return exitIO
	}
	printDiagnostics(res.Diagnostics)

	failed := res.HasErrors()
	if res.Missing {
		presenter.Error(errors.Errorf("%s does not exist; run skilltree to generate it", cfg.ArtifactPath()), "sitemap missing")
		failed = true
	} else if res.Diff != "" {
		fmt.Fprint(os.Stderr, res.Diff)
		presenter.Error(errors.Errorf("%s is stale; run skilltree to regenerate it", cfg.ArtifactPath()), "sitemap out of date")
		failed = true
	}
	if failed {
		return exitInvalid
	}

	presenter.Success("sitemap is up to date")
	printStats(res.Result)
	return exitOK
}

func runWatch(ctx context.Context, cfg builder.Config) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	presenter.Info(fmt.Sprintf("watching %s for skill document changes", cfg.Root))
	err := builder.Watch(ctx, cfg, func(res *builder.Result, err error) {
		reportGenerate(cfg, res, err)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		presenter.Error(err, "watch failed")
		return exitIO
	}
	return exitOK
}

// printDiagnostics writes every finding to stderr, one per line, so CI
// logs stay greppable.
func printDiagnostics(diags []tree.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.String())
	}
}

func printStats(res *builder.Result) {
	var errs, warns int
	for _, d := range res.Diagnostics {
		if d.Severity == tree.SeverityError {
			errs++
		} else {
			warns++
		}
	}
	presenter.Stats(&presenter.RunStats{
		Skills:     len(res.Registry.Skills),
		Categories: len(res.Registry.Categories),
		Errors:     errs,
		Warnings:   warns,
	})
}
