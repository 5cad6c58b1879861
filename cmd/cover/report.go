package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	cover "github.com/alnah/go-cover"
	"github.com/alnah/go-cover/internal/config"
	"github.com/alnah/go-cover/internal/history"
)

// CoverResult holds the outcome of a single render.
type CoverResult struct {
	InputPath string // empty for template covers
	Title     string
	Artifact  *cover.Artifact
	Err       error
	Duration  time.Duration
}

// ResultSummary holds the count of succeeded and failed renders.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed renders.
func countResults(results []CoverResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// describeArtifact formats the success line for a written cover.
func describeArtifact(a *cover.Artifact) string {
	return fmt.Sprintf("%s (%dx%d, %s, %s)", a.Path, a.Width, a.Height, humanize.IBytes(uint64(a.Size)), a.Format)
}

// printResults outputs render results and returns the number of failures.
func printResults(results []CoverResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			name := r.InputPath
			if name == "" {
				name = r.Title
			}
			fmt.Fprintf(env.Stderr, "FAILED %s [%s]: %v%s\n", name, stageFor(r.Err), r.Err, hintFor(r.Err))
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "Created %s in %v\n", describeArtifact(r.Artifact), r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", describeArtifact(r.Artifact))
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}

// historyRecorder is the subset of *history.Store used to log artifacts.
type historyRecorder interface {
	Record(ctx context.Context, e history.Entry) (int64, error)
}

// recordResults appends successful results to the ledger.
// Failures are logged as warnings.
func recordResults(ctx context.Context, rec historyRecorder, base history.Entry, results []CoverResult, now time.Time, logger *zap.Logger) {
	if rec == nil {
		return
	}
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		e := base
		e.CreatedAt = now
		e.Title = r.Title
		e.Source = r.InputPath
		e.Path = r.Artifact.Path
		e.Format = string(r.Artifact.Format)
		e.Bytes = r.Artifact.Size
		e.Width = r.Artifact.Width
		e.Height = r.Artifact.Height
		if _, err := rec.Record(ctx, e); err != nil {
			logger.Warn("recording history", zap.String("path", e.Path), zap.Error(err))
		}
	}
}

// withHistory opens the ledger for cfg, runs fn and closes it.
func withHistory(cfg *config.Config, logger *zap.Logger, fn func(historyRecorder)) {
	store := openHistory(cfg, logger)
	if store == nil {
		fn(nil)
		return
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing history", zap.Error(err))
		}
	}()
	fn(store)
}
