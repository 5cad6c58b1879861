package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-cover/internal/dateutil"
	"github.com/alnah/go-cover/internal/fileutil"
	"github.com/alnah/go-cover/internal/history"
)

// defaultHistoryLimit is the number of entries listed without -n.
const defaultHistoryLimit = 20

// historyTimeLayout formats ledger timestamps in the platform zone.
const historyTimeLayout = "2006-01-02 15:04:05"

// runHistoryCmd lists the most recent covers from the ledger.
func runHistoryCmd(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseHistoryFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	setupLogger(env, &f.common)

	if len(positional) > 0 {
		return fmt.Errorf("%w: unexpected arguments %q", ErrUsage, positional)
	}
	if f.limit < 1 || f.limit > history.MaxRecent {
		return fmt.Errorf("%w: -n must be between 1 and %d, got %d", ErrUsage, history.MaxRecent, f.limit)
	}

	path := f.path
	if path == "" {
		cfg, err := loadConfig(&f.common, loadEnvConfig(env.Getenv, env.Logger))
		if err != nil {
			return err
		}
		path = historyPath(cfg)
	}

	if !fileutil.FileExists(path) {
		fmt.Fprintf(env.Stdout, "No covers recorded yet (%s)\n", path)
		return nil
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Recent(ctx, f.limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(env.Stdout, "No covers recorded yet (%s)\n", path)
		return nil
	}

	return printHistory(env.Stdout, entries)
}

// printHistory writes entries as an aligned table, newest first.
func printHistory(w io.Writer, entries []history.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tBACKEND\tFORMAT\tSIZE\tPATH\tTITLE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID,
			e.CreatedAt.In(dateutil.PlatformZone).Format(historyTimeLayout),
			backendLabel(e),
			e.Format,
			humanize.IBytes(uint64(e.Bytes)),
			e.Path,
			e.Title,
		)
	}
	return tw.Flush()
}

// backendLabel names the backend, with template and color for raster covers.
func backendLabel(e history.Entry) string {
	if e.Template == "" {
		return e.Backend
	}
	return fmt.Sprintf("%s/%s/%s", e.Backend, e.Template, e.Color)
}
