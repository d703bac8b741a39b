package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ribbondz/rsv-sub000/internal/config"
	"github.com/ribbondz/rsv-sub000/internal/metrics"
	"github.com/ribbondz/rsv-sub000/internal/output"
	"github.com/ribbondz/rsv-sub000/internal/pipeline"
	"github.com/ribbondz/rsv-sub000/internal/selection"
	"github.com/ribbondz/rsv-sub000/internal/stats"
	"github.com/ribbondz/rsv-sub000/internal/storage"

	// register all export backends with the storage factory.
	_ "github.com/ribbondz/rsv-sub000/internal/storage/all"
)

// maxDiagnostics is the number of skipped-row messages shown in full.
const maxDiagnostics = 3

type statsFlags struct {
	in  inputFlags
	out outputFlags

	types       []string
	median      bool
	digest      bool
	exportKind  string
	dsn         string
	table       string
	createTable bool
}

func newStatsCmd(g *globalFlags) *cobra.Command {
	f := &statsFlags{}
	cmd := &cobra.Command{
		Use:   "stats [flags] [FILE]",
		Short: "Statistics per selected column",
		Long: `Compute per-column statistics in one parallel pass: type, min, max,
min/max string, mean, unique count, null count and total. Column types are
inferred from a sample and widen (null < int < float < string) as needed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, g, f, args)
		},
	}
	f.in.register(cmd, true)
	f.out.register(cmd)
	fs := cmd.Flags()
	fs.StringArrayVar(&f.types, "type", nil, "force a column type, IDX=TYPE (repeatable)")
	fs.BoolVar(&f.median, "median", false, "add an approximate median per numeric column")
	fs.BoolVar(&f.digest, "digest", false, "print a fingerprint of the result to stderr")
	fs.StringVar(&f.exportKind, "export", "", "also append the result to a table: postgres, mssql, mysql or sqlite")
	fs.StringVar(&f.dsn, "dsn", "", "export connection string")
	fs.StringVar(&f.table, "table", "", "export table name")
	fs.BoolVar(&f.createTable, "create-table", false, "create the export table if it does not exist")
	return cmd
}

func (f *statsFlags) apply(cmd *cobra.Command) func(*config.Job) {
	return func(j *config.Job) {
		f.in.apply(cmd, j)
		f.out.apply(cmd, j)
		fs := cmd.Flags()
		if len(f.types) > 0 {
			if j.Columns.Types == nil {
				j.Columns.Types = map[string]string{}
			}
			for _, kv := range f.types {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					// Left for validation to report.
					k, v = kv, ""
				}
				j.Columns.Types[strings.TrimSpace(k)] = strings.TrimSpace(v)
			}
		}
		if fs.Changed("median") {
			j.Output.Median = f.median
		}
		if fs.Changed("digest") {
			j.Output.Digest = f.digest
		}
		if fs.Changed("export") {
			j.Export.Kind = f.exportKind
		}
		if fs.Changed("dsn") {
			j.Export.DSN = f.dsn
		}
		if fs.Changed("table") {
			j.Export.Table = f.table
		}
		if fs.Changed("create-table") {
			j.Export.CreateTable = f.createTable
		}
	}
}

func runStats(cmd *cobra.Command, g *globalFlags, f *statsFlags, args []string) error {
	ctx := cmd.Context()
	j, err := resolveJob(cmd, g, args, f.apply(cmd))
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(j.Output.Format)
	if err != nil {
		return err
	}
	hints, err := typeHints(j.Columns)
	if err != nil {
		return err
	}
	defer setupMetrics(j, g.verbose)()

	in, err := openInput(ctx, j, g.verbose)
	if err != nil {
		return err
	}
	defer in.Close()

	sel, err := selection.Resolve(j.Columns.Select, in.names)
	if err != nil {
		return fmt.Errorf("select columns: %w", err)
	}

	start := time.Now()
	types := stats.Infer(in.sample, sel.Indices, in.sep, in.quote, j.Runtime.SampleRows)
	stats.ApplyHints(types, sel.Indices, hints)
	template, err := stats.NewSet(stats.Layout{
		Indices: sel.Indices,
		Names:   sel.Names(in.names),
		Types:   types,
		Median:  j.Output.Median,
	})
	metrics.RecordStep(j.Job, "infer", err, time.Since(start))
	if err != nil {
		return err
	}

	diag := pipeline.NewDiagnostics(maxDiagnostics)
	progress := pipeline.NewProgress(cmd.ErrOrStderr(), g.quiet)
	start = time.Now()
	set, sum, err := pipeline.Run(ctx, in.lr, stats.Reduction(template, in.sep, in.quote, diag), in.options(j, g, progress))
	metrics.RecordStep(j.Job, "scan", err, time.Since(start))
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	progress.Done()
	diag.Log("stats: skipped rows")
	metrics.RecordRow(j.Job, "processed", set.RowCount())
	metrics.RecordRow(j.Job, "skipped", set.Skipped())
	if g.verbose {
		log.Printf("stats: rows=%d skipped=%d chunks=%d elapsed=%s",
			set.RowCount(), set.Skipped(), sum.Chunks, sum.Elapsed.Truncate(time.Millisecond))
	}

	start = time.Now()
	err = render(cmd, j.Output.Path, format, func(w io.Writer) error {
		return output.WriteStats(w, format, set, j.Output.Median)
	})
	metrics.RecordStep(j.Job, "render", err, time.Since(start))
	if err != nil {
		return err
	}
	if j.Output.Digest {
		fmt.Fprintf(cmd.ErrOrStderr(), "digest: %016x\n", set.Digest())
	}

	if j.Export.Kind != "" {
		start = time.Now()
		err = exportStats(ctx, j, in.name, set)
		metrics.RecordStep(j.Job, "export", err, time.Since(start))
		if err != nil {
			return err
		}
	}
	return nil
}

// exportStats appends the finalized statistics to the configured table.
func exportStats(ctx context.Context, j config.Job, source string, set *stats.Set) error {
	repo, err := storage.New(ctx, storage.Config{
		Kind:    j.Export.Kind,
		DSN:     j.Export.DSN,
		Table:   j.Export.Table,
		Columns: storage.ColumnNames(storage.StatsColumns),
	})
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer repo.Close()

	if j.Export.CreateTable {
		if err := storage.EnsureTable(ctx, j.Export.Kind, repo, j.Export.Table); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	run := storage.NewRun(source, set.RowCount())
	if _, err := storage.ExportStats(ctx, repo, run, set.Rows()); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
