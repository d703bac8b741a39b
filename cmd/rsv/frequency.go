package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ribbondz/rsv-sub000/internal/config"
	"github.com/ribbondz/rsv-sub000/internal/frequency"
	"github.com/ribbondz/rsv-sub000/internal/metrics"
	"github.com/ribbondz/rsv-sub000/internal/output"
	"github.com/ribbondz/rsv-sub000/internal/pipeline"
	"github.com/ribbondz/rsv-sub000/internal/selection"
)

type frequencyFlags struct {
	in        inputFlags
	out       outputFlags
	top       int
	ascending bool
}

func newFrequencyCmd(g *globalFlags) *cobra.Command {
	f := &frequencyFlags{}
	cmd := &cobra.Command{
		Use:     "frequency [flags] [FILE] -c COLS",
		Aliases: []string{"freq"},
		Short:   "Frequency table of value combinations",
		Long: `Count how often each combination of values in the selected columns occurs.
Rows are sorted by count (descending unless --ascending), ties by value.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFrequency(cmd, g, f, args)
		},
	}
	f.in.register(cmd, true)
	f.out.register(cmd)
	cmd.Flags().IntVarP(&f.top, "top", "n", 0, "show only the first N rows (0 = all)")
	cmd.Flags().BoolVar(&f.ascending, "ascending", false, "sort by ascending count")
	return cmd
}

func runFrequency(cmd *cobra.Command, g *globalFlags, f *frequencyFlags, args []string) error {
	ctx := cmd.Context()
	j, err := resolveJob(cmd, g, args, func(j *config.Job) {
		f.in.apply(cmd, j)
		f.out.apply(cmd, j)
	})
	if err != nil {
		return err
	}
	if j.Columns.Select == "" {
		return errors.New("frequency: select at least one column with -c")
	}
	format, err := output.ParseFormat(j.Output.Format)
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

	diag := pipeline.NewDiagnostics(maxDiagnostics)
	progress := pipeline.NewProgress(cmd.ErrOrStderr(), g.quiet)
	start := time.Now()
	tbl, _, err := pipeline.Run(ctx, in.lr, frequency.Reduction(sel.Indices, in.sep, in.quote, diag), in.options(j, g, progress))
	metrics.RecordStep(j.Job, "frequency", err, time.Since(start))
	if err != nil {
		return fmt.Errorf("frequency: %w", err)
	}
	progress.Done()
	diag.Log("frequency: skipped rows")
	metrics.RecordRow(j.Job, "processed", tbl.Rows())
	metrics.RecordRow(j.Job, "skipped", tbl.Skipped())

	entries := tbl.Top(f.top, f.ascending)
	return render(cmd, j.Output.Path, format, func(w io.Writer) error {
		return output.WriteFrequency(w, format, sel.Names(in.names), entries)
	})
}
