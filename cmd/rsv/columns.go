package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ribbondz/rsv-sub000/internal/config"
	"github.com/ribbondz/rsv-sub000/internal/output"
	"github.com/ribbondz/rsv-sub000/internal/parser/csv"
	"github.com/ribbondz/rsv-sub000/internal/selection"
	"github.com/ribbondz/rsv-sub000/internal/stats"
)

type columnsFlags struct {
	in  inputFlags
	out outputFlags
}

func (f *columnsFlags) apply(cmd *cobra.Command) func(*config.Job) {
	return func(j *config.Job) {
		f.in.apply(cmd, j)
		f.out.apply(cmd, j)
	}
}

func newInferCmd(g *globalFlags) *cobra.Command {
	f := &columnsFlags{}
	cmd := &cobra.Command{
		Use:   "infer [flags] [FILE]",
		Short: "Inferred type per column",
		Long:  "Print the type inferred for each selected column from the sampled rows (see --sample-rows).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runColumns(cmd, g, f, args, true)
		},
	}
	f.in.register(cmd, true)
	f.out.register(cmd)
	return cmd
}

func newHeadersCmd(g *globalFlags) *cobra.Command {
	f := &columnsFlags{}
	cmd := &cobra.Command{
		Use:   "headers [flags] [FILE]",
		Short: "Header names with index and SQL-safe name",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runColumns(cmd, g, f, args, false)
		},
	}
	f.in.register(cmd, false)
	f.out.register(cmd)
	return cmd
}

// runColumns serves infer (types of the selected columns) and headers (all
// names, normalized). Neither reads past the sample.
func runColumns(cmd *cobra.Command, g *globalFlags, f *columnsFlags, args []string, infer bool) error {
	j, err := resolveJob(cmd, g, args, f.apply(cmd))
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(j.Output.Format)
	if err != nil {
		return err
	}

	in, err := openInput(cmd.Context(), j, g.verbose)
	if err != nil {
		return err
	}
	defer in.Close()

	var recs []output.ColumnRecord
	if infer {
		hints, err := typeHints(j.Columns)
		if err != nil {
			return err
		}
		sel, err := selection.Resolve(j.Columns.Select, in.names)
		if err != nil {
			return fmt.Errorf("select columns: %w", err)
		}
		types := stats.Infer(in.sample, sel.Indices, in.sep, in.quote, j.Runtime.SampleRows)
		stats.ApplyHints(types, sel.Indices, hints)
		names := sel.Names(in.names)
		for i, idx := range sel.Indices {
			recs = append(recs, output.ColumnRecord{Index: idx, Name: names[i], Type: types[i].String()})
		}
	} else {
		for i, n := range csv.NormalizeNames(in.names) {
			recs = append(recs, output.ColumnRecord{Index: i, Name: in.names[i], Normalized: n})
		}
	}

	return render(cmd, j.Output.Path, format, func(w io.Writer) error {
		return output.WriteColumns(w, format, recs)
	})
}
