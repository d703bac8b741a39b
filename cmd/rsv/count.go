package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/ribbondz/rsv-sub000/internal/config"
	"github.com/ribbondz/rsv-sub000/internal/metrics"
	"github.com/ribbondz/rsv-sub000/internal/pipeline"
)

func newCountCmd(g *globalFlags) *cobra.Command {
	var in inputFlags
	cmd := &cobra.Command{
		Use:   "count [flags] [FILE]",
		Short: "Number of data rows",
		Long:  "Count data rows through the chunk pipeline. The header line is not counted unless --no-header is set.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := resolveJob(cmd, g, args, func(j *config.Job) { in.apply(cmd, j) })
			if err != nil {
				return err
			}
			defer setupMetrics(j, g.verbose)()

			src, err := openInput(cmd.Context(), j, g.verbose)
			if err != nil {
				return err
			}
			defer src.Close()

			progress := pipeline.NewProgress(cmd.ErrOrStderr(), g.quiet)
			start := time.Now()
			n, sum, err := pipeline.Run(cmd.Context(), src.lr, pipeline.CountLines(), src.options(j, g, progress))
			metrics.RecordStep(j.Job, "count", err, time.Since(start))
			if err != nil {
				return fmt.Errorf("count: %w", err)
			}
			progress.Done()
			metrics.RecordRow(j.Job, "processed", n)
			if g.verbose {
				log.Printf("count: rows=%d chunks=%d elapsed=%s", n, sum.Chunks, sum.Elapsed.Truncate(time.Millisecond))
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	in.register(cmd, false)
	return cmd
}
