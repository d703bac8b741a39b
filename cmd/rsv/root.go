package main

import (
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	verbose    bool
	quiet      bool

	workers    int
	chunkSize  int
	byteBudget int64
	queueDepth int
	sampleRows int

	metricsBackend string
	pushgatewayURL string
	statsdAddr     string
}

// newRootCmd builds the command tree. Each call returns an independent tree
// so tests can execute commands with fresh flag state.
func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "rsv",
		Short: "Streaming statistics for large delimited files",
		Long: `rsv reads CSV-like input (files, compressed files, spreadsheets or stdin)
in fixed-size chunks, processes the chunks in parallel and merges the partial
results into column statistics, row counts and frequency tables.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "job config JSON path")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose logs")
	pf.BoolVar(&g.quiet, "quiet", false, "suppress the progress line and summary")
	pf.IntVar(&g.workers, "workers", 0, "parallel chunk workers (default GOMAXPROCS, env RSV_WORKERS)")
	pf.IntVar(&g.chunkSize, "chunk-size", 0, "lines per chunk (env RSV_CHUNK_SIZE)")
	pf.Int64Var(&g.byteBudget, "byte-budget", 0, "target bytes per chunk, sized from the sample (env RSV_BYTE_BUDGET)")
	pf.IntVar(&g.queueDepth, "queue-depth", 0, "chunks buffered ahead of the workers (env RSV_QUEUE_DEPTH)")
	pf.IntVar(&g.sampleRows, "sample-rows", 0, "rows sampled for type inference (env RSV_SAMPLE_ROWS)")
	pf.StringVar(&g.metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway or datadog (env METRICS_BACKEND)")
	pf.StringVar(&g.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (env PUSHGATEWAY_URL)")
	pf.StringVar(&g.statsdAddr, "statsd-addr", "", "DogStatsD address (env DD_AGENT_ADDR)")

	root.AddCommand(
		newStatsCmd(g),
		newCountCmd(g),
		newFrequencyCmd(g),
		newInferCmd(g),
		newHeadersCmd(g),
		newProbeCmd(g),
	)
	return root
}
