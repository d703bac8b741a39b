package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ribbondz/rsv-sub000/internal/config"
	"github.com/ribbondz/rsv-sub000/internal/stats"
)

// inputFlags describe how the input is read. They are registered per
// command so that each command only shows what it uses.
type inputFlags struct {
	sep      string
	quote    string
	noHeader bool
	cols     string
	sheet    string
	encoding string
}

func (f *inputFlags) register(cmd *cobra.Command, withCols bool) {
	fs := cmd.Flags()
	fs.StringVarP(&f.sep, "sep", "s", ",", `field separator (single character, or "\t"/"tab")`)
	fs.StringVarP(&f.quote, "quote", "q", `"`, "quote character")
	fs.BoolVar(&f.noHeader, "no-header", false, "the first line is data, columns are named col0, col1, ...")
	fs.StringVar(&f.sheet, "sheet", "", "sheet name for .xlsx input (default: first sheet)")
	fs.StringVar(&f.encoding, "encoding", "", "input character set, e.g. windows-1250 (default utf-8)")
	if withCols {
		fs.StringVarP(&f.cols, "cols", "c", "", `columns: "0,2", "1-3", "3-", "-1" or header names (default all)`)
	}
}

// apply copies flags the user set explicitly onto j.
func (f *inputFlags) apply(cmd *cobra.Command, j *config.Job) {
	fs := cmd.Flags()
	if fs.Changed("sep") {
		j.Parser.Options["comma"] = f.sep
	}
	if fs.Changed("quote") {
		j.Parser.Options["quote"] = f.quote
	}
	if fs.Changed("no-header") {
		j.Parser.Options["has_header"] = !f.noHeader
	}
	if fs.Changed("sheet") {
		j.Source.File.Sheet = f.sheet
	}
	if fs.Changed("encoding") {
		j.Source.File.Encoding = f.encoding
	}
	if fs.Lookup("cols") != nil && fs.Changed("cols") {
		j.Columns.Select = f.cols
	}
}

// resolveJob builds the effective job: flags first, then the JSON config,
// then the environment, then defaults. Issues are printed to stderr; any
// error-severity issue aborts the command.
func resolveJob(cmd *cobra.Command, g *globalFlags, args []string, apply ...func(*config.Job)) (config.Job, error) {
	j := config.Default()
	if g.configPath != "" {
		loaded, err := config.Load(g.configPath)
		if err != nil {
			return config.Job{}, err
		}
		j = withDefaults(loaded)
	}
	if len(args) > 0 {
		j.Source.Kind = ""
		j.Source.File.Path = args[0]
	}

	pf := cmd.Flags()
	if pf.Changed("workers") {
		j.Runtime.Workers = g.workers
	}
	if pf.Changed("chunk-size") {
		j.Runtime.ChunkSize = g.chunkSize
	}
	if pf.Changed("byte-budget") {
		j.Runtime.ByteBudget = g.byteBudget
	}
	if pf.Changed("queue-depth") {
		j.Runtime.QueueDepth = g.queueDepth
	}
	if pf.Changed("sample-rows") {
		j.Runtime.SampleRows = g.sampleRows
	}
	if pf.Changed("metrics-backend") {
		j.Metrics.Backend = g.metricsBackend
	}
	if pf.Changed("pushgateway-url") {
		j.Metrics.PushgatewayURL = g.pushgatewayURL
	}
	if pf.Changed("statsd-addr") {
		j.Metrics.StatsdAddr = g.statsdAddr
	}
	for _, fn := range apply {
		fn(&j)
	}

	j.Runtime = j.Runtime.WithEnv()
	j.Metrics = j.Metrics.WithEnv()

	issues := config.ValidateJob(j)
	for _, iss := range issues {
		if iss.Severity == config.SeverityWarning && !g.verbose {
			continue
		}
		fmt.Fprintln(cmd.ErrOrStderr(), iss.Error())
	}
	if config.HasErrors(issues) {
		return config.Job{}, errors.New("invalid configuration")
	}
	return j, nil
}

// withDefaults fills the fields a partial config file may leave empty.
func withDefaults(j config.Job) config.Job {
	d := config.Default()
	if strings.TrimSpace(j.Job) == "" {
		j.Job = d.Job
	}
	if j.Parser.Kind == "" {
		j.Parser.Kind = d.Parser.Kind
	}
	if j.Output.Format == "" {
		j.Output.Format = d.Output.Format
	}
	return j
}

// typeHints converts columns.types into stats types keyed by column index.
func typeHints(c config.Columns) (map[int]stats.ColumnType, error) {
	raw, err := c.TypeHints()
	if err != nil {
		return nil, err
	}
	out := make(map[int]stats.ColumnType, len(raw))
	for idx, name := range raw {
		t, err := stats.ParseColumnType(name)
		if err != nil {
			return nil, fmt.Errorf("columns.types.%d: %w", idx, err)
		}
		out[idx] = t
	}
	return out, nil
}
