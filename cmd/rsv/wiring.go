package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ribbondz/rsv-sub000/internal/config"
	"github.com/ribbondz/rsv-sub000/internal/metrics"
	"github.com/ribbondz/rsv-sub000/internal/metrics/datadog"
	"github.com/ribbondz/rsv-sub000/internal/metrics/prompush"
	"github.com/ribbondz/rsv-sub000/internal/output"
)

const defaultPushgatewayURL = "http://localhost:9091"

// setupMetrics installs the configured backend and returns the function that
// flushes it at exit. A backend that fails to initialize leaves metrics off.
func setupMetrics(j config.Job, verbose bool) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch j.Metrics.Backend {
	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", j.Metrics.Backend)
		}
		return func() {}
	case "pushgateway":
		url := j.Metrics.PushgatewayURL
		if url == "" {
			url = defaultPushgatewayURL
		}
		b, err = prompush.NewBackend(j.Job, url)
		if err == nil {
			log.Printf("metrics: url=%v, backend=%v, job_name=%v", url, j.Metrics.Backend, j.Job)
		}
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       j.Metrics.StatsdAddr,
			GlobalTags: []string{"service:rsv", "job:" + j.Job},
		})
		if err == nil {
			log.Printf("metrics: addr=%v, backend=%v, job_name=%v", j.Metrics.StatsdAddr, j.Metrics.Backend, j.Job)
		}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", j.Metrics.Backend)
		return func() {}
	}
	if err != nil {
		log.Printf("metrics: failed to init %s backend: %v; using nop", j.Metrics.Backend, err)
		return func() {}
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}

// outputFlags select the result encoding and destination.
type outputFlags struct {
	format  string
	outFile string
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "output", "o", "table", "output format: table, csv, json, yaml or parquet")
	cmd.Flags().StringVar(&f.outFile, "out-file", "", "write the result to this file instead of stdout")
}

func (f *outputFlags) apply(cmd *cobra.Command, j *config.Job) {
	if cmd.Flags().Changed("output") {
		j.Output.Format = f.format
	}
	if cmd.Flags().Changed("out-file") {
		j.Output.Path = f.outFile
	}
}

// openOutput returns the writer for the result and a function that closes
// it. Binary formats are refused on a terminal.
func openOutput(cmd *cobra.Command, path string, f output.Format) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		w := cmd.OutOrStdout()
		if f.Binary() {
			if out, ok := w.(*os.File); ok && isatty.IsTerminal(out.Fd()) {
				return nil, nil, fmt.Errorf("refusing to write %s to a terminal; use --out-file", f)
			}
		}
		return w, func() error { return nil }, nil
	}
	out, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return out, out.Close, nil
}

// render opens the destination, runs write against it and closes it.
func render(cmd *cobra.Command, path string, f output.Format, write func(io.Writer) error) error {
	w, closeFn, err := openOutput(cmd, path, f)
	if err != nil {
		return err
	}
	if err := write(w); err != nil {
		_ = closeFn()
		return fmt.Errorf("render: %w", err)
	}
	return closeFn()
}
