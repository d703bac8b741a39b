package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ribbondz/rsv-sub000/internal/config"
	"github.com/ribbondz/rsv-sub000/internal/datasource/file"
	"github.com/ribbondz/rsv-sub000/internal/parser/csv"
	"github.com/ribbondz/rsv-sub000/internal/probe"
	"github.com/ribbondz/rsv-sub000/internal/stats"
)

func newProbeCmd(g *globalFlags) *cobra.Command {
	var (
		name     string
		backend  string
		encoding string
	)
	cmd := &cobra.Command{
		Use:   "probe [flags] FILE",
		Short: "Draft a job config from the head of a file",
		Long: `Sample the input, detect the separator, infer column types and print a
job config (JSON) that can be edited and passed back with --config.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j := config.Default()
			j.Source.File.Path = args[0]
			j.Source.File.Encoding = encoding
			src, err := newSource(j)
			if err != nil {
				return err
			}
			rc, err := src.Open(cmd.Context())
			if err != nil {
				return fmt.Errorf("open source: %w", err)
			}
			defer rc.Close()

			r, err := csv.DecodeReader(rc, encoding)
			if err != nil {
				return err
			}
			n := g.sampleRows
			if n <= 0 {
				n = stats.DefaultSampleRows
			}
			lines, err := csv.NewLineReader(r).Sample(n + 1)
			if err != nil {
				return fmt.Errorf("sample: %w", err)
			}

			if name == "" {
				base := filepath.Base(file.StripCompression(args[0]))
				name = base[:len(base)-len(filepath.Ext(base))]
			}
			drafted, err := probe.Probe(lines, probe.Options{Name: name, Path: args[0], Backend: backend})
			if err != nil {
				return err
			}
			drafted.Source.File.Encoding = encoding
			return writeJob(cmd.OutOrStdout(), drafted)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "job name (default: file name without extensions)")
	cmd.Flags().StringVar(&backend, "backend", "", "add an export section: postgres, mssql, mysql or sqlite")
	cmd.Flags().StringVar(&encoding, "encoding", "", "input character set, e.g. windows-1250")
	return cmd
}

func writeJob(w io.Writer, j config.Job) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(j)
}
