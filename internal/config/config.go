// Package config defines the JSON job configuration for rsv. A job file
// carries the same settings as the command-line flags so that recurring
// analyses can be kept under version control:
//
//	{
//	  "job":     "vehicles-weekly",
//	  "source":  { "kind": "file", "file": { "path": "data/vehicles.csv.gz" } },
//	  "parser":  { "kind": "csv", "options": { "has_header": true, "comma": ";" } },
//	  "columns": { "select": "0,2-4", "types": { "3": "string" } },
//	  "runtime": { "workers": 8, "byte_budget": 16777216 },
//	  "output":  { "format": "json" },
//	  "export":  { "kind": "postgres", "dsn": "postgres://...", "table": "public.rsv_stats" }
//	}
//
// Decoding uses the standard library; parser options use the Options helper
// for typed access.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ribbondz/rsv-sub000/internal/parser/csv"
)

// Job is the top-level object of a job file.
type Job struct {
	// Job names the run for metrics labelling.
	Job string `json:"job"`

	Source  Source  `json:"source"`
	Parser  Parser  `json:"parser"`
	Columns Columns `json:"columns"`
	Runtime Runtime `json:"runtime"`
	Output  Output  `json:"output"`
	Export  Export  `json:"export"`
	Metrics Metrics `json:"metrics"`
}

// Source identifies the input.
type Source struct {
	// Kind selects the source implementation: "file", "stdin", "xlsx" or
	// "http". Empty is resolved from the path, see SourceKind.
	Kind string `json:"kind"`

	// File carries options for the "file" and "xlsx" kinds. For "http" the
	// path is the URL.
	File SourceFile `json:"file"`

	// HTTP tunes the "http" kind.
	HTTP SourceHTTP `json:"http"`
}

// SourceHTTP configures downloads.
type SourceHTTP struct {
	Headers            map[string]string `json:"headers"`
	Retries            int               `json:"retries"`
	InsecureSkipVerify bool              `json:"insecure_skip_verify"`
}

// SourceFile holds configuration for file-backed sources.
type SourceFile struct {
	// Path is the local filesystem path to the input. Compressed inputs
	// (.gz, .bz2, .zst, .xz) are decompressed on the fly.
	Path string `json:"path"`
	// Sheet names the worksheet of an xlsx input (default: first sheet).
	Sheet string `json:"sheet"`
	// Encoding is a character set label such as "windows-1250".
	Encoding string `json:"encoding"`
}

// Parser configures how lines are split into fields.
type Parser struct {
	// Kind selects the parser. Current value: "csv".
	Kind string `json:"kind"`

	// Options is interpreted by the parser. For csv:
	//   has_header (bool, default true), comma (string), quote (string),
	//   scrub (array of {"from","to"} byte replacements)
	Options Options `json:"options"`
}

// Columns selects the columns to analyse and optional type overrides.
type Columns struct {
	// Select is a column specification ("0,2", "1-3", "3-", "-1", names).
	Select string `json:"select"`
	// Types maps a column index to one of null|int|float|string.
	Types map[string]string `json:"types"`
}

// Runtime controls chunking and concurrency. Zero values select defaults.
type Runtime struct {
	Workers    int   `json:"workers"`
	ChunkSize  int   `json:"chunk_size"`
	ByteBudget int64 `json:"byte_budget"`
	QueueDepth int   `json:"queue_depth"`
	SampleRows int   `json:"sample_rows"`
}

// Output selects how results are rendered.
type Output struct {
	// Format is one of table|csv|json|yaml|parquet (default table).
	Format string `json:"format"`
	// Path writes the rendering to a file instead of standard output.
	Path string `json:"path"`
	// Median adds an approximate median per numeric column.
	Median bool `json:"median"`
	// Digest prints a fingerprint of the statistics after the rendering.
	Digest bool `json:"digest"`
}

// Export appends statistics rows to a database table.
type Export struct {
	// Kind selects a registered storage backend (postgres, mssql, sqlite, mysql).
	// Empty disables export.
	Kind  string `json:"kind"`
	DSN   string `json:"dsn"`
	Table string `json:"table"`
	// CreateTable issues backend-specific DDL before the first insert.
	CreateTable bool `json:"create_table"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is one of none|pushgateway|datadog.
	Backend        string `json:"backend"`
	PushgatewayURL string `json:"pushgateway_url"`
	StatsdAddr     string `json:"statsd_addr"`
}

// Load reads a job file.
func Load(path string) (Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return Job{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a job from r. Unknown fields are rejected so that typos do
// not silently fall back to defaults.
func Decode(r io.Reader) (Job, error) {
	var j Job
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&j); err != nil {
		return Job{}, fmt.Errorf("decode config: %w", err)
	}
	if j.Parser.Options == nil {
		j.Parser.Options = Options{}
	}
	return j, nil
}

// Default returns the job used when no file is given. It reads standard
// input.
func Default() Job {
	return Job{
		Job:    "rsv",
		Parser: Parser{Kind: "csv", Options: Options{}},
		Output: Output{Format: "table"},
	}
}

// TypeHints parses Columns.Types into index → type name pairs. Keys must be
// non-negative integers.
func (c Columns) TypeHints() (map[int]string, error) {
	if len(c.Types) == 0 {
		return nil, nil
	}
	out := make(map[int]string, len(c.Types))
	for k, v := range c.Types {
		i, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || i < 0 {
			return nil, fmt.Errorf("columns.types: key %q is not a column index", k)
		}
		out[i] = v
	}
	return out, nil
}

// SourceKind resolves an empty Source.Kind from the path.
func (s Source) SourceKind() string {
	if s.Kind != "" {
		return s.Kind
	}
	switch {
	case s.File.Path == "" || s.File.Path == "-":
		return "stdin"
	case strings.HasPrefix(s.File.Path, "http://") || strings.HasPrefix(s.File.Path, "https://"):
		return "http"
	case strings.HasSuffix(strings.ToLower(s.File.Path), ".xlsx"):
		return "xlsx"
	}
	return "file"
}

// WithEnv fills unset runtime values from RSV_* environment variables.
func (r Runtime) WithEnv() Runtime {
	r.Workers = pickInt(r.Workers, getenvInt("RSV_WORKERS", 0))
	r.ChunkSize = pickInt(r.ChunkSize, getenvInt("RSV_CHUNK_SIZE", 0))
	r.QueueDepth = pickInt(r.QueueDepth, getenvInt("RSV_QUEUE_DEPTH", 0))
	r.SampleRows = pickInt(r.SampleRows, getenvInt("RSV_SAMPLE_ROWS", 0))
	if r.ByteBudget <= 0 {
		r.ByteBudget = int64(getenvInt("RSV_BYTE_BUDGET", 0))
	}
	return r
}

// WithEnv fills unset metrics values from METRICS_BACKEND, PUSHGATEWAY_URL
// and DD_AGENT_ADDR.
func (m Metrics) WithEnv() Metrics {
	m.Backend = pickString(m.Backend, os.Getenv("METRICS_BACKEND"))
	m.PushgatewayURL = pickString(m.PushgatewayURL, os.Getenv("PUSHGATEWAY_URL"))
	m.StatsdAddr = pickString(m.StatsdAddr, os.Getenv("DD_AGENT_ADDR"))
	return m
}

// getenvInt returns the integer value of k, or def when unset or invalid.
func getenvInt(k string, def int) int {
	if s := os.Getenv(k); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

// pickInt chooses the first positive value 'a', otherwise returns 'b'.
func pickInt(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}

func pickString(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

// HasHeader reports whether the first line holds column names (default true).
func (p Parser) HasHeader() bool { return p.Options.Bool("has_header", true) }

// Comma returns the field separator (default ',').
func (p Parser) Comma() byte { return p.Options.Byte("comma", ',') }

// Quote returns the quote character (default '"').
func (p Parser) Quote() byte { return p.Options.Byte("quote", '"') }

// ScrubRules decodes the optional "scrub" list of byte replacements applied
// to the raw stream before splitting.
func (p Parser) ScrubRules() ([]csv.ScrubRule, error) {
	var rules []csv.ScrubRule
	if _, err := p.Options.Decode("scrub", &rules); err != nil {
		return nil, fmt.Errorf("scrub: %w", err)
	}
	for i, r := range rules {
		if r.From == "" {
			return nil, fmt.Errorf("scrub[%d]: from must not be empty", i)
		}
	}
	return rules, nil
}
