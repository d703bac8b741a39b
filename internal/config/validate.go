package config

import (
	"fmt"
	"strings"

	"github.com/ribbondz/rsv-sub000/internal/parser/csv"
	"github.com/ribbondz/rsv-sub000/internal/stats"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Job.
//
// Path is a dotted path into the config (e.g. "export.table",
// "columns.types.3"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateJob performs static validation of a Job. It does not mutate the
// job. Callers decide whether warnings are fatal.
func ValidateJob(j Job) []Issue {
	var issues []Issue

	if strings.TrimSpace(j.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  `job is empty; metrics will be labelled "rsv"`,
		})
	}
	issues = append(issues, validateSource(j.Source)...)
	issues = append(issues, validateParser(j.Parser)...)
	issues = append(issues, validateColumns(j.Columns)...)
	issues = append(issues, validateRuntime(j.Runtime)...)
	issues = append(issues, validateOutput(j.Output)...)
	issues = append(issues, validateExport(j.Export)...)
	issues = append(issues, validateMetrics(j.Metrics)...)

	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	kind := s.SourceKind()
	switch kind {
	case "file", "xlsx", "http":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.file.path",
				Message:  kind + " source requires a non-empty path",
			})
		}
	case "stdin":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unknown source kind %q (want file, stdin, xlsx or http)", s.Kind),
		})
	}
	if s.HTTP.Retries < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.http.retries",
			Message:  "retries must be >= 0",
		})
	}
	if kind != "http" && (len(s.HTTP.Headers) > 0 || s.HTTP.Retries > 0) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "source.http",
			Message:  "http options only apply to http sources",
		})
	}
	if kind != "xlsx" && s.File.Sheet != "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "source.file.sheet",
			Message:  "sheet only applies to xlsx sources",
		})
	}
	if enc := s.File.Encoding; enc != "" {
		if _, err := csv.DecodeReader(strings.NewReader(""), enc); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.file.encoding",
				Message:  err.Error(),
			})
		}
	}
	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue

	if k := strings.TrimSpace(p.Kind); k != "" && k != "csv" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unknown parser kind %q (want csv)", p.Kind),
		})
		return issues
	}

	for _, key := range []string{"comma", "quote"} {
		raw, ok := p.Options[key]
		if !ok {
			continue
		}
		if p.Options.Byte(key, 0) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "parser.options." + key,
				Message:  fmt.Sprintf("%v is not a single ASCII character", raw),
			})
		}
	}
	if _, ok := p.Options["comma"]; ok {
		if p.Options.Byte("comma", ',') == p.Options.Byte("quote", '"') {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "parser.options.comma",
				Message:  "comma and quote must differ",
			})
		}
	}
	if _, err := p.ScrubRules(); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.scrub",
			Message:  err.Error(),
		})
	}
	return issues
}

func validateColumns(c Columns) []Issue {
	var issues []Issue

	hints, err := c.TypeHints()
	if err != nil {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "columns.types",
			Message:  err.Error(),
		})
	}
	for i, name := range hints {
		if _, err := stats.ParseColumnType(name); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("columns.types.%d", i),
				Message:  err.Error(),
			})
		}
	}
	return issues
}

func validateRuntime(r Runtime) []Issue {
	var issues []Issue

	neg := func(path string, v int64) {
		if v < 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "runtime." + path,
				Message:  "must be >= 0 (0 selects the default)",
			})
		}
	}
	neg("workers", int64(r.Workers))
	neg("chunk_size", int64(r.ChunkSize))
	neg("byte_budget", r.ByteBudget)
	neg("queue_depth", int64(r.QueueDepth))
	neg("sample_rows", int64(r.SampleRows))

	if r.ChunkSize > 0 && r.ByteBudget > 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "runtime.byte_budget",
			Message:  "ignored because chunk_size is set",
		})
	}
	return issues
}

func validateOutput(o Output) []Issue {
	var issues []Issue

	switch strings.ToLower(o.Format) {
	case "", "table", "csv", "json", "yaml":
	case "parquet":
		if strings.TrimSpace(o.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "output.path",
				Message:  "parquet output requires a file path",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.format",
			Message:  fmt.Sprintf("unknown format %q (want table, csv, json, yaml or parquet)", o.Format),
		})
	}
	return issues
}

func validateExport(e Export) []Issue {
	var issues []Issue

	if strings.TrimSpace(e.Kind) == "" {
		if e.DSN != "" || e.Table != "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "export.kind",
				Message:  "export.kind is empty; dsn and table are ignored",
			})
		}
		return issues
	}

	known := map[string]struct{}{
		"postgres": {},
		"mssql":    {},
		"sqlite":   {},
		"mysql":    {},
	}
	if _, ok := known[e.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "export.kind",
			Message:  fmt.Sprintf("unknown export kind %q; ensure a matching implementation is registered", e.Kind),
		})
	}
	if strings.TrimSpace(e.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "export.dsn",
			Message:  "export requires a dsn",
		})
	}
	if strings.TrimSpace(e.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "export.table",
			Message:  "export requires a table name",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch strings.ToLower(m.Backend) {
	case "", "none":
	case "pushgateway", "prom", "prometheus":
		if m.PushgatewayURL == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.pushgateway_url",
				Message:  "empty; falls back to PUSHGATEWAY_URL",
			})
		}
	case "datadog", "dogstatsd":
		if m.StatsdAddr == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.statsd_addr",
				Message:  "empty; falls back to DD_AGENT_ADDR or 127.0.0.1:8125",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q", m.Backend),
		})
	}
	return issues
}
