package config

import (
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func validJob() Job {
	return Job{
		Job:    "t",
		Source: Source{Kind: "file", File: SourceFile{Path: "input.csv"}},
		Parser: Parser{Kind: "csv", Options: Options{}},
		Output: Output{Format: "table"},
	}
}

/*
TestValidateJob_ValidMinimal verifies that a well-formed job produces no
issues (errors or warnings).
*/
func TestValidateJob_ValidMinimal(t *testing.T) {
	t.Parallel()

	if issues := ValidateJob(validJob()); len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
	if issues := ValidateJob(Default()); HasErrors(issues) {
		t.Fatalf("default job has errors: %+v", issues)
	}
}

func TestValidateJob_EmptyJobWarns(t *testing.T) {
	t.Parallel()

	j := validJob()
	j.Job = " "
	issues := ValidateJob(j)
	if !hasIssue(t, issues, SeverityWarning, "job", "job is empty") {
		t.Fatalf("expected job warning; got %+v", issues)
	}
	if HasErrors(issues) {
		t.Fatalf("empty job must not be an error: %+v", issues)
	}
}

func TestValidateSource_Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  Source
		sev  IssueSeverity
		path string
		msg  string
	}{
		{"xlsx without path", Source{Kind: "xlsx"}, SeverityError, "source.file.path", "xlsx source requires"},
		{"unknown kind", Source{Kind: "s3"}, SeverityError, "source.kind", `unknown source kind "s3"`},
		{"sheet on csv", Source{File: SourceFile{Path: "a.csv", Sheet: "S1"}}, SeverityWarning, "source.file.sheet", "only applies to xlsx"},
		{"negative retries", Source{Kind: "http", File: SourceFile{Path: "http://h/x"}, HTTP: SourceHTTP{Retries: -1}}, SeverityError, "source.http.retries", "retries must be"},
		{"http options on file", Source{File: SourceFile{Path: "a.csv"}, HTTP: SourceHTTP{Retries: 2}}, SeverityWarning, "source.http", "only apply to http"},
		{"bad encoding", Source{File: SourceFile{Path: "a.csv", Encoding: "klingon"}}, SeverityError, "source.file.encoding", "unknown encoding"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if !hasIssue(t, validateSource(tc.src), tc.sev, tc.path, tc.msg) {
				t.Fatalf("missing %s at %s (%q); got %+v", tc.sev, tc.path, tc.msg, validateSource(tc.src))
			}
		})
	}

	if issues := validateSource(Source{Kind: "stdin"}); len(issues) != 0 {
		t.Fatalf("stdin source: unexpected issues %+v", issues)
	}
}

func TestValidateParser_Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		p    Parser
		path string
		msg  string
	}{
		{"unknown kind", Parser{Kind: "xml"}, "parser.kind", `unknown parser kind "xml"`},
		{"long comma", Parser{Kind: "csv", Options: Options{"comma": ";;"}}, "parser.options.comma", "single ASCII"},
		{"bad quote type", Parser{Kind: "csv", Options: Options{"quote": float64(1)}}, "parser.options.quote", "single ASCII"},
		{"comma equals quote", Parser{Kind: "csv", Options: Options{"comma": `"`}}, "parser.options.comma", "must differ"},
		{"empty scrub", Parser{Kind: "csv", Options: Options{"scrub": []any{map[string]any{"to": "x"}}}}, "parser.options.scrub", "from must not be empty"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if !hasIssue(t, validateParser(tc.p), SeverityError, tc.path, tc.msg) {
				t.Fatalf("missing error at %s (%q); got %+v", tc.path, tc.msg, validateParser(tc.p))
			}
		})
	}

	ok := Parser{Kind: "csv", Options: Options{"comma": "tab", "quote": "'"}}
	if issues := validateParser(ok); len(issues) != 0 {
		t.Fatalf("valid parser: unexpected issues %+v", issues)
	}
}

func TestValidateColumns_Cases(t *testing.T) {
	t.Parallel()

	if !hasIssue(t, validateColumns(Columns{Types: map[string]string{"x": "int"}}), SeverityError, "columns.types", "not a column index") {
		t.Fatalf("expected key error")
	}
	if !hasIssue(t, validateColumns(Columns{Types: map[string]string{"2": "date"}}), SeverityError, "columns.types.2", "date") {
		t.Fatalf("expected type error; got %+v", validateColumns(Columns{Types: map[string]string{"2": "date"}}))
	}
	if issues := validateColumns(Columns{Types: map[string]string{"0": "integer", "1": "str"}}); len(issues) != 0 {
		t.Fatalf("aliases: unexpected issues %+v", issues)
	}
}

func TestValidateRuntime_Cases(t *testing.T) {
	t.Parallel()

	issues := validateRuntime(Runtime{Workers: -1, SampleRows: -5})
	if !hasIssue(t, issues, SeverityError, "runtime.workers", "must be >= 0") ||
		!hasIssue(t, issues, SeverityError, "runtime.sample_rows", "must be >= 0") {
		t.Fatalf("expected negative value errors; got %+v", issues)
	}
	issues = validateRuntime(Runtime{ChunkSize: 10, ByteBudget: 1 << 20})
	if !hasIssue(t, issues, SeverityWarning, "runtime.byte_budget", "ignored") {
		t.Fatalf("expected byte_budget warning; got %+v", issues)
	}
}

func TestValidateOutput_Cases(t *testing.T) {
	t.Parallel()

	if !hasIssue(t, validateOutput(Output{Format: "xml"}), SeverityError, "output.format", "unknown format") {
		t.Fatalf("expected format error")
	}
	if !hasIssue(t, validateOutput(Output{Format: "parquet"}), SeverityError, "output.path", "requires a file path") {
		t.Fatalf("expected parquet path error")
	}
	for _, f := range []string{"", "table", "CSV", "json", "yaml"} {
		if issues := validateOutput(Output{Format: f}); len(issues) != 0 {
			t.Fatalf("format %q: unexpected issues %+v", f, issues)
		}
	}
}

func TestValidateExport_Cases(t *testing.T) {
	t.Parallel()

	if issues := validateExport(Export{}); len(issues) != 0 {
		t.Fatalf("disabled export: unexpected issues %+v", issues)
	}
	if !hasIssue(t, validateExport(Export{Table: "t"}), SeverityWarning, "export.kind", "ignored") {
		t.Fatalf("expected warning for orphan table")
	}

	issues := validateExport(Export{Kind: "oracle"})
	if !hasIssue(t, issues, SeverityWarning, "export.kind", `unknown export kind "oracle"`) ||
		!hasIssue(t, issues, SeverityError, "export.dsn", "requires a dsn") ||
		!hasIssue(t, issues, SeverityError, "export.table", "requires a table") {
		t.Fatalf("unexpected export issues %+v", issues)
	}
}

func TestValidateMetrics_Cases(t *testing.T) {
	t.Parallel()

	if !hasIssue(t, validateMetrics(Metrics{Backend: "graphite"}), SeverityError, "metrics.backend", "unknown metrics backend") {
		t.Fatalf("expected backend error")
	}
	if !hasIssue(t, validateMetrics(Metrics{Backend: "datadog"}), SeverityWarning, "metrics.statsd_addr", "DD_AGENT_ADDR") {
		t.Fatalf("expected statsd warning")
	}
	if issues := validateMetrics(Metrics{Backend: "pushgateway", PushgatewayURL: "http://x"}); len(issues) != 0 {
		t.Fatalf("unexpected issues %+v", issues)
	}
}

func TestIssue_Error(t *testing.T) {
	t.Parallel()

	got := Issue{Severity: SeverityError, Path: "export.dsn", Message: "boom"}.Error()
	if got != "error at export.dsn: boom" {
		t.Fatalf("Error() = %q", got)
	}
}
