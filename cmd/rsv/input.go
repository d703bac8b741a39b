package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/ribbondz/rsv-sub000/internal/config"
	"github.com/ribbondz/rsv-sub000/internal/datasource"
	"github.com/ribbondz/rsv-sub000/internal/datasource/file"
	"github.com/ribbondz/rsv-sub000/internal/datasource/httpds"
	"github.com/ribbondz/rsv-sub000/internal/datasource/xlsx"
	"github.com/ribbondz/rsv-sub000/internal/parser/csv"
	"github.com/ribbondz/rsv-sub000/internal/pipeline"
	"github.com/ribbondz/rsv-sub000/internal/stats"
)

// input is an opened source, positioned after the header line.
type input struct {
	name   string
	lr     *csv.LineReader
	rc     io.Closer
	sep    byte
	quote  byte
	header bool

	// names are the header cells, or col0, col1, ... without a header.
	names []string
	// sample holds the first data lines (header excluded) for inference.
	sample []string
	// chunkSize is resolved from the runtime config and the sample.
	chunkSize int
}

// newSource picks the datasource for the job's source kind.
func newSource(j config.Job) (datasource.Source, error) {
	switch kind := j.Source.SourceKind(); kind {
	case "stdin":
		return file.NewStdin(), nil
	case "file":
		return file.NewLocal(j.Source.File.Path), nil
	case "xlsx":
		return xlsx.New(j.Source.File.Path, j.Source.File.Sheet, j.Parser.Comma(), j.Parser.Quote()), nil
	case "http":
		hdr := http.Header{}
		for k, v := range j.Source.HTTP.Headers {
			hdr.Set(k, v)
		}
		return httpds.NewSource(j.Source.File.Path, httpds.Config{
			MaxRetries:         j.Source.HTTP.Retries,
			Headers:            hdr,
			InsecureSkipVerify: j.Source.HTTP.InsecureSkipVerify,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported source.kind=%s", kind)
	}
}

// openInput opens the source, layers decoding and scrubbing over it, samples
// the head of the stream and consumes the header line.
func openInput(ctx context.Context, j config.Job, verbose bool) (*input, error) {
	src, err := newSource(j)
	if err != nil {
		return nil, err
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}

	in := &input{
		name:   datasource.NameOf(src),
		rc:     rc,
		sep:    j.Parser.Comma(),
		quote:  j.Parser.Quote(),
		header: j.Parser.HasHeader(),
	}

	var r io.Reader = rc
	// Spreadsheet rows are produced as UTF-8 already.
	if j.Source.SourceKind() != "xlsx" {
		if r, err = csv.DecodeReader(r, j.Source.File.Encoding); err != nil {
			rc.Close()
			return nil, err
		}
	}
	rules, err := j.Parser.ScrubRules()
	if err != nil {
		rc.Close()
		return nil, err
	}
	in.lr = csv.NewLineReader(csv.WithScrub(r, rules))

	sampleRows := j.Runtime.SampleRows
	if sampleRows <= 0 {
		sampleRows = stats.DefaultSampleRows
	}
	want := sampleRows
	if in.header {
		want++
	}
	lines, err := in.lr.Sample(want)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("sample: %w", err)
	}

	switch {
	case len(lines) == 0:
	case in.header:
		in.names = csv.ParseHeader(lines[0], in.sep, in.quote)
		in.sample = lines[1:]
		// Drop the header from the replay queue.
		if _, _, err := in.lr.ReadLine(); err != nil && !errors.Is(err, io.EOF) {
			rc.Close()
			return nil, fmt.Errorf("read header: %w", err)
		}
	default:
		in.names = csv.ArtificialNames(len(csv.Split(nil, lines[0], in.sep, in.quote)))
		in.sample = lines
	}

	// Sized from data rows only; the header is no longer queued.
	in.chunkSize = pipeline.ChunkSize(j.Runtime.ChunkSize, j.Runtime.ByteBudget, in.lr.SampleSizes())

	if verbose {
		log.Printf("reader: source=%s columns=%d sampled=%d chunk_size=%d",
			in.name, len(in.names), len(in.sample), in.chunkSize)
	}
	return in, nil
}

// Close releases the source.
func (in *input) Close() error { return in.rc.Close() }

// options builds the pipeline options for a run over in.
func (in *input) options(j config.Job, g *globalFlags, p *pipeline.Progress) pipeline.Options {
	var offset int64
	if in.header && len(in.names) > 0 {
		offset = 1
	}
	return pipeline.Options{
		Job:        j.Job,
		Workers:    j.Runtime.Workers,
		ChunkSize:  in.chunkSize,
		QueueDepth: j.Runtime.QueueDepth,
		LineOffset: offset,
		Progress:   p,
		Verbose:    g.verbose,
	}
}
