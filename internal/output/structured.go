package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

func writeJSON[T any](w io.Writer, recs []T) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if recs == nil {
		recs = []T{}
	}
	return enc.Encode(recs)
}

func writeYAML[T any](w io.Writer, recs []T) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(recs); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}

func writeParquet[T any](w io.Writer, recs []T) error {
	pw := parquet.NewGenericWriter[T](w)
	if _, err := pw.Write(recs); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
