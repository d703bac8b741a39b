package output

import "github.com/ribbondz/rsv-sub000/internal/stats"

// StatsRecord is the structured form of one statistics row. Pointer fields
// are null when the statistic does not apply to the column type.
type StatsRecord struct {
	Col       int64    `json:"col" yaml:"col" parquet:"col"`
	Type      string   `json:"type" yaml:"type" parquet:"type"`
	Name      string   `json:"name" yaml:"name" parquet:"name"`
	Min       *float64 `json:"min" yaml:"min" parquet:"min,optional"`
	Max       *float64 `json:"max" yaml:"max" parquet:"max,optional"`
	MinString *string  `json:"min_string" yaml:"min_string" parquet:"min_string,optional"`
	MaxString *string  `json:"max_string" yaml:"max_string" parquet:"max_string,optional"`
	Mean      *float64 `json:"mean" yaml:"mean" parquet:"mean,optional"`
	Unique    int64    `json:"unique" yaml:"unique" parquet:"unique"`
	Null      int64    `json:"null" yaml:"null" parquet:"null"`
	Total     *float64 `json:"total" yaml:"total" parquet:"total,optional"`
	Median    *float64 `json:"median,omitempty" yaml:"median,omitempty" parquet:"median,optional"`
}

// NewStatsRecord converts a row. Median is set only when requested and
// available.
func NewStatsRecord(r stats.Row, withMedian bool) StatsRecord {
	rec := StatsRecord{
		Col:    int64(r.Index),
		Type:   r.Type.String(),
		Name:   r.Name,
		Unique: int64(r.Unique),
		Null:   r.Nulls,
	}
	if r.Type == stats.String {
		rec.MinString = strPtr(r.MinString)
		rec.MaxString = strPtr(r.MaxString)
	} else {
		rec.Min = &r.Min
		rec.Max = &r.Max
		rec.Mean = &r.Mean
		rec.Total = &r.Total
	}
	if withMedian && r.HasMedian {
		m := r.Median
		rec.Median = &m
	}
	return rec
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// FrequencyRecord is one value combination with its count.
type FrequencyRecord struct {
	Columns []string `json:"columns" yaml:"columns" parquet:"columns,list"`
	Values  []string `json:"values" yaml:"values" parquet:"values,list"`
	Count   int64    `json:"count" yaml:"count" parquet:"count"`
}
