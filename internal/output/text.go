package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

func writeTable(w io.Writer, g grid) error {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(g.header)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetBorder(false)
	tw.SetColumnSeparator(" ")
	tw.SetCenterSeparator(" ")
	tw.SetHeaderLine(true)
	tw.AppendBulk(g.rows)
	tw.Render()
	return nil
}

func writeCSV(w io.Writer, g grid) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(g.header); err != nil {
		return err
	}
	if err := cw.WriteAll(g.rows); err != nil {
		return err
	}
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}
