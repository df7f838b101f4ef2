package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"adpulse/internal/dataset"
)

// dailyHeader is the column layout of the daily-channel export.
var dailyHeader = []string{
	"date", "channel", "impressions", "clicks", "conversions",
	"spend", "attributed_revenue", "ctr", "cpc", "cpm", "cpa", "roas",
}

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	// BOMPrefix adds a UTF-8 BOM so Excel recognizes the encoding.
	BOMPrefix bool
}

// WriteDailyCSV writes the daily-channel table as CSV.
func WriteDailyCSV(w io.Writer, rows []dataset.DailyChannelRow, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(dailyHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		if err := writer.Write(dailyRecord(row)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return writer.Error()
}

// dailyRecord formats one row for CSV output.
func dailyRecord(row dataset.DailyChannelRow) []string {
	return []string{
		row.Date.Format("2006-01-02"),
		row.Channel,
		strconv.FormatInt(row.Impressions, 10),
		strconv.FormatInt(row.Clicks, 10),
		strconv.FormatInt(row.Conversions, 10),
		formatFloat(row.Spend),
		formatFloat(row.Revenue),
		formatFloat(row.KPI.CTR),
		formatFloat(row.KPI.CPC),
		formatFloat(row.KPI.CPM),
		formatFloat(row.KPI.CPA),
		formatFloat(row.KPI.ROAS),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
