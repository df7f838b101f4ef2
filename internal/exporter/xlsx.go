package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"adpulse/internal/dataset"
)

const dailySheetName = "Daily Channel"

// WriteDailyXLSX writes the daily-channel table as an Excel workbook.
func WriteDailyXLSX(w io.Writer, rows []dataset.DailyChannelRow) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(dailySheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	header := make([]interface{}, len(dailyHeader))
	for i, h := range dailyHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(dailySheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell for row %d: %w", i, err)
		}
		values := []interface{}{
			row.Date.Format("2006-01-02"),
			row.Channel,
			row.Impressions,
			row.Clicks,
			row.Conversions,
			row.Spend,
			row.Revenue,
			row.KPI.CTR,
			row.KPI.CPC,
			row.KPI.CPM,
			row.KPI.CPA,
			row.KPI.ROAS,
		}
		if err := f.SetSheetRow(dailySheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	return nil
}
