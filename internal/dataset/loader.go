package dataset

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ChannelFile names one marketing export to load.
type ChannelFile struct {
	Channel string
	Path    string
}

// dateLayouts are the accepted date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Load reads every channel file plus the business file and returns the
// consolidated dataset. Any malformed input fails the whole load; there is
// no partial-success mode.
func Load(channels []ChannelFile, businessPath string, logger *slog.Logger) (*Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ds := &Dataset{LoadedAt: time.Now()}

	for _, cf := range channels {
		records, err := LoadChannel(cf.Path, cf.Channel, logger)
		if err != nil {
			return nil, fmt.Errorf("load channel %s: %w", cf.Channel, err)
		}
		ds.Records = append(ds.Records, records...)
	}

	if businessPath != "" {
		business, err := LoadBusiness(businessPath, logger)
		if err != nil {
			return nil, fmt.Errorf("load business data: %w", err)
		}
		ds.Business = business
	}

	logger.Info("dataset loaded",
		slog.Int("marketing_rows", len(ds.Records)),
		slog.Int("business_rows", len(ds.Business)),
		slog.Int("channels", len(channels)))

	return ds, nil
}

// LoadChannel reads one platform CSV, renames its columns to the common
// schema with header heuristics, coerces types and stamps the channel name
// on every row.
func LoadChannel(path, channel string, logger *slog.Logger) ([]Record, error) {
	if logger == nil {
		logger = slog.Default()
	}

	header, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	columnMap := mapChannelColumns(header)
	dateCol, ok := columnMap["date"]
	if !ok {
		return nil, fmt.Errorf("could not find a date column in %s", path)
	}

	logger.Debug("channel columns mapped",
		slog.String("channel", channel),
		slog.String("path", path),
		slog.Any("columns", columnMap))

	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		if dateCol >= len(row) {
			return nil, fmt.Errorf("row %d of %s: missing date cell", i+2, path)
		}

		date, err := parseDate(row[dateCol])
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", i+2, path, err)
		}

		rec := Record{
			Date:        date,
			Channel:     channel,
			Campaign:    cellString(row, columnMap, "campaign"),
			Tactic:      cellString(row, columnMap, "tactic"),
			State:       cellString(row, columnMap, "state"),
			Impressions: cellInt(row, columnMap, "impressions"),
			Clicks:      cellInt(row, columnMap, "clicks"),
			Spend:       cellFloat(row, columnMap, "spend"),
			Revenue:     cellFloat(row, columnMap, "attributed_revenue"),
			Conversions: cellInt(row, columnMap, "conversions"),
		}
		rec.KPI = ComputeKPIs(rec.Impressions, rec.Clicks, rec.Conversions, rec.Spend, rec.Revenue)
		records = append(records, rec)
	}

	logger.Info("channel loaded",
		slog.String("channel", channel),
		slog.String("path", path),
		slog.Int("rows", len(records)))

	return records, nil
}

// mapChannelColumns maps header names to canonical schema positions using
// the same heuristics the platforms' exports need: Google calls spend
// "Cost", Facebook reports "Impressions", TikTok "impression", and so on.
func mapChannelColumns(header []string) map[string]int {
	columnMap := make(map[string]int)

	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case strings.Contains(name, "date"):
			setIfAbsent(columnMap, "date", i)
		case strings.Contains(name, "impress"):
			setIfAbsent(columnMap, "impressions", i)
		case strings.Contains(name, "click"):
			setIfAbsent(columnMap, "clicks", i)
		case strings.Contains(name, "spend") || strings.Contains(name, "cost"):
			setIfAbsent(columnMap, "spend", i)
		case strings.Contains(name, "revenue"):
			setIfAbsent(columnMap, "attributed_revenue", i)
		case strings.Contains(name, "conversion") || strings.Contains(name, "result"):
			setIfAbsent(columnMap, "conversions", i)
		case strings.Contains(name, "campaign"):
			setIfAbsent(columnMap, "campaign", i)
		case strings.Contains(name, "tactic"):
			setIfAbsent(columnMap, "tactic", i)
		case strings.Contains(name, "state") || strings.Contains(name, "region"):
			setIfAbsent(columnMap, "state", i)
		}
	}

	return columnMap
}

func setIfAbsent(m map[string]int, key string, idx int) {
	if _, exists := m[key]; !exists {
		m[key] = idx
	}
}

// readCSV reads a whole CSV file and splits off the header row.
func readCSV(path string) ([]string, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // ragged exports are tolerated; missing cells fill as zero, except the date
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("file %s is empty", path)
	}

	header := rows[0]
	// Strip a UTF-8 BOM some exports carry on the first header cell
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	return header, rows[1:], nil
}

// parseDate tries the accepted layouts and normalizes to midnight UTC.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// cellString returns the trimmed cell for a mapped column, or "".
func cellString(row []string, columnMap map[string]int, key string) string {
	if idx, ok := columnMap[key]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// cellFloat parses a numeric cell; malformed or missing values become 0
// per the fixed fill policy. Negative values are clamped to 0 so cleaned
// numerics stay non-negative.
func cellFloat(row []string, columnMap map[string]int, key string) float64 {
	if idx, ok := columnMap[key]; ok && idx < len(row) {
		raw := strings.TrimSpace(row[idx])
		raw = strings.ReplaceAll(raw, ",", "")
		raw = strings.TrimPrefix(raw, "$")
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil || val < 0 {
			return 0
		}
		return val
	}
	return 0
}

// cellInt parses an integer cell with the same fill policy as cellFloat.
// Fractional values are truncated.
func cellInt(row []string, columnMap map[string]int, key string) int64 {
	return int64(cellFloat(row, columnMap, key))
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
