package dataset

import (
	"fmt"
	"log/slog"
	"strings"
)

// businessRenames maps the business export's verbose headers to the common
// schema. Matching is case-insensitive on trimmed names.
var businessRenames = map[string]string{
	"date":            "date",
	"# of orders":     "orders",
	"orders":          "orders",
	"# of new orders": "new_orders",
	"new orders":      "new_orders",
	"new customers":   "new_customers",
	"total revenue":   "revenue",
	"revenue":         "revenue",
	"gross profit":    "profit",
	"profit":          "profit",
	"cogs":            "cogs",
}

// LoadBusiness reads the business outcomes CSV. A file without a date
// column is a hard error; numeric columns follow the zero-fill policy.
func LoadBusiness(path string, logger *slog.Logger) ([]BusinessRecord, error) {
	if logger == nil {
		logger = slog.Default()
	}

	header, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	columnMap := make(map[string]int)
	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		if canonical, ok := businessRenames[name]; ok {
			setIfAbsent(columnMap, canonical, i)
		}
	}

	dateCol, ok := columnMap["date"]
	if !ok {
		return nil, fmt.Errorf("could not find a date column in %s", path)
	}

	records := make([]BusinessRecord, 0, len(rows))
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

		records = append(records, BusinessRecord{
			Date:         date,
			Orders:       cellInt(row, columnMap, "orders"),
			NewOrders:    cellInt(row, columnMap, "new_orders"),
			NewCustomers: cellInt(row, columnMap, "new_customers"),
			Revenue:      cellFloat(row, columnMap, "revenue"),
			Profit:       cellFloat(row, columnMap, "profit"),
			COGS:         cellFloat(row, columnMap, "cogs"),
		})
	}

	logger.Info("business data loaded",
		slog.String("path", path),
		slog.Int("rows", len(records)))

	return records, nil
}
