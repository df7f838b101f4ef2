// Package dataset implements the data-preparation core of the dashboard:
// loading marketing CSV exports, normalizing them to a common schema,
// merging per-channel tables and deriving KPI columns.
//
// The consolidated table is immutable once loaded; every aggregation and
// filter recomputes from it.
package dataset

import "time"

// Record is one row of the consolidated marketing table: a single
// campaign/day/channel observation after cleaning. Numeric fields are
// non-negative; unparseable numerics are zero per the fixed fill policy.
type Record struct {
	Date        time.Time `json:"date"`
	Channel     string    `json:"channel"`
	Campaign    string    `json:"campaign,omitempty"`
	Tactic      string    `json:"tactic,omitempty"`
	State       string    `json:"state,omitempty"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	Spend       float64   `json:"spend"`
	Revenue     float64   `json:"attributed_revenue"`
	Conversions int64     `json:"conversions"`

	KPI KPISet `json:"kpi"`
}

// BusinessRecord is one row of business outcomes per day.
type BusinessRecord struct {
	Date         time.Time `json:"date"`
	Orders       int64     `json:"orders"`
	NewOrders    int64     `json:"new_orders"`
	NewCustomers int64     `json:"new_customers"`
	Revenue      float64   `json:"revenue"`
	Profit       float64   `json:"profit"`
	COGS         float64   `json:"cogs"`
}

// Dataset holds the consolidated marketing table plus business outcomes.
type Dataset struct {
	Records  []Record         `json:"records"`
	Business []BusinessRecord `json:"business"`
	LoadedAt time.Time        `json:"loaded_at"`
}

// Channels returns the distinct channel names present, sorted.
func (d *Dataset) Channels() []string {
	return distinctStrings(d.Records, func(r Record) string { return r.Channel })
}

// States returns the distinct non-empty state/region values present, sorted.
func (d *Dataset) States() []string {
	return distinctStrings(d.Records, func(r Record) string { return r.State })
}

// DateBounds returns the earliest and latest dates across marketing and
// business rows. ok is false when the dataset is empty.
func (d *Dataset) DateBounds() (min, max time.Time, ok bool) {
	for _, r := range d.Records {
		min, max, ok = extendBounds(min, max, ok, r.Date)
	}
	for _, b := range d.Business {
		min, max, ok = extendBounds(min, max, ok, b.Date)
	}
	return min, max, ok
}

func extendBounds(min, max time.Time, ok bool, t time.Time) (time.Time, time.Time, bool) {
	if !ok {
		return t, t, true
	}
	if t.Before(min) {
		min = t
	}
	if t.After(max) {
		max = t
	}
	return min, max, true
}
