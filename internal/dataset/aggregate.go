package dataset

import (
	"sort"
	"time"
)

// totals accumulates the additive columns of a bucket.
type totals struct {
	impressions int64
	clicks      int64
	conversions int64
	spend       float64
	revenue     float64
}

func (t *totals) add(r Record) {
	t.impressions += r.Impressions
	t.clicks += r.Clicks
	t.conversions += r.Conversions
	t.spend += r.Spend
	t.revenue += r.Revenue
}

func (t totals) kpis() KPISet {
	return ComputeKPIs(t.impressions, t.clicks, t.conversions, t.spend, t.revenue)
}

// DailyChannelRow is a per-date, per-channel rollup with recomputed KPIs.
type DailyChannelRow struct {
	Date        time.Time `json:"date"`
	Channel     string    `json:"channel"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	Conversions int64     `json:"conversions"`
	Spend       float64   `json:"spend"`
	Revenue     float64   `json:"attributed_revenue"`
	KPI         KPISet    `json:"kpi"`
}

// DailyTotalRow is a per-date rollup across all channels.
type DailyTotalRow struct {
	Date        time.Time `json:"date"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	Conversions int64     `json:"conversions"`
	Spend       float64   `json:"spend"`
	Revenue     float64   `json:"attributed_revenue"`
	KPI         KPISet    `json:"kpi"`
}

// ChannelSummaryRow is the whole-range rollup for one channel.
type ChannelSummaryRow struct {
	Channel     string  `json:"channel"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"attributed_revenue"`
	KPI         KPISet  `json:"kpi"`
}

// CampaignRow is the rollup for one campaign on one channel.
type CampaignRow struct {
	Campaign    string  `json:"campaign"`
	Channel     string  `json:"channel"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"attributed_revenue"`
	KPI         KPISet  `json:"kpi"`
}

// BusinessJoinRow is a business-outcomes row left-joined with the daily
// marketing totals for the same date, plus 7-day rolling sums.
type BusinessJoinRow struct {
	Date         time.Time `json:"date"`
	Orders       int64     `json:"orders"`
	NewOrders    int64     `json:"new_orders"`
	NewCustomers int64     `json:"new_customers"`
	Revenue      float64   `json:"revenue"`
	Profit       float64   `json:"profit"`
	COGS         float64   `json:"cogs"`

	Spend             float64 `json:"spend"`
	AttributedRevenue float64 `json:"attributed_revenue"`
	Clicks            int64   `json:"clicks"`
	Impressions       int64   `json:"impressions"`

	Spend7d   float64 `json:"spend_7d"`
	Revenue7d float64 `json:"revenue_7d"`
}

// AggregateDailyChannel rolls the table up by (date, channel), sorted by
// date then channel.
func AggregateDailyChannel(records []Record) []DailyChannelRow {
	type key struct {
		date    time.Time
		channel string
	}

	buckets := make(map[key]*totals)
	for _, r := range records {
		k := key{r.Date, r.Channel}
		t, ok := buckets[k]
		if !ok {
			t = &totals{}
			buckets[k] = t
		}
		t.add(r)
	}

	rows := make([]DailyChannelRow, 0, len(buckets))
	for k, t := range buckets {
		rows = append(rows, DailyChannelRow{
			Date:        k.date,
			Channel:     k.channel,
			Impressions: t.impressions,
			Clicks:      t.clicks,
			Conversions: t.conversions,
			Spend:       t.spend,
			Revenue:     t.revenue,
			KPI:         t.kpis(),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].Channel < rows[j].Channel
	})

	return rows
}

// AggregateDailyTotal rolls the table up by date across channels, sorted
// by date.
func AggregateDailyTotal(records []Record) []DailyTotalRow {
	buckets := make(map[time.Time]*totals)
	for _, r := range records {
		t, ok := buckets[r.Date]
		if !ok {
			t = &totals{}
			buckets[r.Date] = t
		}
		t.add(r)
	}

	rows := make([]DailyTotalRow, 0, len(buckets))
	for date, t := range buckets {
		rows = append(rows, DailyTotalRow{
			Date:        date,
			Impressions: t.impressions,
			Clicks:      t.clicks,
			Conversions: t.conversions,
			Spend:       t.spend,
			Revenue:     t.revenue,
			KPI:         t.kpis(),
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	return rows
}

// SummarizeChannels rolls the whole range up per channel, sorted by spend
// descending so the breakdown table leads with the biggest budget.
func SummarizeChannels(records []Record) []ChannelSummaryRow {
	buckets := make(map[string]*totals)
	for _, r := range records {
		t, ok := buckets[r.Channel]
		if !ok {
			t = &totals{}
			buckets[r.Channel] = t
		}
		t.add(r)
	}

	rows := make([]ChannelSummaryRow, 0, len(buckets))
	for channel, t := range buckets {
		rows = append(rows, ChannelSummaryRow{
			Channel:     channel,
			Impressions: t.impressions,
			Clicks:      t.clicks,
			Conversions: t.conversions,
			Spend:       t.spend,
			Revenue:     t.revenue,
			KPI:         t.kpis(),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Spend != rows[j].Spend {
			return rows[i].Spend > rows[j].Spend
		}
		return rows[i].Channel < rows[j].Channel
	})

	return rows
}

// CampaignPerformance rolls the table up by (campaign, channel), sorted by
// ROAS descending. limit <= 0 returns all rows. Rows without a campaign
// name are skipped; not every export is campaign-level.
func CampaignPerformance(records []Record, limit int) []CampaignRow {
	type key struct {
		campaign string
		channel  string
	}

	buckets := make(map[key]*totals)
	for _, r := range records {
		if r.Campaign == "" {
			continue
		}
		k := key{r.Campaign, r.Channel}
		t, ok := buckets[k]
		if !ok {
			t = &totals{}
			buckets[k] = t
		}
		t.add(r)
	}

	rows := make([]CampaignRow, 0, len(buckets))
	for k, t := range buckets {
		rows = append(rows, CampaignRow{
			Campaign:    k.campaign,
			Channel:     k.channel,
			Impressions: t.impressions,
			Clicks:      t.clicks,
			Conversions: t.conversions,
			Spend:       t.spend,
			Revenue:     t.revenue,
			KPI:         t.kpis(),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].KPI.ROAS != rows[j].KPI.ROAS {
			return rows[i].KPI.ROAS > rows[j].KPI.ROAS
		}
		if rows[i].Campaign != rows[j].Campaign {
			return rows[i].Campaign < rows[j].Campaign
		}
		return rows[i].Channel < rows[j].Channel
	})

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	return rows
}

// JoinBusiness left-joins business rows with daily marketing totals on
// date and computes 7-day rolling spend and revenue sums. The window is
// the current row plus up to six preceding rows in date order, so the
// first rows still produce a value (min periods of one).
func JoinBusiness(business []BusinessRecord, records []Record) []BusinessJoinRow {
	marketing := make(map[time.Time]DailyTotalRow)
	for _, row := range AggregateDailyTotal(records) {
		marketing[row.Date] = row
	}

	sorted := make([]BusinessRecord, len(business))
	copy(sorted, business)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	rows := make([]BusinessJoinRow, 0, len(sorted))
	for _, b := range sorted {
		row := BusinessJoinRow{
			Date:         b.Date,
			Orders:       b.Orders,
			NewOrders:    b.NewOrders,
			NewCustomers: b.NewCustomers,
			Revenue:      b.Revenue,
			Profit:       b.Profit,
			COGS:         b.COGS,
		}
		if m, ok := marketing[b.Date]; ok {
			row.Spend = m.Spend
			row.AttributedRevenue = m.Revenue
			row.Clicks = m.Clicks
			row.Impressions = m.Impressions
		}
		rows = append(rows, row)
	}

	for i := range rows {
		start := i - 6
		if start < 0 {
			start = 0
		}
		for j := start; j <= i; j++ {
			rows[i].Spend7d += rows[j].Spend
			rows[i].Revenue7d += rows[j].Revenue
		}
	}

	return rows
}
