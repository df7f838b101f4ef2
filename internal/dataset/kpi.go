package dataset

import "sort"

// KPISet holds the derived per-row or per-bucket metrics. Every ratio is
// computed with SafeDiv, so a zero denominator yields 0 rather than an
// error or ±Inf.
type KPISet struct {
	CTR            float64 `json:"ctr"`
	CPC            float64 `json:"cpc"`
	CPM            float64 `json:"cpm"`
	CPA            float64 `json:"cpa"`
	ROAS           float64 `json:"roas"`
	ConversionRate float64 `json:"conversion_rate"`
}

// SafeDiv divides n by d, returning 0 when d is 0.
func SafeDiv(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return n / d
}

// ComputeKPIs derives the KPI set from raw totals.
func ComputeKPIs(impressions, clicks, conversions int64, spend, revenue float64) KPISet {
	return KPISet{
		CTR:            SafeDiv(float64(clicks), float64(impressions)),
		CPC:            SafeDiv(spend, float64(clicks)),
		CPM:            SafeDiv(spend*1000, float64(impressions)),
		CPA:            SafeDiv(spend, float64(conversions)),
		ROAS:           SafeDiv(revenue, spend),
		ConversionRate: SafeDiv(float64(conversions), float64(clicks)),
	}
}

// distinctStrings collects sorted distinct non-empty values from records.
func distinctStrings(records []Record, key func(Record) string) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		if v := key(r); v != "" {
			seen[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
