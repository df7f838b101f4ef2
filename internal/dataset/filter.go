package dataset

import "time"

// Filter narrows the consolidated table. Zero-value fields mean "no
// constraint". Date bounds are inclusive of both endpoints.
type Filter struct {
	From     time.Time
	To       time.Time
	Channels []string
	States   []string
}

// Apply returns the records matching the filter. The input is never
// mutated; every call re-evaluates against the full table.
func (f Filter) Apply(records []Record) []Record {
	channelSet := toSet(f.Channels)
	stateSet := toSet(f.States)

	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !f.matchDate(r.Date) {
			continue
		}
		if len(channelSet) > 0 {
			if _, ok := channelSet[r.Channel]; !ok {
				continue
			}
		}
		if len(stateSet) > 0 {
			if _, ok := stateSet[r.State]; !ok {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// ApplyBusiness filters business rows by the date range only; channel and
// state do not apply to business outcomes.
func (f Filter) ApplyBusiness(records []BusinessRecord) []BusinessRecord {
	out := make([]BusinessRecord, 0, len(records))
	for _, r := range records {
		if f.matchDate(r.Date) {
			out = append(out, r)
		}
	}
	return out
}

func (f Filter) matchDate(d time.Time) bool {
	if !f.From.IsZero() && d.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && d.After(f.To) {
		return false
	}
	return true
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
