// Package derive computes read-only views over a cache snapshot: the
// dashboard stat cards, chart groupings, the kanban board and the
// day-by-day time series. Everything here is a pure function; malformed
// input degrades to a skipped record, never a panic.
package derive

import (
	"math"
	"time"

	"github.com/luminacrm/lumina/internal/entity"
)

// Stats are the dashboard counters. Leads with an unrecognized status
// still count toward Total and Value but toward no per-status bucket.
type Stats struct {
	Total     int     `json:"total"`
	New       int     `json:"new"`
	Contacted int     `json:"contacted"`
	Converted int     `json:"converted"`
	Lost      int     `json:"lost"`
	Value     float64 `json:"value"`
}

func LeadStats(leads []entity.Lead) Stats {
	var s Stats
	for _, l := range leads {
		s.Total++
		s.Value += entity.NormalizeValue(l.Value)
		switch l.Status {
		case entity.StatusNew:
			s.New++
		case entity.StatusContacted:
			s.Contacted++
		case entity.StatusConverted:
			s.Converted++
		case entity.StatusLost:
			s.Lost++
		}
	}
	return s
}

// ConversionRate is converted/total as a percentage, 0 for an empty set.
func ConversionRate(s Stats) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Converted) / float64(s.Total) * 100
}

// AvgDealSize is pipeline value per lead, 0 for an empty set.
func AvgDealSize(s Stats) float64 {
	if s.Total == 0 {
		return 0
	}
	return s.Value / float64(s.Total)
}

// Bucket is one bar or slice in a chart grouping.
type Bucket struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

// GroupBy buckets leads by an arbitrary key. Bucket order is the order
// in which each label was first seen, so chart layout is stable across
// recomputations of the same snapshot.
func GroupBy(leads []entity.Lead, key func(entity.Lead) string) []Bucket {
	var out []Bucket
	index := make(map[string]int)
	for _, l := range leads {
		k := key(l)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Bucket{Label: k})
		}
		out[i].Count++
		out[i].Value += entity.NormalizeValue(l.Value)
	}
	return out
}

// BySource feeds the "Leads by Source" chart.
func BySource(leads []entity.Lead) []Bucket {
	return GroupBy(leads, func(l entity.Lead) string { return l.Source.String() })
}

// ByStatus feeds the status distribution chart. Unknown statuses are
// filtered out rather than shown as an empty label.
func ByStatus(leads []entity.Lead) []Bucket {
	known := make([]entity.Lead, 0, len(leads))
	for _, l := range leads {
		if l.Status.Valid() {
			known = append(known, l)
		}
	}
	return GroupBy(known, func(l entity.Lead) string { return l.Status.String() })
}

// DayBucket is one point of the time series.
type DayBucket struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
	Value float64   `json:"value"`
}

// TimeSeries groups leads by the UTC calendar day of DateAdded, sorted
// ascending. window > 0 keeps only the trailing window buckets. Leads
// with a zero DateAdded are skipped.
func TimeSeries(leads []entity.Lead, window int) []DayBucket {
	var out []DayBucket
	index := make(map[time.Time]int)
	for _, l := range leads {
		if l.DateAdded.IsZero() {
			continue
		}
		day := l.DateAdded.UTC().Truncate(24 * time.Hour)
		i, ok := index[day]
		if !ok {
			i = len(out)
			index[day] = i
			out = append(out, DayBucket{Day: day})
		}
		out[i].Count++
		out[i].Value += entity.NormalizeValue(l.Value)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Day.Before(out[j-1].Day); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if window > 0 && len(out) > window {
		out = out[len(out)-window:]
	}
	return out
}

// Trend is the rounded percentage change between two periods. A nil
// previous means no comparison period was requested and yields nil.
// A zero previous with a non-zero current reads as +100%, and two zero
// periods read as flat; the dashboard cards depend on that exact
// behavior.
func Trend(current float64, previous *float64) *int {
	if previous == nil {
		return nil
	}
	var pct int
	switch {
	case *previous == 0 && current == 0:
		pct = 0
	case *previous == 0:
		pct = 100
	default:
		pct = int(math.Round((current - *previous) / *previous * 100))
	}
	return &pct
}

// Kanban partitions leads into the four status columns, preserving the
// relative order of the input. Leads with an unknown status are dropped
// from the board.
func Kanban(leads []entity.Lead) map[entity.Status][]entity.Lead {
	cols := map[entity.Status][]entity.Lead{
		entity.StatusNew:       {},
		entity.StatusContacted: {},
		entity.StatusConverted: {},
		entity.StatusLost:      {},
	}
	for _, l := range leads {
		if _, ok := cols[l.Status]; ok {
			cols[l.Status] = append(cols[l.Status], l)
		}
	}
	return cols
}
