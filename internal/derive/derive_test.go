package derive

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/luminacrm/lumina/internal/entity"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 10, 30, 0, 0, time.UTC)
}

func sampleLeads() []entity.Lead {
	return []entity.Lead{
		{ID: "1", Name: "Ada", Status: entity.StatusNew, Source: entity.SourceWebsite, Value: 1000, DateAdded: day(1)},
		{ID: "2", Name: "Grace", Status: entity.StatusConverted, Source: entity.SourceReferral, Value: 5000, DateAdded: day(2)},
		{ID: "3", Name: "Edsger", Status: entity.StatusLost, Source: entity.SourceWebsite, Value: 0, DateAdded: day(2)},
	}
}

func TestLeadStats(t *testing.T) {
	s := LeadStats(sampleLeads())

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.New)
	assert.Equal(t, 0, s.Contacted)
	assert.Equal(t, 1, s.Converted)
	assert.Equal(t, 1, s.Lost)
	assert.Equal(t, 6000.0, s.Value)
}

func TestLeadStatsUnknownStatusCountsTowardTotalOnly(t *testing.T) {
	s := LeadStats([]entity.Lead{
		{ID: "1", Status: entity.StatusUnknown, Value: 100},
	})
	assert.Equal(t, 1, s.Total)
	assert.Equal(t, 100.0, s.Value)
	assert.Equal(t, 0, s.New+s.Contacted+s.Converted+s.Lost)
}

func TestLeadStatsIgnoresMalformedValues(t *testing.T) {
	s := LeadStats([]entity.Lead{
		{ID: "1", Status: entity.StatusNew, Value: math.NaN()},
		{ID: "2", Status: entity.StatusNew, Value: math.Inf(1)},
		{ID: "3", Status: entity.StatusNew, Value: 42},
	})
	assert.Equal(t, 42.0, s.Value)
}

func TestConversionRate(t *testing.T) {
	assert.Equal(t, 0.0, ConversionRate(Stats{}))
	assert.InDelta(t, 33.33, ConversionRate(Stats{Total: 3, Converted: 1}), 0.01)
	assert.Equal(t, 0.0, AvgDealSize(Stats{}))
	assert.Equal(t, 2000.0, AvgDealSize(Stats{Total: 3, Value: 6000}))
}

func TestGroupByPreservesFirstSeenOrder(t *testing.T) {
	buckets := BySource(sampleLeads())

	assert.Len(t, buckets, 2)
	assert.Equal(t, "Website", buckets[0].Label)
	assert.Equal(t, 2, buckets[0].Count)
	assert.Equal(t, 1000.0, buckets[0].Value)
	assert.Equal(t, "Referral", buckets[1].Label)
	assert.Equal(t, 1, buckets[1].Count)
}

func TestGroupByIdempotent(t *testing.T) {
	leads := sampleLeads()
	first := BySource(leads)
	second := BySource(leads)
	assert.Equal(t, first, second)
}

func TestByStatusDropsUnknown(t *testing.T) {
	leads := append(sampleLeads(), entity.Lead{ID: "4", Status: entity.StatusUnknown})
	buckets := ByStatus(leads)

	for _, b := range buckets {
		assert.NotEmpty(t, b.Label)
	}
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	assert.Equal(t, 3, total)
}

func TestTimeSeries(t *testing.T) {
	leads := []entity.Lead{
		{ID: "1", Value: 100, DateAdded: day(3)},
		{ID: "2", Value: 200, DateAdded: day(1)},
		{ID: "3", Value: 300, DateAdded: day(3).Add(5 * time.Hour)},
		{ID: "4"}, // zero DateAdded, skipped
	}

	series := TimeSeries(leads, 0)
	assert.Len(t, series, 2)
	assert.True(t, series[0].Day.Before(series[1].Day))
	assert.Equal(t, 1, series[0].Count)
	assert.Equal(t, 2, series[1].Count)
	assert.Equal(t, 400.0, series[1].Value)
}

func TestTimeSeriesWindow(t *testing.T) {
	leads := []entity.Lead{
		{ID: "1", DateAdded: day(1)},
		{ID: "2", DateAdded: day(2)},
		{ID: "3", DateAdded: day(3)},
	}
	series := TimeSeries(leads, 2)
	assert.Len(t, series, 2)
	assert.Equal(t, day(2).Truncate(24*time.Hour), series[0].Day)
}

func TestTrend(t *testing.T) {
	assert.Nil(t, Trend(10, nil))

	zero := 0.0
	assert.Equal(t, 0, *Trend(0, &zero))
	assert.Equal(t, 100, *Trend(5, &zero))

	prev := 10.0
	assert.Equal(t, 50, *Trend(15, &prev))
	assert.Equal(t, -50, *Trend(5, &prev))

	prev = 5.0
	assert.Equal(t, -100, *Trend(0, &prev))

	prev = 3.0
	assert.Equal(t, 33, *Trend(4, &prev))
}

func TestKanban(t *testing.T) {
	leads := append(sampleLeads(), entity.Lead{ID: "4", Status: entity.StatusUnknown})
	cols := Kanban(leads)

	assert.Len(t, cols, 4)
	assert.Len(t, cols[entity.StatusNew], 1)
	assert.Len(t, cols[entity.StatusContacted], 0)
	assert.Len(t, cols[entity.StatusConverted], 1)
	assert.Len(t, cols[entity.StatusLost], 1)

	// Every column exists even when empty, and the unknown lead is gone.
	total := 0
	for _, col := range cols {
		total += len(col)
	}
	assert.Equal(t, 3, total)
}
