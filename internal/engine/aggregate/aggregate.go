package aggregate

import (
	"sort"
	"sync"
	"time"

	"TrafficScope/internal/model"
)

// Count field names carried per granularity for downstream report and chart
// labeling.
const (
	MinuteCountField = "Minute_Request_Count"
	HourCountField   = "Hourly_Request_Count"
	DayCountField    = "Daily_Request_Count"
)

func countField(g model.Granularity) string {
	switch g {
	case model.GranularityHour:
		return HourCountField
	case model.GranularityDay:
		return DayCountField
	}
	return MinuteCountField
}

// Series buckets records into fixed-width windows of the given granularity
// and counts them. Windows are UTC-truncated timestamps; every record lands
// in exactly one bucket. Empty windows between occupied ones produce no row:
// gaps are preserved as gaps, not zero-count buckets.
func Series(records []model.TrafficRecord, g model.Granularity) model.TrafficSeries {
	window := g.Window()
	counts := make(map[int64]int)
	for _, r := range records {
		counts[r.Timestamp.UTC().Truncate(window).Unix()]++
	}

	points := make([]model.BucketPoint, 0, len(counts))
	for start, count := range counts {
		points = append(points, model.BucketPoint{
			Window: unixUTC(start),
			Count:  count,
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Window.Before(points[j].Window)
	})

	return model.TrafficSeries{
		Granularity: g,
		CountField:  countField(g),
		Points:      points,
	}
}

func unixUTC(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// Analyze produces the minute, hour, and day series for one record set. The
// three granularities are independent, so they aggregate concurrently; the
// stage as a whole still completes before any detector runs.
func Analyze(records []model.TrafficRecord) (minute, hour, day model.TrafficSeries) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); minute = Series(records, model.GranularityMinute) }()
	go func() { defer wg.Done(); hour = Series(records, model.GranularityHour) }()
	go func() { defer wg.Done(); day = Series(records, model.GranularityDay) }()
	wg.Wait()
	return minute, hour, day
}
