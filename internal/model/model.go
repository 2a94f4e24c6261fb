package model

import (
	"time"
)

// Granularity identifies the width of an aggregation window.
type Granularity string

const (
	GranularityMinute Granularity = "minute"
	GranularityHour   Granularity = "hour"
	GranularityDay    Granularity = "day"
)

// Window returns the bucket width for the granularity.
func (g Granularity) Window() time.Duration {
	switch g {
	case GranularityMinute:
		return time.Minute
	case GranularityHour:
		return time.Hour
	case GranularityDay:
		return 24 * time.Hour
	}
	return time.Minute
}

// TrafficRecord is one observed packet or request. The first six fields are
// parsed from the input and never change; the remaining fields are derived by
// later pipeline stages (feature engineering, detection, categorization).
type TrafficRecord struct {
	Timestamp   time.Time
	TimeSeconds float64 // raw Time column value, preserved for report output
	Length      int
	Source      string
	Destination string
	Protocol    int

	// Derived by the packet detector.
	SourceRate int     // records sharing Source within the record's minute window
	Score      float64 // outlier score, higher is more anomalous
	Flagged    bool

	// Derived by the categorizer.
	Category         string
	ProtocolCategory string
	SourceCategory   string
}

// BucketPoint is one aggregation window with its record count and, after
// series detection, its anomaly flag and the statistical bound that was
// exceeded.
type BucketPoint struct {
	Window  time.Time
	Count   int
	Anomaly bool
	Bound   float64 // mean +/- k*sigma on the side the count fell; zero when not anomalous
}

// TrafficSeries is the ordered bucket sequence for a single granularity.
// CountField carries the granularity-specific column name used in reports
// and chart labels.
type TrafficSeries struct {
	Granularity Granularity
	CountField  string
	Points      []BucketPoint
}

// TotalCount returns the sum of all bucket counts in the series.
func (s TrafficSeries) TotalCount() int {
	total := 0
	for _, p := range s.Points {
		total += p.Count
	}
	return total
}

// AnomalySummary holds the aggregate counts derived from a fully annotated
// record set. Recomputed each run, never persisted across runs.
type AnomalySummary struct {
	TotalRecords       int            `json:"total_records"`
	AnomaliesDetected  int            `json:"anomalies_detected"`
	AnomalyPercentage  float64        `json:"anomaly_percentage"`
	AnomalyCategories  map[string]int `json:"anomaly_categories"`
	ProtocolCategories map[string]int `json:"protocol_categories"`
	SourceCategories   map[string]int `json:"source_categories"`
}
