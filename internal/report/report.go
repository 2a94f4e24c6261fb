package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"TrafficScope/internal/model"
)

// Stable report file names inside the run's reports directory.
const (
	FullReportFile = "final_anomalies_report.csv"
	OutliersFile   = "outliers_detected.csv"
	SummaryFile    = "anomaly_summary.json"
)

// csvHeader lists every original and derived column, in output order.
var csvHeader = []string{
	"Time", "Length", "Source", "Destination", "Protocol",
	"SourceRate", "Score", "Flagged", "Category", "ProtocolCategory", "SourceCategory",
}

// Summarize computes the aggregate view over a fully annotated record set.
// All three grouping tables cover flagged records only, so their counts each
// sum to AnomaliesDetected. An empty or outlier-free input yields empty maps
// and a zero percentage.
func Summarize(records []model.TrafficRecord) model.AnomalySummary {
	summary := model.AnomalySummary{
		TotalRecords:       len(records),
		AnomalyCategories:  make(map[string]int),
		ProtocolCategories: make(map[string]int),
		SourceCategories:   make(map[string]int),
	}

	for _, r := range records {
		if !r.Flagged {
			continue
		}
		summary.AnomaliesDetected++
		summary.AnomalyCategories[r.Category]++
		summary.ProtocolCategories[r.ProtocolCategory]++
		summary.SourceCategories[r.SourceCategory]++
	}

	if summary.TotalRecords > 0 {
		pct := 100 * float64(summary.AnomaliesDetected) / float64(summary.TotalRecords)
		// Two decimal places for display.
		summary.AnomalyPercentage = math.Round(pct*100) / 100
	}
	return summary
}

// Outliers returns the flagged subset, preserving input order and columns.
func Outliers(records []model.TrafficRecord) []model.TrafficRecord {
	var out []model.TrafficRecord
	for _, r := range records {
		if r.Flagged {
			out = append(out, r)
		}
	}
	return out
}

// Write produces the run's tabular and JSON artifacts in reportsDir: the
// full annotated dataset, the outliers-only subset, and the summary. It
// returns the computed summary and outlier subset.
func Write(records []model.TrafficRecord, reportsDir string) (model.AnomalySummary, []model.TrafficRecord, error) {
	summary := Summarize(records)
	outliers := Outliers(records)

	if err := writeCSV(filepath.Join(reportsDir, FullReportFile), records); err != nil {
		return summary, outliers, err
	}
	if err := writeCSV(filepath.Join(reportsDir, OutliersFile), outliers); err != nil {
		return summary, outliers, err
	}
	if err := writeSummary(filepath.Join(reportsDir, SummaryFile), summary); err != nil {
		return summary, outliers, err
	}
	return summary, outliers, nil
}

func writeCSV(path string, records []model.TrafficRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return &model.IOError{Op: "create report", Path: path, Err: err}
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		return &model.IOError{Op: "write report", Path: path, Err: err}
	}
	for _, r := range records {
		row := []string{
			strconv.FormatFloat(r.TimeSeconds, 'f', -1, 64),
			strconv.Itoa(r.Length),
			r.Source,
			r.Destination,
			strconv.Itoa(r.Protocol),
			strconv.Itoa(r.SourceRate),
			strconv.FormatFloat(r.Score, 'f', 6, 64),
			strconv.FormatBool(r.Flagged),
			r.Category,
			r.ProtocolCategory,
			r.SourceCategory,
		}
		if err := w.Write(row); err != nil {
			return &model.IOError{Op: "write report", Path: path, Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return &model.IOError{Op: "flush report", Path: path, Err: err}
	}
	return nil
}

func writeSummary(path string, summary model.AnomalySummary) error {
	file, err := os.Create(path)
	if err != nil {
		return &model.IOError{Op: "create summary", Path: path, Err: err}
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summary); err != nil {
		return &model.IOError{Op: "encode summary", Path: path, Err: fmt.Errorf("json: %w", err)}
	}
	return nil
}
