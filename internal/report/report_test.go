package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"TrafficScope/internal/model"
)

func annotated(flagged bool, category, protoCat, srcCat string) model.TrafficRecord {
	return model.TrafficRecord{
		Length:           100,
		Source:           "192.168.1.1",
		Destination:      "10.0.0.1",
		Protocol:         6,
		Flagged:          flagged,
		Category:         category,
		ProtocolCategory: protoCat,
		SourceCategory:   srcCat,
	}
}

func TestSummarize(t *testing.T) {
	records := []model.TrafficRecord{
		annotated(true, "Oversized Packet", "TCP", "Internal"),
		annotated(true, "Oversized Packet", "UDP", "Internal"),
		annotated(true, "Unusual Protocol", "Other", "External"),
		annotated(false, "Normal", "TCP", "Internal"),
		annotated(false, "Normal", "TCP", "Internal"),
		annotated(false, "Normal", "TCP", "Internal"),
		annotated(false, "Normal", "TCP", "Internal"),
		annotated(false, "Normal", "TCP", "Internal"),
	}

	s := Summarize(records)

	if s.TotalRecords != 8 || s.AnomaliesDetected != 3 {
		t.Fatalf("Unexpected totals: %+v", s)
	}
	// 3/8 = 37.5%, already two decimals.
	if s.AnomalyPercentage != 37.5 {
		t.Errorf("Expected percentage 37.5, got %v", s.AnomalyPercentage)
	}
	if s.AnomalyCategories["Oversized Packet"] != 2 || s.AnomalyCategories["Unusual Protocol"] != 1 {
		t.Errorf("Unexpected category groupings: %v", s.AnomalyCategories)
	}

	// Each grouping table sums to the flagged count.
	for name, grouping := range map[string]map[string]int{
		"categories": s.AnomalyCategories,
		"protocols":  s.ProtocolCategories,
		"sources":    s.SourceCategories,
	} {
		total := 0
		for _, c := range grouping {
			total += c
		}
		if total != s.AnomaliesDetected {
			t.Errorf("Grouping %s sums to %d, want %d", name, total, s.AnomaliesDetected)
		}
	}
}

func TestSummarizeRounding(t *testing.T) {
	// 1/3 flagged = 33.333...% -> 33.33 at two decimals.
	records := []model.TrafficRecord{
		annotated(true, "Oversized Packet", "TCP", "Internal"),
		annotated(false, "Normal", "TCP", "Internal"),
		annotated(false, "Normal", "TCP", "Internal"),
	}
	if s := Summarize(records); s.AnomalyPercentage != 33.33 {
		t.Errorf("Expected 33.33, got %v", s.AnomalyPercentage)
	}
}

func TestSummarizeNoOutliers(t *testing.T) {
	records := []model.TrafficRecord{
		annotated(false, "Normal", "TCP", "Internal"),
	}
	s := Summarize(records)
	if s.AnomaliesDetected != 0 || s.AnomalyPercentage != 0 {
		t.Errorf("Expected empty summary, got %+v", s)
	}
	if len(s.AnomalyCategories) != 0 {
		t.Errorf("Expected empty groupings, got %v", s.AnomalyCategories)
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	records := []model.TrafficRecord{
		annotated(true, "Oversized Packet", "TCP", "Internal"),
		annotated(false, "Normal", "TCP", "Internal"),
	}

	summary, outliers, err := Write(records, dir)
	if err != nil {
		t.Fatalf("Failed to write reports: %v", err)
	}
	if len(outliers) != 1 {
		t.Fatalf("Expected 1 outlier, got %d", len(outliers))
	}

	full := readCSV(t, filepath.Join(dir, FullReportFile))
	if len(full) != 3 { // header + 2 rows
		t.Errorf("Expected 3 rows in full report, got %d", len(full))
	}
	if full[0][0] != "Time" || full[0][len(full[0])-1] != "SourceCategory" {
		t.Errorf("Unexpected header: %v", full[0])
	}

	outlierRows := readCSV(t, filepath.Join(dir, OutliersFile))
	if len(outlierRows) != 2 { // header + 1 row
		t.Errorf("Expected 2 rows in outliers report, got %d", len(outlierRows))
	}
	if len(outlierRows[1]) != len(full[1]) {
		t.Error("Outlier report must carry the same columns as the full report")
	}

	data, err := os.ReadFile(filepath.Join(dir, SummaryFile))
	if err != nil {
		t.Fatalf("Failed to read summary file: %v", err)
	}
	var decoded model.AnomalySummary
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Summary is not valid JSON: %v", err)
	}
	if decoded.AnomaliesDetected != summary.AnomaliesDetected {
		t.Errorf("Summary file disagrees with returned summary: %+v vs %+v", decoded, summary)
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse %s: %v", path, err)
	}
	return rows
}
