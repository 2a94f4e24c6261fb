package detect

import (
	"fmt"
	"testing"
	"time"

	"TrafficScope/internal/model"
)

func makeRecords(n int, length int) []model.TrafficRecord {
	base := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	records := make([]model.TrafficRecord, n)
	for i := range records {
		records[i] = model.TrafficRecord{
			Timestamp:   base.Add(time.Duration(i) * time.Second),
			Length:      length,
			Source:      fmt.Sprintf("192.168.1.%d", i%50+1),
			Destination: "10.0.0.1",
			Protocol:    6,
		}
	}
	return records
}

func flaggedCount(records []model.TrafficRecord) int {
	n := 0
	for _, r := range records {
		if r.Flagged {
			n++
		}
	}
	return n
}

func TestFlagPacketsOversizedOutliers(t *testing.T) {
	// 95 records near 100 bytes, 5 near 50000 bytes: at the default 5%
	// contamination exactly the 5 oversized records are flagged.
	records := makeRecords(95, 100)
	big := makeRecords(5, 50000)
	for i := range big {
		big[i].Timestamp = big[i].Timestamp.Add(30 * time.Second)
	}
	records = append(records, big...)

	records, features := FlagPackets(records, DefaultContamination, MinRecords)

	if len(features) != 3 {
		t.Fatalf("Expected 3 feature names, got %v", features)
	}
	if got := flaggedCount(records); got != 5 {
		t.Fatalf("Expected 5 flagged records, got %d", got)
	}
	for i := 95; i < 100; i++ {
		if !records[i].Flagged {
			t.Errorf("Oversized record %d not flagged", i)
		}
	}
}

func TestFlagPacketsTooFewRecords(t *testing.T) {
	records := makeRecords(9, 100)
	records[0].Length = 90000

	records, _ = FlagPackets(records, DefaultContamination, MinRecords)
	if got := flaggedCount(records); got != 0 {
		t.Errorf("Expected no flags below the minimum record count, got %d", got)
	}
}

func TestFlagPacketsDeterministic(t *testing.T) {
	build := func() []model.TrafficRecord {
		records := makeRecords(60, 200)
		for i := 0; i < 60; i += 7 {
			records[i].Length = 5000 + i*13
		}
		return records
	}

	a, _ := FlagPackets(build(), 0.1, MinRecords)
	b, _ := FlagPackets(build(), 0.1, MinRecords)

	for i := range a {
		if a[i].Flagged != b[i].Flagged {
			t.Fatalf("Non-deterministic flag at index %d", i)
		}
		if a[i].Score != b[i].Score {
			t.Fatalf("Non-deterministic score at index %d: %v vs %v", i, a[i].Score, b[i].Score)
		}
	}
}

func TestAttachSourceRates(t *testing.T) {
	base := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	records := []model.TrafficRecord{
		{Timestamp: base, Source: "a"},
		{Timestamp: base.Add(10 * time.Second), Source: "a"},
		{Timestamp: base.Add(20 * time.Second), Source: "b"},
		// Same source, next minute window: counted separately.
		{Timestamp: base.Add(70 * time.Second), Source: "a"},
	}

	attachSourceRates(records)

	want := []int{2, 2, 1, 1}
	for i, w := range want {
		if records[i].SourceRate != w {
			t.Errorf("Record %d: SourceRate=%d, want %d", i, records[i].SourceRate, w)
		}
	}
}

func TestFlagPacketsContaminationCount(t *testing.T) {
	// floor(contamination * n) records are flagged: 0.1 * 50 = 5.
	records := makeRecords(50, 100)
	for i := 0; i < 50; i += 3 {
		records[i].Length = 1000 + i
	}

	records, _ = FlagPackets(records, 0.1, MinRecords)
	if got := flaggedCount(records); got != 5 {
		t.Errorf("Expected 5 flagged records at 10%% contamination of 50, got %d", got)
	}
}
