package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"TrafficScope/internal/model"
)

// RequiredColumns are the case-sensitive header names every CSV input must
// carry. Time is numeric seconds (epoch or relative offset), Length numeric
// bytes, Protocol a numeric protocol code.
var RequiredColumns = []string{"Time", "Length", "Source", "Destination", "Protocol"}

// LoadCSV parses a delimited traffic log into records. A missing required
// column or an unparsable numeric cell yields a *model.ValidationError.
func LoadCSV(path string) ([]model.TrafficRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &model.IOError{Op: "open", Path: path, Err: err}
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, &model.ValidationError{Msg: fmt.Sprintf("cannot read header row: %v", err)}
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &model.ValidationError{
			Msg:     fmt.Sprintf("header must contain columns %v", RequiredColumns),
			Missing: missing,
		}
	}

	var records []model.TrafficRecord
	row := 1
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &model.ValidationError{Msg: fmt.Sprintf("row %d: %v", row, err)}
		}
		row++

		seconds, err := strconv.ParseFloat(fields[index["Time"]], 64)
		if err != nil {
			return nil, &model.ValidationError{Msg: fmt.Sprintf("row %d: Time %q is not numeric", row, fields[index["Time"]])}
		}
		length, err := strconv.ParseFloat(fields[index["Length"]], 64)
		if err != nil {
			return nil, &model.ValidationError{Msg: fmt.Sprintf("row %d: Length %q is not numeric", row, fields[index["Length"]])}
		}
		proto, err := strconv.ParseFloat(fields[index["Protocol"]], 64)
		if err != nil {
			return nil, &model.ValidationError{Msg: fmt.Sprintf("row %d: Protocol %q is not numeric", row, fields[index["Protocol"]])}
		}

		records = append(records, model.TrafficRecord{
			// Relative offsets and absolute epochs are both anchored at the
			// Unix epoch so bucketing treats them uniformly.
			Timestamp:   time.Unix(0, int64(seconds*float64(time.Second))).UTC(),
			TimeSeconds: seconds,
			Length:      int(length),
			Source:      fields[index["Source"]],
			Destination: fields[index["Destination"]],
			Protocol:    int(proto),
		})
	}

	return records, nil
}
