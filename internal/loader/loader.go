package loader

import (
	"path/filepath"
	"strings"

	"TrafficScope/internal/model"
	"TrafficScope/pkg/pcap"
)

// Load parses a traffic input file into records. The file extension selects
// the parser: .pcap/.pcapng captures go through the gopacket reader, anything
// else is treated as delimited text with the required header columns.
func Load(path string) ([]model.TrafficRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pcap", ".pcapng", ".cap":
		reader, err := pcap.NewReader(path)
		if err != nil {
			return nil, &model.IOError{Op: "open capture", Path: path, Err: err}
		}
		defer reader.Close()
		return reader.ReadAll()
	default:
		return LoadCSV(path)
	}
}
