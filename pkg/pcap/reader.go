package pcap

import (
	"io"
	"log"
	"os"

	"TrafficScope/internal/engine/protocol"
	"TrafficScope/internal/model"

	"github.com/google/gopacket/pcapgo"
)

// Reader reads packets from an offline pcap capture. It uses the pure Go
// pcap decoder since this tool only ever analyzes already-captured files,
// never live interfaces.
type Reader struct {
	file *os.File
	r    *pcapgo.Reader
}

// NewReader creates a new pcap reader for the given file path.
func NewReader(filePath string) (*Reader, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	r, err := pcapgo.NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &Reader{file: file, r: r}, nil
}

// Close closes the underlying capture file.
func (r *Reader) Close() {
	r.file.Close()
}

// ReadAll reads every packet in the capture and returns the parsed records.
// Packets the parser cannot decode are logged and skipped; this is expected
// for non-IPv4 traffic and corrupt frames.
func (r *Reader) ReadAll() ([]model.TrafficRecord, error) {
	var records []model.TrafficRecord
	for {
		data, ci, err := r.r.ReadPacketData()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &model.IOError{Op: "read capture", Path: r.file.Name(), Err: err}
		}

		record, err := protocol.ParsePacket(data, ci.Timestamp)
		if err != nil {
			log.Printf("Skipping packet: %v", err)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
