package protocol

import (
	"fmt"
	"time"

	"TrafficScope/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// ParsePacket decodes a raw Ethernet frame and extracts the fields the
// pipeline operates on: addresses, protocol code, and length. The capture
// timestamp is supplied by the reader since it lives in the pcap metadata,
// not in the frame itself.
func ParsePacket(data []byte, ts time.Time) (model.TrafficRecord, error) {
	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)

	record := model.TrafficRecord{
		Timestamp:   ts.UTC(),
		TimeSeconds: float64(ts.UnixNano()) / float64(time.Second),
		Length:      len(data),
	}

	l := packet.Layer(layers.LayerTypeIPv4)
	if l == nil {
		// IPv6 captures are rare in the datasets this tool targets; skip them.
		return model.TrafficRecord{}, fmt.Errorf("not an IPv4 packet")
	}
	ipLayer := l.(*layers.IPv4)
	record.Source = ipLayer.SrcIP.String()
	record.Destination = ipLayer.DstIP.String()
	record.Protocol = int(ipLayer.Protocol)

	return record, nil
}
