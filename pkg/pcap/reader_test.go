package pcap

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// writeTestCapture creates a pcap file with one TCP packet and one ARP
// packet; only the TCP packet should survive parsing.
func writeTestCapture(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.pcap")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create capture file: %v", err)
	}
	defer file.Close()

	w := pcapgo.NewWriter(file)
	if err := w.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		t.Fatalf("Failed to write pcap header: %v", err)
	}

	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}

	// TCP packet.
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		DstMAC:       net.HardwareAddr{0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		SrcIP:    net.IPv4(172, 16, 0, 2),
		DstIP:    net.IPv4(10, 0, 0, 1),
		Protocol: layers.IPProtocolTCP,
	}
	tcp := &layers.TCP{SrcPort: 443, DstPort: 55000}
	if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
		t.Fatalf("Failed to set network layer: %v", err)
	}
	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, tcp); err != nil {
		t.Fatalf("Failed to serialize TCP frame: %v", err)
	}
	ci := gopacket.CaptureInfo{
		Timestamp:     time.Unix(1700000000, 0),
		CaptureLength: len(buf.Bytes()),
		Length:        len(buf.Bytes()),
	}
	if err := w.WritePacket(ci, buf.Bytes()); err != nil {
		t.Fatalf("Failed to write TCP packet: %v", err)
	}

	// ARP packet, expected to be skipped by the parser.
	arpEth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		DstMAC:       net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		EthernetType: layers.EthernetTypeARP,
	}
	arp := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		SourceProtAddress: []byte{172, 16, 0, 2},
		DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
		DstProtAddress:    []byte{172, 16, 0, 1},
	}
	arpBuf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(arpBuf, gopacket.SerializeOptions{FixLengths: true}, arpEth, arp); err != nil {
		t.Fatalf("Failed to serialize ARP frame: %v", err)
	}
	ci = gopacket.CaptureInfo{
		Timestamp:     time.Unix(1700000001, 0),
		CaptureLength: len(arpBuf.Bytes()),
		Length:        len(arpBuf.Bytes()),
	}
	if err := w.WritePacket(ci, arpBuf.Bytes()); err != nil {
		t.Fatalf("Failed to write ARP packet: %v", err)
	}

	return path
}

func TestReaderReadAll(t *testing.T) {
	path := writeTestCapture(t)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("Failed to create reader: %v", err)
	}
	defer reader.Close()

	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read capture: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("Expected 1 parsed record (ARP skipped), got %d", len(records))
	}
	r := records[0]
	if r.Source != "172.16.0.2" || r.Destination != "10.0.0.1" || r.Protocol != 6 {
		t.Errorf("Unexpected record: %+v", r)
	}
	if !r.Timestamp.Equal(time.Unix(1700000000, 0).UTC()) {
		t.Errorf("Expected capture timestamp, got %v", r.Timestamp)
	}
}
