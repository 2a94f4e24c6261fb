package categorize

import (
	"net"

	"TrafficScope/internal/model"
)

// Category labels assigned to flagged records. Rules are evaluated in a
// fixed order; the first match wins.
const (
	CategoryOversized     = "Oversized Packet"
	CategoryUnusualProto  = "Unusual Protocol"
	CategoryHighFrequency = "High-Frequency Source"
	CategoryUncategorized = "Anomalous - Uncategorized"
	CategoryNormal        = "Normal"
)

// Default rule thresholds. The config may override both.
const (
	OversizeLengthBytes = 1500
	HighFrequencyRate   = 60
)

// commonProtocols are the IP protocol codes considered ordinary traffic:
// ICMP, TCP, UDP.
var commonProtocols = map[int]struct{}{
	1:  {},
	6:  {},
	17: {},
}

// Apply assigns a category to every record. Flagged records run through the
// ordered rule set; unflagged records get the explicit Normal label. It also
// attaches the protocol and source grouping tags used by the report, on
// flagged and unflagged records alike.
func Apply(records []model.TrafficRecord, oversizeBytes, highFrequencyRate int) []model.TrafficRecord {
	if oversizeBytes <= 0 {
		oversizeBytes = OversizeLengthBytes
	}
	if highFrequencyRate <= 0 {
		highFrequencyRate = HighFrequencyRate
	}

	for i := range records {
		r := &records[i]
		r.ProtocolCategory = protocolCategory(r.Protocol)
		r.SourceCategory = sourceCategory(r.Source)

		if !r.Flagged {
			r.Category = CategoryNormal
			continue
		}

		switch {
		case r.Length > oversizeBytes:
			r.Category = CategoryOversized
		case !isCommonProtocol(r.Protocol):
			r.Category = CategoryUnusualProto
		case r.SourceRate > highFrequencyRate:
			r.Category = CategoryHighFrequency
		default:
			r.Category = CategoryUncategorized
		}
	}
	return records
}

func isCommonProtocol(code int) bool {
	_, ok := commonProtocols[code]
	return ok
}

func protocolCategory(code int) string {
	switch code {
	case 1:
		return "ICMP"
	case 6:
		return "TCP"
	case 17:
		return "UDP"
	}
	return "Other"
}

// sourceCategory groups source addresses into Internal (private or loopback
// ranges) and External. Addresses that do not parse as IPs are External.
func sourceCategory(addr string) string {
	ip := net.ParseIP(addr)
	if ip == nil {
		return "External"
	}
	if ip.IsPrivate() || ip.IsLoopback() {
		return "Internal"
	}
	return "External"
}
