package capture

import (
	"strings"

	"gosniff/internal/model"
)

// Filter selects which decoded records enter the pipeline. The zero value
// accepts everything.
type Filter struct {
	// Protocol is matched case-insensitively: tcp, udp, icmp, plus the
	// conveniences http (TCP on 80/8080) and dns (UDP on 53).
	Protocol string
	// Port matches either endpoint; 0 disables the port check.
	Port uint16
}

// Match reports whether rec passes the filter. An unrecognized protocol
// name accepts every record rather than silently dropping traffic.
func (f *Filter) Match(rec *model.PacketRecord) bool {
	if f == nil {
		return true
	}
	if f.Port != 0 && rec.SrcPort != f.Port && rec.DstPort != f.Port {
		return false
	}

	switch strings.ToLower(f.Protocol) {
	case "":
		return true
	case "tcp":
		return rec.Protocol == "TCP"
	case "udp":
		return rec.Protocol == "UDP"
	case "icmp":
		return rec.Protocol == "ICMP"
	case "http":
		return rec.Protocol == "TCP" && (hasPort(rec, 80) || hasPort(rec, 8080))
	case "dns":
		return rec.Protocol == "UDP" && hasPort(rec, 53)
	}
	return true
}

func hasPort(rec *model.PacketRecord, port uint16) bool {
	return rec.SrcPort == port || rec.DstPort == port
}
