package model

import (
	"fmt"
	"time"
)

// ConnectionFlow aggregates every packet seen between two endpoints. The
// endpoint fields keep the direction of the first packet observed; the flow
// itself is direction-agnostic (see FlowKey).
type ConnectionFlow struct {
	SrcIP       string      `json:"src_ip"`
	DstIP       string      `json:"dst_ip"`
	SrcPort     uint16      `json:"src_port"`
	DstPort     uint16      `json:"dst_port"`
	Protocol    string      `json:"protocol"`
	PacketCount uint64      `json:"packet_count"`
	TotalBytes  uint64      `json:"total_bytes"`
	FirstSeen   time.Time   `json:"first_seen"`
	LastSeen    time.Time   `json:"last_seen"`
	ThreatLevel ThreatLevel `json:"threat_level"`
}

// BandwidthPoint is one sample of the observed transfer rate.
type BandwidthPoint struct {
	Timestamp     time.Time `json:"timestamp"`
	BytesPerSec   float64   `json:"bytes_per_sec"`
	PacketsPerSec float64   `json:"packets_per_sec"`
}

// ThreatAlert records one packet that scored above Safe.
type ThreatAlert struct {
	Timestamp time.Time   `json:"timestamp"`
	Message   string      `json:"message"`
	Level     ThreatLevel `json:"level"`
}

// FlowKey builds the connection-table key for a record. The endpoint pair is
// unordered: packets in either direction between the same two endpoints map
// to the same key. Absent addresses and ports key as their zero values.
func FlowKey(r *PacketRecord) string {
	a := fmt.Sprintf("%s:%d", r.SrcIP, r.SrcPort)
	b := fmt.Sprintf("%s:%d", r.DstIP, r.DstPort)
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%s-%s/%s", a, b, r.Protocol)
}
