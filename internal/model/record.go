// Package model defines the data types shared by the capture, telemetry,
// export, and probe layers.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// PacketRecord holds everything decoded from a single captured packet.
// Optional fields use their zero value when absent: empty strings for
// addresses and 0 for ports.
type PacketRecord struct {
	Timestamp   time.Time   `json:"timestamp"`
	Number      uint64      `json:"packet_number"`
	SrcMAC      string      `json:"src_mac"`
	DstMAC      string      `json:"dst_mac"`
	SrcIP       string      `json:"src_ip"`
	DstIP       string      `json:"dst_ip"`
	Protocol    string      `json:"protocol"`
	SrcPort     uint16      `json:"src_port"`
	DstPort     uint16      `json:"dst_port"`
	Size        int         `json:"packet_size"`
	Flags       string      `json:"flags"`
	PayloadSize int         `json:"payload_size"`
	AppProtocol string      `json:"application_protocol"`
	Description string      `json:"description"`
	ThreatLevel ThreatLevel `json:"threat_level"`
	Geo         *GeoHint    `json:"geo_info"`
}

// GeoHint is a coarse location attached to a record's destination address.
// Coordinates are nil when unknown.
type GeoHint struct {
	Country   string   `json:"country"`
	City      string   `json:"city"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// ThreatLevel ranks how suspicious a packet looks. Levels are ordered, so
// they compare directly with <, > and max is meaningful.
type ThreatLevel uint8

const (
	ThreatSafe ThreatLevel = iota
	ThreatLow
	ThreatMedium
	ThreatHigh
	ThreatCritical
)

// String returns the level name used in exports and log lines.
func (l ThreatLevel) String() string {
	switch l {
	case ThreatSafe:
		return "Safe"
	case ThreatLow:
		return "Low"
	case ThreatMedium:
		return "Medium"
	case ThreatHigh:
		return "High"
	case ThreatCritical:
		return "Critical"
	}
	return "Unknown"
}

// ParseThreatLevel is the inverse of String.
func ParseThreatLevel(s string) (ThreatLevel, error) {
	switch s {
	case "Safe":
		return ThreatSafe, nil
	case "Low":
		return ThreatLow, nil
	case "Medium":
		return ThreatMedium, nil
	case "High":
		return ThreatHigh, nil
	case "Critical":
		return ThreatCritical, nil
	}
	return ThreatSafe, fmt.Errorf("unknown threat level %q", s)
}

// MarshalJSON encodes the level as its name so exports stay readable.
func (l ThreatLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts the level name produced by MarshalJSON.
func (l *ThreatLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseThreatLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
