// Package export serializes captured records to JSON and CSV files and
// ships connection flows to ClickHouse.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gosniff/internal/model"
	"gosniff/internal/telemetry"
)

// csvHeader is the fixed CSV column set, in order. Consumers rely on this
// layout, so it never changes shape with the record contents.
var csvHeader = []string{
	"timestamp", "packet_number", "src_ip", "dst_ip", "protocol",
	"src_port", "dst_port", "packet_size", "flags",
	"application_protocol", "description",
}

// ToJSON renders records as a pretty-printed JSON array. A nil slice still
// produces a valid empty array.
func ToJSON(recs []*model.PacketRecord) ([]byte, error) {
	if recs == nil {
		recs = []*model.PacketRecord{}
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode records as JSON: %w", err)
	}
	return data, nil
}

// ToCSV renders records with the fixed 11-column header. Absent optional
// fields are written as empty strings.
func ToCSV(recs []*model.PacketRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, rec := range recs {
		row := []string{
			rec.Timestamp.Format(time.RFC3339),
			strconv.FormatUint(rec.Number, 10),
			rec.SrcIP,
			rec.DstIP,
			rec.Protocol,
			portField(rec.SrcPort),
			portField(rec.DstPort),
			strconv.Itoa(rec.Size),
			rec.Flags,
			rec.AppProtocol,
			rec.Description,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row for packet %d: %w", rec.Number, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func portField(p uint16) string {
	if p == 0 {
		return ""
	}
	return strconv.Itoa(int(p))
}

// WriteJSON serializes records to path.
func WriteJSON(path string, recs []*model.PacketRecord) error {
	data, err := ToJSON(recs)
	if err != nil {
		return fmt.Errorf("failed to export %d records to %s: %w", len(recs), path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to export %d records to %s: %w", len(recs), path, err)
	}
	return nil
}

// WriteCSV serializes records to path.
func WriteCSV(path string, recs []*model.PacketRecord) error {
	data, err := ToCSV(recs)
	if err != nil {
		return fmt.Errorf("failed to export %d records to %s: %w", len(recs), path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to export %d records to %s: %w", len(recs), path, err)
	}
	return nil
}

// SessionSummary is the overview written beside each session export.
type SessionSummary struct {
	GeneratedAt    time.Time         `json:"generated_at"`
	TotalPackets   uint64            `json:"total_packets"`
	TotalBytes     uint64            `json:"total_bytes"`
	Duration       string            `json:"duration"`
	ProtocolCounts map[string]uint64 `json:"protocol_counts"`
	ThreatAlerts   int               `json:"threat_alerts"`
	Connections    int               `json:"connections"`
	RecordsWritten int               `json:"records_written"`
}

// WriteSession writes records.json, records.csv, and summary.json into a
// timestamped directory under root and returns the directory path.
func WriteSession(root string, recs []*model.PacketRecord, snap telemetry.Snapshot) (string, error) {
	dir := filepath.Join(root, time.Now().Format("2006-01-02_15-04-05"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create session directory %s: %w", dir, err)
	}

	if err := WriteJSON(filepath.Join(dir, "records.json"), recs); err != nil {
		return "", err
	}
	if err := WriteCSV(filepath.Join(dir, "records.csv"), recs); err != nil {
		return "", err
	}

	summary := SessionSummary{
		GeneratedAt:    time.Now(),
		TotalPackets:   snap.TotalPackets,
		TotalBytes:     snap.TotalBytes,
		Duration:       snap.Elapsed().Round(time.Second).String(),
		ProtocolCounts: snap.ProtocolCounts,
		ThreatAlerts:   len(snap.ThreatAlerts),
		Connections:    len(snap.Connections),
		RecordsWritten: len(recs),
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode session summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "summary.json"), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write session summary: %w", err)
	}
	return dir, nil
}
