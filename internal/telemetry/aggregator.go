// Package telemetry owns the in-memory traffic aggregate: totals, ring
// histories, and the connection flow table. One Aggregator instance is
// shared by the ingestion loop and every snapshot consumer.
package telemetry

import (
	"fmt"
	"sync"
	"time"

	"gosniff/internal/model"
)

// History capacities. Eviction is oldest-first so each slice always holds
// the newest entries in arrival order.
const (
	packetSizeHistory    = 1000
	bandwidthHistorySize = 100
	threatAlertHistory   = 100

	// A bandwidth point is sampled every this many packets.
	bandwidthSampleEvery = 100
)

// Aggregator folds decoded packets into telemetry counters. All state is
// guarded by a single RWMutex; Ingest takes the write lock once per packet
// and Snapshot takes the read lock. The counter maps and the connection
// table have no eviction: they grow with the diversity of the traffic for
// the lifetime of the capture.
type Aggregator struct {
	mu sync.RWMutex

	totalPackets      uint64
	totalBytes        uint64
	protocolCounts    map[string]uint64
	appProtocolCounts map[string]uint64
	topTalkers        map[string]uint64
	portActivity      map[uint16]uint64

	packetSizes      []int
	bandwidthHistory []model.BandwidthPoint
	threatAlerts     []model.ThreatAlert

	connections        map[string]*model.ConnectionFlow
	currentConnections int

	peakBandwidth     float64
	peakPacketsPerSec float64
	startTime         time.Time
}

// NewAggregator creates an empty aggregate. start anchors the elapsed-time
// and bandwidth calculations and is normally the capture start.
func NewAggregator(start time.Time) *Aggregator {
	return &Aggregator{
		protocolCounts:    make(map[string]uint64),
		appProtocolCounts: make(map[string]uint64),
		topTalkers:        make(map[string]uint64),
		portActivity:      make(map[uint16]uint64),
		connections:       make(map[string]*model.ConnectionFlow),
		startTime:         start,
	}
}

// Ingest folds one record into the aggregate.
func (a *Aggregator) Ingest(rec *model.PacketRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalPackets++
	a.totalBytes += uint64(rec.Size)
	a.protocolCounts[rec.Protocol]++
	if rec.AppProtocol != "" {
		a.appProtocolCounts[rec.AppProtocol]++
	}

	if rec.SrcIP != "" {
		a.topTalkers[rec.SrcIP]++
	}
	if port := rec.DstPort; port != 0 {
		a.portActivity[port]++
	} else if rec.SrcPort != 0 {
		a.portActivity[rec.SrcPort]++
	}

	a.packetSizes = append(a.packetSizes, rec.Size)
	if len(a.packetSizes) > packetSizeHistory {
		a.packetSizes = a.packetSizes[1:]
	}

	if rec.ThreatLevel > model.ThreatSafe {
		a.threatAlerts = append(a.threatAlerts, model.ThreatAlert{
			Timestamp: rec.Timestamp,
			Message:   alertMessage(rec),
			Level:     rec.ThreatLevel,
		})
		if len(a.threatAlerts) > threatAlertHistory {
			a.threatAlerts = a.threatAlerts[1:]
		}
	}

	if rec.SrcIP != "" && rec.DstIP != "" {
		key := model.FlowKey(rec)
		if flow, ok := a.connections[key]; ok {
			flow.PacketCount++
			flow.TotalBytes += uint64(rec.Size)
			flow.LastSeen = rec.Timestamp
			// A flow only ever escalates; one bad packet marks the whole flow.
			if rec.ThreatLevel > flow.ThreatLevel {
				flow.ThreatLevel = rec.ThreatLevel
			}
		} else {
			a.connections[key] = &model.ConnectionFlow{
				SrcIP:       rec.SrcIP,
				DstIP:       rec.DstIP,
				SrcPort:     rec.SrcPort,
				DstPort:     rec.DstPort,
				Protocol:    rec.Protocol,
				PacketCount: 1,
				TotalBytes:  uint64(rec.Size),
				FirstSeen:   rec.Timestamp,
				LastSeen:    rec.Timestamp,
				ThreatLevel: rec.ThreatLevel,
			}
		}
	}

	if elapsed := int64(time.Since(a.startTime).Seconds()); elapsed > 0 && a.totalPackets%bandwidthSampleEvery == 0 {
		bps := float64(a.totalBytes) / float64(elapsed)
		pps := float64(a.totalPackets) / float64(elapsed)
		a.bandwidthHistory = append(a.bandwidthHistory, model.BandwidthPoint{
			Timestamp:     rec.Timestamp,
			BytesPerSec:   bps,
			PacketsPerSec: pps,
		})
		if len(a.bandwidthHistory) > bandwidthHistorySize {
			a.bandwidthHistory = a.bandwidthHistory[1:]
		}
		if bps > a.peakBandwidth {
			a.peakBandwidth = bps
		}
		if pps > a.peakPacketsPerSec {
			a.peakPacketsPerSec = pps
		}
	}

	a.currentConnections = len(a.connections)
}

// alertMessage renders the history line for a suspicious packet.
func alertMessage(rec *model.PacketRecord) string {
	src, dst := rec.SrcIP, rec.DstIP
	if src == "" {
		src = "unknown"
	}
	if dst == "" {
		dst = "unknown"
	}
	return fmt.Sprintf("Suspicious %s traffic from %s to %s", rec.Protocol, src, dst)
}

// Snapshot is a point-in-time copy of the aggregate. It shares no memory
// with the live state, so consumers may read it without holding any lock.
type Snapshot struct {
	TotalPackets       uint64                          `json:"total_packets"`
	TotalBytes         uint64                          `json:"total_bytes"`
	StartTime          time.Time                       `json:"start_time"`
	ProtocolCounts     map[string]uint64               `json:"protocol_counts"`
	AppProtocolCounts  map[string]uint64               `json:"app_protocol_counts"`
	TopTalkers         map[string]uint64               `json:"top_talkers"`
	PortActivity       map[uint16]uint64               `json:"port_activity"`
	PacketSizes        []int                           `json:"packet_sizes"`
	BandwidthHistory   []model.BandwidthPoint          `json:"bandwidth_history"`
	ThreatAlerts       []model.ThreatAlert             `json:"threat_alerts"`
	Connections        map[string]model.ConnectionFlow `json:"connections"`
	CurrentConnections int                             `json:"current_connections"`
	PeakBandwidth      float64                         `json:"peak_bandwidth"`
	PeakPacketsPerSec  float64                         `json:"peak_packets_per_sec"`
}

// Elapsed returns the wall time covered by the snapshot.
func (s *Snapshot) Elapsed() time.Duration {
	return time.Since(s.StartTime)
}

// Snapshot returns a deep copy of the current state. Concurrent Ingest
// calls are safe; the copy reflects a consistent state at the moment of
// the call, never a half-applied packet.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	snap := Snapshot{
		TotalPackets:       a.totalPackets,
		TotalBytes:         a.totalBytes,
		StartTime:          a.startTime,
		ProtocolCounts:     make(map[string]uint64, len(a.protocolCounts)),
		AppProtocolCounts:  make(map[string]uint64, len(a.appProtocolCounts)),
		TopTalkers:         make(map[string]uint64, len(a.topTalkers)),
		PortActivity:       make(map[uint16]uint64, len(a.portActivity)),
		PacketSizes:        make([]int, len(a.packetSizes)),
		BandwidthHistory:   make([]model.BandwidthPoint, len(a.bandwidthHistory)),
		ThreatAlerts:       make([]model.ThreatAlert, len(a.threatAlerts)),
		Connections:        make(map[string]model.ConnectionFlow, len(a.connections)),
		CurrentConnections: a.currentConnections,
		PeakBandwidth:      a.peakBandwidth,
		PeakPacketsPerSec:  a.peakPacketsPerSec,
	}

	for k, v := range a.protocolCounts {
		snap.ProtocolCounts[k] = v
	}
	for k, v := range a.appProtocolCounts {
		snap.AppProtocolCounts[k] = v
	}
	for k, v := range a.topTalkers {
		snap.TopTalkers[k] = v
	}
	for k, v := range a.portActivity {
		snap.PortActivity[k] = v
	}
	copy(snap.PacketSizes, a.packetSizes)
	copy(snap.BandwidthHistory, a.bandwidthHistory)
	copy(snap.ThreatAlerts, a.threatAlerts)
	for k, v := range a.connections {
		snap.Connections[k] = *v
	}

	return snap
}
