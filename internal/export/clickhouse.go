package export

import (
	"context"
	"fmt"
	"log"
	"time"

	"gosniff/internal/config"
	"gosniff/internal/telemetry"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const createFlowTableStatement = `
CREATE TABLE IF NOT EXISTS connection_flows (
    SnapshotTime DateTime,
    SrcIP        String,
    DstIP        String,
    SrcPort      UInt16,
    DstPort      UInt16,
    Protocol     String,
    PacketCount  UInt64,
    TotalBytes   UInt64,
    FirstSeen    DateTime,
    LastSeen     DateTime,
    ThreatLevel  String
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(SnapshotTime)
ORDER BY (SnapshotTime, SrcIP);
`

// FlowWriter periodically inserts the connection flow table into
// ClickHouse.
type FlowWriter struct {
	conn     driver.Conn
	interval time.Duration
}

// NewFlowWriter connects to ClickHouse and ensures the flow table exists.
func NewFlowWriter(cfg config.ClickHouseConfig, interval time.Duration) (*FlowWriter, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}
	if err := conn.Exec(context.Background(), createFlowTableStatement); err != nil {
		return nil, fmt.Errorf("failed to create connection_flows table: %w", err)
	}
	log.Println("Connected to ClickHouse, connection_flows table ready.")

	return &FlowWriter{conn: conn, interval: interval}, nil
}

// Write inserts every flow of the snapshot, tagged with the snapshot time.
func (w *FlowWriter) Write(snap telemetry.Snapshot, ts time.Time) error {
	if len(snap.Connections) == 0 {
		return nil
	}

	batch, err := w.conn.PrepareBatch(context.Background(), "INSERT INTO connection_flows")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}
	for _, flow := range snap.Connections {
		err = batch.Append(
			ts,
			flow.SrcIP,
			flow.DstIP,
			flow.SrcPort,
			flow.DstPort,
			flow.Protocol,
			flow.PacketCount,
			flow.TotalBytes,
			flow.FirstSeen,
			flow.LastSeen,
			flow.ThreatLevel.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to append flow to batch: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Printf("Wrote %d flows to ClickHouse.", len(snap.Connections))
	return nil
}

// Run flushes snapshots on a ticker until the context ends, then performs
// one final flush. Failed batches are logged and skipped; telemetry state
// is never affected.
func (w *FlowWriter) Run(ctx context.Context, agg *telemetry.Aggregator) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := w.Write(agg.Snapshot(), time.Now()); err != nil {
				log.Printf("Final ClickHouse flush failed: %v", err)
			}
			return
		case <-ticker.C:
			if err := w.Write(agg.Snapshot(), time.Now()); err != nil {
				log.Printf("ClickHouse write failed: %v", err)
			}
		}
	}
}

// Close shuts the connection down.
func (w *FlowWriter) Close() error {
	return w.conn.Close()
}
