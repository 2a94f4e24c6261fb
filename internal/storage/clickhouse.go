package storage

import (
	"context"
	"fmt"
	"log"

	"TrafficScope/internal/config"
	"TrafficScope/internal/model"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const createTableStatement = `
CREATE TABLE IF NOT EXISTS anomaly_records (
    RunID            String,
    Timestamp        DateTime64(3),
    Length           UInt32,
    Source           String,
    Destination      String,
    Protocol         UInt16,
    SourceRate       UInt32,
    Score            Float64,
    Flagged          UInt8,
    Category         String,
    ProtocolCategory String,
    SourceCategory   String
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (RunID, Timestamp);
`

// ClickHouseWriter persists annotated records into the anomaly_records
// table. It implements the model.RecordWriter interface.
type ClickHouseWriter struct {
	conn driver.Conn
}

// NewClickHouseWriter connects to ClickHouse and ensures the table exists.
func NewClickHouseWriter(cfg config.ClickHouseConfig) (*ClickHouseWriter, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Exec(context.Background(), createTableStatement); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	log.Println("Successfully connected to ClickHouse and ensured table exists.")

	return &ClickHouseWriter{conn: conn}, nil
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: false,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})

	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// Write batch-inserts the run's annotated records.
func (w *ClickHouseWriter) Write(ctx context.Context, runID string, records []model.TrafficRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO anomaly_records")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, r := range records {
		flagged := uint8(0)
		if r.Flagged {
			flagged = 1
		}
		err = batch.Append(
			runID,
			r.Timestamp,
			uint32(r.Length),
			r.Source,
			r.Destination,
			uint16(r.Protocol),
			uint32(r.SourceRate),
			r.Score,
			flagged,
			r.Category,
			r.ProtocolCategory,
			r.SourceCategory,
		)
		if err != nil {
			return fmt.Errorf("failed to append record to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Printf("Wrote %d records to ClickHouse for run '%s'", len(records), runID)
	return nil
}

// Close closes the ClickHouse connection.
func (w *ClickHouseWriter) Close() error {
	return w.conn.Close()
}
