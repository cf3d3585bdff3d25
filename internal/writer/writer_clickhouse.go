package writer

import (
	"FlowSentry/internal/config"
	"FlowSentry/internal/factory"
	"FlowSentry/internal/model"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

func init() {
	factory.RegisterWriter("clickhouse", func(def config.WriterDef) (model.Writer, error) {
		return NewClickHouseWriter(def.ClickHouse)
	})
}

// TotalsWorker marks the row that carries the reduced totals of a scan.
const TotalsWorker = -1

const createTableStatement = `
CREATE TABLE IF NOT EXISTS scan_reports (
    Timestamp   DateTime,
    InputPath   String,
    Worker      Int32,
    StartLine   UInt64,
    LineCount   UInt64,
    Backdoor    UInt64,
    DoS         UInt64,
    Recon       UInt64,
    LinesRead   UInt64,
    Malformed   UInt64,
    Dropped     UInt64,
    TrackedIPs  UInt64,
    ElapsedMs   Float64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (InputPath, Timestamp, Worker);
`

// ClickHouseWriter stores one row per worker plus a totals row per scan.
type ClickHouseWriter struct {
	conn driver.Conn
}

// NewClickHouseWriter connects to ClickHouse and ensures the table exists.
func NewClickHouseWriter(cfg config.ClickHouseConfig) (model.Writer, error) {
	conn, err := Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Exec(context.Background(), createTableStatement); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	log.Println("Successfully connected to ClickHouse and ensured table exists.")

	return &ClickHouseWriter{conn: conn}, nil
}

// Connect opens and pings a ClickHouse connection.
func Connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
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
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}
	return conn, nil
}

func (w *ClickHouseWriter) Name() string {
	return "clickhouse"
}

// Write inserts the report rows into the scan_reports table.
func (w *ClickHouseWriter) Write(r *model.Report, timestamp string) error {
	batch, err := w.conn.PrepareBatch(context.Background(), "INSERT INTO scan_reports")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	runTime, err := time.ParseInLocation("2006-01-02_15-04-05", timestamp, time.Local)
	if err != nil {
		runTime = r.StartedAt
	}

	for _, row := range reportRows(r) {
		if err := batch.Append(
			runTime,
			r.InputPath,
			row.worker,
			row.startLine,
			row.lineCount,
			row.counters.Backdoor,
			row.counters.DoS,
			row.counters.Recon,
			row.linesRead,
			row.malformed,
			row.dropped,
			row.trackedIPs,
			row.elapsedMs,
		); err != nil {
			return fmt.Errorf("failed to append report row to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Printf("Wrote %d report rows to ClickHouse for '%s'", len(r.Workers)+1, r.InputPath)
	return nil
}

type reportRow struct {
	worker     int32
	startLine  uint64
	lineCount  uint64
	counters   model.Counters
	linesRead  uint64
	malformed  uint64
	dropped    uint64
	trackedIPs uint64
	elapsedMs  float64
}

// reportRows flattens a report into the totals row followed by one row per worker.
func reportRows(r *model.Report) []reportRow {
	rows := make([]reportRow, 0, len(r.Workers)+1)
	rows = append(rows, reportRow{
		worker:     TotalsWorker,
		lineCount:  uint64(r.LinesRead),
		counters:   r.Totals,
		linesRead:  uint64(r.LinesRead),
		malformed:  uint64(r.Malformed),
		dropped:    uint64(r.Dropped),
		trackedIPs: uint64(r.TrackedIPs),
		elapsedMs:  float64(r.Elapsed) / float64(time.Millisecond),
	})
	for _, w := range r.Workers {
		rows = append(rows, reportRow{
			worker:     int32(w.Worker),
			startLine:  uint64(w.Range.Start),
			lineCount:  uint64(w.Range.Count),
			counters:   w.Counters,
			linesRead:  uint64(w.LinesRead),
			malformed:  uint64(w.Malformed),
			dropped:    uint64(w.Dropped),
			trackedIPs: uint64(w.TrackedIPs),
			elapsedMs:  float64(w.Elapsed) / float64(time.Millisecond),
		})
	}
	return rows
}
