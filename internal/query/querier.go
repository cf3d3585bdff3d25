package query

import (
	"FlowSentry/internal/config"
	"FlowSentry/internal/writer"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const defaultLimit = 20

// ScanFilter narrows a history query. Zero values are ignored.
type ScanFilter struct {
	InputPath string
	Since     time.Time
	Until     time.Time
	Limit     int
}

// ScanRow is one stored row of the scan_reports table.
type ScanRow struct {
	Timestamp  time.Time `json:"timestamp"`
	InputPath  string    `json:"input_path"`
	Worker     int32     `json:"worker"`
	StartLine  uint64    `json:"start_line"`
	LineCount  uint64    `json:"line_count"`
	Backdoor   uint64    `json:"backdoor"`
	DoS        uint64    `json:"dos"`
	Recon      uint64    `json:"recon"`
	LinesRead  uint64    `json:"lines_read"`
	Malformed  uint64    `json:"malformed"`
	Dropped    uint64    `json:"dropped"`
	TrackedIPs uint64    `json:"tracked_ips"`
	ElapsedMs  float64   `json:"elapsed_ms"`
}

// Querier defines the interface for querying stored scan history.
type Querier interface {
	ListScans(ctx context.Context, f ScanFilter) ([]ScanRow, error)
	WorkerBreakdown(ctx context.Context, inputPath string, at time.Time) ([]ScanRow, error)
}

// clickhouseQuerier implements the Querier interface for ClickHouse.
type clickhouseQuerier struct {
	conn driver.Conn
}

// NewClickHouseQuerier creates a new querier for ClickHouse.
func NewClickHouseQuerier(cfg config.ClickHouseConfig) (Querier, error) {
	conn, err := writer.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	return &clickhouseQuerier{conn: conn}, nil
}

const selectColumns = `SELECT Timestamp, InputPath, Worker, StartLine, LineCount, Backdoor, DoS, Recon,
	LinesRead, Malformed, Dropped, TrackedIPs, ElapsedMs FROM scan_reports`

// buildListQuery returns the statement and arguments for the totals rows matching f, newest first.
func buildListQuery(f ScanFilter) (string, []interface{}) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(selectColumns)

	whereClauses := []string{"Worker = ?"}
	args := []interface{}{int32(writer.TotalsWorker)}

	if f.InputPath != "" {
		whereClauses = append(whereClauses, "InputPath = ?")
		args = append(args, f.InputPath)
	}
	if !f.Since.IsZero() {
		whereClauses = append(whereClauses, "Timestamp >= ?")
		args = append(args, f.Since)
	}
	if !f.Until.IsZero() {
		whereClauses = append(whereClauses, "Timestamp <= ?")
		args = append(args, f.Until)
	}

	queryBuilder.WriteString(" WHERE " + strings.Join(whereClauses, " AND "))

	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY Timestamp DESC LIMIT %d", limit))

	return queryBuilder.String(), args
}

// ListScans returns the totals rows of past scans, newest first.
func (q *clickhouseQuerier) ListScans(ctx context.Context, f ScanFilter) ([]ScanRow, error) {
	stmt, args := buildListQuery(f)
	return q.selectRows(ctx, stmt, args...)
}

// WorkerBreakdown returns the per-worker rows of one stored scan.
func (q *clickhouseQuerier) WorkerBreakdown(ctx context.Context, inputPath string, at time.Time) ([]ScanRow, error) {
	stmt := selectColumns + " WHERE InputPath = ? AND Timestamp = ? AND Worker >= 0 ORDER BY Worker"
	return q.selectRows(ctx, stmt, inputPath, at)
}

func (q *clickhouseQuerier) selectRows(ctx context.Context, stmt string, args ...interface{}) ([]ScanRow, error) {
	rows, err := q.conn.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var result []ScanRow
	for rows.Next() {
		var r ScanRow
		if err := rows.Scan(&r.Timestamp, &r.InputPath, &r.Worker, &r.StartLine, &r.LineCount,
			&r.Backdoor, &r.DoS, &r.Recon, &r.LinesRead, &r.Malformed, &r.Dropped, &r.TrackedIPs, &r.ElapsedMs); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return result, nil
}
