package query

import (
	"FlowSentry/internal/writer"
	"strings"
	"testing"
	"time"
)

func TestBuildListQuery_Defaults(t *testing.T) {
	stmt, args := buildListQuery(ScanFilter{})
	if !strings.HasSuffix(stmt, "WHERE Worker = ? ORDER BY Timestamp DESC LIMIT 20") {
		t.Errorf("Unexpected statement: %s", stmt)
	}
	if len(args) != 1 || args[0] != int32(writer.TotalsWorker) {
		t.Errorf("Unexpected args: %v", args)
	}
}

func TestBuildListQuery_AllFilters(t *testing.T) {
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := since.Add(24 * time.Hour)
	stmt, args := buildListQuery(ScanFilter{InputPath: "flows.csv", Since: since, Until: until, Limit: 5})

	want := "WHERE Worker = ? AND InputPath = ? AND Timestamp >= ? AND Timestamp <= ? ORDER BY Timestamp DESC LIMIT 5"
	if !strings.HasSuffix(stmt, want) {
		t.Errorf("Expected statement to end with %q, got %s", want, stmt)
	}
	if len(args) != 4 || args[1] != "flows.csv" || args[2] != since || args[3] != until {
		t.Errorf("Unexpected args: %v", args)
	}
}
