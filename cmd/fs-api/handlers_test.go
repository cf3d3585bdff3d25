package main

import (
	"FlowSentry/internal/metrics"
	"FlowSentry/internal/model"
	"FlowSentry/internal/query"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type fakeQuerier struct {
	filter query.ScanFilter
	input  string
	at     time.Time
}

func (q *fakeQuerier) ListScans(_ context.Context, f query.ScanFilter) ([]query.ScanRow, error) {
	q.filter = f
	return []query.ScanRow{{InputPath: "flows.csv", Worker: -1, Recon: 4}}, nil
}

func (q *fakeQuerier) WorkerBreakdown(_ context.Context, input string, at time.Time) ([]query.ScanRow, error) {
	q.input, q.at = input, at
	return []query.ScanRow{{InputPath: input, Worker: 0}, {InputPath: input, Worker: 1}}, nil
}

func newTestServer(t *testing.T, q query.Querier) (*APIHandler, *httptest.Server) {
	t.Helper()
	collector := metrics.NewReportCollector()
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	h := &APIHandler{querier: q, collector: collector}
	srv := httptest.NewServer(newRouter(h, registry))
	t.Cleanup(srv.Close)
	return h, srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestLatestReport(t *testing.T) {
	h, srv := newTestServer(t, nil)

	if code, _ := get(t, srv.URL+"/api/v1/reports/latest"); code != http.StatusNotFound {
		t.Errorf("Expected 404 before the first report, got %d", code)
	}

	h.updateReport(&model.Report{
		InputPath: "flows.csv",
		Totals:    model.Counters{Backdoor: 2, DoS: 1},
		Workers:   []model.WorkerResult{{Worker: 0, Counters: model.Counters{Backdoor: 2, DoS: 1}}},
	})

	code, body := get(t, srv.URL+"/api/v1/reports/latest")
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", code, body)
	}
	var decoded model.Report
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		t.Fatalf("Response is not a report: %v", err)
	}
	if decoded.InputPath != "flows.csv" || decoded.Totals.Backdoor != 2 {
		t.Errorf("Unexpected report: %+v", decoded)
	}

	code, body = get(t, srv.URL+"/api/v1/reports/latest/summary")
	if code != http.StatusOK || !strings.Contains(body, "| Backdoor | 2 |") {
		t.Errorf("Unexpected summary (%d):\n%s", code, body)
	}

	code, body = get(t, srv.URL+"/metrics")
	if code != http.StatusOK || !strings.Contains(body, `flowsentry_triggers{category="backdoor"} 2`) {
		t.Errorf("Unexpected metrics (%d):\n%s", code, body)
	}
}

func TestListReports(t *testing.T) {
	q := &fakeQuerier{}
	_, srv := newTestServer(t, q)

	code, body := get(t, srv.URL+"/api/v1/reports?input=flows.csv&since=2026-01-01T00:00:00Z&limit=3")
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", code, body)
	}
	var rows []query.ScanRow
	if err := json.Unmarshal([]byte(body), &rows); err != nil || len(rows) != 1 || rows[0].Recon != 4 {
		t.Errorf("Unexpected rows %v (err %v)", rows, err)
	}
	if q.filter.InputPath != "flows.csv" || q.filter.Limit != 3 || q.filter.Since.Year() != 2026 || !q.filter.Until.IsZero() {
		t.Errorf("Unexpected filter: %+v", q.filter)
	}

	if code, _ := get(t, srv.URL+"/api/v1/reports?since=yesterday"); code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a bad time, got %d", code)
	}
	if code, _ := get(t, srv.URL+"/api/v1/reports?limit=-1"); code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a negative limit, got %d", code)
	}
}

func TestWorkerBreakdown(t *testing.T) {
	q := &fakeQuerier{}
	_, srv := newTestServer(t, q)

	code, body := get(t, srv.URL+"/api/v1/reports/2026-01-02T03:04:05Z/workers?input=flows.csv")
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", code, body)
	}
	if q.input != "flows.csv" || q.at.Hour() != 3 {
		t.Errorf("Unexpected query arguments: input=%s at=%s", q.input, q.at)
	}

	if code, _ := get(t, srv.URL+"/api/v1/reports/2026-01-02T03:04:05Z/workers"); code != http.StatusBadRequest {
		t.Errorf("Expected 400 without input, got %d", code)
	}
}

func TestHistoryUnavailableWithoutQuerier(t *testing.T) {
	_, srv := newTestServer(t, nil)
	if code, _ := get(t, srv.URL+"/api/v1/reports"); code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", code)
	}
}
