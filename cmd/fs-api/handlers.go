package main

import (
	"FlowSentry/internal/metrics"
	"FlowSentry/internal/model"
	"FlowSentry/internal/probe"
	"FlowSentry/internal/query"
	"FlowSentry/internal/report"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/protobuf/encoding/protojson"
)

// APIHandler holds the dependencies for API handlers.
type APIHandler struct {
	querier   query.Querier
	collector *metrics.ReportCollector

	mu     sync.RWMutex
	latest *model.Report
}

func newRouter(h *APIHandler, gatherer prometheus.Gatherer) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/reports/latest", h.latestReportHandler).Methods("GET")
	r.HandleFunc("/api/v1/reports/latest/summary", h.latestSummaryHandler).Methods("GET")
	r.HandleFunc("/api/v1/reports", h.listReportsHandler).Methods("GET")
	r.HandleFunc("/api/v1/reports/{timestamp}/workers", h.workerBreakdownHandler).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

// updateReport stores the most recent report received from the scanner.
func (h *APIHandler) updateReport(r *model.Report) {
	h.mu.Lock()
	h.latest = r
	h.mu.Unlock()
	if h.collector != nil {
		h.collector.Update(r)
	}
}

func (h *APIHandler) latestReport() *model.Report {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

// latestReportHandler returns the last published report as JSON.
func (h *APIHandler) latestReportHandler(w http.ResponseWriter, r *http.Request) {
	latest := h.latestReport()
	if latest == nil {
		http.Error(w, "no report received yet", http.StatusNotFound)
		return
	}

	s, err := probe.ReportStruct(latest)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to convert report: %v", err), http.StatusInternalServerError)
		return
	}
	jsonBytes, err := protojson.Marshal(s)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to marshal response: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(jsonBytes)
}

// latestSummaryHandler returns the last published report as markdown.
func (h *APIHandler) latestSummaryHandler(w http.ResponseWriter, r *http.Request) {
	latest := h.latestReport()
	if latest == nil {
		http.Error(w, "no report received yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(report.Markdown(latest)))
}

// listReportsHandler returns stored scan totals, newest first.
// Query parameters: input, since, until (RFC 3339) and limit.
func (h *APIHandler) listReportsHandler(w http.ResponseWriter, r *http.Request) {
	if h.querier == nil {
		http.Error(w, "report history is not configured", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	filter := query.ScanFilter{InputPath: q.Get("input")}
	var err error
	if filter.Since, err = parseTime(q.Get("since")); err != nil {
		http.Error(w, fmt.Sprintf("invalid since: %v", err), http.StatusBadRequest)
		return
	}
	if filter.Until, err = parseTime(q.Get("until")); err != nil {
		http.Error(w, fmt.Sprintf("invalid until: %v", err), http.StatusBadRequest)
		return
	}
	if v := q.Get("limit"); v != "" {
		if filter.Limit, err = strconv.Atoi(v); err != nil || filter.Limit < 0 {
			http.Error(w, fmt.Sprintf("invalid limit '%s'", v), http.StatusBadRequest)
			return
		}
	}

	rows, err := h.querier.ListScans(r.Context(), filter)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query reports: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

// workerBreakdownHandler returns the per-worker rows of one stored scan.
func (h *APIHandler) workerBreakdownHandler(w http.ResponseWriter, r *http.Request) {
	if h.querier == nil {
		http.Error(w, "report history is not configured", http.StatusServiceUnavailable)
		return
	}

	at, err := time.Parse(time.RFC3339, mux.Vars(r)["timestamp"])
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid timestamp: %v", err), http.StatusBadRequest)
		return
	}
	input := r.URL.Query().Get("input")
	if input == "" {
		http.Error(w, "missing input parameter", http.StatusBadRequest)
		return
	}

	rows, err := h.querier.WorkerBreakdown(r.Context(), input, at)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query workers: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func parseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, v)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to marshal response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(jsonBytes)
}
