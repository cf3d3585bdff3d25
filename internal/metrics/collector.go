package metrics

import (
	"FlowSentry/internal/model"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flowsentry"

// ReportCollector exposes the most recent scan report as Prometheus metrics.
// It implements prometheus.Collector.
type ReportCollector struct {
	mu     sync.RWMutex
	report *model.Report

	triggersDesc         *prometheus.Desc
	workerTriggersDesc   *prometheus.Desc
	workerLinesDesc      *prometheus.Desc
	workerMalformedDesc  *prometheus.Desc
	workerDroppedDesc    *prometheus.Desc
	workerTrackedIPsDesc *prometheus.Desc
	workerDurationDesc   *prometheus.Desc
	scanDurationDesc     *prometheus.Desc
	scanTimestampDesc    *prometheus.Desc
	workersDesc          *prometheus.Desc
}

// NewReportCollector creates a collector with no report loaded yet.
func NewReportCollector() *ReportCollector {
	workerLabels := []string{"worker"}
	return &ReportCollector{
		triggersDesc:         prometheus.NewDesc(namespace+"_triggers", "Threat triggers of the last scan by category", []string{"category"}, nil),
		workerTriggersDesc:   prometheus.NewDesc(namespace+"_worker_triggers", "Threat triggers of the last scan by worker and category", []string{"worker", "category"}, nil),
		workerLinesDesc:      prometheus.NewDesc(namespace+"_worker_lines_read", "Lines read by each worker in the last scan", workerLabels, nil),
		workerMalformedDesc:  prometheus.NewDesc(namespace+"_worker_malformed_lines", "Malformed lines skipped by each worker in the last scan", workerLabels, nil),
		workerDroppedDesc:    prometheus.NewDesc(namespace+"_worker_dropped_records", "Records from untracked IPs dropped by each worker in the last scan", workerLabels, nil),
		workerTrackedIPsDesc: prometheus.NewDesc(namespace+"_worker_tracked_ips", "Distinct source IPs tracked by each worker in the last scan", workerLabels, nil),
		workerDurationDesc:   prometheus.NewDesc(namespace+"_worker_duration_seconds", "Processing time of each worker in the last scan", workerLabels, nil),
		scanDurationDesc:     prometheus.NewDesc(namespace+"_scan_duration_seconds", "Wall-clock duration of the last scan", nil, nil),
		scanTimestampDesc:    prometheus.NewDesc(namespace+"_scan_start_timestamp_seconds", "Start of the last scan (unix timestamp)", nil, nil),
		workersDesc:          prometheus.NewDesc(namespace+"_scan_workers", "Number of workers in the last scan", nil, nil),
	}
}

// Update replaces the report exposed by the collector.
func (c *ReportCollector) Update(r *model.Report) {
	c.mu.Lock()
	c.report = r
	c.mu.Unlock()
}

// Describe sends the descriptors of all metrics to ch.
func (c *ReportCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.triggersDesc
	ch <- c.workerTriggersDesc
	ch <- c.workerLinesDesc
	ch <- c.workerMalformedDesc
	ch <- c.workerDroppedDesc
	ch <- c.workerTrackedIPsDesc
	ch <- c.workerDurationDesc
	ch <- c.scanDurationDesc
	ch <- c.scanTimestampDesc
	ch <- c.workersDesc
}

// Collect sends the metrics of the current report to ch. Nothing is sent before
// the first Update.
func (c *ReportCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	r := c.report
	c.mu.RUnlock()
	if r == nil {
		return
	}

	for category, v := range categoryValues(r.Totals) {
		ch <- prometheus.MustNewConstMetric(c.triggersDesc, prometheus.GaugeValue, float64(v), category)
	}
	ch <- prometheus.MustNewConstMetric(c.scanDurationDesc, prometheus.GaugeValue, r.Elapsed.Seconds())
	ch <- prometheus.MustNewConstMetric(c.scanTimestampDesc, prometheus.GaugeValue, float64(r.StartedAt.Unix()))
	ch <- prometheus.MustNewConstMetric(c.workersDesc, prometheus.GaugeValue, float64(len(r.Workers)))

	for _, w := range r.Workers {
		id := strconv.Itoa(w.Worker)
		for category, v := range categoryValues(w.Counters) {
			ch <- prometheus.MustNewConstMetric(c.workerTriggersDesc, prometheus.GaugeValue, float64(v), id, category)
		}
		ch <- prometheus.MustNewConstMetric(c.workerLinesDesc, prometheus.GaugeValue, float64(w.LinesRead), id)
		ch <- prometheus.MustNewConstMetric(c.workerMalformedDesc, prometheus.GaugeValue, float64(w.Malformed), id)
		ch <- prometheus.MustNewConstMetric(c.workerDroppedDesc, prometheus.GaugeValue, float64(w.Dropped), id)
		ch <- prometheus.MustNewConstMetric(c.workerTrackedIPsDesc, prometheus.GaugeValue, float64(w.TrackedIPs), id)
		ch <- prometheus.MustNewConstMetric(c.workerDurationDesc, prometheus.GaugeValue, w.Elapsed.Seconds(), id)
	}
}

func categoryValues(c model.Counters) map[string]uint64 {
	return map[string]uint64{
		"backdoor": c.Backdoor,
		"dos":      c.DoS,
		"recon":    c.Recon,
	}
}
