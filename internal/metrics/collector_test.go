package metrics

import (
	"FlowSentry/internal/model"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestReportCollector_EmptyBeforeUpdate(t *testing.T) {
	c := NewReportCollector()
	if n := testutil.CollectAndCount(c); n != 0 {
		t.Errorf("Expected no metrics before the first report, got %d", n)
	}
}

func TestReportCollector_Collect(t *testing.T) {
	c := NewReportCollector()
	c.Update(&model.Report{
		StartedAt: time.Unix(1700000000, 0),
		Elapsed:   2 * time.Second,
		Totals:    model.Counters{Backdoor: 3, DoS: 1, Recon: 2},
		Workers: []model.WorkerResult{
			{Worker: 0, Counters: model.Counters{Backdoor: 3}, LinesRead: 10},
			{Worker: 1, Counters: model.Counters{DoS: 1, Recon: 2}, LinesRead: 9, Malformed: 1},
		},
	})

	expected := `
# HELP flowsentry_triggers Threat triggers of the last scan by category
# TYPE flowsentry_triggers gauge
flowsentry_triggers{category="backdoor"} 3
flowsentry_triggers{category="dos"} 1
flowsentry_triggers{category="recon"} 2
# HELP flowsentry_worker_lines_read Lines read by each worker in the last scan
# TYPE flowsentry_worker_lines_read gauge
flowsentry_worker_lines_read{worker="0"} 10
flowsentry_worker_lines_read{worker="1"} 9
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected), "flowsentry_triggers", "flowsentry_worker_lines_read"); err != nil {
		t.Errorf("Unexpected metrics: %v", err)
	}

	// 3 totals + 3 scan-level + 2 workers * (3 categories + 5 gauges)
	if n := testutil.CollectAndCount(c); n != 22 {
		t.Errorf("Expected 22 metrics, got %d", n)
	}
}
