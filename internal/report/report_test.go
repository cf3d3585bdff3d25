package report

import (
	"FlowSentry/internal/model"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func parallelReport() *model.Report {
	return &model.Report{
		InputPath: "flows.csv",
		StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Elapsed:   1500 * time.Millisecond,
		Totals:    model.Counters{Backdoor: 3, DoS: 1, Recon: 2},
		LinesRead: 100,
		Malformed: 2,
		Workers: []model.WorkerResult{
			{Worker: 0, Counters: model.Counters{Backdoor: 3}},
			{Worker: 1, Counters: model.Counters{DoS: 1, Recon: 2}, TopOffenders: []model.Offender{{IP: "10.0.0.7", ReconAttempts: 8, DistinctPorts: 8}}},
		},
	}
}

func TestWriteText_Parallel(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, parallelReport()); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Total Backdoor Count: 3\n",
		"Total DoS Count: 1\n",
		"Total Reconnaissance Count: 2\n",
		"Time taken (parallel version): 1.500000 seconds\n",
		"Worker 1:\nBackdoor Count: 0\nDoS Count: 1\nReconnaissance Count: 2\n",
		"Skipped: 2 malformed line(s)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestWriteText_SingleWorker(t *testing.T) {
	r := &model.Report{
		Totals:  model.Counters{Backdoor: 2},
		Workers: []model.WorkerResult{{Worker: 0, Counters: model.Counters{Backdoor: 2}}},
	}
	var buf bytes.Buffer
	if err := WriteText(&buf, r); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Backdoor Count: 2\nDoS Count: 0\nReconnaissance Count: 0\nTime taken:") {
		t.Errorf("Unexpected sequential layout:\n%s", out)
	}
	if strings.Contains(out, "Worker 0:") {
		t.Error("Sequential layout must not print a per-worker breakdown")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, parallelReport()); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	var decoded model.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded.Totals.Backdoor != 3 || len(decoded.Workers) != 2 {
		t.Errorf("Unexpected decoded report: %+v", decoded)
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(parallelReport())
	for _, want := range []string{"## Scan of `flows.csv`", "| Backdoor | 3 |", "### Top offenders", "| 1 | 10.0.0.7 | 0 | 0 | 8 | 8 |"} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q, got:\n%s", want, md)
		}
	}
}
