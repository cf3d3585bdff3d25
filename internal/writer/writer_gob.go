package writer

import (
	"FlowSentry/internal/config"
	"FlowSentry/internal/factory"
	"FlowSentry/internal/model"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

func init() {
	factory.RegisterWriter("gob", func(def config.WriterDef) (model.Writer, error) {
		return NewGobWriter(def.RootPath), nil
	})
}

// SummaryData holds the metadata written next to a gob-encoded report.
type SummaryData struct {
	InputPath  string `json:"input_path"`
	Workers    int    `json:"workers"`
	LinesRead  int    `json:"lines_read"`
	Malformed  int    `json:"malformed"`
	TrackedIPs int    `json:"tracked_ips"`
	Backdoor   uint64 `json:"backdoor"`
	DoS        uint64 `json:"dos"`
	Recon      uint64 `json:"recon"`
	ElapsedMs  int64  `json:"elapsed_ms"`
	Timestamp  string `json:"timestamp"`
}

// GobWriter handles writing a full report to disk in gob format.
type GobWriter struct {
	rootPath string
}

// NewGobWriter creates a new gob writer rooted at rootPath.
func NewGobWriter(rootPath string) model.Writer {
	return &GobWriter{rootPath: rootPath}
}

func (w *GobWriter) Name() string {
	return "gob"
}

// Write stores the report as report.gob and a human-readable summary.json.
func (w *GobWriter) Write(r *model.Report, timestamp string) error {
	runDir := filepath.Join(w.rootPath, timestamp)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	gobPath := filepath.Join(runDir, "report.gob")
	file, err := os.Create(gobPath)
	if err != nil {
		return fmt.Errorf("failed to create report file '%s': %w", gobPath, err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(r); err != nil {
		return fmt.Errorf("failed to encode report to gob for file '%s': %w", gobPath, err)
	}

	summary := SummaryData{
		InputPath:  r.InputPath,
		Workers:    len(r.Workers),
		LinesRead:  r.LinesRead,
		Malformed:  r.Malformed,
		TrackedIPs: r.TrackedIPs,
		Backdoor:   r.Totals.Backdoor,
		DoS:        r.Totals.DoS,
		Recon:      r.Totals.Recon,
		ElapsedMs:  r.Elapsed.Milliseconds(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	summaryFile, err := os.Create(filepath.Join(runDir, "summary.json"))
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer summaryFile.Close()

	jsonEncoder := json.NewEncoder(summaryFile)
	jsonEncoder.SetIndent("", "  ")
	if err := jsonEncoder.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode summary to json: %w", err)
	}
	return nil
}
