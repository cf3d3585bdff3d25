package writer

import (
	"FlowSentry/internal/config"
	"FlowSentry/internal/factory"
	"FlowSentry/internal/model"
	"FlowSentry/internal/report"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

func init() {
	factory.RegisterWriter("text", func(def config.WriterDef) (model.Writer, error) {
		return NewTextWriter(def.RootPath), nil
	})
}

// TextWriter writes the console report and its markdown summary to a run directory.
type TextWriter struct {
	rootPath string
}

// NewTextWriter creates a new text writer rooted at rootPath.
func NewTextWriter(rootPath string) model.Writer {
	return &TextWriter{rootPath: rootPath}
}

func (w *TextWriter) Name() string {
	return "text"
}

func (w *TextWriter) Write(r *model.Report, timestamp string) error {
	runDir := filepath.Join(w.rootPath, timestamp)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	textPath := filepath.Join(runDir, "report.txt")
	file, err := os.Create(textPath)
	if err != nil {
		return fmt.Errorf("failed to create report file '%s': %w", textPath, err)
	}
	defer file.Close()

	if err := report.WriteText(file, r); err != nil {
		return fmt.Errorf("failed to write report file '%s': %w", textPath, err)
	}

	mdPath := filepath.Join(runDir, "report.md")
	if err := os.WriteFile(mdPath, []byte(report.Markdown(r)), 0644); err != nil {
		return fmt.Errorf("failed to write markdown summary '%s': %w", mdPath, err)
	}

	log.Printf("Successfully wrote text report to %s", runDir)
	return nil
}
