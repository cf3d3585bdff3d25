package writer

import (
	"FlowSentry/internal/config"
	"FlowSentry/internal/factory"
	"FlowSentry/internal/metrics"
	"FlowSentry/internal/model"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	factory.RegisterWriter("prometheus", func(def config.WriterDef) (model.Writer, error) {
		return NewPrometheusWriter(def.RootPath), nil
	})
}

// textfileName is the file picked up by node_exporter's textfile collector.
const textfileName = "flowsentry.prom"

// PrometheusWriter exports the report in the Prometheus text format.
type PrometheusWriter struct {
	rootPath  string
	collector *metrics.ReportCollector
	registry  *prometheus.Registry
}

// NewPrometheusWriter creates a writer that refreshes rootPath/flowsentry.prom.
func NewPrometheusWriter(rootPath string) model.Writer {
	collector := metrics.NewReportCollector()
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)
	return &PrometheusWriter{rootPath: rootPath, collector: collector, registry: registry}
}

func (w *PrometheusWriter) Name() string {
	return "prometheus"
}

// Write overwrites the textfile; the timestamp is not part of the file name.
func (w *PrometheusWriter) Write(r *model.Report, timestamp string) error {
	if err := os.MkdirAll(w.rootPath, 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	w.collector.Update(r)
	path := filepath.Join(w.rootPath, textfileName)
	if err := prometheus.WriteToTextfile(path, w.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile '%s': %w", path, err)
	}
	return nil
}
