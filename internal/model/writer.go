package model

// Writer defines a generic interface for persisting a finished scan report.
type Writer interface {
	// Write takes a report and persists it. The timestamp names the run.
	Write(report *Report, timestamp string) error

	// Name returns the writer type, used in logs.
	Name() string
}
