package model

import (
	"context"
)

// Analyzer turns a summary of triggered alerts into a short written assessment.
type Analyzer interface {
	AnalyzeAlerts(ctx context.Context, summary string) (string, error)
}
