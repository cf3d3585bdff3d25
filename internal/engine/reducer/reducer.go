package reducer

import (
	"FlowSentry/internal/model"
	"sort"
)

// Reduce sums per-worker results into a report. The sum does not depend on the
// order of results; the per-worker breakdown is kept sorted by worker id.
// Input path, start time and total elapsed time are left for the caller.
func Reduce(results []model.WorkerResult) *model.Report {
	report := &model.Report{
		Workers: make([]model.WorkerResult, len(results)),
	}
	copy(report.Workers, results)
	sort.Slice(report.Workers, func(i, j int) bool {
		return report.Workers[i].Worker < report.Workers[j].Worker
	})

	for _, r := range report.Workers {
		report.Totals = report.Totals.Add(r.Counters)
		report.LinesRead += r.LinesRead
		report.Malformed += r.Malformed
		report.Dropped += r.Dropped
		report.TrackedIPs += r.TrackedIPs
		if r.Elapsed > report.MaxWorkerElapsed {
			report.MaxWorkerElapsed = r.Elapsed
		}
	}
	return report
}
