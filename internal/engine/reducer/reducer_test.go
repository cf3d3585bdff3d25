package reducer

import (
	"FlowSentry/internal/model"
	"testing"
	"time"
)

func sampleResults() []model.WorkerResult {
	return []model.WorkerResult{
		{Worker: 2, Counters: model.Counters{Backdoor: 1, DoS: 0, Recon: 4}, LinesRead: 10, Malformed: 1, TrackedIPs: 3, Elapsed: 30 * time.Millisecond},
		{Worker: 0, Counters: model.Counters{Backdoor: 5, DoS: 2, Recon: 0}, LinesRead: 11, TrackedIPs: 2, Elapsed: 10 * time.Millisecond},
		{Worker: 1, Counters: model.Counters{Backdoor: 0, DoS: 7, Recon: 1}, LinesRead: 11, Dropped: 2, TrackedIPs: 1, Elapsed: 20 * time.Millisecond},
	}
}

func TestReduce_SumsCounters(t *testing.T) {
	report := Reduce(sampleResults())

	want := model.Counters{Backdoor: 6, DoS: 9, Recon: 5}
	if report.Totals != want {
		t.Errorf("Expected totals %+v, got %+v", want, report.Totals)
	}
	if report.LinesRead != 32 || report.Malformed != 1 || report.Dropped != 2 || report.TrackedIPs != 6 {
		t.Errorf("Unexpected bookkeeping totals: %+v", report)
	}
	if report.MaxWorkerElapsed != 30*time.Millisecond {
		t.Errorf("Expected max worker elapsed 30ms, got %s", report.MaxWorkerElapsed)
	}
}

func TestReduce_OrderIndependent(t *testing.T) {
	results := sampleResults()
	forward := Reduce(results)

	reversed := make([]model.WorkerResult, len(results))
	for i, r := range results {
		reversed[len(results)-1-i] = r
	}
	backward := Reduce(reversed)

	if forward.Totals != backward.Totals {
		t.Errorf("Totals depend on order: %+v vs %+v", forward.Totals, backward.Totals)
	}
	for i, w := range forward.Workers {
		if w.Worker != i || backward.Workers[i].Worker != i {
			t.Errorf("Expected workers sorted by id, got %d / %d at %d", w.Worker, backward.Workers[i].Worker, i)
		}
	}
}

func TestReduce_Associative(t *testing.T) {
	results := sampleResults()
	whole := Reduce(results)

	left := Reduce(results[:1])
	right := Reduce(results[1:])
	if left.Totals.Add(right.Totals) != whole.Totals {
		t.Errorf("Partial reductions do not combine: %+v + %+v != %+v", left.Totals, right.Totals, whole.Totals)
	}
}

func TestReduce_Empty(t *testing.T) {
	report := Reduce(nil)
	if report.Totals != (model.Counters{}) || len(report.Workers) != 0 {
		t.Errorf("Expected an empty report, got %+v", report)
	}
}

func TestReduce_DoesNotAliasInput(t *testing.T) {
	results := sampleResults()
	Reduce(results)
	if results[0].Worker != 2 {
		t.Error("Reduce must not reorder the caller's slice")
	}
}
