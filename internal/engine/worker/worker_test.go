package worker

import (
	"FlowSentry/internal/config"
	"FlowSentry/internal/engine/classifier"
	"FlowSentry/internal/engine/state"
	"FlowSentry/internal/model"
	"FlowSentry/pkg/flowlog"
	"context"
	"errors"
	"fmt"
	"testing"
)

func line(ip string, dstPort int, service string) string {
	return fmt.Sprintf("%s,40000,192.168.0.10,%d,tcp,SF,0.1,100,100,1,1,1,1,%s", ip, dstPort, service)
}

func newWorker(rng model.Range, limits state.Limits) *Worker {
	cfg := config.Default()
	return New(rng, classifier.New(cfg.Detection, cfg.Limits.OverflowPolicy), limits, Options{TopOffenders: 3})
}

func TestWorker_EndToEndBackdoor(t *testing.T) {
	lines := make([]string, 52)
	for i := range lines {
		lines[i] = line("10.0.0.1", 9001, "telnet")
	}
	src := flowlog.FromLines(lines)

	w := newWorker(model.Range{Worker: 0, Start: 0, Count: len(lines)}, state.Limits{})
	res, err := w.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Counters.Backdoor != 2 {
		t.Errorf("Expected backdoor=2, got %d", res.Counters.Backdoor)
	}
	if res.Counters.DoS != 0 {
		t.Errorf("Expected DoS=0, got %d", res.Counters.DoS)
	}
	if res.Counters.Recon != 0 {
		t.Errorf("Expected recon=0, got %d", res.Counters.Recon)
	}
	entry, ok := w.Table().Get("10.0.0.1")
	if !ok {
		t.Fatal("Expected 10.0.0.1 to be tracked")
	}
	if entry.ReconAttempts != 1 || entry.HighPortAttempts != 52 {
		t.Errorf("Unexpected entry state: recon=%d highport=%d", entry.ReconAttempts, entry.HighPortAttempts)
	}
	if res.LinesRead != 52 || res.TrackedIPs != 1 {
		t.Errorf("Unexpected bookkeeping: lines=%d ips=%d", res.LinesRead, res.TrackedIPs)
	}
	if len(res.TopOffenders) != 1 || res.TopOffenders[0].IP != "10.0.0.1" {
		t.Errorf("Unexpected top offenders: %+v", res.TopOffenders)
	}
}

func TestWorker_MalformedLineResilience(t *testing.T) {
	good := []string{line("10.0.0.1", 9001, "telnet"), line("10.0.0.2", 22, "ssh")}
	withBad := []string{good[0], "10.0.0.9,1,2", good[1]}

	clean := newWorker(model.Range{Count: len(good)}, state.Limits{})
	cleanRes, err := clean.Run(context.Background(), flowlog.FromLines(good))
	if err != nil {
		t.Fatalf("Run on clean input failed: %v", err)
	}

	dirty := newWorker(model.Range{Count: len(withBad)}, state.Limits{})
	dirtyRes, err := dirty.Run(context.Background(), flowlog.FromLines(withBad))
	if err != nil {
		t.Fatalf("Run on input with a truncated line failed: %v", err)
	}

	if dirtyRes.Counters != cleanRes.Counters {
		t.Errorf("Counters differ: clean=%+v dirty=%+v", cleanRes.Counters, dirtyRes.Counters)
	}
	if dirtyRes.Malformed != 1 || dirtyRes.LinesRead != 3 {
		t.Errorf("Expected 1 malformed of 3 lines, got %d of %d", dirtyRes.Malformed, dirtyRes.LinesRead)
	}
	if _, ok := dirty.Table().Get("10.0.0.9"); ok {
		t.Error("A malformed line must not create IP state")
	}
	for _, e := range clean.Table().Entries() {
		other, ok := dirty.Table().Get(e.IP)
		if !ok || other.Offender() != e.Offender() {
			t.Errorf("IP %s state differs between clean and dirty runs", e.IP)
		}
	}
}

func TestWorker_OnlyReadsItsRange(t *testing.T) {
	lines := []string{
		line("10.0.0.1", 1, "x"),
		line("10.0.0.2", 2, "x"),
		line("10.0.0.3", 3, "x"),
		line("10.0.0.4", 4, "x"),
	}
	w := newWorker(model.Range{Worker: 1, Start: 1, Count: 2}, state.Limits{})
	res, err := w.Run(context.Background(), flowlog.FromLines(lines))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Worker != 1 || res.LinesRead != 2 {
		t.Errorf("Expected worker 1 to read 2 lines, got worker=%d lines=%d", res.Worker, res.LinesRead)
	}
	for _, ip := range []string{"10.0.0.2", "10.0.0.3"} {
		if _, ok := w.Table().Get(ip); !ok {
			t.Errorf("Expected %s to be tracked", ip)
		}
	}
	if w.Table().Len() != 2 {
		t.Errorf("Expected 2 tracked IPs, got %d", w.Table().Len())
	}
}

func TestWorker_CapacityExceededFails(t *testing.T) {
	lines := []string{line("10.0.0.1", 80, "http"), line("10.0.0.2", 80, "http")}
	w := newWorker(model.Range{Count: 2}, state.Limits{MaxIPs: 1})

	_, err := w.Run(context.Background(), flowlog.FromLines(lines))
	if !errors.Is(err, model.ErrCapacityExceeded) {
		t.Fatalf("Expected ErrCapacityExceeded, got %v", err)
	}
}

func TestWorker_SaturateCountsDropped(t *testing.T) {
	cfg := config.Default()
	c := classifier.New(cfg.Detection, config.OverflowSaturate)
	lines := []string{line("10.0.0.1", 80, "http"), line("10.0.0.2", 80, "http"), line("10.0.0.1", 81, "http")}
	w := New(model.Range{Count: 3}, c, state.Limits{MaxIPs: 1}, Options{})

	res, err := w.Run(context.Background(), flowlog.FromLines(lines))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Dropped != 1 {
		t.Errorf("Expected 1 dropped record, got %d", res.Dropped)
	}
	if res.TrackedIPs != 1 {
		t.Errorf("Expected 1 tracked IP, got %d", res.TrackedIPs)
	}
}

func TestWorker_EmptyRange(t *testing.T) {
	w := newWorker(model.Range{Worker: 3, Start: 0, Count: 0}, state.Limits{})
	res, err := w.Run(context.Background(), flowlog.FromLines(nil))
	if err != nil {
		t.Fatalf("Run on empty range failed: %v", err)
	}
	if res.LinesRead != 0 || res.Counters != (model.Counters{}) {
		t.Errorf("Expected an empty result, got %+v", res)
	}
}
