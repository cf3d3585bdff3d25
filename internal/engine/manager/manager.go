package manager

import (
	"FlowSentry/internal/ai"
	"FlowSentry/internal/alerter"
	"FlowSentry/internal/config"
	"FlowSentry/internal/engine/classifier"
	"FlowSentry/internal/engine/partition"
	"FlowSentry/internal/engine/reducer"
	"FlowSentry/internal/engine/state"
	"FlowSentry/internal/engine/worker"
	"FlowSentry/internal/factory"
	"FlowSentry/internal/model"
	"FlowSentry/internal/notification"
	"FlowSentry/internal/probe"
	_ "FlowSentry/internal/writer" // Registers report writers
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

const timestampLayout = "2006-01-02_15-04-05"

// reportPublisher broadcasts finished reports.
type reportPublisher interface {
	Publish(r *model.Report) error
	Close()
}

// Manager orchestrates a scan: it partitions the input, runs one worker per
// range, reduces their results and hands the report to writers, the NATS
// publisher and the alerter.
type Manager struct {
	cfg        *config.Config
	classifier *classifier.Classifier
	writers    []model.Writer
	publisher  reportPublisher
	alerter    *alerter.Alerter
}

// NewManager creates a new Manager with every sink enabled in cfg.
func NewManager(cfg *config.Config) (*Manager, error) {
	writers, err := factory.CreateWriters(cfg)
	if err != nil {
		return nil, err
	}

	var publisher reportPublisher
	if cfg.NATS.Enabled {
		p, err := probe.NewPublisher(cfg.NATS)
		if err != nil {
			return nil, fmt.Errorf("failed to connect report publisher: %w", err)
		}
		publisher = p
	}

	var alertr *alerter.Alerter
	if cfg.Alerter.Enabled {
		var notifier model.Notifier
		if cfg.SMTP.Host != "" {
			notifier = notification.NewEmailNotifier(cfg.SMTP)
		}

		var analyzer model.Analyzer
		if cfg.Alerter.AIAnalysis.Enabled {
			a, err := ai.NewAlertAnalyzer(cfg.AI)
			if err != nil {
				log.Printf("Warning: AI analysis disabled: %v", err)
			} else {
				analyzer = a
			}
		}

		if notifier != nil {
			alertr, err = alerter.NewAlerter(&cfg.Alerter, notifier, analyzer)
			if err != nil {
				return nil, fmt.Errorf("failed to create alerter: %w", err)
			}
			log.Println("Alerter enabled and initialized.")
		} else {
			log.Println("Alerter is enabled in config, but no notifiers are configured. Alerter will not run.")
		}
	}

	return newManager(cfg, writers, publisher, alertr), nil
}

func newManager(cfg *config.Config, writers []model.Writer, publisher reportPublisher, alertr *alerter.Alerter) *Manager {
	return &Manager{
		cfg:        cfg,
		classifier: classifier.New(cfg.Detection, cfg.Limits.OverflowPolicy),
		writers:    writers,
		publisher:  publisher,
		alerter:    alertr,
	}
}

// Run scans every line of src with the configured number of workers and
// returns the reduced report. When any worker fails the whole run is cancelled
// and no partial report is returned.
//
// Workers do not share IP state: an IP whose records straddle a range boundary
// is tracked independently on each side.
func (m *Manager) Run(ctx context.Context, src model.LineSource, inputPath string) (*model.Report, error) {
	startedAt := time.Now()

	ranges, err := partition.Partition(src.Lines(), m.cfg.Scan.NumWorkers)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	limits := state.Limits{MaxIPs: m.cfg.Limits.MaxTrackedIPs, MaxPortsPerIP: m.cfg.Limits.MaxPortsPerIP}
	opts := worker.Options{TopOffenders: m.cfg.Scan.TopOffenders, Verbose: m.cfg.Scan.Verbose}

	results := make(chan model.WorkerResult, len(ranges))
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	wg.Add(len(ranges))
	for _, rng := range ranges {
		go func(rng model.Range) {
			defer wg.Done()
			res, err := worker.New(rng, m.classifier, limits, opts).Run(ctx, src)
			if err != nil {
				errOnce.Do(func() {
					firstErr = err
					cancel()
				})
				return
			}
			results <- res
		}(rng)
	}
	if m.cfg.Scan.Verbose {
		log.Printf("Scanning %d lines of '%s' with %d workers.", src.Lines(), inputPath, len(ranges))
	}

	wg.Wait()
	close(results)

	if firstErr != nil {
		return nil, firstErr
	}

	collected := make([]model.WorkerResult, 0, len(ranges))
	for res := range results {
		collected = append(collected, res)
	}

	report := reducer.Reduce(collected)
	report.InputPath = inputPath
	report.StartedAt = startedAt
	report.Elapsed = time.Since(startedAt)
	return report, nil
}

// Dispatch hands a finished report to every writer concurrently, then
// publishes it and evaluates alert rules. Sink failures are logged and joined
// into the returned error; they never affect the report itself.
func (m *Manager) Dispatch(ctx context.Context, r *model.Report) error {
	timestamp := r.StartedAt.Format(timestampLayout)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	addErr := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	wg.Add(len(m.writers))
	for _, w := range m.writers {
		go func(w model.Writer) {
			defer wg.Done()
			if err := w.Write(r, timestamp); err != nil {
				log.Printf("Error writing report with writer %s: %v", w.Name(), err)
				addErr(fmt.Errorf("writer %s: %w", w.Name(), err))
			}
		}(w)
	}
	wg.Wait()

	if m.publisher != nil {
		if err := m.publisher.Publish(r); err != nil {
			log.Printf("Error publishing report: %v", err)
			addErr(fmt.Errorf("publish: %w", err))
		}
	}

	if m.alerter != nil {
		if _, err := m.alerter.Evaluate(ctx, r); err != nil {
			addErr(fmt.Errorf("alerter: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Close releases the publisher connection.
func (m *Manager) Close() {
	if m.publisher != nil {
		m.publisher.Close()
	}
}
