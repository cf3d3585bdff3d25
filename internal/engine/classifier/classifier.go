package classifier

import (
	"FlowSentry/internal/config"
	"FlowSentry/internal/engine/state"
	"FlowSentry/internal/model"
	"errors"
)

// Destination ports strictly inside this range count as high ports.
const (
	lowPortBoundary  = 1024
	highPortBoundary = 65535
)

// Classifier applies the backdoor, DoS and reconnaissance rules to flow records.
// It holds no per-record state and may be shared by workers.
type Classifier struct {
	highPortThreshold     int
	dosAttemptThreshold   int
	reconAttemptThreshold int
	packetCountThreshold  int
	byteCountThreshold    int64
	knownServices         map[string]struct{}
	saturate              bool
}

// New creates a classifier from the detection settings and the overflow policy.
func New(cfg config.DetectionConfig, policy config.OverflowPolicy) *Classifier {
	known := make(map[string]struct{}, len(cfg.KnownServices))
	for _, s := range cfg.KnownServices {
		known[s] = struct{}{}
	}
	return &Classifier{
		highPortThreshold:     cfg.HighPortThreshold,
		dosAttemptThreshold:   cfg.DoSAttemptThreshold,
		reconAttemptThreshold: cfg.ReconAttemptThreshold,
		packetCountThreshold:  cfg.PacketCountDoSThreshold,
		byteCountThreshold:    cfg.ByteCountDoSThreshold,
		knownServices:         known,
		saturate:              policy == config.OverflowSaturate,
	}
}

// Classify runs the three rules once against rec, updating the source IP's
// entry in table and the category counters.
//
// A counter increments on every qualifying record once the IP's attempt count
// is past the threshold, not only when it crosses it.
func (c *Classifier) Classify(rec *model.FlowRecord, table *state.Table, counters *model.Counters) (model.Triggers, error) {
	var trig model.Triggers

	entry, err := table.LookupOrCreate(rec.SrcIP)
	if err != nil {
		if c.saturate && errors.Is(err, model.ErrCapacityExceeded) {
			trig.Dropped = true
			return trig, nil
		}
		return trig, err
	}

	if c.isBackdoorCandidate(rec) {
		entry.HighPortAttempts++
		if entry.HighPortAttempts > c.highPortThreshold {
			counters.Backdoor++
			trig.Backdoor = true
		}
	}

	if c.isDoSCandidate(rec) {
		entry.DoSAttempts++
		if entry.DoSAttempts > c.dosAttemptThreshold {
			counters.DoS++
			trig.DoS = true
		}
	}

	added, err := table.RecordDestinationPort(entry, rec.DstPort)
	if err != nil {
		if !(c.saturate && errors.Is(err, model.ErrCapacityExceeded)) {
			return trig, err
		}
		added = false
	}
	if added {
		entry.ReconAttempts++
		if entry.ReconAttempts > c.reconAttemptThreshold {
			counters.Recon++
			trig.Recon = true
		}
	}

	return trig, nil
}

func (c *Classifier) isBackdoorCandidate(rec *model.FlowRecord) bool {
	if rec.DstPort <= lowPortBoundary || rec.DstPort >= highPortBoundary {
		return false
	}
	_, known := c.knownServices[rec.Service]
	return !known
}

func (c *Classifier) isDoSCandidate(rec *model.FlowRecord) bool {
	return len(rec.PacketSamples) > c.packetCountThreshold ||
		rec.SrcBytes > c.byteCountThreshold ||
		rec.DstBytes > c.byteCountThreshold
}
