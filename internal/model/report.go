package model

import "time"

// Offender summarizes the state of one tracked source IP.
type Offender struct {
	IP               string `json:"ip"`
	HighPortAttempts int    `json:"high_port_attempts"`
	DoSAttempts      int    `json:"dos_attempts"`
	ReconAttempts    int    `json:"recon_attempts"`
	DistinctPorts    int    `json:"distinct_ports"`
}

// Score orders offenders in reports.
func (o Offender) Score() int {
	return o.HighPortAttempts + o.DoSAttempts + o.ReconAttempts
}

// WorkerResult is what a single worker hands back after finishing its range.
type WorkerResult struct {
	Worker       int           `json:"worker"`
	Range        Range         `json:"range"`
	Counters     Counters      `json:"counters"`
	LinesRead    int           `json:"lines_read"`
	Malformed    int           `json:"malformed"`
	Dropped      int           `json:"dropped"`
	TrackedIPs   int           `json:"tracked_ips"`
	Elapsed      time.Duration `json:"elapsed"`
	TopOffenders []Offender    `json:"top_offenders,omitempty"`
}

// Report is the reduced outcome of a scan.
type Report struct {
	InputPath        string         `json:"input_path"`
	StartedAt        time.Time      `json:"started_at"`
	Elapsed          time.Duration  `json:"elapsed"`
	MaxWorkerElapsed time.Duration  `json:"max_worker_elapsed"`
	Totals           Counters       `json:"totals"`
	LinesRead        int            `json:"lines_read"`
	Malformed        int            `json:"malformed"`
	Dropped          int            `json:"dropped"`
	TrackedIPs       int            `json:"tracked_ips"`
	Workers          []WorkerResult `json:"workers"`
}
