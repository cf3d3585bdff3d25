package model

// FlowRecord holds the fields of a single flow-log line.
// A FlowRecord only exists when every field was present and parsed.
type FlowRecord struct {
	SrcIP    string
	SrcPort  int
	DstIP    string
	DstPort  int
	Protocol string
	Flag     string
	Duration float64
	SrcBytes int64
	DstBytes int64
	// PacketSamples holds the per-record packet-count samples. Only its length is used.
	PacketSamples []int
	Service       string
}

// Counters holds the per-category trigger counts of a worker or of a whole run.
type Counters struct {
	Backdoor uint64 `json:"backdoor"`
	DoS      uint64 `json:"dos"`
	Recon    uint64 `json:"recon"`
}

// Add returns the element-wise sum of c and o.
func (c Counters) Add(o Counters) Counters {
	return Counters{
		Backdoor: c.Backdoor + o.Backdoor,
		DoS:      c.DoS + o.DoS,
		Recon:    c.Recon + o.Recon,
	}
}

// Total returns the sum of all categories.
func (c Counters) Total() uint64 {
	return c.Backdoor + c.DoS + c.Recon
}

// Triggers reports which categories fired for a single record.
type Triggers struct {
	Backdoor bool
	DoS      bool
	Recon    bool
	// Dropped is set when the record was ignored because its source IP could not be tracked.
	Dropped bool
}

// Any reports whether at least one category fired.
func (t Triggers) Any() bool {
	return t.Backdoor || t.DoS || t.Recon
}

// Range is a contiguous slice of input lines assigned to one worker.
type Range struct {
	Worker int `json:"worker"`
	Start  int `json:"start"`
	Count  int `json:"count"`
}

// End returns the index one past the last line of the range.
func (r Range) End() int {
	return r.Start + r.Count
}
