package state

import (
	"FlowSentry/internal/model"
	"fmt"
	"sort"
)

// IPEntry holds the running counters of one source IP.
type IPEntry struct {
	IP               string
	HighPortAttempts int
	DoSAttempts      int
	ReconAttempts    int
	ports            map[int]struct{}
}

// DistinctPorts returns the number of distinct destination ports seen for the IP.
func (e *IPEntry) DistinctPorts() int {
	return len(e.ports)
}

// HasPort reports whether port was already recorded for the IP.
func (e *IPEntry) HasPort(port int) bool {
	_, ok := e.ports[port]
	return ok
}

// Offender returns a copy of the entry's counters for reporting.
func (e *IPEntry) Offender() model.Offender {
	return model.Offender{
		IP:               e.IP,
		HighPortAttempts: e.HighPortAttempts,
		DoSAttempts:      e.DoSAttempts,
		ReconAttempts:    e.ReconAttempts,
		DistinctPorts:    len(e.ports),
	}
}

// Limits bounds a Table. A zero field means unbounded.
type Limits struct {
	MaxIPs        int
	MaxPortsPerIP int
}

// Table maps source IPs to their entries. It is owned by a single worker and
// is not safe for concurrent use.
type Table struct {
	limits  Limits
	entries map[string]*IPEntry
}

// NewTable creates an empty table with the given limits.
func NewTable(limits Limits) *Table {
	return &Table{
		limits:  limits,
		entries: make(map[string]*IPEntry),
	}
}

// LookupOrCreate returns the entry for ip, creating a zero entry on first sight.
func (t *Table) LookupOrCreate(ip string) (*IPEntry, error) {
	if e, ok := t.entries[ip]; ok {
		return e, nil
	}
	if t.limits.MaxIPs > 0 && len(t.entries) >= t.limits.MaxIPs {
		return nil, fmt.Errorf("%w: cannot track IP %s, table holds %d IPs", model.ErrCapacityExceeded, ip, t.limits.MaxIPs)
	}
	e := &IPEntry{IP: ip, ports: make(map[int]struct{})}
	t.entries[ip] = e
	return e, nil
}

// RecordDestinationPort adds port to the entry's port set. It returns true when
// the port was not seen before for this IP.
func (t *Table) RecordDestinationPort(e *IPEntry, port int) (bool, error) {
	if _, ok := e.ports[port]; ok {
		return false, nil
	}
	if t.limits.MaxPortsPerIP > 0 && len(e.ports) >= t.limits.MaxPortsPerIP {
		return false, fmt.Errorf("%w: cannot record port %d for IP %s, %d ports already tracked", model.ErrCapacityExceeded, port, e.IP, t.limits.MaxPortsPerIP)
	}
	e.ports[port] = struct{}{}
	return true, nil
}

// Get returns the entry for ip without creating it.
func (t *Table) Get(ip string) (*IPEntry, bool) {
	e, ok := t.entries[ip]
	return e, ok
}

// Len returns the number of tracked IPs.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns all entries ordered by IP.
func (t *Table) Entries() []*IPEntry {
	out := make([]*IPEntry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IP < out[j].IP })
	return out
}

// TopOffenders returns up to n entries with the highest combined attempt counts.
func (t *Table) TopOffenders(n int) []model.Offender {
	if n <= 0 || len(t.entries) == 0 {
		return nil
	}
	all := make([]model.Offender, 0, len(t.entries))
	for _, e := range t.entries {
		all = append(all, e.Offender())
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Score() != all[j].Score() {
			return all[i].Score() > all[j].Score()
		}
		return all[i].IP < all[j].IP
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}
