package pcap

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"
)

// SampleCount is the number of packet-size sample columns in a flow-log line.
const SampleCount = 4

var wellKnownServices = map[uint16]string{
	20:   "ftp",
	21:   "ftp",
	22:   "ssh",
	23:   "telnet",
	25:   "smtp",
	53:   "dns",
	80:   "http",
	110:  "pop3",
	143:  "imap",
	443:  "https",
	587:  "smtp",
	8080: "http",
}

// Service guesses the service name of a destination port.
func Service(port uint16) string {
	if s, ok := wellKnownServices[port]; ok {
		return s
	}
	return "other"
}

type flowKey struct {
	srcIP, dstIP     string
	srcPort, dstPort uint16
	protocol         string
}

func (k flowKey) reverse() flowKey {
	return flowKey{srcIP: k.dstIP, dstIP: k.srcIP, srcPort: k.dstPort, dstPort: k.srcPort, protocol: k.protocol}
}

// Flow is a bidirectional connection as seen from its initiator.
type Flow struct {
	SrcIP    string
	SrcPort  uint16
	DstIP    string
	DstPort  uint16
	Protocol string
	First    time.Time
	Last     time.Time
	SrcBytes int64
	DstBytes int64
	Packets  int
	Samples  []int

	synSeen, finSeen, rstSeen, replied bool
}

// Flag summarizes the connection state: SF for a normal close, REJ for a
// reset, S0 for an unanswered SYN and OTH for anything else.
func (f *Flow) Flag() string {
	switch {
	case f.rstSeen:
		return "REJ"
	case f.finSeen && f.replied:
		return "SF"
	case f.synSeen && !f.replied:
		return "S0"
	default:
		return "OTH"
	}
}

// Aggregator folds packets into flows keyed by their 5-tuple. Packets of the
// reverse direction count towards the flow's destination bytes.
type Aggregator struct {
	flows map[flowKey]*Flow
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{flows: make(map[flowKey]*Flow)}
}

// Add folds a packet into its flow.
func (a *Aggregator) Add(p *Packet) {
	key := flowKey{srcIP: p.SrcIP.String(), dstIP: p.DstIP.String(), srcPort: p.SrcPort, dstPort: p.DstPort, protocol: p.Protocol}

	f, forward := a.flows[key], true
	if f == nil {
		if rf := a.flows[key.reverse()]; rf != nil {
			f, forward = rf, false
		}
	}
	if f == nil {
		f = &Flow{
			SrcIP: key.srcIP, SrcPort: key.srcPort,
			DstIP: key.dstIP, DstPort: key.dstPort,
			Protocol: key.protocol,
			First:    p.Timestamp,
		}
		a.flows[key] = f
	}

	if p.Timestamp.Before(f.First) {
		f.First = p.Timestamp
	}
	if p.Timestamp.After(f.Last) {
		f.Last = p.Timestamp
	}
	if forward {
		f.SrcBytes += int64(p.Length)
	} else {
		f.DstBytes += int64(p.Length)
		f.replied = true
	}
	f.Packets++
	if len(f.Samples) < SampleCount {
		f.Samples = append(f.Samples, p.Length)
	}
	f.synSeen = f.synSeen || p.SYN
	f.finSeen = f.finSeen || p.FIN
	f.rstSeen = f.rstSeen || p.RST
}

// Len returns the number of flows seen so far.
func (a *Aggregator) Len() int {
	return len(a.flows)
}

// Flows returns all flows ordered by first packet time.
func (a *Aggregator) Flows() []*Flow {
	flows := make([]*Flow, 0, len(a.flows))
	for _, f := range a.flows {
		flows = append(flows, f)
	}
	sort.Slice(flows, func(i, j int) bool {
		if !flows[i].First.Equal(flows[j].First) {
			return flows[i].First.Before(flows[j].First)
		}
		if flows[i].SrcIP != flows[j].SrcIP {
			return flows[i].SrcIP < flows[j].SrcIP
		}
		return flows[i].DstPort < flows[j].DstPort
	})
	return flows
}

// WriteCSV writes every flow as one flow-log line:
// src_ip,src_port,dst_ip,dst_port,protocol,flag,duration,src_bytes,dst_bytes,
// four packet-size samples and the service name.
func (a *Aggregator) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	for _, f := range a.Flows() {
		record := []string{
			f.SrcIP,
			strconv.Itoa(int(f.SrcPort)),
			f.DstIP,
			strconv.Itoa(int(f.DstPort)),
			f.Protocol,
			f.Flag(),
			strconv.FormatFloat(f.Last.Sub(f.First).Seconds(), 'f', 6, 64),
			strconv.FormatInt(f.SrcBytes, 10),
			strconv.FormatInt(f.DstBytes, 10),
		}
		for i := 0; i < SampleCount; i++ {
			v := 0
			if i < len(f.Samples) {
				v = f.Samples[i]
			}
			record = append(record, strconv.Itoa(v))
		}
		record = append(record, Service(f.DstPort))
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write flow %s:%d: %w", f.SrcIP, f.SrcPort, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
