package parser

import (
	"FlowSentry/internal/model"
	"fmt"
	"strconv"
	"strings"
)

// Column layout of a flow-log line.
const (
	colSrcIP = iota
	colSrcPort
	colDstIP
	colDstPort
	colProtocol
	colFlag
	colDuration
	colSrcBytes
	colDstBytes
	colFirstSample
	colLastSample = colFirstSample + 3
	colService    = colLastSample + 1

	// MinFields is the number of comma-separated fields a well-formed line carries.
	MinFields = colService + 1

	// MaxPacketSamples caps the number of packet-count samples kept per record.
	MaxPacketSamples = 10
)

// ParseRecord turns one CSV line into a fully populated FlowRecord.
// Any missing or unparsable field yields an error wrapping model.ErrMalformedRecord.
func ParseRecord(line string) (*model.FlowRecord, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Split(line, ",")
	if len(fields) < MinFields {
		return nil, fmt.Errorf("%w: got %d fields, want at least %d", model.ErrMalformedRecord, len(fields), MinFields)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	rec := &model.FlowRecord{
		SrcIP:    fields[colSrcIP],
		DstIP:    fields[colDstIP],
		Protocol: fields[colProtocol],
		Flag:     fields[colFlag],
		Service:  fields[colService],
	}
	if rec.SrcIP == "" {
		return nil, fmt.Errorf("%w: empty source IP", model.ErrMalformedRecord)
	}

	var err error
	if rec.SrcPort, err = parsePort(fields[colSrcPort], "source port"); err != nil {
		return nil, err
	}
	if rec.DstPort, err = parsePort(fields[colDstPort], "destination port"); err != nil {
		return nil, err
	}
	if rec.Duration, err = strconv.ParseFloat(fields[colDuration], 64); err != nil {
		return nil, fmt.Errorf("%w: duration %q: %v", model.ErrMalformedRecord, fields[colDuration], err)
	}
	if rec.SrcBytes, err = parseCount(fields[colSrcBytes], "source bytes"); err != nil {
		return nil, err
	}
	if rec.DstBytes, err = parseCount(fields[colDstBytes], "destination bytes"); err != nil {
		return nil, err
	}

	rec.PacketSamples = make([]int, 0, colLastSample-colFirstSample+1)
	for i := colFirstSample; i <= colLastSample && len(rec.PacketSamples) < MaxPacketSamples; i++ {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil, fmt.Errorf("%w: packet sample %d %q: %v", model.ErrMalformedRecord, i-colFirstSample, fields[i], err)
		}
		rec.PacketSamples = append(rec.PacketSamples, v)
	}

	return rec, nil
}

func parsePort(s, what string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", model.ErrMalformedRecord, what, s, err)
	}
	if v < 0 || v > 65535 {
		return 0, fmt.Errorf("%w: %s %d out of range", model.ErrMalformedRecord, what, v)
	}
	return v, nil
}

func parseCount(s, what string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", model.ErrMalformedRecord, what, s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %s %d is negative", model.ErrMalformedRecord, what, v)
	}
	return v, nil
}
