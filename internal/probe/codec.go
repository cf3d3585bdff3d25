package probe

import (
	"FlowSentry/internal/model"
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ReportStruct converts a report into a protobuf Struct using its JSON field names.
func ReportStruct(r *model.Report) (*structpb.Struct, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to flatten report: %w", err)
	}
	return structpb.NewStruct(fields)
}

// EncodeReport serializes a report to protobuf wire format.
func EncodeReport(r *model.Report) ([]byte, error) {
	s, err := ReportStruct(r)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

// DecodeReport parses a report previously produced by EncodeReport.
func DecodeReport(data []byte) (*model.Report, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal protobuf: %w", err)
	}
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode report: %w", err)
	}
	var r model.Report
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}
