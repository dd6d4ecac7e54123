package store

import (
	"fmt"

	"github.com/roach88/tracksync/internal/value"
)

// marshalOutput converts a rendered output to canonical JSON TEXT.
func marshalOutput(out value.List) (string, error) {
	if out == nil {
		out = value.List{}
	}
	data, err := value.MarshalCanonical(out)
	if err != nil {
		return "", fmt.Errorf("marshal output: %w", err)
	}
	return string(data), nil
}

// marshalStats converts step counters to canonical JSON TEXT.
func marshalStats(stats value.Record) (string, error) {
	if stats == nil {
		stats = value.Record{}
	}
	data, err := value.MarshalCanonical(stats)
	if err != nil {
		return "", fmt.Errorf("marshal stats: %w", err)
	}
	return string(data), nil
}

// unmarshalOutput parses stored output JSON.
func unmarshalOutput(s string) (value.List, error) {
	v, err := value.UnmarshalJSON([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("unmarshal output: %w", err)
	}
	list, ok := v.(value.List)
	if !ok {
		return nil, fmt.Errorf("unmarshal output: want list, got %s", value.KindOf(v))
	}
	return list, nil
}

// unmarshalStats parses stored stats JSON.
func unmarshalStats(s string) (value.Record, error) {
	v, err := value.UnmarshalJSON([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("unmarshal stats: %w", err)
	}
	rec, ok := v.(value.Record)
	if !ok {
		return nil, fmt.Errorf("unmarshal stats: want record, got %s", value.KindOf(v))
	}
	return rec, nil
}
