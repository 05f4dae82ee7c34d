// Package workload loads the time-windowed traffic feature streams the
// upstream extraction stage produces. The policy engine and the
// congestion simulator both consume FeatureRecord streams; nothing in
// this package mutates a record after it is built.
package workload

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Feature column names produced by the upstream extractor. The policy
// and congestion stages only ever read these three; any extra columns
// in the stream are carried along untouched.
const (
	FeatNewMMSIRate       = "F2_new_mmsi_rate"
	FeatMessageBurstiness = "F3_message_burstiness"
	FeatPositionJumpRate  = "F4_position_jump_rate"
)

// FeatureRecord is one time window of extracted traffic features.
// Immutable once produced by the extractor.
type FeatureRecord struct {
	WindowID int64
	Features map[string]float64
}

// Feature returns the named feature value. A feature the extractor did
// not produce reads as 0, never as an error.
func (r FeatureRecord) Feature(name string) float64 {
	return r.Features[name]
}

// LoadFeatureStream reads a feature CSV with a window_id column plus
// one column per feature, in window order as written by the extractor.
func LoadFeatureStream(path string) ([]FeatureRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening feature stream: %w", err)
	}
	defer file.Close()
	return ReadFeatureStream(file)
}

// ReadFeatureStream parses a feature CSV from an open reader.
func ReadFeatureStream(r io.Reader) ([]FeatureRecord, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading feature stream header: %w", err)
	}
	windowCol := -1
	for i, name := range header {
		if name == "window_id" {
			windowCol = i
			break
		}
	}
	if windowCol < 0 {
		return nil, fmt.Errorf("feature stream has no window_id column")
	}

	var records []FeatureRecord
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading feature stream row %d: %w", row, err)
		}

		windowID, err := strconv.ParseInt(fields[windowCol], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid window_id at row %d: %w", row, err)
		}

		features := make(map[string]float64, len(header)-1)
		for i, name := range header {
			if i == windowCol {
				continue
			}
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid %s at row %d: %w", name, row, err)
			}
			features[name] = v
		}

		records = append(records, FeatureRecord{WindowID: windowID, Features: features})
	}
	return records, nil
}
