package sim

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteMetricsCSV(t *testing.T) {
	metrics := []WindowMetrics{
		{WindowID: 1, Offered: 150, Admitted: 150, ProcessedTPS: 100, Backlog: 50, LatencyMS: 135.5, Dropped: 0, PolicyFired: false, OverheadMult: 1},
		{WindowID: 2, Offered: 150, Admitted: 0, ProcessedTPS: 50, Backlog: 0, LatencyMS: 120, Dropped: 75, PolicyFired: true, OverheadMult: 1.1},
	}

	var buf bytes.Buffer
	if err := WriteMetricsCSV(&buf, metrics); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	assert.Equal(t, []string{
		"window_id", "offered", "admitted", "processed_tps",
		"backlog", "latency_ms", "dropped", "policy_fired", "overhead_mult",
	}, rows[0])
	assert.Equal(t, []string{"1", "150", "150", "100", "50", "135.5", "0", "false", "1"}, rows[1])
	assert.Equal(t, "true", rows[2][7])
	assert.Equal(t, "1.1", rows[2][8])
}

func TestWriteSummaryCSV(t *testing.T) {
	summaries := []Summary{
		{Scenario: "S0", ProcessedTPSMean: 100, LatencyMSMean: 120, BacklogMax: 0, DroppedSum: 0, PolicyFiredRatio: 0},
		{Scenario: "S3", ProcessedTPSMean: 85.5, LatencyMSMean: 141.25, BacklogMax: 320, DroppedSum: 812.5, PolicyFiredRatio: 0.75},
	}

	var buf bytes.Buffer
	if err := WriteSummaryCSV(&buf, summaries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	assert.Equal(t, "scenario", rows[0][0])
	assert.Equal(t, []string{"S3", "85.5", "141.25", "320", "812.5", "0.75"}, rows[2])
}
