/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sink_test.go
Description: Tests for output encoding, file naming and record metadata
*/

package output_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kleascm/mockjson/pkg/mockerr"
	"github.com/kleascm/mockjson/pkg/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseFormat(t *testing.T) {
	f, err := output.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, output.FormatJSON, f)

	f, err = output.ParseFormat("yml")
	require.NoError(t, err)
	assert.Equal(t, output.FormatYAML, f)

	_, err = output.ParseFormat("xml")
	assert.ErrorIs(t, err, mockerr.ErrConfiguration)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "mock_policy.json", output.FileName("policy", output.FormatJSON))
	assert.Equal(t, "mock_Travel_Plan_v2.yaml", output.FileName("Travel Plan-v2", output.FormatYAML))
}

func TestJSONKeepsNonASCII(t *testing.T) {
	var buf bytes.Buffer
	sink := output.NewSink(output.FormatJSON)
	require.NoError(t, sink.WriteRecords(&buf, []any{map[string]any{"city": "Zürich", "note": "<a&b>"}}))

	assert.Contains(t, buf.String(), "Zürich")
	assert.Contains(t, buf.String(), "<a&b>")
	assert.Contains(t, buf.String(), "\n  {")

	var back []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "Zürich", back[0]["city"])
}

func TestYAMLPlainNumbers(t *testing.T) {
	var buf bytes.Buffer
	sink := output.NewSink(output.FormatYAML)
	require.NoError(t, sink.WriteRecords(&buf, []any{map[string]any{"amount": json.Number("12"), "rate": json.Number("1.5")}}))

	var back []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, 12, back[0]["amount"])
	assert.Equal(t, 1.5, back[0]["rate"])
}

func TestMetadata(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	sink := output.NewSink(output.FormatJSON, output.WithMetadata(true), output.WithClock(func() time.Time { return fixed }))

	records := []any{map[string]any{"a": 1}, "scalar"}
	tagged := sink.Tag(records)

	obj := tagged[0].(map[string]any)
	assert.Equal(t, "2026-01-02T03:04:05Z", obj[output.MetaGeneratedAt])
	assert.Len(t, obj[output.MetaID], 36)
	assert.Equal(t, "scalar", tagged[1])
	_, touched := records[0].(map[string]any)[output.MetaID]
	assert.False(t, touched, "input records stay untouched")

	plain := output.NewSink(output.FormatJSON)
	assert.Equal(t, records, plain.Tag(records))
}

func TestSaveRecords(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink := output.NewSink(output.FormatJSON)

	path, err := sink.SaveRecords(dir, "trip", []any{map[string]any{"id": "T-1"}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mock_trip.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id": "T-1"}]`, string(data))

	empty, err := sink.SaveRecords(dir, "none", nil)
	require.NoError(t, err)
	data, err = os.ReadFile(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestWriteMetrics(t *testing.T) {
	dir := t.TempDir()
	started := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	path, err := output.WriteMetrics(dir, "1.0.0", output.RunMetrics{
		LogicalType: "travel plan",
		Requested:   5,
		Produced:    4,
		Failed:      1,
		StartedAt:   started,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "metrics", "travel_plan", "2026-02-03_04-05-06_travel_plan_v1.0.0.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, 4.0, m["produced"])
	assert.Equal(t, "travel plan", m["logical_type"])
}
