/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: commands_test.go
Description: End to end tests of the commands over a temporary examples directory
*/

package commands_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kleascm/mockjson/cmd/mockjson/commands"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type workspace struct {
	dir      string
	examples string
	output   string
	config   string
}

func setup(t *testing.T) *workspace {
	t.Helper()
	dir := t.TempDir()
	ws := &workspace{
		dir:      dir,
		examples: filepath.Join(dir, "examples"),
		output:   filepath.Join(dir, "output"),
		config:   filepath.Join(dir, "config.yaml"),
	}
	require.NoError(t, os.MkdirAll(ws.examples, 0755))

	files := map[string]string{
		"policy_1.json": `{"policyNo": "P-1", "status": "ACTIVE", "premium": 120.5, "holder": {"firstName": "Dana"}}`,
		"policy_2.json": `{"policyNo": "P-2", "status": "LAPSED", "premium": 80.25, "holder": {"firstName": "Noa"}}`,
		"claim_1.json":  `{"claimId": "C-1", "amount": 10, "tags": ["water"]}`,
		"broken_1.json": `{not json`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(ws.examples, name), []byte(content), 0644))
	}

	require.NoError(t, os.WriteFile(ws.config, []byte(`
paths:
  examples: `+ws.examples+`
  output: `+ws.output+`
preserve_fields: [status]
seed: 11
logging:
  output_dir: ""
  console: false
`), 0644))

	settings := commands.ResetSettings()
	settings.Set("config", ws.config)
	return ws
}

func run(t *testing.T, fn func(*cobra.Command, []string) error, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := fn(cmd, args)
	return stdout.String(), stderr.String(), err
}

func TestListTypes(t *testing.T) {
	setup(t)
	out, _, err := run(t, commands.ListTypes)
	require.NoError(t, err)
	assert.Contains(t, out, "claim")
	assert.Contains(t, out, "policy")
	assert.Contains(t, out, "2 types")
	assert.NotContains(t, out, "broken")
}

func TestGenerateToStdout(t *testing.T) {
	setup(t)
	commands.Settings.Set("generate.type", "policy")
	commands.Settings.Set("generate.count", 3)
	commands.Settings.Set("generate.output", "-")
	commands.Settings.Set("generate.validate", true)

	out, status, err := run(t, commands.PerformGeneration)
	require.NoError(t, err)
	assert.Contains(t, status, "Records: 3")
	assert.Contains(t, status, "All records match the analyzed shape")

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 3)
	for _, r := range records {
		assert.Contains(t, r, "policyNo")
		assert.Contains(t, r, "holder")
	}
}

func TestGeneratePreserveToFile(t *testing.T) {
	ws := setup(t)
	commands.Settings.Set("generate.count", 2)
	commands.Settings.Set("generate.preserve", true)
	commands.Settings.Set("generate.source", 0)
	commands.Settings.Set("generation.format", "yaml")
	commands.Settings.Set("generate.metrics", true)

	out, _, err := run(t, commands.PerformGeneration, "policy")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved 2 records to:")

	data, err := os.ReadFile(filepath.Join(ws.output, "mock_policy.yaml"))
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, yaml.Unmarshal(data, &records))
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, "ACTIVE", r["status"])
	}

	assert.Contains(t, out, "Run metrics written to:")
	metrics, err := filepath.Glob(filepath.Join(ws.output, "metrics", "policy", "*_policy_v"+commands.Version+".json"))
	require.NoError(t, err)
	assert.Len(t, metrics, 1)
}

func TestGenerateRejectsBadRequests(t *testing.T) {
	setup(t)
	commands.Settings.Set("generate.count", 0)
	_, _, err := run(t, commands.PerformGeneration, "policy")
	assert.Error(t, err)

	commands.Settings.Set("generate.count", 1)
	_, _, err = run(t, commands.PerformGeneration, "nothing")
	assert.ErrorContains(t, err, "unknown logical type")
}

func TestPreserveCommands(t *testing.T) {
	ws := setup(t)

	out, _, err := run(t, commands.AddPreserved, "currency", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Added 'currency' to preserve list")
	assert.Contains(t, out, "'status' is already preserved")

	data, err := os.ReadFile(ws.config)
	require.NoError(t, err)
	assert.Contains(t, string(data), "currency")

	out, _, err = run(t, commands.RemovePreserved, "status", "ghost")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 'status' from preserve list")
	assert.Contains(t, out, "'ghost' was not in preserve list")

	// A fresh load sees what was written
	commands.ResetSettings().Set("config", ws.config)
	out, _, err = run(t, commands.ListPreserved)
	require.NoError(t, err)
	assert.Contains(t, out, "- currency")
	assert.NotContains(t, out, "- status")
}

func TestAnalyzeExportsReport(t *testing.T) {
	ws := setup(t)
	reportPath := filepath.Join(ws.dir, "report.json")
	commands.Settings.Set("analyze.json", reportPath)
	commands.Settings.Set("analyze.samples", 2)
	commands.Settings.Set("analyze.dump", true)

	out, _, err := run(t, commands.PerformAnalysis, "policy")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 logical types:")
	assert.Contains(t, out, "policy descriptor:")
	assert.Contains(t, out, "Report saved to:")

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Len(t, report["types"], 1)
}

func TestSelfCheck(t *testing.T) {
	setup(t)
	out, _, err := run(t, commands.PerformSelfCheck)
	require.NoError(t, err)
	assert.Contains(t, out, "Results: 4/4 checks passed")

	commands.Settings.Set("paths.examples", filepath.Join(t.TempDir(), "missing"))
	out, _, err = run(t, commands.PerformSelfCheck)
	assert.Error(t, err)
	assert.Contains(t, out, "Examples Directory... FAILED")
}
