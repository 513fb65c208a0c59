/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics.go
Description: Run metrics for generation batches. Writes one timestamped, versioned JSON file
per run under <dir>/metrics/<type> so runs can be compared later.
*/

package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RunMetrics summarizes one generation run
type RunMetrics struct {
	BatchID     string        `json:"batch_id"`
	LogicalType string        `json:"logical_type"`
	Preserve    bool          `json:"preserve"`
	Requested   int           `json:"requested"`
	Produced    int           `json:"produced"`
	Failed      int           `json:"failed"`
	Fingerprint string        `json:"fingerprint"`
	EntryID     string        `json:"entry_id"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration_ns"`
	CacheHits   int64         `json:"cache_hits"`
	CacheBuilds int64         `json:"cache_builds"`
}

// WriteMetrics writes m to <dir>/metrics/<type>/<timestamp>_<type>_v<version>.json
func WriteMetrics(dir, version string, m RunMetrics) (string, error) {
	clean := unsafeName.ReplaceAllString(m.LogicalType, "_")
	metricsDir := filepath.Join(dir, "metrics", clean)
	if err := os.MkdirAll(metricsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create metrics directory: %w", err)
	}

	// 2024-06-11_01-30-00_policy_v1.0.0.json
	stamp := m.StartedAt
	if stamp.IsZero() {
		stamp = time.Now()
	}
	filename := fmt.Sprintf("%s_%s_v%s.json", stamp.Format("2006-01-02_15-04-05"), clean, version)
	path := filepath.Join(metricsDir, filename)

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal metrics: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write metrics file: %w", err)
	}
	return path, nil
}
