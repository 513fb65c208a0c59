/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: check.go
Description: Built-in self-checks. Validates configuration, the examples directory, the
output directory and that every logical type analyzes cleanly.
*/

package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kleascm/mockjson/pkg/config"
	"github.com/spf13/cobra"
)

// PerformSelfCheck runs the prerequisite checks for generation
func PerformSelfCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	banner(out, "System Self-Check")

	var cfg *config.Config
	var s *session
	defer func() {
		if s != nil {
			s.Close()
		}
	}()

	checks := []struct {
		name     string
		function func() error
	}{
		{"Configuration Validation", func() error {
			var err error
			cfg, err = LoadConfig()
			return err
		}},
		{"Examples Directory", func() error {
			if cfg == nil {
				return fmt.Errorf("configuration unavailable")
			}
			return checkExamples(cfg.Paths.Examples)
		}},
		{"Output Directory", func() error {
			if cfg == nil {
				return fmt.Errorf("configuration unavailable")
			}
			return checkWritable(cfg.Paths.Output)
		}},
		{"Corpus Analysis", func() error {
			if cfg == nil {
				return fmt.Errorf("configuration unavailable")
			}
			var err error
			if s, err = openSession(); err != nil {
				return err
			}
			r, err := s.ctx.Analyze()
			if err != nil {
				return err
			}
			if len(r.Types) == 0 {
				return fmt.Errorf("no logical types found")
			}
			return nil
		}},
	}

	passed := 0
	total := len(checks)

	for _, check := range checks {
		fmt.Fprintf(out, "%s... ", check.name)
		if err := check.function(); err != nil {
			fmt.Fprintf(out, "FAILED: %v\n", err)
		} else {
			fmt.Fprintln(out, "PASSED")
			passed++
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Results: %d/%d checks passed\n", passed, total)

	if passed == total {
		fmt.Fprintln(out, "All checks passed. Ready to generate.")
		return nil
	}
	fmt.Fprintln(out, "Some checks failed. Please address the issues before generating.")
	return fmt.Errorf("%d/%d checks failed", total-passed, total)
}

func checkExamples(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("examples directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .json files in %s", dir)
	}
	return nil
}

func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}
	probe, err := os.CreateTemp(dir, ".mockjson-check-*")
	if err != nil {
		return fmt.Errorf("output directory not writable: %w", err)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}
