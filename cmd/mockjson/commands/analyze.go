/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: analyze.go
Description: Corpus analysis command. Prints the merged shape and field samples of each
logical type, exports the report as JSON or YAML, dumps raw descriptors for debugging and
can keep re-analyzing while the examples directory changes.
*/

package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"github.com/kleascm/mockjson/pkg/corpus"
	"github.com/kleascm/mockjson/pkg/output"
	"github.com/kleascm/mockjson/pkg/report"
	"github.com/spf13/cobra"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// PerformAnalysis analyzes the example corpus
func PerformAnalysis(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	types := append(Settings.GetStringSlice("analyze.type"), args...)
	samples := Settings.GetInt("analyze.samples")

	banner(out, "Corpus Analysis")
	fmt.Fprintf(out, "Examples: %s\n\n", s.cfg.Paths.Examples)

	r, err := s.ctx.Analyze(types...)
	if err != nil {
		return err
	}
	if err := report.WriteText(out, r, samples); err != nil {
		return err
	}

	if path := Settings.GetString("analyze.json"); path != "" {
		format := output.FormatJSON
		if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
			format = output.FormatYAML
		}
		if err := output.NewSink(format).SaveFile(path, r.ToMap()); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nReport saved to: %s\n", path)
	}

	if Settings.GetBool("analyze.dump") {
		for _, t := range r.Types {
			entry, err := s.ctx.Entry(t.LogicalType)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%s descriptor:\n", t.LogicalType)
			dumpConfig.Fdump(out, entry.Shape)
		}
	}

	if !Settings.GetBool("analyze.watch") {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "\nWatching %s for changes (Ctrl+C to stop)\n", s.cfg.Paths.Examples)
	err = s.ctx.Watch(ctx, s.cfg.Paths.Examples, func(change corpus.Change, r *report.Report, err error) {
		fmt.Fprintf(out, "\n%s %s\n", change.Op, filepath.Base(change.File))
		if err != nil {
			fmt.Fprintf(out, "Analysis failed: %v\n", err)
			return
		}
		report.WriteText(out, r, samples)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
