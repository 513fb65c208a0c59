/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: generate.go
Description: Record generation command. Generates a batch for one logical type, optionally
mirroring source documents, validates it against the analyzed shape and writes it to the
output directory, a file or stdout.
*/

package commands

import (
	"fmt"
	"sort"

	"github.com/kleascm/mockjson/pkg/output"
	"github.com/kleascm/mockjson/pkg/pipeline"
	"github.com/spf13/cobra"
)

// PerformGeneration generates mock records for a logical type
func PerformGeneration(cmd *cobra.Command, args []string) error {
	logicalType := Settings.GetString("generate.type")
	if len(args) > 0 {
		logicalType = args[0]
	}
	target := Settings.GetString("generate.output")
	out := statusWriter(cmd, target == "-")

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	format, err := output.ParseFormat(s.cfg.Generation.Format)
	if err != nil {
		return err
	}

	req := pipeline.Request{
		LogicalType: logicalType,
		Count:       Settings.GetInt("generate.count"),
		Preserve:    Settings.GetBool("generate.preserve"),
		SourceIndex: Settings.GetInt("generate.source"),
	}

	banner(out, "Generate")
	fmt.Fprintf(out, "Type: %s\n", req.LogicalType)
	fmt.Fprintf(out, "Records: %d\n", req.Count)
	if req.Preserve {
		fmt.Fprintf(out, "Preserving: %v\n", s.ctx.Preserved())
	}
	fmt.Fprintln(out)

	batch, err := s.ctx.Generate(req)
	if err != nil {
		return err
	}

	if batch.Failed() > 0 {
		fmt.Fprintf(out, "%d of %d records failed:\n", batch.Failed(), len(batch.Records))
		for _, r := range batch.Records {
			if r.Err != nil {
				fmt.Fprintf(out, "  - record %d: %v\n", r.Index, r.Err)
			}
		}
		if batch.Produced() == 0 {
			return fmt.Errorf("no records generated for %s: %w", req.LogicalType, batch.Err())
		}
	}

	if Settings.GetBool("generate.validate") {
		problems := batch.Validate()
		if len(problems) > 0 {
			indexes := make([]int, 0, len(problems))
			for i := range problems {
				indexes = append(indexes, i)
			}
			sort.Ints(indexes)
			for _, i := range indexes {
				for _, p := range problems[i] {
					fmt.Fprintf(out, "  record %d: %s\n", i, p)
				}
			}
			return fmt.Errorf("%d records do not match the %s shape", len(problems), req.LogicalType)
		}
		fmt.Fprintln(out, "All records match the analyzed shape")
	}

	if Settings.GetBool("generate.metrics") {
		stats := s.ctx.Cache().Stats()
		path, err := output.WriteMetrics(s.cfg.Paths.Output, Version, output.RunMetrics{
			BatchID:     batch.ID.String(),
			LogicalType: batch.LogicalType,
			Preserve:    batch.Preserve,
			Requested:   len(batch.Records),
			Produced:    batch.Produced(),
			Failed:      batch.Failed(),
			Fingerprint: batch.Fingerprint,
			EntryID:     batch.EntryID.String(),
			StartedAt:   batch.StartedAt,
			Duration:    batch.Duration,
			CacheHits:   stats.Hits,
			CacheBuilds: stats.Builds,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Run metrics written to: %s\n", path)
	}

	sink := output.NewSink(format, output.WithMetadata(s.cfg.Generation.WithMetadata))
	values := batch.Values()

	switch target {
	case "-":
		return sink.WriteRecords(cmd.OutOrStdout(), values)
	case "":
		path, err := sink.SaveRecords(s.cfg.Paths.Output, req.LogicalType, values)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved %d records to: %s\n", len(values), path)
	default:
		if err := sink.SaveFile(target, sink.Tag(values)); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved %d records to: %s\n", len(values), target)
	}
	return nil
}
