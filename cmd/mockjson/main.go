/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Command-line interface for mockjson. Generates realistic mock JSON records from
a directory of example documents, manages the preserve policy and analyzes the corpus.
Flags are bound to configuration keys so config.yaml, MOCKJSON_* variables and flags agree.
*/

package main

import (
	"fmt"
	"os"

	"github.com/kleascm/mockjson/cmd/mockjson/commands"
	"github.com/kleascm/mockjson/pkg/pipeline"
	"github.com/spf13/cobra"
)

var (
	// Configuration
	configFile  string
	examplesDir string
	outputDir   string

	// Logging configuration
	logLevel  string
	logFormat string
	logDir    string
	jsonLogs  bool
)

func main() {
	settings := commands.Settings

	rootCmd := &cobra.Command{
		Use:   "mockjson",
		Short: "mockjson - Mock JSON data generator driven by example documents",
		Long: `mockjson learns the structure of your API responses from example documents and
generates realistic mock records that match them. Observed values are reused where they
make sense, unknown fields fall back to name based heuristics, and chosen fields can keep
their original values.`,
		Version:       commands.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if jsonLogs {
				settings.Set("logging.format", "json")
			}
		},
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file path (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&examplesDir, "examples", "./examples", "Directory of example JSON documents")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "./output", "Directory for generated files")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "./logs", "Log output directory, empty to disable log files")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Use JSON log format")

	settings.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	settings.BindPFlag("paths.examples", rootCmd.PersistentFlags().Lookup("examples"))
	settings.BindPFlag("paths.output", rootCmd.PersistentFlags().Lookup("output-dir"))
	settings.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	settings.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	settings.BindPFlag("logging.output_dir", rootCmd.PersistentFlags().Lookup("log-dir"))

	// Add generate command
	generateCmd := &cobra.Command{
		Use:   "generate [type]",
		Short: "Generate mock records for a logical type",
		Long: `Generate mock records for one logical type. Records follow the shape merged from
every example of the type. With --preserve each record mirrors an example document and
fields on the preserve list keep their original values.`,
		Args: cobra.MaximumNArgs(1),
		RunE: commands.PerformGeneration,
	}

	generateCmd.Flags().StringP("type", "t", "", "Logical type to generate")
	generateCmd.Flags().IntP("count", "n", 1, "Number of records to generate")
	generateCmd.Flags().Bool("preserve", false, "Mirror example documents and keep preserved fields")
	generateCmd.Flags().Int("source", pipeline.CycleSources, "Example document to mirror in preserve mode (-1 cycles through all)")
	generateCmd.Flags().StringP("output", "o", "", "Output file, '-' for stdout (default <output-dir>/mock_<type>.<ext>)")
	generateCmd.Flags().String("format", "json", "Output format (json, yaml)")
	generateCmd.Flags().Bool("validate", false, "Check every record against the analyzed shape")
	generateCmd.Flags().Bool("with-metadata", false, "Add _mock_id and _generated_at to each record")
	generateCmd.Flags().Bool("metrics", false, "Write run metrics under <output-dir>/metrics")

	settings.BindPFlag("generate.type", generateCmd.Flags().Lookup("type"))
	settings.BindPFlag("generate.count", generateCmd.Flags().Lookup("count"))
	settings.BindPFlag("generate.preserve", generateCmd.Flags().Lookup("preserve"))
	settings.BindPFlag("generate.source", generateCmd.Flags().Lookup("source"))
	settings.BindPFlag("generate.output", generateCmd.Flags().Lookup("output"))
	settings.BindPFlag("generation.format", generateCmd.Flags().Lookup("format"))
	settings.BindPFlag("generate.validate", generateCmd.Flags().Lookup("validate"))
	settings.BindPFlag("generation.with_metadata", generateCmd.Flags().Lookup("with-metadata"))
	settings.BindPFlag("generate.metrics", generateCmd.Flags().Lookup("metrics"))

	rootCmd.AddCommand(generateCmd)

	// Add types command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "types",
		Short: "List logical types found in the examples directory",
		RunE:  commands.ListTypes,
	})

	// Add preserve command group
	preserveCmd := &cobra.Command{
		Use:   "preserve",
		Short: "Manage fields that keep their original values",
	}
	preserveCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List preserved fields",
		RunE:  commands.ListPreserved,
	})
	preserveCmd.AddCommand(&cobra.Command{
		Use:   "add <field>...",
		Short: "Preserve fields",
		Args:  cobra.MinimumNArgs(1),
		RunE:  commands.AddPreserved,
	})
	preserveCmd.AddCommand(&cobra.Command{
		Use:   "remove <field>...",
		Short: "Stop preserving fields",
		Args:  cobra.MinimumNArgs(1),
		RunE:  commands.RemovePreserved,
	})
	rootCmd.AddCommand(preserveCmd)

	// Add analyze command
	analyzeCmd := &cobra.Command{
		Use:   "analyze [type]...",
		Short: "Analyze the example corpus",
		Long: `Analyze the example corpus and print the merged structure of each logical type:
field kinds, optional fields and observed sample values. The full report can be exported
as JSON or YAML, and --watch keeps re-analyzing as example files change.`,
		RunE: commands.PerformAnalysis,
	}

	analyzeCmd.Flags().StringSlice("type", []string{}, "Logical types to analyze (default all)")
	analyzeCmd.Flags().String("json", "", "Write the full report to this file (.json or .yaml)")
	analyzeCmd.Flags().Int("samples", 5, "Sample values shown per field")
	analyzeCmd.Flags().Bool("dump", false, "Dump raw shape descriptors")
	analyzeCmd.Flags().Bool("watch", false, "Re-analyze whenever example files change")

	settings.BindPFlag("analyze.type", analyzeCmd.Flags().Lookup("type"))
	settings.BindPFlag("analyze.json", analyzeCmd.Flags().Lookup("json"))
	settings.BindPFlag("analyze.samples", analyzeCmd.Flags().Lookup("samples"))
	settings.BindPFlag("analyze.dump", analyzeCmd.Flags().Lookup("dump"))
	settings.BindPFlag("analyze.watch", analyzeCmd.Flags().Lookup("watch"))

	rootCmd.AddCommand(analyzeCmd)

	// Add check command for built-in self-checks
	rootCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Perform built-in self-checks",
		Long: `Validate the configuration, the examples and output directories and analyze every
logical type once. Useful in CI before generating fixtures.`,
		RunE: commands.PerformSelfCheck,
	})

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
