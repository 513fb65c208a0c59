/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inference.go
Description: Main entry point for structure inference over example corpora. Provides the
Engine interface returning a unified shape descriptor plus the per-path profile set for one
logical type's documents.
*/

package inference

import (
	"github.com/kleascm/mockjson/pkg/mockerr"
	"github.com/kleascm/mockjson/pkg/profile"
	"github.com/kleascm/mockjson/pkg/shape"
)

// Engine defines the interface for structure inference engines
type Engine interface {
	Infer(docs []any) (*Result, error)
	InferBytes(samples [][]byte) (*Result, error)
	Format() string
}

// Result is the analysis of one logical type's corpus
type Result struct {
	Shape     *shape.Descriptor // Union of every document's shape
	Profiles  profile.Set       // Per-path value observations
	Documents int               // Number of analyzed documents
}

// Options tunes analysis
type Options struct {
	MaxDistinct int      // Distinct values retained per path
	Sensitive   []string // Field names that never retain values
	MaxDepth    int      // Nesting bound for the analyzer
}

// DefaultOptions returns the stock analysis options
func DefaultOptions() Options {
	return Options{
		MaxDistinct: profile.DefaultMaxDistinct,
		Sensitive:   append([]string(nil), profile.DefaultSensitiveFields...),
		MaxDepth:    shape.DefaultMaxDepth,
	}
}

// NewEngine returns an appropriate inference engine for the given format
func NewEngine(format string, opts Options) (Engine, error) {
	switch format {
	case "json", "":
		return NewJSONEngine(opts), nil
	default:
		return nil, mockerr.New(mockerr.ErrConfiguration, "inference", format).
			With("reason", "unsupported corpus format")
	}
}
