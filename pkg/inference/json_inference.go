/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: json_inference.go
Description: JSON structure inference engine. Analyzes a corpus of JSON documents, merges
their shapes into one descriptor and profiles every path in the same pass.
*/

package inference

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kleascm/mockjson/pkg/mockerr"
	"github.com/kleascm/mockjson/pkg/profile"
	"github.com/kleascm/mockjson/pkg/shape"
)

// JSONEngine infers structure from JSON documents
type JSONEngine struct {
	opts     Options
	analyzer *shape.Analyzer
}

// NewJSONEngine creates a new JSON inference engine
func NewJSONEngine(opts Options) *JSONEngine {
	return &JSONEngine{
		opts:     opts,
		analyzer: &shape.Analyzer{MaxDepth: opts.MaxDepth},
	}
}

// Infer analyzes already decoded documents. An empty corpus yields an empty object shape.
func (e *JSONEngine) Infer(docs []any) (*Result, error) {
	builder := profile.NewBuilder(e.opts.MaxDistinct, e.opts.Sensitive)

	if len(docs) == 0 {
		return &Result{Shape: shape.Object(nil), Profiles: builder.Profiles()}, nil
	}

	var merged *shape.Descriptor
	for i, doc := range docs {
		d, err := e.analyzer.Analyze(doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		merged = shape.Merge(merged, d)
		builder.Observe(doc)
	}

	profiles := builder.Profiles()
	if stray := profile.CheckPaths(profiles, merged); len(stray) > 0 {
		return nil, mockerr.New(mockerr.ErrSchemaAnalysis, "infer", "").
			With("stray_paths", strings.Join(stray, ", "))
	}

	return &Result{Shape: merged, Profiles: profiles, Documents: builder.Documents()}, nil
}

// InferBytes decodes JSON samples, keeping numbers exact, then analyzes them
func (e *JSONEngine) InferBytes(samples [][]byte) (*Result, error) {
	docs := make([]any, 0, len(samples))
	for i, sample := range samples {
		doc, err := Decode(sample)
		if err != nil {
			return nil, mockerr.Wrap(mockerr.ErrSchemaAnalysis, "decode", fmt.Sprintf("sample %d", i), err)
		}
		docs = append(docs, doc)
	}
	return e.Infer(docs)
}

// Format returns the format handled by this engine
func (e *JSONEngine) Format() string {
	return "json"
}

// Decode parses one JSON document with json.Number for numbers
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to parse sample: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("failed to parse sample: trailing data after document")
	}
	return v, nil
}
