/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sink.go
Description: Output sinks for generated records and analysis reports. Records are written as
indented JSON without HTML escaping or as YAML, either to a writer or to mock_<type> files in
the output directory. Optional metadata tags each object record with an id and timestamp.
*/

package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/mockjson/pkg/mockerr"
	"github.com/kleascm/mockjson/pkg/profile"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Metadata keys added to object records
const (
	MetaID          = "_mock_id"
	MetaGeneratedAt = "_generated_at"
)

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", mockerr.New(mockerr.ErrConfiguration, "output", name).
		With("reason", "unsupported output format")
}

// Ext returns the file extension of the format
func (f Format) Ext() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// FileName returns the output file name of a logical type
func FileName(logicalType string, f Format) string {
	return "mock_" + unsafeName.ReplaceAllString(logicalType, "_") + f.Ext()
}

// Option tunes a Sink
type Option func(*Sink)

// WithMetadata tags object records with _mock_id and _generated_at
func WithMetadata(enabled bool) Option {
	return func(s *Sink) { s.metadata = enabled }
}

// WithClock overrides the metadata timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *Sink) { s.now = now }
}

// Sink encodes values in one format
type Sink struct {
	format   Format
	metadata bool
	now      func() time.Time
}

// NewSink creates a sink for format
func NewSink(format Format, opts ...Option) *Sink {
	s := &Sink{format: format, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Format returns the sink's encoding
func (s *Sink) Format() Format {
	return s.format
}

// Tag returns the records with metadata applied. Records are copied, never modified.
func (s *Sink) Tag(records []any) []any {
	if !s.metadata {
		return records
	}
	stamp := s.now().UTC().Format(time.RFC3339)
	out := make([]any, len(records))
	for i, r := range records {
		obj, ok := r.(map[string]any)
		if !ok {
			out[i] = r
			continue
		}
		tagged := make(map[string]any, len(obj)+2)
		for k, v := range obj {
			tagged[k] = v
		}
		tagged[MetaID] = uuid.NewString()
		tagged[MetaGeneratedAt] = stamp
		out[i] = tagged
	}
	return out
}

// Encode writes v to w
func (s *Sink) Encode(w io.Writer, v any) error {
	switch s.format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(plain(v)); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}
}

// WriteRecords tags and writes a record list to w
func (s *Sink) WriteRecords(w io.Writer, records []any) error {
	if records == nil {
		records = []any{}
	}
	return s.Encode(w, s.Tag(records))
}

// SaveRecords writes records to <dir>/mock_<type>.<ext> and returns the path
func (s *Sink) SaveRecords(dir, logicalType string, records []any) (string, error) {
	var buf bytes.Buffer
	if err := s.WriteRecords(&buf, records); err != nil {
		return "", err
	}
	return s.save(dir, FileName(logicalType, s.format), buf.Bytes())
}

// SaveFile encodes v to path, creating parent directories
func (s *Sink) SaveFile(path string, v any) error {
	var buf bytes.Buffer
	if err := s.Encode(&buf, v); err != nil {
		return err
	}
	_, err := s.save(filepath.Dir(path), filepath.Base(path), buf.Bytes())
	return err
}

func (s *Sink) save(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// plain rebuilds v with decoder numbers converted so YAML emits them as numbers
func plain(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, child := range x {
			out[k] = plain(child)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, child := range x {
			out[i] = plain(child)
		}
		return out
	default:
		return profile.PlainValue(v)
	}
}
