/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: corpus.go
Description: Example corpus supply. Loads parsed JSON documents from a directory and groups
them by logical type, either by filename prefix or by the value of a grouping field.
Documents can be split out of an array inside each file. Unreadable files are skipped.
*/

package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kleascm/mockjson/pkg/inference"
	"github.com/kleascm/mockjson/pkg/mockerr"
	"github.com/sirupsen/logrus"
)

// AllTypes selects every document regardless of grouping
const AllTypes = "all"

// Grouping selects how documents map to logical types
type Grouping string

const (
	GroupByFilename Grouping = "filename" // Prefix before the first underscore
	GroupByField    Grouping = "field"    // Value of a field in the document
)

// DefaultGroupField is read when grouping by field
const DefaultGroupField = "entity"

// Source supplies documents per logical type plus an equality-comparable fingerprint
type Source interface {
	Types() ([]string, error)
	Documents(logicalType string) ([]any, error)
	Fingerprint(logicalType string) (string, error)
}

// Options configures a DirSource
type Options struct {
	Dir        string
	GroupBy    Grouping
	GroupField string // Field holding the logical type when grouping by field
	SplitPath  string // Dotted path of an array whose elements become documents
	Logger     logrus.FieldLogger
}

// DirSource reads *.json files from a directory on every call
type DirSource struct {
	opts   Options
	logger logrus.FieldLogger
}

// NewDirSource creates a directory-backed source
func NewDirSource(opts Options) (*DirSource, error) {
	if opts.Dir == "" {
		return nil, mockerr.New(mockerr.ErrConfiguration, "corpus", "dir").
			With("reason", "examples directory must not be empty")
	}
	if opts.GroupBy == "" {
		opts.GroupBy = GroupByFilename
	}
	switch opts.GroupBy {
	case GroupByFilename, GroupByField:
	default:
		return nil, mockerr.New(mockerr.ErrConfiguration, "corpus", string(opts.GroupBy)).
			With("reason", "unsupported grouping")
	}
	if opts.GroupField == "" {
		opts.GroupField = DefaultGroupField
	}
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}
	return &DirSource{opts: opts, logger: logger}, nil
}

// Dir returns the examples directory
func (s *DirSource) Dir() string {
	return s.opts.Dir
}

// Snapshot is one consistent read of the corpus
type Snapshot struct {
	groups map[string][]any
	order  []string
	all    []any
}

// Types lists the logical types in sorted order
func (s *Snapshot) Types() []string {
	return append([]string(nil), s.order...)
}

// Documents returns the documents of a type in load order
func (s *Snapshot) Documents(logicalType string) ([]any, bool) {
	if logicalType == AllTypes {
		return s.all, len(s.all) > 0
	}
	docs, ok := s.groups[logicalType]
	return docs, ok
}

// Fingerprint hashes the documents of a type
func (s *Snapshot) Fingerprint(logicalType string) (string, error) {
	docs, _ := s.Documents(logicalType)
	return Fingerprint(docs)
}

// Load reads the directory once
func (s *DirSource) Load() (*Snapshot, error) {
	files, err := s.files()
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{groups: make(map[string][]any)}
	for _, file := range files {
		docs, err := s.readFile(file)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"file":  filepath.Base(file),
				"error": err,
			}).Warn("Could not process example file")
			continue
		}
		for _, doc := range docs {
			logicalType, ok := s.logicalType(file, doc)
			if !ok {
				s.logger.WithField("file", filepath.Base(file)).Debug("Document has no logical type, skipped")
				continue
			}
			if _, seen := snap.groups[logicalType]; !seen {
				snap.order = append(snap.order, logicalType)
			}
			snap.groups[logicalType] = append(snap.groups[logicalType], doc)
			snap.all = append(snap.all, doc)
		}
	}
	sort.Strings(snap.order)
	return snap, nil
}

// Types lists the logical types currently present
func (s *DirSource) Types() ([]string, error) {
	snap, err := s.Load()
	if err != nil {
		return nil, err
	}
	return snap.Types(), nil
}

// Documents returns the current documents of a type
func (s *DirSource) Documents(logicalType string) ([]any, error) {
	snap, err := s.Load()
	if err != nil {
		return nil, err
	}
	docs, ok := snap.Documents(logicalType)
	if !ok {
		return nil, mockerr.UnknownType(logicalType, snap.Types())
	}
	return docs, nil
}

// Fingerprint hashes the current documents of a type
func (s *DirSource) Fingerprint(logicalType string) (string, error) {
	snap, err := s.Load()
	if err != nil {
		return "", err
	}
	if _, ok := snap.Documents(logicalType); !ok {
		return "", mockerr.UnknownType(logicalType, snap.Types())
	}
	return snap.Fingerprint(logicalType)
}

func (s *DirSource) files() ([]string, error) {
	info, err := os.Stat(s.opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("examples directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("examples path %s is not a directory", s.opts.Dir)
	}
	files, err := filepath.Glob(filepath.Join(s.opts.Dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list examples: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

func (s *DirSource) readFile(file string) ([]any, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	doc, err := inference.Decode(data)
	if err != nil {
		return nil, err
	}
	if s.opts.SplitPath == "" {
		return []any{doc}, nil
	}

	elems, ok := lookupArray(doc, s.opts.SplitPath)
	if !ok {
		return nil, fmt.Errorf("no array at %s", s.opts.SplitPath)
	}
	return elems, nil
}

func (s *DirSource) logicalType(file string, doc any) (string, bool) {
	if s.opts.GroupBy == GroupByFilename {
		name := TypeFromFilename(file)
		return name, name != ""
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return "", false
	}
	value, ok := obj[s.opts.GroupField]
	if !ok || value == nil {
		return "", false
	}
	name := strings.TrimSpace(fmt.Sprint(value))
	return name, name != ""
}

// TypeFromFilename returns the part of a file's base name before the first underscore
func TypeFromFilename(file string) string {
	stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	if i := strings.IndexByte(stem, '_'); i >= 0 {
		return stem[:i]
	}
	return stem
}

func lookupArray(doc any, path string) ([]any, bool) {
	current := doc
	for _, segment := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[segment]
		if !ok {
			return nil, false
		}
	}
	elems, ok := current.([]any)
	return elems, ok
}
