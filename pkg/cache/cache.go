/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: cache.go
Description: Schema cache keyed on logical type and corpus fingerprint. A lookup with a
fingerprint that differs from the stored one rebuilds the analysis synchronously and swaps
the new entry in by reference, so readers only ever see complete entries. Concurrent
rebuilds of the same type and fingerprint collapse into one.
*/

package cache

import (
	"fmt"
	"io"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/kleascm/mockjson/pkg/inference"
	"github.com/kleascm/mockjson/pkg/profile"
	"github.com/kleascm/mockjson/pkg/shape"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// DefaultSize bounds the number of cached logical types
const DefaultSize = 128

// Loader supplies the current documents of a logical type
type Loader interface {
	Documents(logicalType string) ([]any, error)
}

// Entry is one published analysis. Entries are never modified after publication.
type Entry struct {
	ID            uuid.UUID
	LogicalType   string
	Shape         *shape.Descriptor
	Profiles      profile.Set
	Fingerprint   string
	BuiltAt       time.Time
	BuildDuration time.Duration
	Documents     []any
}

// Options configures a Cache
type Options struct {
	Size   int
	Engine inference.Engine
	Logger logrus.FieldLogger
	Now    func() time.Time
}

// Stats counts cache activity
type Stats struct {
	Hits   int64
	Misses int64
	Builds int64
}

// Cache memoizes analyses per logical type
type Cache struct {
	entries *lru.Cache[string, *Entry]
	group   singleflight.Group
	loader  Loader
	engine  inference.Engine
	logger  logrus.FieldLogger
	now     func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
	builds atomic.Int64
}

// New creates a cache reading documents from loader
func New(loader Loader, opts Options) (*Cache, error) {
	if loader == nil {
		return nil, fmt.Errorf("cache requires a document loader")
	}
	size := opts.Size
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[string, *Entry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	engine := opts.Engine
	if engine == nil {
		engine = inference.NewJSONEngine(inference.DefaultOptions())
	}
	logger := opts.Logger
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Cache{
		entries: entries,
		loader:  loader,
		engine:  engine,
		logger:  logger,
		now:     now,
	}, nil
}

// GetOrBuild returns the entry for logicalType, rebuilding it when the stored
// fingerprint differs from the supplied one
func (c *Cache) GetOrBuild(logicalType, fingerprint string) (*Entry, error) {
	if e, ok := c.entries.Get(logicalType); ok && e.Fingerprint == fingerprint {
		c.hits.Add(1)
		return e, nil
	}
	c.misses.Add(1)

	key := logicalType + "\x00" + fingerprint
	v, err, shared := c.group.Do(key, func() (any, error) {
		if e, ok := c.entries.Peek(logicalType); ok && e.Fingerprint == fingerprint {
			return e, nil
		}
		e, err := c.build(logicalType, fingerprint)
		if err != nil {
			return nil, err
		}
		c.entries.Add(logicalType, e)
		return e, nil
	})
	if err != nil {
		return nil, err
	}

	entry := v.(*Entry)
	if shared {
		c.logger.WithField("logical_type", logicalType).Debug("Joined in-flight cache rebuild")
	}
	return entry, nil
}

func (c *Cache) build(logicalType, fingerprint string) (*Entry, error) {
	start := c.now()
	docs, err := c.loader.Documents(logicalType)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus for %s: %w", logicalType, err)
	}
	result, err := c.engine.Infer(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze %s: %w", logicalType, err)
	}
	c.builds.Add(1)

	builtAt := c.now()
	entry := &Entry{
		ID:            uuid.New(),
		LogicalType:   logicalType,
		Shape:         result.Shape,
		Profiles:      result.Profiles,
		Fingerprint:   fingerprint,
		BuiltAt:       builtAt,
		BuildDuration: builtAt.Sub(start),
		Documents:     docs,
	}

	c.logger.WithFields(logrus.Fields{
		"logical_type": logicalType,
		"entry_id":     entry.ID.String(),
		"documents":    result.Documents,
		"paths":        len(result.Profiles),
		"duration":     entry.BuildDuration,
	}).Info("Schema cache rebuilt")

	return entry, nil
}

// Peek returns the stored entry without touching recency
func (c *Cache) Peek(logicalType string) (*Entry, bool) {
	return c.entries.Peek(logicalType)
}

// Invalidate drops the entry of a logical type
func (c *Cache) Invalidate(logicalType string) bool {
	return c.entries.Remove(logicalType)
}

// Purge drops every entry
func (c *Cache) Purge() {
	c.entries.Purge()
}

// Len is the number of cached logical types
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Types lists the cached logical types in sorted order
func (c *Cache) Types() []string {
	keys := c.entries.Keys()
	sort.Strings(keys)
	return keys
}

// Stats returns the activity counters
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Builds: c.builds.Load(),
	}
}
