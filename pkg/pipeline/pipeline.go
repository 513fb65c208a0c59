/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: pipeline.go
Description: The generation context. Owns the corpus source, schema cache, generator registry
and preserve policy store for one run, and exposes the operations the CLI drives: listing
types, analyzing the corpus, generating record batches and editing the preserve policy.
*/

package pipeline

import (
	"sync"
	"time"

	"github.com/kleascm/mockjson/pkg/cache"
	"github.com/kleascm/mockjson/pkg/config"
	"github.com/kleascm/mockjson/pkg/corpus"
	"github.com/kleascm/mockjson/pkg/generator"
	"github.com/kleascm/mockjson/pkg/inference"
	"github.com/kleascm/mockjson/pkg/logging"
	"github.com/kleascm/mockjson/pkg/mockerr"
	"github.com/kleascm/mockjson/pkg/policy"
	"github.com/kleascm/mockjson/pkg/report"
	"github.com/kleascm/mockjson/pkg/shape"
	"github.com/spf13/viper"
)

// Options assembles a Context. Only Config is required.
type Options struct {
	Config   *config.Config
	Source   corpus.Source   // Nil reads the configured examples directory
	Policies *policy.Store   // Nil keeps the configured preserve list in memory
	Logger   *logging.Logger // Nil discards
	Now      func() time.Time
}

// Context wires the components of one generation run
type Context struct {
	cfg      *config.Config
	logger   *logging.Logger
	source   corpus.Source
	cache    *cache.Cache
	registry *generator.Registry
	policies *policy.Store
	now      func() time.Time

	bootMu sync.Mutex
	booted bool
}

// New creates a context from opts
func New(opts Options) (*Context, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, mockerr.New(mockerr.ErrConfiguration, "pipeline", "config").
			With("reason", "configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	log := logger.GetLogger()

	source := opts.Source
	if source == nil {
		dir, err := corpus.NewDirSource(cfg.CorpusOptions(log))
		if err != nil {
			return nil, err
		}
		source = dir
	}

	engine, err := inference.NewEngine("json", inference.Options{
		MaxDistinct: cfg.Profile.MaxDistinct,
		Sensitive:   cfg.SensitiveFields,
		MaxDepth:    shape.DefaultMaxDepth,
	})
	if err != nil {
		return nil, err
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	schemaCache, err := cache.New(source, cache.Options{
		Size:   cfg.Cache.Size,
		Engine: engine,
		Logger: log,
		Now:    now,
	})
	if err != nil {
		return nil, err
	}

	synthOpts, err := cfg.SynthOptions()
	if err != nil {
		return nil, err
	}

	policies := opts.Policies
	if policies == nil {
		v := viper.New()
		v.Set(policy.Key, cfg.PreserveFields)
		policies = policy.NewStore(v, "")
	}

	return &Context{
		cfg:      cfg,
		logger:   logger,
		source:   source,
		cache:    schemaCache,
		registry: generator.NewRegistry(synthOpts),
		policies: policies,
		now:      now,
	}, nil
}

// Config returns the run configuration
func (c *Context) Config() *config.Config { return c.cfg }

// Logger returns the run logger
func (c *Context) Logger() *logging.Logger { return c.logger }

// Source returns the corpus source
func (c *Context) Source() corpus.Source { return c.source }

// Cache returns the schema cache
func (c *Context) Cache() *cache.Cache { return c.cache }

// Registry returns the generator registry
func (c *Context) Registry() *generator.Registry { return c.registry }

// Policies returns the preserve policy store
func (c *Context) Policies() *policy.Store { return c.policies }

// Bootstrap binds every corpus type to its configured strategy. Later calls are no-ops.
func (c *Context) Bootstrap() error {
	c.bootMu.Lock()
	defer c.bootMu.Unlock()
	if c.booted {
		return nil
	}
	if _, err := c.registerMissing(); err != nil {
		return err
	}
	c.booted = true
	return nil
}

// registerMissing binds corpus types that have no generator yet and returns them
func (c *Context) registerMissing() ([]string, error) {
	types, err := c.source.Types()
	if err != nil {
		return nil, err
	}
	var added []string
	for _, t := range types {
		if c.registry.IsRegistered(t) {
			continue
		}
		if err := c.register(t); err != nil {
			return added, err
		}
		added = append(added, t)
	}
	return added, nil
}

func (c *Context) register(logicalType string) error {
	strategy := c.cfg.StrategyFor(logicalType)
	if err := c.registry.RegisterStrategy(logicalType, strategy); err != nil {
		return err
	}
	c.logger.Debug("Generator registered", map[string]interface{}{
		"logical_type": logicalType,
		"strategy":     strategy,
	})
	return nil
}

// ensureRegistered binds a type on first use when it appeared after bootstrap
func (c *Context) ensureRegistered(logicalType string) error {
	if c.registry.IsRegistered(logicalType) {
		return nil
	}
	if _, err := c.source.Fingerprint(logicalType); err != nil {
		return err
	}
	c.bootMu.Lock()
	defer c.bootMu.Unlock()
	if c.registry.IsRegistered(logicalType) {
		return nil
	}
	return c.register(logicalType)
}

// Entry returns the current analysis of a logical type, rebuilding it when the corpus changed
func (c *Context) Entry(logicalType string) (*cache.Entry, error) {
	fingerprint, err := c.source.Fingerprint(logicalType)
	if err != nil {
		return nil, err
	}

	before := c.cache.Stats().Builds
	entry, err := c.cache.GetOrBuild(logicalType, fingerprint)
	if err != nil {
		return nil, err
	}
	rebuilt := c.cache.Stats().Builds != before

	c.logger.LogCache(logicalType, fingerprint, !rebuilt, nil)
	if rebuilt {
		c.logger.LogAnalysis(logicalType, len(entry.Documents), len(entry.Profiles), entry.BuildDuration, map[string]interface{}{
			"entry_id": entry.ID.String(),
		})
	}
	return entry, nil
}

// TypeInfo describes a logical type available for generation
type TypeInfo struct {
	LogicalType string `json:"logical_type"`
	Documents   int    `json:"documents"`
	Strategy    string `json:"strategy"`
	Description string `json:"description,omitempty"`
}

// ListTypes describes every logical type in the corpus
func (c *Context) ListTypes() ([]TypeInfo, error) {
	if err := c.Bootstrap(); err != nil {
		return nil, err
	}
	types, err := c.source.Types()
	if err != nil {
		return nil, err
	}

	out := make([]TypeInfo, 0, len(types))
	for _, t := range types {
		if err := c.ensureRegistered(t); err != nil {
			return nil, err
		}
		info, err := c.registry.Info(t)
		if err != nil {
			return nil, err
		}
		docs, err := c.source.Documents(t)
		if err != nil {
			return nil, err
		}
		out = append(out, TypeInfo{
			LogicalType: t,
			Documents:   len(docs),
			Strategy:    info.Strategy,
			Description: info.Description,
		})
	}
	return out, nil
}

// Analyze builds a report over the named types, or every type when none are named
func (c *Context) Analyze(types ...string) (*report.Report, error) {
	if len(types) == 0 {
		all, err := c.source.Types()
		if err != nil {
			return nil, err
		}
		types = all
	}

	entries := make([]*cache.Entry, 0, len(types))
	for _, t := range types {
		e, err := c.Entry(t)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return report.Build(entries, c.now()), nil
}

// Preserved lists the preserved field names
func (c *Context) Preserved() []string {
	return c.policies.Current().List()
}

// AddPreserve adds a field to the preserve policy
func (c *Context) AddPreserve(name string) (policy.Status, error) {
	status, err := c.policies.Add(name)
	if err != nil {
		return "", err
	}
	c.logger.LogPolicyChange("add", name, string(status), nil)
	return status, nil
}

// RemovePreserve removes a field from the preserve policy
func (c *Context) RemovePreserve(name string) (policy.Status, error) {
	status, err := c.policies.Remove(name)
	if err != nil {
		return "", err
	}
	c.logger.LogPolicyChange("remove", name, string(status), nil)
	return status, nil
}
