/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: registry.go
Description: Generator registry. Binds logical type names to synthesizer constructors and
creates synthesizers bound to a type's cached shape, profiles and preserve policy. Double
registration is rejected unless an override is requested explicitly.
*/

package generator

import (
	"sort"
	"sync"
	"time"

	"github.com/kleascm/mockjson/pkg/mockerr"
	"github.com/kleascm/mockjson/pkg/policy"
	"github.com/kleascm/mockjson/pkg/profile"
	"github.com/kleascm/mockjson/pkg/shape"
	"github.com/kleascm/mockjson/pkg/synth"
)

// Binding is everything a constructor needs to build a synthesizer
type Binding struct {
	LogicalType string
	Shape       *shape.Descriptor
	Profiles    profile.Set
	Policy      *policy.Policy
	Options     synth.Options
}

// Constructor builds a synthesizer for a binding
type Constructor func(Binding) (synth.Synthesizer, error)

// Info describes one registration
type Info struct {
	LogicalType  string    `json:"logical_type"`
	Strategy     string    `json:"strategy"`
	Description  string    `json:"description,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

type registration struct {
	ctor Constructor
	info Info
}

type registerOptions struct {
	override    bool
	strategy    string
	description string
}

// RegisterOption tunes Register
type RegisterOption func(*registerOptions)

// WithOverride replaces an existing binding instead of failing
func WithOverride() RegisterOption {
	return func(o *registerOptions) { o.override = true }
}

// WithStrategy records the strategy name shown by Info
func WithStrategy(name string) RegisterOption {
	return func(o *registerOptions) { o.strategy = name }
}

// WithDescription records a description shown by Info
func WithDescription(description string) RegisterOption {
	return func(o *registerOptions) { o.description = description }
}

// Registry maps logical types to constructors
type Registry struct {
	mu       sync.RWMutex
	bindings map[string]registration
	options  synth.Options
	now      func() time.Time
}

// NewRegistry creates an empty registry; opts are handed to every constructor
func NewRegistry(opts synth.Options) *Registry {
	return &Registry{
		bindings: make(map[string]registration),
		options:  opts,
		now:      time.Now,
	}
}

// Register binds a logical type to a constructor
func (r *Registry) Register(logicalType string, ctor Constructor, opts ...RegisterOption) error {
	if logicalType == "" || ctor == nil {
		return mockerr.New(mockerr.ErrInvalidRequest, "register", logicalType).
			With("reason", "logical type and constructor are required")
	}
	o := registerOptions{strategy: "custom"}
	for _, opt := range opts {
		opt(&o)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bindings[logicalType]; exists && !o.override {
		return mockerr.New(mockerr.ErrDuplicateRegistration, "register", logicalType)
	}
	r.bindings[logicalType] = registration{
		ctor: ctor,
		info: Info{
			LogicalType:  logicalType,
			Strategy:     o.strategy,
			Description:  o.description,
			RegisteredAt: r.now(),
		},
	}
	return nil
}

// Create builds a synthesizer bound to the given analysis and policy
func (r *Registry) Create(logicalType string, d *shape.Descriptor, profiles profile.Set, pol *policy.Policy) (synth.Synthesizer, error) {
	r.mu.RLock()
	reg, ok := r.bindings[logicalType]
	r.mu.RUnlock()
	if !ok {
		return nil, mockerr.UnknownType(logicalType, r.Types())
	}

	if pol == nil {
		pol = policy.New()
	}
	s, err := reg.ctor(Binding{
		LogicalType: logicalType,
		Shape:       d,
		Profiles:    profiles,
		Policy:      pol.Clone(),
		Options:     r.options,
	})
	if err != nil {
		return nil, mockerr.Wrap(mockerr.ErrSynthesis, "create", logicalType, err)
	}
	return s, nil
}

// Types lists registered logical types, sorted
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.bindings))
	for t := range r.bindings {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// IsRegistered reports whether a logical type is bound
func (r *Registry) IsRegistered(logicalType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.bindings[logicalType]
	return ok
}

// Unregister removes a binding, reporting whether one existed
func (r *Registry) Unregister(logicalType string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.bindings[logicalType]
	delete(r.bindings, logicalType)
	return ok
}

// Info describes a registration
func (r *Registry) Info(logicalType string) (Info, error) {
	r.mu.RLock()
	reg, ok := r.bindings[logicalType]
	r.mu.RUnlock()
	if !ok {
		return Info{}, mockerr.UnknownType(logicalType, r.Types())
	}
	return reg.info, nil
}
