/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: store.go
Description: Persistent preserve policy backed by the viper configuration. Mutations report
a status for the caller to render and write the configuration file back when one is set.
*/

package policy

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kleascm/mockjson/pkg/mockerr"
	"github.com/spf13/viper"
)

// Key is the configuration key holding the preserve list
const Key = "preserve_fields"

// Status is the outcome of a policy mutation
type Status string

const (
	StatusAdded          Status = "added"
	StatusRemoved        Status = "removed"
	StatusAlreadyPresent Status = "already-present"
	StatusNotFound       Status = "not-found"
)

// Store reads and writes the preserve list through viper
type Store struct {
	mu     sync.Mutex
	v      *viper.Viper
	path   string
	policy *Policy
}

// NewStore creates a store over v; path is the file mutations are written to, empty for none
func NewStore(v *viper.Viper, path string) *Store {
	s := &Store{v: v, path: path}
	s.policy = s.read()
	return s
}

func (s *Store) read() *Policy {
	if !s.v.IsSet(Key) {
		return Default()
	}
	return New(s.v.GetStringSlice(Key)...)
}

// Load rereads the policy from configuration and returns a copy
func (s *Store) Load() *Policy {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = s.read()
	return s.policy.Clone()
}

// Current returns a copy of the policy as last loaded or mutated
func (s *Store) Current() *Policy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy.Clone()
}

// Add preserves a field and persists the change
func (s *Store) Add(name string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.policy.Clone()
	if err := next.Add(name); err != nil {
		if errors.Is(err, mockerr.ErrDuplicateField) {
			return StatusAlreadyPresent, nil
		}
		return "", err
	}
	if err := s.save(next); err != nil {
		return "", err
	}
	return StatusAdded, nil
}

// Remove stops preserving a field and persists the change
func (s *Store) Remove(name string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.policy.Clone()
	if err := next.Remove(name); err != nil {
		if errors.Is(err, mockerr.ErrFieldNotFound) {
			return StatusNotFound, nil
		}
		return "", err
	}
	if err := s.save(next); err != nil {
		return "", err
	}
	return StatusRemoved, nil
}

func (s *Store) save(next *Policy) error {
	s.v.Set(Key, next.List())
	if s.path != "" {
		if err := s.v.WriteConfigAs(s.path); err != nil {
			s.v.Set(Key, s.policy.List())
			return fmt.Errorf("failed to save preserve fields: %w", err)
		}
	}
	s.policy = next
	return nil
}
