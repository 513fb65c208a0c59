/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: memory.go
Description: In-memory corpus source for embedding callers and tests
*/

package corpus

import (
	"sort"
	"sync"

	"github.com/kleascm/mockjson/pkg/mockerr"
)

// MemorySource holds documents supplied directly by the caller
type MemorySource struct {
	mu     sync.RWMutex
	groups map[string][]any
}

// NewMemorySource creates an empty in-memory source
func NewMemorySource() *MemorySource {
	return &MemorySource{groups: make(map[string][]any)}
}

// Add appends documents to a logical type
func (m *MemorySource) Add(logicalType string, docs ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[logicalType] = append(m.groups[logicalType], docs...)
}

// Replace swaps all documents of a logical type
func (m *MemorySource) Replace(logicalType string, docs []any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups[logicalType] = append([]any(nil), docs...)
}

// Types lists the logical types in sorted order
func (m *MemorySource) Types() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	types := make([]string, 0, len(m.groups))
	for t := range m.groups {
		types = append(types, t)
	}
	sort.Strings(types)
	return types, nil
}

// Documents returns a copy of a type's document list
func (m *MemorySource) Documents(logicalType string) ([]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs, ok := m.groups[logicalType]
	if !ok {
		return nil, mockerr.UnknownType(logicalType, m.typesLocked())
	}
	return append([]any(nil), docs...), nil
}

// Fingerprint hashes a type's documents
func (m *MemorySource) Fingerprint(logicalType string) (string, error) {
	docs, err := m.Documents(logicalType)
	if err != nil {
		return "", err
	}
	return Fingerprint(docs)
}

func (m *MemorySource) typesLocked() []string {
	types := make([]string, 0, len(m.groups))
	for t := range m.groups {
		types = append(types, t)
	}
	return types
}
