/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: generate.go
Description: Batch generation. A request names a logical type, a record count and whether
records mirror source documents. Every record is synthesized independently so one failure
never discards the records that succeeded; failures travel with the batch.
*/

package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/mockjson/pkg/mockerr"
	"github.com/kleascm/mockjson/pkg/shape"
)

// CycleSources mirrors document i mod n for record i
const CycleSources = -1

// Request asks for Count records of one logical type
type Request struct {
	LogicalType string
	Count       int
	Preserve    bool // Mirror source documents and copy preserved fields
	SourceIndex int  // Document to mirror in preserve mode, CycleSources for all in turn
}

// Record is one generation outcome
type Record struct {
	Index  int
	Source int // Mirrored document index, -1 when synthesized independently
	Value  any
	Err    error
}

// Batch collects the outcome of one request
type Batch struct {
	ID          uuid.UUID
	LogicalType string
	Preserve    bool
	EntryID     uuid.UUID
	Fingerprint string
	Records     []Record
	StartedAt   time.Time
	Duration    time.Duration

	shape *shape.Descriptor
}

// Values returns the successfully generated records in order
func (b *Batch) Values() []any {
	out := make([]any, 0, len(b.Records))
	for _, r := range b.Records {
		if r.Err == nil {
			out = append(out, r.Value)
		}
	}
	return out
}

// Produced counts successful records
func (b *Batch) Produced() int {
	n := 0
	for _, r := range b.Records {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts failed records
func (b *Batch) Failed() int {
	return len(b.Records) - b.Produced()
}

// Err joins the record failures, nil when every record succeeded
func (b *Batch) Err() error {
	var errs []error
	for _, r := range b.Records {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", r.Index, r.Err))
		}
	}
	return errors.Join(errs...)
}

// Validate checks every successful record against the analyzed shape and
// returns the problems keyed by record index
func (b *Batch) Validate() map[int][]string {
	out := make(map[int][]string)
	for _, r := range b.Records {
		if r.Err != nil {
			continue
		}
		if problems := shape.Validate(b.shape, r.Value); len(problems) > 0 {
			out[r.Index] = problems
		}
	}
	return out
}

func (c *Context) validate(req Request) error {
	if req.LogicalType == "" {
		return mockerr.New(mockerr.ErrInvalidRequest, "generate", "").
			With("reason", "logical type is required")
	}
	limit := c.cfg.Generation.MaxRecords
	if req.Count < 1 || req.Count > limit {
		return mockerr.New(mockerr.ErrInvalidRequest, "generate", req.LogicalType).
			With("count", req.Count).
			With("max", limit)
	}
	if req.SourceIndex < CycleSources {
		return mockerr.New(mockerr.ErrInvalidRequest, "generate", req.LogicalType).
			With("source_index", req.SourceIndex)
	}
	return nil
}

// Generate produces a batch of records. The returned error covers the request as a
// whole; per-record failures are reported by the batch.
func (c *Context) Generate(req Request) (*Batch, error) {
	if err := c.validate(req); err != nil {
		return nil, err
	}
	if err := c.Bootstrap(); err != nil {
		return nil, err
	}
	if err := c.ensureRegistered(req.LogicalType); err != nil {
		return nil, err
	}

	entry, err := c.Entry(req.LogicalType)
	if err != nil {
		return nil, err
	}

	docs := entry.Documents
	if req.Preserve {
		if len(docs) == 0 {
			return nil, mockerr.New(mockerr.ErrInvalidRequest, "generate", req.LogicalType).
				With("reason", "preserve mode needs at least one source document")
		}
		if req.SourceIndex >= len(docs) {
			return nil, mockerr.New(mockerr.ErrInvalidRequest, "generate", req.LogicalType).
				With("source_index", req.SourceIndex).
				With("documents", len(docs))
		}
	}

	synthesizer, err := c.registry.Create(req.LogicalType, entry.Shape, entry.Profiles, c.policies.Current())
	if err != nil {
		return nil, err
	}

	batch := &Batch{
		ID:          uuid.New(),
		LogicalType: req.LogicalType,
		Preserve:    req.Preserve,
		EntryID:     entry.ID,
		Fingerprint: entry.Fingerprint,
		Records:     make([]Record, 0, req.Count),
		StartedAt:   c.now(),
		shape:       entry.Shape,
	}

	for i := 0; i < req.Count; i++ {
		rec := Record{Index: i, Source: -1}
		var source any
		if req.Preserve {
			rec.Source = req.SourceIndex
			if rec.Source == CycleSources {
				rec.Source = i % len(docs)
			}
			source = docs[rec.Source]
		}

		rec.Value, rec.Err = synthesizer.Synthesize(source)
		if rec.Err != nil {
			rec.Value = nil
			c.logger.LogRecordFailure(req.LogicalType, i, rec.Err, map[string]interface{}{
				"batch_id": batch.ID.String(),
			})
		}
		batch.Records = append(batch.Records, rec)
	}

	batch.Duration = c.now().Sub(batch.StartedAt)
	c.logger.LogGeneration(req.LogicalType, req.Count, batch.Produced(), batch.Duration, map[string]interface{}{
		"batch_id": batch.ID.String(),
		"preserve": req.Preserve,
	})
	return batch, nil
}
