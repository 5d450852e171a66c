// Package docstore is the persistence boundary of the server: a minimal
// document database with JSON documents addressed by (collection, id),
// equality lookups on top-level string fields, and all-or-nothing write
// batches.
//
// Two implementations are provided. SQLStore keeps documents in a single
// SQL table (PostgreSQL through pgx, or SQLite) and MemoryStore keeps them
// in process memory for tests and throwaway deployments.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/dmitrijs2005/tradejournal/internal/common"
)

// MaxBatchWrites is the largest number of operations a single batch may
// commit. Callers with more writes must split them into several batches.
const MaxBatchWrites = 500

// Store is a document database.
type Store interface {
	// Get returns the raw JSON document or common.ErrorNotFound.
	Get(ctx context.Context, collection, id string) ([]byte, error)

	// Set creates or fully replaces a document.
	Set(ctx context.Context, collection, id string, doc any) error

	// Delete removes a document and reports whether it existed.
	Delete(ctx context.Context, collection, id string) (bool, error)

	// Find returns all documents of a collection whose top-level string
	// field equals value. Order is unspecified.
	Find(ctx context.Context, collection, field, value string) ([][]byte, error)

	// List returns every document of a collection. Order is unspecified.
	List(ctx context.Context, collection string) ([][]byte, error)

	// NewBatch starts an empty write batch.
	NewBatch() Batch

	Ping(ctx context.Context) error
	Close() error
}

// Batch collects writes that are committed together or not at all.
type Batch interface {
	// Set creates or replaces a document.
	Set(collection, id string, doc any)

	// Update merges fields into an existing document. Committing an update
	// of a missing document fails the whole batch with common.ErrorNotFound.
	Update(collection, id string, fields map[string]any)

	// Delete removes a document; deleting a missing document is not an error.
	Delete(collection, id string)

	// Len is the number of queued operations.
	Len() int

	// Commit applies every queued operation atomically.
	Commit(ctx context.Context) error
}

type opKind int

const (
	opSet opKind = iota
	opUpdate
	opDelete
)

type op struct {
	kind       opKind
	collection string
	id         string
	body       []byte
}

// batch queues operations and hands them to a store-specific commit func.
// Encoding failures are remembered and reported by Commit.
type batch struct {
	ops    []op
	err    error
	commit func(ctx context.Context, ops []op) error
}

func (b *batch) Set(collection, id string, doc any) {
	body, err := json.Marshal(doc)
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	b.ops = append(b.ops, op{kind: opSet, collection: collection, id: id, body: body})
}

func (b *batch) Update(collection, id string, fields map[string]any) {
	body, err := json.Marshal(fields)
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	b.ops = append(b.ops, op{kind: opUpdate, collection: collection, id: id, body: body})
}

func (b *batch) Delete(collection, id string) {
	b.ops = append(b.ops, op{kind: opDelete, collection: collection, id: id})
}

func (b *batch) Len() int {
	return len(b.ops)
}

func (b *batch) Commit(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	if len(b.ops) > MaxBatchWrites {
		return fmt.Errorf("%w: %d operations, limit %d", common.ErrBatchTooLarge, len(b.ops), MaxBatchWrites)
	}
	if len(b.ops) == 0 {
		return nil
	}
	return b.commit(ctx, b.ops)
}

var fieldNameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

func checkFieldName(field string) error {
	if !fieldNameRe.MatchString(field) {
		return fmt.Errorf("invalid field name %q", field)
	}
	return nil
}

// GetAs loads a document and decodes it into a new T.
func GetAs[T any](ctx context.Context, s Store, collection, id string) (*T, error) {
	raw, err := s.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return &v, nil
}

// FindAs runs Find and decodes every match.
func FindAs[T any](ctx context.Context, s Store, collection, field, value string) ([]*T, error) {
	raws, err := s.Find(ctx, collection, field, value)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](collection, raws)
}

// ListAs runs List and decodes every document.
func ListAs[T any](ctx context.Context, s Store, collection string) ([]*T, error) {
	raws, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](collection, raws)
}

func decodeAll[T any](collection string, raws [][]byte) ([]*T, error) {
	out := make([]*T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", collection, err)
		}
		out = append(out, &v)
	}
	return out, nil
}
