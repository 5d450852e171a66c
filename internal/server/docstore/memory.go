package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/tradejournal/internal/common"
)

// MemoryStore keeps documents in process memory. Documents are stored as
// JSON bytes, so callers never share mutable state with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	body, ok := s.collections[collection][id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return bytes.Clone(body), nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(collection, id, body)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collections[collection]
	if _, ok := docs[id]; !ok {
		return false, nil
	}
	delete(docs, id)
	return true, nil
}

func (s *MemoryStore) Find(ctx context.Context, collection, field, value string) ([][]byte, error) {
	if err := checkFieldName(field); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out [][]byte
	for _, body := range s.collections[collection] {
		var fields map[string]any
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", collection, err)
		}
		if v, ok := fields[field].(string); ok && v == value {
			out = append(out, bytes.Clone(body))
		}
	}
	return out, nil
}

func (s *MemoryStore) List(ctx context.Context, collection string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([][]byte, 0, len(s.collections[collection]))
	for _, body := range s.collections[collection] {
		out = append(out, bytes.Clone(body))
	}
	return out, nil
}

func (s *MemoryStore) NewBatch() Batch {
	return &batch{commit: s.commit}
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() error {
	return nil
}

// commit validates every operation against the current state before
// applying any of them, so a failing batch leaves the store untouched.
func (s *MemoryStore) commit(ctx context.Context, ops []op) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// staged holds the post-batch state of every touched document; nil
	// marks a deletion.
	type key struct{ collection, id string }
	staged := make(map[key][]byte)
	current := func(k key) ([]byte, bool) {
		if body, ok := staged[k]; ok {
			return body, body != nil
		}
		body, ok := s.collections[k.collection][k.id]
		return body, ok
	}

	for _, o := range ops {
		k := key{o.collection, o.id}
		switch o.kind {
		case opSet:
			staged[k] = o.body
		case opDelete:
			staged[k] = nil
		case opUpdate:
			body, ok := current(k)
			if !ok {
				return fmt.Errorf("update %s/%s: %w", o.collection, o.id, common.ErrorNotFound)
			}
			merged, err := mergeJSON(body, o.body)
			if err != nil {
				return fmt.Errorf("update %s/%s: %w", o.collection, o.id, err)
			}
			staged[k] = merged
		}
	}

	for k, body := range staged {
		if body == nil {
			delete(s.collections[k.collection], k.id)
			continue
		}
		s.put(k.collection, k.id, body)
	}
	return nil
}

func (s *MemoryStore) put(collection, id string, body []byte) {
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string][]byte)
		s.collections[collection] = docs
	}
	docs[id] = body
}

// mergeJSON overlays the top-level fields of patch onto doc.
func mergeJSON(doc, patch []byte) ([]byte, error) {
	var base map[string]json.RawMessage
	if err := json.Unmarshal(doc, &base); err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return nil, err
	}
	if base == nil {
		base = make(map[string]json.RawMessage, len(fields))
	}
	for k, v := range fields {
		base[k] = v
	}
	return json.Marshal(base)
}
