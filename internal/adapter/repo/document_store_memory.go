package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"foodshare/internal/domain"
)

type memoryEntry struct {
	version int64
	seq     int64
	body    []byte
}

// MemoryStore is an in-process domain.DocumentStore with the same versioning
// and query semantics as the PostgreSQL store.
type MemoryStore struct {
	mu   sync.RWMutex
	seq  int64
	docs map[domain.Collection]map[string]*memoryEntry
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[domain.Collection]map[string]*memoryEntry)}
}

func (s *MemoryStore) FindByID(_ context.Context, collection domain.Collection, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.docs[collection][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, collection, id)
	}
	return entry.document(collection, id), nil
}

func (s *MemoryStore) FindOne(ctx context.Context, collection domain.Collection, filters ...domain.Filter) (*domain.Document, error) {
	docs, err := s.FindMany(ctx, collection, domain.Query{Filters: filters, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, collection)
	}
	return &docs[0], nil
}

func (s *MemoryStore) FindMany(_ context.Context, collection domain.Collection, q domain.Query) ([]domain.Document, error) {
	type candidate struct {
		id    string
		entry *memoryEntry
		body  map[string]any
	}

	s.mu.RLock()
	var matches []candidate
	for id, entry := range s.docs[collection] {
		var body map[string]any
		if err := json.Unmarshal(entry.body, &body); err != nil {
			s.mu.RUnlock()
			return nil, fmt.Errorf("memory store: decode %s %s: %w", collection, id, err)
		}
		ok, err := matchAll(body, q.Filters)
		if err != nil {
			s.mu.RUnlock()
			return nil, err
		}
		if ok && len(q.AnyOf) > 0 {
			ok, err = matchAny(body, q.AnyOf)
			if err != nil {
				s.mu.RUnlock()
				return nil, err
			}
		}
		if ok {
			matches = append(matches, candidate{id: id, entry: entry, body: body})
		}
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].entry.seq < matches[j].entry.seq })
	if len(q.Sort) > 0 {
		sort.SliceStable(matches, func(i, j int) bool {
			for _, key := range q.Sort {
				a, aok := lookupPath(matches[i].body, key.Path)
				b, bok := lookupPath(matches[j].body, key.Path)
				if !aok || !bok {
					if aok != bok {
						return aok
					}
					continue
				}
				c, ok := compareValues(a, b, key.Kind)
				if !ok || c == 0 {
					continue
				}
				if key.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	if q.Skip > 0 {
		if q.Skip >= len(matches) {
			matches = nil
		} else {
			matches = matches[q.Skip:]
		}
	}
	if q.Limit > 0 && len(matches) > q.Limit {
		matches = matches[:q.Limit]
	}

	docs := make([]domain.Document, 0, len(matches))
	for _, m := range matches {
		docs = append(docs, *m.entry.document(collection, m.id))
	}
	return docs, nil
}

func (s *MemoryStore) Save(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document id required", domain.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	coll, ok := s.docs[doc.Collection]
	if !ok {
		coll = make(map[string]*memoryEntry)
		s.docs[doc.Collection] = coll
	}
	entry, exists := coll[doc.ID]
	switch {
	case doc.Version == 0 && exists:
		return fmt.Errorf("%w: %s %s already exists", domain.ErrConflict, doc.Collection, doc.ID)
	case doc.Version == 0:
		s.seq++
		coll[doc.ID] = &memoryEntry{version: 1, seq: s.seq, body: append([]byte(nil), doc.Body...)}
		doc.Version = 1
		return nil
	case !exists || entry.version != doc.Version:
		return fmt.Errorf("%w: %s %s was modified concurrently", domain.ErrConflict, doc.Collection, doc.ID)
	}
	entry.version++
	entry.body = append([]byte(nil), doc.Body...)
	doc.Version = entry.version
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, collection domain.Collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[collection][id]; !ok {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, collection, id)
	}
	delete(s.docs[collection], id)
	return nil
}

func (e *memoryEntry) document(collection domain.Collection, id string) *domain.Document {
	return &domain.Document{
		Collection: collection,
		ID:         id,
		Version:    e.version,
		Body:       append(json.RawMessage(nil), e.body...),
	}
}

func matchAll(body map[string]any, filters []domain.Filter) (bool, error) {
	for _, f := range filters {
		ok, err := matchFilter(body, f)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchAny(body map[string]any, filters []domain.Filter) (bool, error) {
	for _, f := range filters {
		ok, err := matchFilter(body, f)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func matchFilter(body map[string]any, f domain.Filter) (bool, error) {
	if !fieldPathRegexp.MatchString(f.Path) {
		return false, fmt.Errorf("memory store: invalid field path %q", f.Path)
	}
	got, ok := lookupPath(body, f.Path)
	switch f.Op {
	case domain.OpExists:
		return ok, nil
	case domain.OpEq:
		if !ok {
			return false, nil
		}
		c, comparable := compareValues(got, f.Value, f.Kind)
		return comparable && c == 0, nil
	case domain.OpLte:
		if !ok {
			return false, nil
		}
		c, comparable := compareValues(got, f.Value, f.Kind)
		return comparable && c <= 0, nil
	case domain.OpContainsFold:
		s, isString := got.(string)
		return ok && isString && strings.Contains(strings.ToLower(s), strings.ToLower(fmt.Sprint(f.Value))), nil
	default:
		return false, fmt.Errorf("memory store: unsupported filter op %q", f.Op)
	}
}

// lookupPath walks a dotted path; JSON null counts as absent.
func lookupPath(body map[string]any, path string) (any, bool) {
	var cur any = body
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

func compareValues(a, b any, kind domain.ValueKind) (int, bool) {
	switch kind {
	case domain.KindNumber:
		x, ok1 := toFloat(a)
		y, ok2 := toFloat(b)
		if !ok1 || !ok2 {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case domain.KindTime:
		x, ok1 := toTime(a)
		y, ok2 := toTime(b)
		if !ok1 || !ok2 {
			return 0, false
		}
		return x.Compare(y), true
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b)), true
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		return parsed, err == nil
	default:
		return time.Time{}, false
	}
}

var _ domain.DocumentStore = (*MemoryStore)(nil)
