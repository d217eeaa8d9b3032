package resource

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore implements Store with an in-process map. It backs unit
// tests and runs the service without a MongoDB when none is
// configured. Identifiers are ObjectID hex strings so cursors behave
// exactly as they do against the Mongo store.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string]Document{}}
}

func (m *MemoryStore) Create(ctx context.Context, doc Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := primitive.NewObjectID().Hex()
	d := copyDocument(doc)
	d["_id"] = id
	m.docs[id] = d
	return id, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	return copyDocument(d), nil
}

func (m *MemoryStore) Update(ctx context.Context, id string, fields Document) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	for k, v := range fields {
		d[k] = v
	}
	return copyDocument(d), nil
}

func (m *MemoryStore) List(ctx context.Context, q *ListQuery) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := []Document{}
	for _, d := range m.docs {
		if q.Name != "" {
			n, _ := d["name"].(string)
			if !strings.Contains(strings.ToLower(n), strings.ToLower(q.Name)) {
				continue
			}
		}
		docs = append(docs, d)
	}

	sort.Slice(docs, func(i, j int) bool {
		c := compareDocs(docs[i], docs[j], q.SortBy)
		if q.Descending {
			return c > 0
		}
		return c < 0
	})

	if q.AfterID != "" {
		cursorDoc, ok := m.docs[q.AfterID]
		if !ok {
			return nil, Validationf("after_id %s no longer exists", q.AfterID)
		}
		kept := docs[:0]
		for _, d := range docs {
			c := compareDocs(d, cursorDoc, q.SortBy)
			if (q.Descending && c < 0) || (!q.Descending && c > 0) {
				kept = append(kept, d)
			}
		}
		docs = kept
	}

	if len(docs) > q.Limit+1 {
		docs = docs[:q.Limit+1]
	}
	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = copyDocument(d)
	}
	return NewPage(out, q.Limit), nil
}

// compareDocs orders two documents by (sort field, _id), the same
// total order the Mongo store gets from its compound index.
func compareDocs(a, b Document, sortBy string) int {
	if c := compareValues(fieldValue(a, sortBy), fieldValue(b, sortBy)); c != 0 {
		return c
	}
	ai, _ := a["_id"].(string)
	bi, _ := b["_id"].(string)
	return strings.Compare(ai, bi)
}

func copyDocument(d Document) Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
