package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/marcelsud/automation-connect/webhook"
)

// Repository keeps log entries in process memory; entries are lost on restart
type Repository struct {
	mu      sync.RWMutex
	nextID  int64
	entries map[int64]webhook.Log
}

func NewRepository() *Repository {
	return &Repository{entries: make(map[int64]webhook.Log)}
}

// Append stores entry under the next id
func (r *Repository) Append(_ context.Context, entry webhook.Log) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entry.ID = r.nextID
	entry.Headers = cloneHeaders(entry.Headers)
	r.entries[entry.ID] = entry
	return entry.ID, nil
}

// Update applies c when the entry is still processing
func (r *Repository) Update(_ context.Context, id int64, c webhook.Completion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return webhook.ErrNotFound
	}
	if entry.Status != webhook.Processing {
		return webhook.ErrNotProcessing
	}
	r.entries[id] = c.Apply(entry)
	return nil
}

func (r *Repository) Get(_ context.Context, id int64) (webhook.Log, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok {
		return webhook.Log{}, webhook.ErrNotFound
	}
	entry.Headers = cloneHeaders(entry.Headers)
	return entry, nil
}

func (r *Repository) Stats(_ context.Context, service string) (webhook.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var st webhook.Stats
	for _, entry := range r.entries {
		if service != "" && entry.Service != service {
			continue
		}
		st.Add(entry)
	}
	return st, nil
}

// List returns entries in id order
func (r *Repository) List() []webhook.Log {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]webhook.Log, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.entries[id])
	}
	return out
}

func (r *Repository) Close(context.Context) error { return nil }

func cloneHeaders(h map[string]string) map[string]string {
	if h == nil {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
