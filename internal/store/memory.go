package store

import (
	"context"
	"sort"
	"sync"
)

// Memory keeps results in process memory. Results are lost on restart.
type Memory struct {
	mu     sync.RWMutex
	docs   map[string]map[string]*Result // user -> doc -> result
	byHash map[string]map[string]string  // user -> hash -> doc
}

func NewMemory() *Memory {
	return &Memory{
		docs:   make(map[string]map[string]*Result),
		byHash: make(map[string]map[string]string),
	}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Put(_ context.Context, res *Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := res.Record
	if m.docs[rec.UserID] == nil {
		m.docs[rec.UserID] = make(map[string]*Result)
		m.byHash[rec.UserID] = make(map[string]string)
	}
	cp := *res
	m.docs[rec.UserID][rec.DocID] = &cp
	if rec.ContentHash != "" {
		m.byHash[rec.UserID][rec.ContentHash] = rec.DocID
	}
	return nil
}

func (m *Memory) Get(_ context.Context, userID, docID string) (*Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res, ok := m.docs[userID][docID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (m *Memory) FindByHash(ctx context.Context, userID, contentHash string) (*Result, error) {
	m.mu.RLock()
	docID, ok := m.byHash[userID][contentHash]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return m.Get(ctx, userID, docID)
}

func (m *Memory) List(_ context.Context, userID string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, 0, len(m.docs[userID]))
	for _, res := range m.docs[userID] {
		out = append(out, res.Record)
	}
	sortRecords(out)
	return out, nil
}

func (m *Memory) Delete(_ context.Context, userID, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.docs[userID][docID]
	if !ok {
		return ErrNotFound
	}
	delete(m.docs[userID], docID)
	if h := res.Record.ContentHash; h != "" && m.byHash[userID][h] == docID {
		delete(m.byHash[userID], h)
	}
	return nil
}

// sortRecords orders newest first, then by document id.
func sortRecords(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].DocID < recs[j].DocID
	})
}
