package storage

import (
	"context"
	"sync"

	"github.com/sandeepkv93/streakd/internal/model"
)

// MemoryStore is an in-process DocumentStore. It backs tests and dry runs.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]model.UserRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]model.UserRecord)}
}

func (s *MemoryStore) Get(_ context.Context, uid string) (model.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.docs[uid]
	if !ok {
		return model.UserRecord{}, wrapErr("get", uid, ErrNotFound)
	}
	return rec.Clone(), nil
}

func (s *MemoryStore) Patch(_ context.Context, uid string, p model.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.docs[uid]
	if !ok {
		return wrapErr("patch", uid, ErrNotFound)
	}
	p.Apply(&rec)
	s.docs[uid] = rec
	return nil
}

func (s *MemoryStore) Init(_ context.Context, uid string, rec model.UserRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[uid]; ok {
		return false, nil
	}
	rec = rec.Clone()
	rec.UID = uid
	rec.Normalize()
	s.docs[uid] = rec
	return true, nil
}

func (s *MemoryStore) Close() error { return nil }
