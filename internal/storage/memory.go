package storage

import (
	"context"
	"strconv"
	"sync"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps values in process memory. Versions are a per-store counter.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]Object
	seq     uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]Object)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &Object{Value: append([]byte(nil), obj.Value...), Version: obj.Version}, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, value []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(key, value), nil
}

func (s *MemoryStore) CompareAndSwap(_ context.Context, key string, value []byte, version string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.objects[key]
	switch {
	case version == "" && ok:
		return "", ErrVersionMismatch
	case version != "" && (!ok || current.Version != version):
		return "", ErrVersionMismatch
	}
	return s.write(key, value), nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func (s *MemoryStore) write(key string, value []byte) string {
	s.seq++
	v := strconv.FormatUint(s.seq, 10)
	s.objects[key] = Object{Value: append([]byte(nil), value...), Version: v}
	return v
}
