package progress

import (
	"maps"
	"slices"
	"sync"
)

// Names of the two persisted documents.
const (
	StatsKey        = "user_stats"
	AchievementsKey = "achievements"
)

// GetFunc reads one document. ok is false when no document exists.
type GetFunc = func(key string) (data []byte, ok bool, err error)

// UpdateFunc reads through get and returns the documents to write. A nil or empty map writes nothing.
type UpdateFunc = func(get GetFunc) (map[string][]byte, error)

// Store is the persistence port of the engine: named whole-object blobs.
//
// Update runs fn and writes its result as one atomic unit: no other writer, in this
// process or another one sharing the storage, may interleave between the reads and
// the writes. Every blob is written or none of them is.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Update(fn UpdateFunc) error
}

// MemoryStore is a process-local [Store].
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(key)
}

func (s *MemoryStore) get(key string) ([]byte, bool, error) {
	data, ok := s.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(data), true, nil
}

func (s *MemoryStore) Update(fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blobs, err := fn(s.get)
	if err != nil {
		return err
	}
	for _, k := range slices.Sorted(maps.Keys(blobs)) {
		s.blobs[k] = slices.Clone(blobs[k])
	}
	return nil
}
