package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryPlayerStore 进程内存储，用于开发环境和测试，重启后数据丢失
type MemoryPlayerStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryPlayerStore() *MemoryPlayerStore {
	return &MemoryPlayerStore{docs: make(map[string][]byte)}
}

func (s *MemoryPlayerStore) Load(_ context.Context, userID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), doc...), nil
}

func (s *MemoryPlayerStore) Upsert(_ context.Context, userID string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[userID] = append([]byte(nil), doc...)
	return nil
}

func (s *MemoryPlayerStore) UnlockAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, doc := range s.docs {
		var m map[string]any
		if err := json.Unmarshal(doc, &m); err != nil {
			return n, fmt.Errorf("failed to decode player %s: %w", id, err)
		}
		if locked, _ := m[fieldLocked].(bool); !locked {
			continue
		}
		m[fieldLocked] = false
		m[fieldVerification] = false
		out, err := json.Marshal(m)
		if err != nil {
			return n, fmt.Errorf("failed to encode player %s: %w", id, err)
		}
		s.docs[id] = out
		n++
	}
	return n, nil
}

// Len 文档数量
func (s *MemoryPlayerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func (s *MemoryPlayerStore) Close() error {
	return nil
}
