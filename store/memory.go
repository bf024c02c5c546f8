package store

import (
	"sort"
	"sync"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is a Store with no persistence. Handy for tests and for
// running the bot without a writable disk.
type MemoryStore struct {
	mu    sync.Mutex
	order []string
	items map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]Record),
	}
}

func (s *MemoryStore) Get(userID string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.items[userID]
	return rec, ok
}

func (s *MemoryStore) Set(userID, date string, age *int) error {
	if _, _, _, err := ParseDate(date); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[userID]; !exists {
		s.order = append(s.order, userID)
	}
	s.items[userID] = Record{Date: date, Age: age}
	return nil
}

func (s *MemoryStore) Remove(userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[userID]; !exists {
		return false, nil
	}
	delete(s.items, userID)
	for i, id := range s.order {
		if id == userID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (s *MemoryStore) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		entries = append(entries, Entry{UserID: id, Record: s.items[id]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		im, id := entries[i].Record.MonthDay()
		jm, jd := entries[j].Record.MonthDay()
		if im != jm {
			return im < jm
		}
		return id < jd
	})
	return entries, nil
}
