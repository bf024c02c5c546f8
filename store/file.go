package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

var _ Store = (*FileStore)(nil)

// FileStore keeps the whole mapping in memory and mirrors it to a single
// JSON document on every mutation. Writes rewrite the entire file, which
// is fine for the tens-to-hundreds of records a single guild produces;
// anything bigger wants a real database instead.
//
// All operations go through one mutex, so concurrent interaction
// callbacks cannot clobber each other's snapshot of the document.
type FileStore struct {
	mu    sync.Mutex
	path  string
	order []string
	items map[string]Record
}

// Open loads the document at path, or starts empty if it does not exist.
// An existing but unparsable file returns a *CorruptError.
func Open(path string) (*FileStore, error) {
	s := &FileStore{
		path:  path,
		items: make(map[string]Record),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile error: %w", err)
	}

	if err := s.decode(data); err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	return s, nil
}

// decode reads the top-level object token by token so that the document's
// key order (which is the original insertion order) is preserved. Values
// are either record objects or, in files written by older deployments,
// bare date strings.
func (s *FileStore) decode(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected top-level object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		userID, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected string key, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}

		rec, err := decodeValue(raw)
		if err != nil {
			return fmt.Errorf("entry %q: %w", userID, err)
		}
		if _, exists := s.items[userID]; !exists {
			s.order = append(s.order, userID)
		}
		s.items[userID] = rec
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func decodeValue(raw json.RawMessage) (Record, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		// legacy schema: plain date string, no age
		var date string
		if err := json.Unmarshal(trimmed, &date); err != nil {
			return Record{}, err
		}
		return Record{Date: date}, nil
	}

	var rec Record
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return Record{}, err
	}
	if rec.Date == "" {
		return Record{}, fmt.Errorf("missing date field")
	}
	return rec, nil
}

func (s *FileStore) Get(userID string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.items[userID]
	return rec, ok
}

// Set validates the date, replaces any existing record for the user and
// rewrites the backing document.
func (s *FileStore) Set(userID, date string, age *int) error {
	if _, _, _, err := ParseDate(date); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[userID]; !exists {
		s.order = append(s.order, userID)
	}
	s.items[userID] = Record{Date: date, Age: age}
	return s.persist()
}

// Remove deletes the user's record and reports whether one existed.
func (s *FileStore) Remove(userID string) (bool, error) {
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
	return true, s.persist()
}

func (s *FileStore) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		entries = append(entries, Entry{UserID: id, Record: s.items[id]})
	}
	// stable sort keeps insertion order for same-day ties
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

// Len reports the number of stored records.
func (s *FileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

// persist writes the whole mapping back to disk, keys in insertion order,
// via a temp file and rename so a crash mid-write cannot truncate the
// document. Caller holds the lock.
func (s *FileStore) persist() error {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, id := range s.order {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		key, err := json.Marshal(id)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteString(": ")
		val, err := json.Marshal(s.items[id])
		if err != nil {
			return err
		}
		buf.Write(val)
	}
	if len(s.order) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".birthdays-*.json")
	if err != nil {
		return fmt.Errorf("os.CreateTemp error: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write error: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close error: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("os.Rename error: %w", err)
	}
	return nil
}
