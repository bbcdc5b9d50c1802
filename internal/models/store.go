package models

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// Store maps entity ids to their histories. Every history in the store is non-empty.
type Store struct {
	mu        sync.RWMutex
	ids       []string
	histories map[string]*History
}

func NewStore() *Store {
	return &Store{histories: make(map[string]*History)}
}

func (s *Store) Get(id string) (*History, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.histories[id]
	return h, ok
}

// Put sets the history of an entity, keeping the entity's position if it is already present.
func (s *Store) Put(id string, h *History) error {
	if id == "" {
		return errors.New("store: empty entity id")
	}
	if h == nil || h.Len() == 0 {
		return fmt.Errorf("store: %s: %w", id, ErrEmptyHistory)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.histories == nil {
		s.histories = make(map[string]*History)
	}
	if _, ok := s.histories[id]; !ok {
		s.ids = append(s.ids, id)
	}
	s.histories[id] = h
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// IDs returns entity ids in the order they were first observed.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ids)
}

// RecordCount returns the number of snapshots across all histories.
func (s *Store) RecordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, h := range s.histories {
		n += h.Len()
	}
	return n
}

// Resolve resolves the snapshot of one entity. The bool is false when the entity is unknown.
func (s *Store) Resolve(id string, requested int64) (*Snapshot, bool) {
	s.mu.RLock()
	h, ok := s.histories[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return NewSnapshot(id, requested, h), true
}

func (s *Store) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range s.ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		hist, err := s.histories[id].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("marshal history %s: %w", id, err)
		}
		buf.Write(hist)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *Store) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.New("store: invalid JSON")
	}
	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return errors.New("store: expected an object of histories")
	}

	ids := make([]string, 0)
	histories := make(map[string]*History)
	var err error
	res.ForEach(func(key, value gjson.Result) bool {
		id := key.String()
		if _, dup := histories[id]; dup {
			err = fmt.Errorf("store: duplicate entity %q", id)
			return false
		}
		h, herr := parseHistory(value)
		if herr != nil {
			err = fmt.Errorf("store: entity %q: %w", id, herr)
			return false
		}
		ids = append(ids, id)
		histories[id] = h
		return true
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = ids
	s.histories = histories
	return nil
}
