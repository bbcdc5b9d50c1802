package models

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

var (
	ErrEmptyHistory      = errors.New("history has no entries")
	ErrDuplicateSnapshot = errors.New("duplicate snapshot timestamp")
)

// Entry is a single timestamped snapshot of a History.
type Entry struct {
	Timestamp int64       `json:"timestamp"`
	Record    StateRecord `json:"record"`
}

// History keeps the snapshots of one entity keyed by unix timestamp.
// Insertion order is preserved and observable: both merge and resolve
// break ties by it.
type History struct {
	mu      sync.RWMutex
	order   []int64
	records map[int64]StateRecord

	sortMu sync.Mutex
	sorted []int64
}

func NewHistory() *History {
	return &History{records: make(map[int64]StateRecord)}
}

// NewHistoryFromEntries builds a history in the given order. Duplicate timestamps are rejected.
func NewHistoryFromEntries(entries ...Entry) (*History, error) {
	h := NewHistory()
	for _, e := range entries {
		if _, ok := h.records[e.Timestamp]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateSnapshot, e.Timestamp)
		}
		h.insert(e.Timestamp, e.Record.Clone())
	}
	return h, nil
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.order)
}

func (h *History) Has(ts int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.records[ts]
	return ok
}

// Get returns a copy of the snapshot stored at ts.
func (h *History) Get(ts int64) (StateRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rec, ok := h.records[ts]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Timestamps returns the timestamps in insertion order.
func (h *History) Timestamps() []int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.order)
}

// SortedTimestamps returns the timestamps in ascending numeric order.
func (h *History) SortedTimestamps() []int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.sortedLocked())
}

// Entries returns copies of all snapshots in insertion order.
func (h *History) Entries() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Entry, 0, len(h.order))
	for _, ts := range h.order {
		out = append(out, Entry{Timestamp: ts, Record: h.records[ts].Clone()})
	}
	return out
}

// sortedLocked memoizes the ascending timestamp order until the next mutation.
// Caller holds at least the read lock.
func (h *History) sortedLocked() []int64 {
	h.sortMu.Lock()
	defer h.sortMu.Unlock()
	if h.sorted == nil {
		h.sorted = slices.Clone(h.order)
		slices.Sort(h.sorted)
	}
	return h.sorted
}

// insert appends a snapshot. Caller holds the write lock or owns h exclusively.
func (h *History) insert(ts int64, rec StateRecord) {
	if h.records == nil {
		h.records = make(map[int64]StateRecord)
	}
	if _, ok := h.records[ts]; ok {
		panic(fmt.Sprintf("models: %s %d", ErrDuplicateSnapshot, ts))
	}
	h.records[ts] = rec
	h.order = append(h.order, ts)
	h.sorted = nil
}

// remove deletes a snapshot. Caller holds the write lock.
func (h *History) remove(ts int64) {
	if _, ok := h.records[ts]; !ok {
		return
	}
	delete(h.records, ts)
	if i := slices.Index(h.order, ts); i >= 0 {
		h.order = slices.Delete(h.order, i, i+1)
	}
	h.sorted = nil
}

// MarshalJSON writes the history as an object keyed by stringified timestamps, in insertion order.
func (h *History) MarshalJSON() ([]byte, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ts := range h.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strconv.FormatInt(ts, 10))
		buf.WriteString(`":`)
		rec, err := json.Marshal(h.records[ts])
		if err != nil {
			return nil, fmt.Errorf("marshal snapshot %d: %w", ts, err)
		}
		buf.Write(rec)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the persisted layout. Keys are parsed as integers and
// document order becomes insertion order.
func (h *History) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.New("history: invalid JSON")
	}
	parsed, err := parseHistory(gjson.ParseBytes(data))
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.order = parsed.order
	h.records = parsed.records
	h.sorted = nil
	return nil
}

func parseHistory(res gjson.Result) (*History, error) {
	if !res.IsObject() {
		return nil, errors.New("history: expected an object of snapshots")
	}

	h := NewHistory()
	var err error
	res.ForEach(func(key, value gjson.Result) bool {
		ts, perr := strconv.ParseInt(strings.TrimSpace(key.String()), 10, 64)
		if perr != nil {
			err = fmt.Errorf("history: invalid timestamp key %q: %w", key.String(), perr)
			return false
		}
		if _, ok := h.records[ts]; ok {
			err = fmt.Errorf("history: %w: %d", ErrDuplicateSnapshot, ts)
			return false
		}
		rec, rerr := parseRecord(value)
		if rerr != nil {
			err = fmt.Errorf("history: snapshot %d: %w", ts, rerr)
			return false
		}
		h.insert(ts, rec)
		return true
	})
	if err != nil {
		return nil, err
	}
	if len(h.order) == 0 {
		return nil, ErrEmptyHistory
	}
	return h, nil
}

func parseRecord(res gjson.Result) (StateRecord, error) {
	if !res.IsObject() {
		return nil, errors.New("expected an object of fields")
	}
	rec := make(StateRecord)
	res.ForEach(func(key, value gjson.Result) bool {
		rec[key.String()] = parseValue(value)
		return true
	})
	return rec, nil
}

// parseValue keeps integers as int64 so timestamps and durations survive a round trip unchanged.
func parseValue(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.True, gjson.False:
		return v.Bool()
	case gjson.String:
		return v.Str
	case gjson.Number:
		if strings.ContainsAny(v.Raw, ".eE") {
			return v.Num
		}
		return v.Int()
	default:
		return v.Value()
	}
}
