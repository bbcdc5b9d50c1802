package models

// Snapshot is the result of resolving an entity at a requested time.
// Timestamp is nil when no snapshot with useful data exists.
type Snapshot struct {
	EntityID  string      `json:"id"`
	Requested int64       `json:"requested"`
	Timestamp *int64      `json:"timestamp"`
	Record    StateRecord `json:"record"`
}

func NewSnapshot(id string, requested int64, h *History) *Snapshot {
	rec, ts, found := h.Resolve(requested)
	snap := &Snapshot{EntityID: id, Requested: requested, Record: rec}
	if found {
		snap.Timestamp = &ts
	}
	return snap
}

func (s *Snapshot) Found() bool {
	return s != nil && s.Timestamp != nil
}

// Resolve picks the snapshot of h that best describes the entity at requested.
// See History.Resolve.
func Resolve(h *History, requested int64) (StateRecord, int64, bool) {
	return h.Resolve(requested)
}

// Resolve returns the earliest snapshot at or after requested if it has a useful
// status. If that snapshot is private or unspecified the forward search stops
// there, and the first useful snapshot in insertion order is returned instead,
// carrying the status observed at the requested time. When nothing useful exists
// the result holds only that status (or nothing) and found is false.
//
// The returned record is always a copy.
func (h *History) Resolve(requested int64) (rec StateRecord, ts int64, found bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var pending *StatusKind
	for _, t := range h.sortedLocked() {
		if t < requested {
			continue
		}
		candidate := h.records[t]
		if candidate.IsUseful() {
			return candidate.Clone(), t, true
		}
		if status, ok := candidate.Status(); ok {
			pending = &status
		}
		break
	}

	for _, t := range h.order {
		candidate := h.records[t]
		if !candidate.IsUseful() {
			continue
		}
		if pending != nil {
			return candidate.WithStatus(*pending), t, true
		}
		return candidate.Clone(), t, true
	}

	out := StateRecord{}
	if pending != nil {
		out[KeyStatus] = string(*pending)
	}
	return out, 0, false
}
