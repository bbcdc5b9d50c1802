package models

// Observation is one freshly observed record for an entity. All observations
// of a batch share the batch timestamp.
type Observation struct {
	EntityID string
	Record   StateRecord
}

type MergeOutcome int

const (
	OutcomeCreated MergeOutcome = iota
	OutcomeBumped
	OutcomeAppended
	OutcomeSkipped
	OutcomeDropped
)

func (o MergeOutcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeBumped:
		return "bumped"
	case OutcomeAppended:
		return "appended"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeDropped:
		return "dropped"
	}
	return "unknown"
}

// MergeResult counts what happened to each observation of a batch.
type MergeResult struct {
	Created  int `json:"created"`
	Bumped   int `json:"bumped"`
	Appended int `json:"appended"`
	Skipped  int `json:"skipped"`
	Dropped  int `json:"dropped"`
}

func (r *MergeResult) add(o MergeOutcome) {
	switch o {
	case OutcomeCreated:
		r.Created++
	case OutcomeBumped:
		r.Bumped++
	case OutcomeAppended:
		r.Appended++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeDropped:
		r.Dropped++
	}
}

// Counts returns the result keyed by outcome name.
func (r MergeResult) Counts() map[MergeOutcome]int {
	return map[MergeOutcome]int{
		OutcomeCreated:  r.Created,
		OutcomeBumped:   r.Bumped,
		OutcomeAppended: r.Appended,
		OutcomeSkipped:  r.Skipped,
		OutcomeDropped:  r.Dropped,
	}
}

// Changed reports whether the merge modified any history.
func (r MergeResult) Changed() bool {
	return r.Created+r.Bumped+r.Appended > 0
}

// CanOverwrite reports whether every field of existing is present in next with an equal value.
// next may carry fields existing does not have. The check is one-directional.
func CanOverwrite(existing, next StateRecord) bool {
	for key, value := range existing {
		v, ok := next[key]
		if !ok || !valuesEqual(value, v) {
			return false
		}
	}
	return true
}

// Merge folds a batch observed at batchTimestamp into the store.
//
// An unchanged observation bumps the matching snapshot to batchTimestamp instead
// of adding a copy, so a history only grows when the state changes. The first
// observation of an entity within a batch wins. Observations without an entity
// id are dropped.
func (s *Store) Merge(batch []Observation, batchTimestamp int64) MergeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.histories == nil {
		s.histories = make(map[string]*History)
	}

	var result MergeResult
	for _, obs := range batch {
		result.add(s.mergeOne(obs, batchTimestamp))
	}
	return result
}

func (s *Store) mergeOne(obs Observation, ts int64) MergeOutcome {
	if obs.EntityID == "" {
		return OutcomeDropped
	}
	rec := obs.Record.Clone()
	if rec == nil {
		rec = StateRecord{}
	}

	h, ok := s.histories[obs.EntityID]
	if !ok {
		h = NewHistory()
		h.insert(ts, rec)
		s.histories[obs.EntityID] = h
		s.ids = append(s.ids, obs.EntityID)
		return OutcomeCreated
	}
	return h.merge(rec, ts)
}

func (h *History) merge(rec StateRecord, ts int64) MergeOutcome {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.records[ts]; ok {
		// already updated earlier in this batch, e.g. the video is on two playlists
		return OutcomeSkipped
	}
	for _, existing := range h.order {
		if CanOverwrite(h.records[existing], rec) {
			h.remove(existing)
			h.insert(ts, rec)
			return OutcomeBumped
		}
	}
	h.insert(ts, rec)
	return OutcomeAppended
}
