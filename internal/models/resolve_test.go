package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func historyOf(t *testing.T, entries ...Entry) *History {
	t.Helper()
	h, err := NewHistoryFromEntries(entries...)
	require.NoError(t, err)
	return h
}

func withStatus(title string, status StatusKind) StateRecord {
	return StateRecord{KeyTitle: title, KeyStatus: string(status)}
}

func TestResolve_ExactMatch(t *testing.T) {
	h := historyOf(t,
		Entry{100, withStatus("a", StatusPublic)},
		Entry{200, withStatus("b", StatusPublic)},
	)
	rec, ts, found := Resolve(h, 100)
	require.True(t, found)
	assert.Equal(t, int64(100), ts)
	assert.Equal(t, "a", rec[KeyTitle])
}

func TestResolve_ForwardMatch(t *testing.T) {
	h := historyOf(t,
		Entry{100, withStatus("a", StatusPublic)},
		Entry{200, withStatus("b", StatusPublic)},
	)
	rec, ts, found := Resolve(h, 150)
	require.True(t, found)
	assert.Equal(t, int64(200), ts)
	assert.Equal(t, "b", rec[KeyTitle])
}

func TestResolve_ForwardMatchUsesNumericOrderNotInsertion(t *testing.T) {
	h := historyOf(t,
		Entry{300, withStatus("late", StatusUnlisted)},
		Entry{200, withStatus("early", StatusUnlisted)},
	)
	rec, ts, found := Resolve(h, 150)
	require.True(t, found)
	assert.Equal(t, int64(200), ts)
	assert.Equal(t, "early", rec[KeyTitle])
}

func TestResolve_StopsAtFirstNonInformativeForwardMatch(t *testing.T) {
	h := historyOf(t,
		Entry{100, withStatus("a", StatusPublic)},
		Entry{150, StateRecord{KeyStatus: string(StatusPrivate)}},
		Entry{300, withStatus("c", StatusPublic)},
	)
	rec, ts, found := Resolve(h, 120)
	require.True(t, found)
	assert.Equal(t, int64(100), ts)
	assert.Equal(t, "a", rec[KeyTitle])
	assert.Equal(t, string(StatusPrivate), rec[KeyStatus])
}

func TestResolve_FallbackUsesInsertionOrder(t *testing.T) {
	h := historyOf(t,
		Entry{500, withStatus("inserted first", StatusUnlisted)},
		Entry{100, withStatus("older", StatusPublic)},
		Entry{600, StateRecord{KeyStatus: string(StatusUnspecified)}},
	)
	rec, ts, found := Resolve(h, 550)
	require.True(t, found)
	assert.Equal(t, int64(500), ts)
	assert.Equal(t, "inserted first", rec[KeyTitle])
	assert.Equal(t, string(StatusUnspecified), rec[KeyStatus])
}

func TestResolve_NoUsefulData(t *testing.T) {
	h := historyOf(t, Entry{100, StateRecord{KeyStatus: string(StatusPrivate)}})
	rec, _, found := Resolve(h, 50)
	assert.False(t, found)
	assert.Equal(t, StateRecord{KeyStatus: string(StatusPrivate)}, rec)
}

func TestResolve_NoUsefulDataNoPendingStatus(t *testing.T) {
	h := historyOf(t, Entry{100, StateRecord{KeyStatus: string(StatusPrivate)}})
	rec, _, found := Resolve(h, 200)
	assert.False(t, found)
	assert.Equal(t, StateRecord{}, rec)
}

func TestResolve_RequestAfterAllSnapshotsKeepsOwnStatus(t *testing.T) {
	h := historyOf(t,
		Entry{100, withStatus("a", StatusUnlisted)},
		Entry{200, StateRecord{KeyStatus: string(StatusPrivate)}},
	)
	rec, ts, found := Resolve(h, 1000)
	require.True(t, found)
	assert.Equal(t, int64(100), ts)
	assert.Equal(t, string(StatusUnlisted), rec[KeyStatus])
}

func TestResolve_MissingStatusIsNotUseful(t *testing.T) {
	h := historyOf(t,
		Entry{100, withStatus("a", StatusPublic)},
		Entry{200, StateRecord{KeyTitle: "no status"}},
	)
	rec, ts, found := Resolve(h, 150)
	require.True(t, found)
	assert.Equal(t, int64(100), ts)
	// nothing was observed at 200 to override the fallback status with
	assert.Equal(t, string(StatusPublic), rec[KeyStatus])
}

func TestResolve_UnknownStatusCarriedOver(t *testing.T) {
	h := historyOf(t,
		Entry{100, withStatus("a", StatusPublic)},
		Entry{200, StateRecord{KeyStatus: "deleted"}},
	)
	rec, _, found := Resolve(h, 200)
	require.True(t, found)
	assert.Equal(t, "deleted", rec[KeyStatus])
}

func TestResolve_DoesNotMutateHistory(t *testing.T) {
	h := historyOf(t,
		Entry{100, withStatus("a", StatusPublic)},
		Entry{150, StateRecord{KeyStatus: string(StatusPrivate)}},
	)
	rec, _, _ := Resolve(h, 120)
	rec[KeyTitle] = "changed"

	stored, _ := h.Get(100)
	assert.Equal(t, string(StatusPublic), stored[KeyStatus])
	assert.Equal(t, "a", stored[KeyTitle])
}

func TestResolve_Deterministic(t *testing.T) {
	h := historyOf(t,
		Entry{100, withStatus("a", StatusPublic)},
		Entry{150, StateRecord{KeyStatus: string(StatusPrivate)}},
		Entry{300, withStatus("c", StatusPublic)},
	)
	first, firstTs, _ := Resolve(h, 120)
	for i := 0; i < 10; i++ {
		rec, ts, _ := Resolve(h, 120)
		assert.Equal(t, first, rec)
		assert.Equal(t, firstTs, ts)
	}
}

func TestResolve_ConcurrentReaders(t *testing.T) {
	h := historyOf(t,
		Entry{100, withStatus("a", StatusPublic)},
		Entry{200, withStatus("b", StatusPublic)},
	)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(req int64) {
			defer wg.Done()
			_, ts, found := Resolve(h, req)
			assert.True(t, found)
			assert.Contains(t, []int64{100, 200}, ts)
		}(int64(90 + i*10))
	}
	wg.Wait()
}

func TestStore_ResolveSnapshot(t *testing.T) {
	s := NewStore()
	s.Merge([]Observation{obs("v1", withStatus("a", StatusPublic))}, 100)

	snap, ok := s.Resolve("v1", 50)
	require.True(t, ok)
	require.True(t, snap.Found())
	assert.Equal(t, int64(100), *snap.Timestamp)
	assert.Equal(t, "v1", snap.EntityID)
	assert.Equal(t, int64(50), snap.Requested)

	_, ok = s.Resolve("missing", 50)
	assert.False(t, ok)
}

func TestSnapshot_NotFoundHasNilTimestamp(t *testing.T) {
	h := historyOf(t, Entry{100, StateRecord{KeyStatus: string(StatusPrivate)}})
	snap := NewSnapshot("v1", 10, h)
	assert.False(t, snap.Found())
	assert.Nil(t, snap.Timestamp)
}
