package models

import (
	"fmt"
	"reflect"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

// Field names used in records and dumps.
const (
	KeyID              = "id"
	KeyTitle           = "title"
	KeyChannelName     = "channelName"
	KeyChannelUsername = "channelUsername"
	KeyChannelID       = "channelId"
	KeyStatus          = "status"
	KeyDescription     = "description"
	KeyPublished       = "published"
	KeyDuration        = "duration"
	KeyAddedTime       = "addedToPlaylist"
	KeyDumpTime        = "dumpTime"
	KeyPlaylists       = "playlists"
	KeyVideos          = "videos"
)

// StateRecord is one observed state of an entity: a flat set of named scalar fields.
// A field that is absent differs from a field present with a null value.
type StateRecord map[string]any

// Status returns the status field and whether the record carries one.
func (r StateRecord) Status() (StatusKind, bool) {
	v, ok := r[KeyStatus]
	if !ok {
		return "", false
	}
	return StatusKind(cast.ToString(v)), true
}

// IsUseful reports whether the record has a useful status. A record without a status is not useful.
func (r StateRecord) IsUseful() bool {
	status, ok := r.Status()
	return ok && status.IsUseful()
}

func (r StateRecord) Clone() StateRecord {
	if r == nil {
		return nil
	}
	out := make(StateRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// WithStatus returns a copy of the record with the status field replaced.
func (r StateRecord) WithStatus(status StatusKind) StateRecord {
	out := r.Clone()
	if out == nil {
		out = make(StateRecord, 1)
	}
	out[KeyStatus] = string(status)
	return out
}

func (r StateRecord) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	s, isString := v.(string)
	return s, isString
}

func (r StateRecord) Int(key string) (int64, bool) {
	v, ok := r[key]
	if !ok || !isNumber(v) {
		return 0, false
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Equal compares two records field by field.
func (r StateRecord) Equal(other StateRecord) bool {
	if len(r) != len(other) {
		return false
	}
	return CanOverwrite(r, other)
}

// valuesEqual compares scalars by value. Numbers compare numerically whatever
// their Go type, since decoded JSON and freshly built records disagree on it.
func valuesEqual(a, b any) bool {
	if isNumber(a) && isNumber(b) {
		if isInteger(a) && isInteger(b) {
			return cast.ToInt64(a) == cast.ToInt64(b)
		}
		return cast.ToFloat64(a) == cast.ToFloat64(b)
	}
	return reflect.DeepEqual(a, b)
}

func isInteger(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func isNumber(v any) bool {
	switch v.(type) {
	case float32, float64:
		return true
	}
	return isInteger(v)
}

// UnmarshalJSON keeps integer fields as int64 instead of float64.
func (r *StateRecord) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		*r = nil
		return nil
	}
	rec, err := parseRecord(res)
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}
	*r = rec
	return nil
}
