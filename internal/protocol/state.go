package protocol

import (
	"encoding/json"
	"fmt"
	"sort"
)

// DBState is the cursor state of every incremental stream.
type DBState struct {
	Streams []DBStreamState `json:"streams"`
}

// DBStreamState holds the last cursor value seen for a stream. Cursor is
// always carried as its string rendition; nil means nothing read yet.
type DBStreamState struct {
	StreamName      string   `json:"stream_name"`
	StreamNamespace string   `json:"stream_namespace,omitempty"`
	CursorField     []string `json:"cursor_field"`
	Cursor          *string  `json:"cursor"`
}

func (s DBStreamState) Key() StreamKey {
	return StreamKey{Namespace: s.StreamNamespace, Name: s.StreamName}
}

// ParseState decodes a state file. Empty input yields an empty state.
func ParseState(data []byte) (*DBState, error) {
	state := &DBState{}
	if len(data) == 0 {
		return state, nil
	}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to parse state: %w", err)
	}
	for _, s := range state.Streams {
		if s.StreamName == "" {
			return nil, fmt.Errorf("failed to parse state: stream entry without stream_name")
		}
	}
	return state, nil
}

// Find returns the state entry for key.
func (s *DBState) Find(key StreamKey) (DBStreamState, bool) {
	if s == nil {
		return DBStreamState{}, false
	}
	for _, st := range s.Streams {
		if st.Key() == key {
			return st, true
		}
	}
	return DBStreamState{}, false
}

// Upsert replaces the entry with the same key or appends a new one. Entries
// stay sorted by namespace then name so emitted state is deterministic.
func (s *DBState) Upsert(entry DBStreamState) {
	for i := range s.Streams {
		if s.Streams[i].Key() == entry.Key() {
			s.Streams[i] = entry
			return
		}
	}
	s.Streams = append(s.Streams, entry)
	sort.SliceStable(s.Streams, func(i, j int) bool {
		a, b := s.Streams[i], s.Streams[j]
		if a.StreamNamespace != b.StreamNamespace {
			return a.StreamNamespace < b.StreamNamespace
		}
		return a.StreamName < b.StreamName
	})
}

// Clone deep-copies the state.
func (s *DBState) Clone() *DBState {
	if s == nil {
		return nil
	}
	cp := &DBState{Streams: make([]DBStreamState, len(s.Streams))}
	for i, st := range s.Streams {
		st.CursorField = append([]string(nil), st.CursorField...)
		if st.Cursor != nil {
			v := *st.Cursor
			st.Cursor = &v
		}
		cp.Streams[i] = st
	}
	return cp
}
