package protocol

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestDBState_UpsertAndFind(t *testing.T) {
	state := &DBState{}
	state.Upsert(DBStreamState{StreamName: "id_and_name", StreamNamespace: "default", CursorField: []string{"id"}, Cursor: strPtr("3")})
	state.Upsert(DBStreamState{StreamName: "full_name", StreamNamespace: "default", CursorField: []string{"updated_at"}})
	state.Upsert(DBStreamState{StreamName: "id_and_name", StreamNamespace: "default", CursorField: []string{"id"}, Cursor: strPtr("5")})

	require.Len(t, state.Streams, 2)
	assert.Equal(t, "full_name", state.Streams[0].StreamName)

	got, ok := state.Find(StreamKey{Namespace: "default", Name: "id_and_name"})
	require.True(t, ok)
	require.NotNil(t, got.Cursor)
	assert.Equal(t, "5", *got.Cursor)

	_, ok = state.Find(StreamKey{Namespace: "other", Name: "id_and_name"})
	assert.False(t, ok)

	var nilState *DBState
	_, ok = nilState.Find(StreamKey{Name: "x"})
	assert.False(t, ok)
}

func TestDBState_CloneIsDeep(t *testing.T) {
	state := &DBState{Streams: []DBStreamState{{StreamName: "a", CursorField: []string{"id"}, Cursor: strPtr("1")}}}
	cp := state.Clone()

	*cp.Streams[0].Cursor = "9"
	cp.Streams[0].CursorField[0] = "name"

	assert.Equal(t, "1", *state.Streams[0].Cursor)
	assert.Equal(t, "id", state.Streams[0].CursorField[0])
}

func TestParseState(t *testing.T) {
	state, err := ParseState(nil)
	require.NoError(t, err)
	assert.Empty(t, state.Streams)

	state, err = ParseState([]byte(`{"streams":[{"stream_name":"id_and_name","stream_namespace":"default","cursor_field":["id"],"cursor":"3"}]}`))
	require.NoError(t, err)
	require.Len(t, state.Streams, 1)
	assert.Equal(t, "3", *state.Streams[0].Cursor)

	_, err = ParseState([]byte(`{"streams":[{"cursor":"3"}]}`))
	assert.Error(t, err)

	_, err = ParseState([]byte(`not json`))
	assert.Error(t, err)
}

func TestEncoder_OneMessagePerLine(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	record, err := NewRecordMessage(StreamKey{Namespace: "default", Name: "id_and_name"},
		map[string]interface{}{"id": 1, "name": "picard<&>"}, time.UnixMilli(1700000000000))
	require.NoError(t, err)

	state := &DBState{}
	state.Upsert(DBStreamState{StreamName: "id_and_name", CursorField: []string{"id"}, Cursor: strPtr("1")})
	stateMsg := NewStateMessage(state)
	*state.Streams[0].Cursor = "changed"

	require.NoError(t, enc.Emit(NewLogMessage("INFO", "starting")))
	require.NoError(t, enc.Emit(record))
	require.NoError(t, enc.Emit(stateMsg))
	require.NoError(t, enc.Emit(NewConnectionStatusMessage(ConnectionStatus{Status: StatusSucceeded})))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)

	assert.JSONEq(t, `{"type":"LOG","log":{"level":"INFO","message":"starting"}}`, lines[0])
	assert.JSONEq(t, `{"type":"RECORD","record":{"stream":"id_and_name","namespace":"default","data":{"id":1,"name":"picard<&>"},"emitted_at":1700000000000}}`, lines[1])
	assert.JSONEq(t, `{"type":"STATE","state":{"data":{"streams":[{"stream_name":"id_and_name","cursor_field":["id"],"cursor":"1"}]}}}`, lines[2])
	assert.JSONEq(t, `{"type":"CONNECTION_STATUS","connectionStatus":{"status":"SUCCEEDED"}}`, lines[3])
}

func TestCatalog_Find(t *testing.T) {
	catalog := Catalog{Streams: []Stream{
		{Name: "id_and_name", Namespace: "default"},
		{Name: "id and name", Namespace: "default"},
	}}

	s, ok := catalog.Find("default", "id and name")
	require.True(t, ok)
	assert.Equal(t, "id and name", s.Name)

	_, ok = catalog.Find("", "id_and_name")
	assert.False(t, ok)

	assert.Equal(t, "default.id_and_name", StreamKey{Namespace: "default", Name: "id_and_name"}.String())
	assert.Equal(t, "t", StreamKey{Name: "t"}.String())
}
