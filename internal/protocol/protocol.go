// Package protocol defines the JSON messages a source exchanges with the
// orchestrator: specification, connection status, catalogs, records and state.
package protocol

import (
	"encoding/json"
	"time"
)

// MessageType tags every message written to stdout.
type MessageType string

const (
	MessageLog              MessageType = "LOG"
	MessageSpec             MessageType = "SPEC"
	MessageConnectionStatus MessageType = "CONNECTION_STATUS"
	MessageCatalog          MessageType = "CATALOG"
	MessageRecord           MessageType = "RECORD"
	MessageState            MessageType = "STATE"
)

// Message is the envelope. Exactly one payload field is set, matching Type.
type Message struct {
	Type             MessageType             `json:"type"`
	Log              *LogMessage             `json:"log,omitempty"`
	Spec             *ConnectorSpecification `json:"spec,omitempty"`
	ConnectionStatus *ConnectionStatus       `json:"connectionStatus,omitempty"`
	Catalog          *Catalog                `json:"catalog,omitempty"`
	Record           *RecordMessage          `json:"record,omitempty"`
	State            *StateMessage           `json:"state,omitempty"`
}

type LogMessage struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type ConnectorSpecification struct {
	DocumentationURL        string          `json:"documentationUrl,omitempty"`
	ConnectionSpecification json.RawMessage `json:"connectionSpecification"`
	SupportsIncremental     bool            `json:"supportsIncremental"`
	SupportedSyncModes      []SyncMode      `json:"supported_sync_modes,omitempty"`
}

type Status string

const (
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

type ConnectionStatus struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

type SyncMode string

const (
	SyncModeFullRefresh SyncMode = "full_refresh"
	SyncModeIncremental SyncMode = "incremental"
)

type DestinationSyncMode string

const (
	DestinationSyncModeAppend    DestinationSyncMode = "append"
	DestinationSyncModeOverwrite DestinationSyncMode = "overwrite"
)

// Stream describes one discovered table.
type Stream struct {
	Name                    string          `json:"name"`
	Namespace               string          `json:"namespace,omitempty"`
	JSONSchema              json.RawMessage `json:"json_schema"`
	SupportedSyncModes      []SyncMode      `json:"supported_sync_modes"`
	SourceDefinedCursor     bool            `json:"source_defined_cursor,omitempty"`
	DefaultCursorField      []string        `json:"default_cursor_field,omitempty"`
	SourceDefinedPrimaryKey [][]string      `json:"source_defined_primary_key,omitempty"`
}

type Catalog struct {
	Streams []Stream `json:"streams"`
}

// Find returns the stream with the given namespace and name.
func (c *Catalog) Find(namespace, name string) (*Stream, bool) {
	for i := range c.Streams {
		if c.Streams[i].Namespace == namespace && c.Streams[i].Name == name {
			return &c.Streams[i], true
		}
	}
	return nil, false
}

// ConfiguredStream is a stream selected for a sync.
type ConfiguredStream struct {
	Stream              Stream              `json:"stream"`
	SyncMode            SyncMode            `json:"sync_mode"`
	CursorField         []string            `json:"cursor_field,omitempty"`
	DestinationSyncMode DestinationSyncMode `json:"destination_sync_mode"`
	PrimaryKey          [][]string          `json:"primary_key,omitempty"`
}

type ConfiguredCatalog struct {
	Streams []ConfiguredStream `json:"streams"`
}

// RecordMessage carries one row. EmittedAt is epoch milliseconds.
type RecordMessage struct {
	Stream    string          `json:"stream"`
	Namespace string          `json:"namespace,omitempty"`
	Data      json.RawMessage `json:"data"`
	EmittedAt int64           `json:"emitted_at"`
}

type StateMessage struct {
	Data *DBState `json:"data"`
}

// StreamKey identifies a stream across catalogs and state.
type StreamKey struct {
	Namespace string
	Name      string
}

func (k StreamKey) String() string {
	if k.Namespace == "" {
		return k.Name
	}
	return k.Namespace + "." + k.Name
}

// Key returns the StreamKey of a configured stream.
func (s ConfiguredStream) Key() StreamKey {
	return StreamKey{Namespace: s.Stream.Namespace, Name: s.Stream.Name}
}

func NewLogMessage(level, message string) Message {
	return Message{Type: MessageLog, Log: &LogMessage{Level: level, Message: message}}
}

func NewSpecMessage(spec ConnectorSpecification) Message {
	return Message{Type: MessageSpec, Spec: &spec}
}

func NewConnectionStatusMessage(status ConnectionStatus) Message {
	return Message{Type: MessageConnectionStatus, ConnectionStatus: &status}
}

func NewCatalogMessage(catalog Catalog) Message {
	return Message{Type: MessageCatalog, Catalog: &catalog}
}

// NewRecordMessage encodes data and stamps it with the given emission time.
func NewRecordMessage(key StreamKey, data map[string]interface{}, emittedAt time.Time) (Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Type: MessageRecord,
		Record: &RecordMessage{
			Stream:    key.Name,
			Namespace: key.Namespace,
			Data:      raw,
			EmittedAt: emittedAt.UnixMilli(),
		},
	}, nil
}

// NewStateMessage snapshots state so later mutations do not leak into the
// emitted message.
func NewStateMessage(state *DBState) Message {
	return Message{Type: MessageState, State: &StateMessage{Data: state.Clone()}}
}
