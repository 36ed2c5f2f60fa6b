package protocol

import (
	"encoding/json"
	"io"
	"sync"
)

// Encoder writes one message per line.
type Encoder struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewEncoder(w io.Writer) *Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Encoder{enc: enc}
}

// Emit is safe for concurrent use.
func (e *Encoder) Emit(msg Message) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enc.Encode(msg)
}
