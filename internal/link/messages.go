package link

import (
	"encoding/json"
	"time"
)

// Message types on the websocket.
const (
	TypeValueInit    = "value_init"
	TypeValueChanged = "value_changed"
	TypeSetValue     = "set_value"
	TypeError        = "error"
)

// Cause says why a value changed.
type Cause string

// Causes reported in value_changed.
const (
	CauseDrag     Cause = "drag"
	CauseClick    Cause = "click"
	CauseExternal Cause = "external"
)

// Value is a committed brush value. In point mode V0 == V1.
type Value struct {
	V0 float64 `json:"v0"`
	V1 float64 `json:"v1"`
}

// envelope is the wire format for websocket messages.
type envelope struct {
	Type string          `json:"type"`
	Ts   *time.Time      `json:"ts,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

type valueInitData struct {
	Value
	ClientID string `json:"client_id"`
}

type valueChangedData struct {
	Value
	Cause Cause `json:"cause"`
}

type errorData struct {
	Message string `json:"message"`
}

func marshalEnvelope(typ string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return json.Marshal(envelope{Type: typ, Ts: &now, Data: raw})
}
