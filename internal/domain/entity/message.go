package entity

import (
	"encoding/json"
	"time"
)

const (
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
)

// Annotation kinds this client reacts to. Anything else passes through
// untouched.
const (
	AnnotationKindTask    = "task"
	AnnotationKindExpense = "expense"
)

// Annotation is the opaque classification an analysis step attaches to a
// message. Only the kind is interpreted here; the rest of the payload is
// carried through untouched.
type Annotation struct {
	Kind    string
	Payload json.RawMessage
}

func (a *Annotation) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	a.Kind = probe.Type
	a.Payload = append(a.Payload[:0], data...)
	return nil
}

func (a Annotation) MarshalJSON() ([]byte, error) {
	if len(a.Payload) > 0 {
		return a.Payload, nil
	}
	return json.Marshal(struct {
		Type string `json:"type"`
	}{Type: a.Kind})
}

type Message struct {
	ID         int64       `json:"id,omitempty"`
	SenderID   int64       `json:"sender_id"`
	ReceiverID int64       `json:"receiver_id"`
	Content    string      `json:"content"`
	CreatedAt  time.Time   `json:"created_at"`
	Status     string      `json:"status,omitempty"`
	Annotation *Annotation `json:"ai_analysis,omitempty"`

	// LocalID identifies an optimistic message before the server has
	// assigned an id. Never serialized.
	LocalID string `json:"-"`
}
