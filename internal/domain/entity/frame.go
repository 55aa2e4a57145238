package entity

import "time"

const (
	FrameTypeMessage      = "message"
	FrameTypeNotification = "notification"
)

// InboundFrame is a server-to-client transport frame, discriminated by Type.
// Message fields are populated for "message" frames, the id references for
// "notification" frames.
type InboundFrame struct {
	Type string `json:"type"`

	ID         int64       `json:"id,omitempty"`
	SenderID   int64       `json:"sender_id,omitempty"`
	ReceiverID int64       `json:"receiver_id,omitempty"`
	Content    string      `json:"content,omitempty"`
	CreatedAt  time.Time   `json:"created_at,omitempty"`
	Annotation *Annotation `json:"ai_analysis,omitempty"`

	TaskID *int64 `json:"task_id,omitempty"`
	DebtID *int64 `json:"debt_id,omitempty"`
}

// Message converts a "message" frame into the stored message shape. Inbound
// messages are shown immediately, so they arrive already read.
func (f InboundFrame) Message() Message {
	return Message{
		ID:         f.ID,
		SenderID:   f.SenderID,
		ReceiverID: f.ReceiverID,
		Content:    f.Content,
		CreatedAt:  f.CreatedAt,
		Status:     MessageStatusRead,
		Annotation: f.Annotation,
	}
}

// SendFrame is the client-to-server send request.
type SendFrame struct {
	ReceiverID int64  `json:"receiver_id" validate:"required,gt=0"`
	Content    string `json:"content" validate:"required"`
}
