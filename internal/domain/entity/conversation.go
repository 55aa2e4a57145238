package entity

// Conversation aggregates the dialogue with one counterpart. Its id equals
// the counterpart's user id. Messages are append-only in arrival/send order
// and LastMessage always points at the tail when the list is non-empty.
type Conversation struct {
	ID          int64              `json:"id"`
	User        User               `json:"user"`
	Messages    []Message          `json:"messages"`
	LastMessage *Message           `json:"last_message,omitempty"`
	UnreadCount int                `json:"unread_count"`
	Tasks       []Task             `json:"tasks,omitempty"`
	Debts       []ConversationDebt `json:"debts,omitempty"`
}
