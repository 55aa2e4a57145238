package entity

import "time"

const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
)

type Task struct {
	ID               int64      `json:"id"`
	CreatedBy        int64      `json:"created_by"`
	AssignedTo       int64      `json:"assigned_to"`
	ItemName         string     `json:"item_name"`
	Status           string     `json:"status"`
	RelatedMessageID *int64     `json:"related_message_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}
