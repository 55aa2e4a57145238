package entity

import "time"

const (
	DebtStatusActive  = "active"
	DebtStatusSettled = "settled"
)

type DebtRecord struct {
	ID         int64     `json:"id"`
	DebtorID   int64     `json:"debtor_id"`
	CreditorID int64     `json:"creditor_id"`
	Amount     float64   `json:"amount"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// ConversationDebt is a debt record projected into one conversation's point
// of view: who owes whom between the local user and the counterpart.
type ConversationDebt struct {
	ID          int64     `json:"id"`
	WhoOwes     string    `json:"who_owes"` // "me" or "other"
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}

type DebtBalance struct {
	UserID         int64   `json:"user_id"`
	Username       string  `json:"username"`
	TotalOwed      float64 `json:"total_owed"`
	TotalToCollect float64 `json:"total_to_collect"`
	NetBalance     float64 `json:"net_balance"`
}
