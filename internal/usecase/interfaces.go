package usecase

import (
	"context"

	"pairchat/internal/domain/entity"
)

// APIClient is the REST surface the engine hydrates from. Implemented by
// rest.Client; faked in tests.
type APIClient interface {
	ListUsers(ctx context.Context, token string) ([]entity.User, error)
	ListMessages(ctx context.Context, token string, otherUserID int64, limit int) ([]entity.Message, error)
	ListTasks(ctx context.Context, token string) ([]entity.Task, error)
	ListActiveDebts(ctx context.Context, token string, limit int) ([]entity.DebtRecord, error)
	FetchBalance(ctx context.Context, token string) (*entity.DebtBalance, error)
}

// AuthClient is the slice of the REST API the session layer needs.
type AuthClient interface {
	Login(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context, token string) (*entity.User, error)
}

// Transport is the duplex connection the engine sends through. Send must be
// a silent no-op while disconnected.
type Transport interface {
	Connect(token string) error
	Send(frame entity.SendFrame) error
	Close()
}

// ActiveStore persists the active conversation id across runs.
type ActiveStore interface {
	Load() (int64, bool)
	Save(id int64)
}

// Session supplies the bearer token and local user identity. An empty token
// means "not ready": every engine operation no-ops.
type Session interface {
	Token() string
	CurrentUser() *entity.User
	EnsureUser(ctx context.Context) error
}
