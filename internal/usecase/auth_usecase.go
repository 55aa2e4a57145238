package usecase

import (
	"context"
	"sync"

	"pairchat/internal/domain/entity"
	"pairchat/pkg/errors"
	"pairchat/pkg/logger"
)

// AuthUseCase holds the session token and the local user's identity. Token
// persistence across runs is the caller's concern; this only keeps the
// in-memory session.
type AuthUseCase struct {
	client AuthClient

	mu    sync.RWMutex
	token string
	user  *entity.User
}

func NewAuthUseCase(client AuthClient, token string) *AuthUseCase {
	return &AuthUseCase{client: client, token: token}
}

func (a *AuthUseCase) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

func (a *AuthUseCase) CurrentUser() *entity.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user
}

func (a *AuthUseCase) Login(ctx context.Context, username, password string) error {
	token, err := a.client.Login(ctx, username, password)
	if err != nil {
		logger.Error("login failed: %v", err)
		return err
	}

	a.mu.Lock()
	a.token = token
	a.mu.Unlock()

	return a.FetchUser(ctx)
}

// FetchUser refreshes the local user record. A 401 means the token is stale
// and the whole session is dropped.
func (a *AuthUseCase) FetchUser(ctx context.Context) error {
	token := a.Token()
	if token == "" {
		return errors.NotReady("fetch user")
	}

	user, err := a.client.Me(ctx, token)
	if err != nil {
		logger.Error("fetch user failed: %v", err)
		if errors.Is(err, "UNAUTHORIZED") {
			a.Logout()
		}
		return err
	}

	a.mu.Lock()
	a.user = user
	a.mu.Unlock()
	return nil
}

// EnsureUser fetches the user record only when it is not known yet.
func (a *AuthUseCase) EnsureUser(ctx context.Context) error {
	if a.CurrentUser() != nil {
		return nil
	}
	return a.FetchUser(ctx)
}

func (a *AuthUseCase) Logout() {
	a.mu.Lock()
	a.token = ""
	a.user = nil
	a.mu.Unlock()
}
