package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pairchat/internal/domain/entity"
	"pairchat/pkg/errors"
)

// Client talks to the chat backend's REST API with bearer-token auth. It
// performs no retries; failures surface as FETCH_FAILED (or UNAUTHORIZED on
// 401) and callers decide what to keep.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) ListUsers(ctx context.Context, token string) ([]entity.User, error) {
	var users []entity.User
	if err := c.get(ctx, token, "/api/users/", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListMessages returns up to limit messages with the given counterpart,
// most recent first (the caller reverses for display).
func (c *Client) ListMessages(ctx context.Context, token string, otherUserID int64, limit int) ([]entity.Message, error) {
	query := url.Values{}
	query.Set("other_user_id", strconv.FormatInt(otherUserID, 10))
	query.Set("limit", strconv.Itoa(limit))

	var messages []entity.Message
	if err := c.get(ctx, token, "/api/messages/", query, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *Client) ListTasks(ctx context.Context, token string) ([]entity.Task, error) {
	var tasks []entity.Task
	if err := c.get(ctx, token, "/api/tasks/", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) ListActiveDebts(ctx context.Context, token string, limit int) ([]entity.DebtRecord, error) {
	query := url.Values{}
	query.Set("status_filter", entity.DebtStatusActive)
	query.Set("limit", strconv.Itoa(limit))

	var debts []entity.DebtRecord
	if err := c.get(ctx, token, "/api/debts/history", query, &debts); err != nil {
		return nil, err
	}
	return debts, nil
}

func (c *Client) FetchBalance(ctx context.Context, token string) (*entity.DebtBalance, error) {
	var balance entity.DebtBalance
	if err := c.get(ctx, token, "/api/debts/balance", nil, &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

func (c *Client) Me(ctx context.Context, token string) (*entity.User, error) {
	var user entity.User
	if err := c.get(ctx, token, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.FetchFailed("login", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.FetchFailed("login", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", errors.Unauthorized("invalid credentials", nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.FetchFailed("login", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", errors.FetchFailed("login", err)
	}
	return body.AccessToken, nil
}

func (c *Client) get(ctx context.Context, token, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.FetchFailed(path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.FetchFailed(path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return errors.Unauthorized("session token rejected", nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.FetchFailed(path, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.FetchFailed(path, err)
	}
	return nil
}
