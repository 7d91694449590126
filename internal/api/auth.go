// Package api exposes typed operations on the coaching backend. Each method
// is exactly one HTTP call; retries belong to callers.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alexanderramin/coach/internal/httpclient"
)

// envelope is the backend's standard {"result": ...} wrapper.
type envelope[T any] struct {
	Result T `json:"result"`
}

type Auth struct {
	client *httpclient.Client
	logger *slog.Logger
}

func NewAuth(client *httpclient.Client, logger *slog.Logger) *Auth {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Auth{client: client, logger: logger}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token and stores it in the session.
func (a *Auth) Login(ctx context.Context, username, password string) (string, error) {
	resp, err := a.client.Do(ctx, http.MethodPost, "/auth/login",
		httpclient.SkipAuth(),
		httpclient.WithJSON(credentials{Username: username, Password: password}),
	)
	if err != nil {
		return "", err
	}
	token := ResolveToken(resp, LoginStrategies)
	if token == "" {
		return "", ErrNoToken
	}
	if err := a.client.Store().SetToken(ctx, token); err != nil {
		return "", fmt.Errorf("storing session token: %w", err)
	}
	return token, nil
}

// Logout forgets the local session first, then tells the backend. Backend
// failures do not matter once the token is gone locally.
func (a *Auth) Logout(ctx context.Context) error {
	store := a.client.Store()
	token, err := store.Token(ctx)
	if err != nil {
		return fmt.Errorf("reading session token: %w", err)
	}
	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	if token == "" {
		return nil
	}
	_, err = a.client.Do(ctx, http.MethodPost, "/auth/logout",
		httpclient.SkipAuth(),
		httpclient.WithJSON(map[string]string{"token": token}),
	)
	if err != nil {
		a.logger.Debug("backend logout failed", "error", err)
	}
	return nil
}
