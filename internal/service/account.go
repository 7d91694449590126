package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/coach/internal/api"
	"github.com/alexanderramin/coach/internal/domain"
	"github.com/alexanderramin/coach/internal/session"
)

// Account covers sign-in, sign-up, profile and the password reset flow.
type Account struct {
	auth     AuthAPI
	users    UserAPI
	store    session.Store
	logger   *slog.Logger
	observer UseCaseObserver
	now      func() time.Time
}

func NewAccount(auth AuthAPI, users UserAPI, store session.Store, logger *slog.Logger, observers ...UseCaseObserver) *Account {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Account{
		auth:     auth,
		users:    users,
		store:    store,
		logger:   logger,
		observer: useCaseObserverOrNoop(observers),
		now:      time.Now,
	}
}

// Login signs in and returns the account behind the new session.
func (a *Account) Login(ctx context.Context, username, password string) (u *domain.User, err error) {
	defer observe(ctx, a.observer, "account.login", time.Now(), &err, nil)
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrCredentialsRequired
	}
	if _, err := a.auth.Login(ctx, username, password); err != nil {
		return nil, err
	}
	return a.users.Me(ctx)
}

// Logout ends the session. It succeeds even when the backend is unreachable.
func (a *Account) Logout(ctx context.Context) error {
	return a.auth.Logout(ctx)
}

// Current returns the logged-in user. Without a stored token it fails with
// api.ErrNotLoggedIn and makes no call.
func (a *Account) Current(ctx context.Context) (*domain.User, error) {
	ok, err := session.LoggedIn(ctx, a.store)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, api.ErrNotLoggedIn
	}
	return a.users.Me(ctx)
}

// Register validates the form locally, creates the account and signs in
// with the new credentials.
func (a *Account) Register(ctx context.Context, r domain.Registration) (u *domain.User, err error) {
	defer observe(ctx, a.observer, "account.register", time.Now(), &err, map[string]any{"username": r.Username})
	if err := r.ValidateAt(a.now()); err != nil {
		return nil, err
	}
	if err := a.users.Register(ctx, r); err != nil {
		return nil, err
	}
	if _, err := a.auth.Login(ctx, r.Username, r.Password); err != nil {
		return nil, fmt.Errorf("account created but sign-in failed: %w", err)
	}
	return a.users.Me(ctx)
}

// UpdateProfile validates and saves profile changes for the current user.
func (a *Account) UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) (err error) {
	defer observe(ctx, a.observer, "account.update_profile", time.Now(), &err, nil)
	if err := upd.Validate(); err != nil {
		return err
	}
	me, err := a.Current(ctx)
	if err != nil {
		return err
	}
	return a.users.UpdateProfile(ctx, me.ID, upd)
}

// ForgotPassword asks the backend to email a reset code.
func (a *Account) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmailRequired
	}
	return a.users.ForgotPassword(ctx, email)
}

// ConfirmOTP exchanges the emailed code for a reset grant.
func (a *Account) ConfirmOTP(ctx context.Context, email, otp string) (domain.OTPGrant, error) {
	email, otp = strings.TrimSpace(email), strings.TrimSpace(otp)
	if email == "" {
		return domain.OTPGrant{}, ErrEmailRequired
	}
	if otp == "" {
		return domain.OTPGrant{}, ErrOTPRequired
	}
	return a.users.ConfirmOTP(ctx, email, otp)
}

// ResetPassword sets the new password and then signs in with it, using the
// grant's username or, failing that, its email. loggedIn is false when the
// reset worked but the follow-up sign-in did not.
func (a *Account) ResetPassword(ctx context.Context, grant domain.OTPGrant, reset domain.PasswordReset) (loggedIn bool, err error) {
	defer observe(ctx, a.observer, "account.reset_password", time.Now(), &err, nil)
	if err := reset.Validate(); err != nil {
		return false, err
	}
	if err := a.users.ResetPassword(ctx, grant, reset); err != nil {
		return false, err
	}
	login := domain.CoalesceStr(grant.Username, grant.Email)
	if _, err := a.auth.Login(ctx, login, reset.NewPassword); err != nil {
		a.logger.Warn("sign-in after password reset failed", "login", login, "error", err)
		return false, nil
	}
	return true, nil
}
