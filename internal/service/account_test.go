package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/alexanderramin/coach/internal/api"
	"github.com/alexanderramin/coach/internal/domain"
	"github.com/alexanderramin/coach/internal/httpclient"
	"github.com/alexanderramin/coach/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_Login(t *testing.T) {
	h := newHarness(t)
	h.backend.AddUser("ada_l", "secret1")

	u, err := h.account.Login(context.Background(), " ada_l ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ada_l", u.Username)
	assert.Equal(t, testutil.FakeJWT, h.token(t))
}

func TestAccount_LoginRequiresCredentials(t *testing.T) {
	h := newHarness(t)
	_, err := h.account.Login(context.Background(), "", "secret1")
	assert.ErrorIs(t, err, ErrCredentialsRequired)
	assert.Empty(t, h.backend.Calls())
}

func TestAccount_CurrentWithoutSession(t *testing.T) {
	h := newHarness(t)
	_, err := h.account.Current(context.Background())
	assert.ErrorIs(t, err, api.ErrNotLoggedIn)
	assert.Empty(t, h.backend.Calls())
}

func TestAccount_RegisterSignsIn(t *testing.T) {
	h := newHarness(t)
	u, err := h.account.Register(context.Background(), domain.Registration{
		Username: "grace_h", Password: "cobol1", ConfirmPassword: "cobol1",
		FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", DoB: "1906-12-09",
	})
	require.NoError(t, err)
	assert.Equal(t, "grace_h", u.Username)
	assert.Equal(t, testutil.FakeJWT, h.token(t))
	assert.Len(t, h.backend.CallsTo(http.MethodPost, "/auth/login"), 1)
}

func TestAccount_RegisterValidatesLocally(t *testing.T) {
	h := newHarness(t)
	_, err := h.account.Register(context.Background(), domain.Registration{
		Username: "grace_h", Password: "cobol1", ConfirmPassword: "cobol2", Email: "grace@example.com",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Passwords do not match")
	assert.Empty(t, h.backend.Calls())
}

func TestAccount_RegisterConflict(t *testing.T) {
	h := newHarness(t)
	h.backend.AddUser("grace_h", "x")
	_, err := h.account.Register(context.Background(), domain.Registration{
		Username: "grace_h", Password: "cobol1", ConfirmPassword: "cobol1", Email: "grace@example.com",
	})
	require.Error(t, err)
	assert.Equal(t, "User existed", httpclient.UserMessage(err, "Registration failed"))
	assert.Empty(t, h.token(t))
}

func TestAccount_UpdateProfile(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "ada_l")

	err := h.account.UpdateProfile(context.Background(), domain.ProfileUpdate{FirstName: "Augusta", Password: "p", ConfirmPassword: "q"})
	require.Error(t, err)
	assert.Empty(t, h.backend.CallsTo(http.MethodPut, "/users/101"))

	require.NoError(t, h.account.UpdateProfile(context.Background(), domain.ProfileUpdate{FirstName: "Augusta"}))
	u, _ := h.backend.User("ada_l")
	assert.Equal(t, "Augusta", u.User.FirstName)
	assert.Equal(t, "secret1", u.Password)
}

func TestAccount_PasswordResetSignsIn(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.backend.AddUser("ada_l", "secret1")

	assert.ErrorIs(t, h.account.ForgotPassword(ctx, "  "), ErrEmailRequired)
	require.NoError(t, h.account.ForgotPassword(ctx, "ada_l@example.com"))

	_, err := h.account.ConfirmOTP(ctx, "ada_l@example.com", "")
	assert.ErrorIs(t, err, ErrOTPRequired)
	grant, err := h.account.ConfirmOTP(ctx, "ada_l@example.com", testutil.FakeOTP)
	require.NoError(t, err)

	_, err = h.account.ResetPassword(ctx, grant, domain.PasswordReset{NewPassword: "fresh1"})
	assert.EqualError(t, err, "Please enter and confirm your new password")

	loggedIn, err := h.account.ResetPassword(ctx, grant, domain.PasswordReset{NewPassword: "fresh1", ConfirmPassword: "fresh1"})
	require.NoError(t, err)
	assert.True(t, loggedIn)
	assert.Equal(t, testutil.FakeJWT, h.token(t))

	logins := h.backend.CallsTo(http.MethodPost, "/auth/login")
	require.Len(t, logins, 1)
	assert.JSONEq(t, `{"username":"ada_l","password":"fresh1"}`, logins[0].Body)
}

func TestAccount_PasswordResetFallsBackToEmail(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.backend.AddUser("ada_l", "secret1")
	require.NoError(t, h.account.ForgotPassword(ctx, "ada_l@example.com"))

	grant := domain.OTPGrant{Token: testutil.FakeOTPToken, Email: "ada_l@example.com"}
	loggedIn, err := h.account.ResetPassword(ctx, grant, domain.PasswordReset{NewPassword: "fresh1", ConfirmPassword: "fresh1"})
	require.NoError(t, err)
	assert.True(t, loggedIn)

	logins := h.backend.CallsTo(http.MethodPost, "/auth/login")
	require.Len(t, logins, 1)
	assert.Contains(t, logins[0].Body, `"username":"ada_l@example.com"`)
}

func TestAccount_PasswordResetSignInFailureIsSoft(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.backend.AddUser("ada_l", "secret1")
	require.NoError(t, h.account.ForgotPassword(ctx, "ada_l@example.com"))
	h.backend.FailNext(http.MethodPost, "/auth/login", http.StatusServiceUnavailable, `{}`)

	grant := domain.OTPGrant{Token: testutil.FakeOTPToken, Username: "ada_l", Email: "ada_l@example.com"}
	loggedIn, err := h.account.ResetPassword(ctx, grant, domain.PasswordReset{NewPassword: "fresh1", ConfirmPassword: "fresh1"})
	require.NoError(t, err)
	assert.False(t, loggedIn)
	assert.Empty(t, h.token(t))
}

func TestAccount_Logout(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "ada_l")
	require.NoError(t, h.account.Logout(context.Background()))
	assert.Empty(t, h.token(t))
	_, err := h.account.Current(context.Background())
	assert.ErrorIs(t, err, api.ErrNotLoggedIn)
}
