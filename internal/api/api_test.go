package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/alexanderramin/coach/internal/domain"
	"github.com/alexanderramin/coach/internal/httpclient"
	"github.com/alexanderramin/coach/internal/session"
	"github.com/alexanderramin/coach/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	backend *testutil.FakeBackend
	store   *session.MemoryStore
	client  *httpclient.Client
	auth    *Auth
	users   *Users
	goals   *Goals
	gemini  *Gemini
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fb := testutil.NewFakeBackend(t)
	store := session.NewMemoryStore()
	client := httpclient.New(fb.URL(), store)
	return &fixture{
		backend: fb,
		store:   store,
		client:  client,
		auth:    NewAuth(client, nil),
		users:   NewUsers(client),
		goals:   NewGoals(client),
		gemini:  NewGemini(client),
	}
}

func (f *fixture) loginAs(t *testing.T, username string) domain.User {
	t.Helper()
	u := f.backend.AddUser(username, "secret1")
	require.NoError(t, f.store.SetToken(context.Background(), f.backend.LoginAs(username)))
	return u
}

func (f *fixture) token(t *testing.T) string {
	t.Helper()
	tok, err := f.store.Token(context.Background())
	require.NoError(t, err)
	return tok
}

func TestLogin_StoresToken(t *testing.T) {
	f := newFixture(t)
	f.backend.AddUser("ada_l", "secret1")

	tok, err := f.auth.Login(context.Background(), "ada_l", "secret1")
	require.NoError(t, err)
	assert.Equal(t, testutil.FakeJWT, tok)
	assert.Equal(t, testutil.FakeJWT, f.token(t))

	calls := f.backend.CallsTo(http.MethodPost, "/auth/login")
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Auth)
	assert.JSONEq(t, `{"username":"ada_l","password":"secret1"}`, calls[0].Body)
}

func TestLogin_BadCredentials(t *testing.T) {
	f := newFixture(t)
	f.backend.AddUser("ada_l", "secret1")

	_, err := f.auth.Login(context.Background(), "ada_l", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid username or password", httpclient.UserMessage(err, "Login failed"))
	assert.Empty(t, f.token(t))
}

func TestLogin_NoTokenInResponse(t *testing.T) {
	f := newFixture(t)
	f.backend.FailNext(http.MethodPost, "/auth/login", http.StatusOK, `{"authenticated":true}`)

	_, err := f.auth.Login(context.Background(), "ada_l", "secret1")
	assert.ErrorIs(t, err, ErrNoToken)
	assert.Empty(t, f.token(t))
}

func TestLogout_ClearsBeforeBackendCall(t *testing.T) {
	f := newFixture(t)
	f.loginAs(t, "ada_l")
	f.backend.FailNext(http.MethodPost, "/auth/logout", http.StatusInternalServerError, `{}`)

	require.NoError(t, f.auth.Logout(context.Background()))
	assert.Empty(t, f.token(t))

	calls := f.backend.CallsTo(http.MethodPost, "/auth/logout")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"token":"`+testutil.FakeJWT+`"}`, calls[0].Body)
	assert.Empty(t, calls[0].Auth)
}

func TestLogout_WithoutSessionSkipsBackend(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.auth.Logout(context.Background()))
	assert.Empty(t, f.backend.CallsTo(http.MethodPost, "/auth/logout"))
}

func TestUsers_Me(t *testing.T) {
	f := newFixture(t)
	u := f.loginAs(t, "ada_l")

	me, err := f.users.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)
	assert.Equal(t, "ada_l", me.Username)
}

func TestUsers_Me_401ClearsSession(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.SetToken(context.Background(), "expired"))

	_, err := f.users.Me(context.Background())
	require.True(t, httpclient.IsUnauthorized(err))
	assert.Empty(t, f.token(t))
}

func TestUsers_RegisterOmitsConfirmation(t *testing.T) {
	f := newFixture(t)
	err := f.users.Register(context.Background(), domain.Registration{
		Username: "new_user", Password: "secret1", ConfirmPassword: "secret1",
		FirstName: "New", LastName: "User", Email: "new@example.com", DoB: "1999-01-01",
	})
	require.NoError(t, err)

	calls := f.backend.CallsTo(http.MethodPost, "/users/createUser")
	require.Len(t, calls, 1)
	assert.NotContains(t, calls[0].Body, "confirmPassword")
	_, ok := f.backend.User("new_user")
	assert.True(t, ok)

	err = f.users.Register(context.Background(), domain.Registration{Username: "new_user", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, "User existed", httpclient.UserMessage(err, "Registration failed"))
}

func TestUsers_UpdateProfileDropsBlankPasswords(t *testing.T) {
	f := newFixture(t)
	u := f.loginAs(t, "ada_l")

	upd := domain.ProfileFromUser(&u)
	upd.FirstName = "Augusta"
	require.NoError(t, f.users.UpdateProfile(context.Background(), u.ID, upd))

	calls := f.backend.CallsTo(http.MethodPut, "/users/"+u.ID.String())
	require.Len(t, calls, 1)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(calls[0].Body), &body))
	assert.Equal(t, "Augusta", body["firstName"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "confirmPassword")
}

func TestUsers_PasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.backend.AddUser("ada_l", "secret1")
	require.NoError(t, f.store.SetToken(ctx, "unrelated-session"))

	require.NoError(t, f.users.ForgotPassword(ctx, "ada_l@example.com"))

	_, err := f.users.ConfirmOTP(ctx, "ada_l@example.com", "000000")
	require.Error(t, err)
	assert.Equal(t, "Invalid or expired OTP", httpclient.UserMessage(err, "x"))

	grant, err := f.users.ConfirmOTP(ctx, "ada_l@example.com", testutil.FakeOTP)
	require.NoError(t, err)
	assert.Equal(t, testutil.FakeOTPToken, grant.Token)
	assert.Equal(t, "ada_l", grant.Username)
	assert.Equal(t, "ada_l@example.com", grant.Email)

	require.NoError(t, f.users.ResetPassword(ctx, grant, domain.PasswordReset{NewPassword: "fresh1", ConfirmPassword: "fresh1"}))
	u, _ := f.backend.User("ada_l")
	assert.Equal(t, "fresh1", u.Password)

	calls := f.backend.CallsTo(http.MethodPost, "/users/reset-password")
	require.Len(t, calls, 1)
	assert.Equal(t, "Bearer "+testutil.FakeOTPToken, calls[0].Auth)
	assert.Equal(t, "ada_l@example.com", calls[0].Query["email"])
	assert.Equal(t, "unrelated-session", f.token(t), "reset does not touch the session")
}

func TestGoals_ListHistoryUseDistinctEndpoints(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.loginAs(t, "ada_l")
	f.backend.SetGoals(u.ID, []domain.Goal{testutil.NewTestGoal("active")})
	f.backend.SetHistory(u.ID, []domain.Goal{testutil.NewTestGoal("old"), testutil.NewTestGoal("older")})

	active, err := f.goals.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "active", active[0].Goal)

	history, err := f.goals.History(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	require.Len(t, f.backend.CallsTo(http.MethodGet, "/goals"), 1)
	require.Len(t, f.backend.CallsTo(http.MethodGet, "/processes"), 1)
	assert.Equal(t, u.ID.String(), f.backend.CallsTo(http.MethodGet, "/processes")[0].Query["userId"])
}

func TestGoals_CreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.loginAs(t, "ada_l")

	payload, err := domain.NewPlanEditor(testutil.NewTestPlan("Go backend")).Payload()
	require.NoError(t, err)
	require.NoError(t, f.goals.Create(ctx, u.ID, payload))

	goals := f.backend.Goals(u.ID)
	require.Len(t, goals, 1)
	assert.Equal(t, "Go backend", goals[0].Goal)

	g := goals[0]
	_, err = g.MarkRouteDone(0, 0)
	require.NoError(t, err)
	require.NoError(t, f.goals.Update(ctx, g.ID, domain.GoalPayload{Metadata: g.Metadata}))
	assert.True(t, f.backend.Goals(u.ID)[0].Metadata[0].Routes[0].Done)
	assert.Equal(t, g.ID.String(), f.backend.CallsTo(http.MethodPut, "/goals")[0].Query["goalId"])

	require.NoError(t, f.goals.Delete(ctx, g.ID))
	assert.Empty(t, f.backend.Goals(u.ID))
}

func TestGoals_NonListResultIsEmpty(t *testing.T) {
	f := newFixture(t)
	u := f.loginAs(t, "ada_l")
	f.backend.FailNext(http.MethodGet, "/goals", http.StatusOK, `{"result":null}`)

	goals, err := f.goals.List(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, goals)
}

func TestGoals_NonArrayResultIsEmpty(t *testing.T) {
	f := newFixture(t)
	u := f.loginAs(t, "ada_l")
	f.backend.FailNext(http.MethodGet, "/goals", http.StatusOK, `{"result":{"message":"none"}}`)

	goals, err := f.goals.List(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, goals)
}

func TestGoals_LooseDoneFlagKeepsEveryGoal(t *testing.T) {
	f := newFixture(t)
	u := f.loginAs(t, "ada_l")
	f.backend.FailNext(http.MethodGet, "/goals", http.StatusOK, `{"result":[
		{"id": 1, "goal": "A", "metadata": [{"big_title": "p", "route": [{"small_title": "r", "percentage": 100, "done": true}]}]},
		{"id": 2, "goal": "B", "metadata": [{"big_title": "p", "route": [
			{"small_title": "x", "percentage": 50, "done": "false"},
			{"small_title": "y", "percentage": 50, "done": "true"}
		]}]}
	]}`)

	goals, err := f.goals.List(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, goals, 2)
	assert.True(t, goals[0].Metadata[0].Routes[0].Done)
	assert.False(t, goals[1].Metadata[0].Routes[0].Done)
	assert.True(t, goals[1].Metadata[0].Routes[1].Done)
}

func TestGoals_MalformedListIsAnError(t *testing.T) {
	f := newFixture(t)
	u := f.loginAs(t, "ada_l")
	f.backend.FailNext(http.MethodGet, "/goals", http.StatusOK, `{"result":[{"id": 1, "metadata": 5}]}`)

	goals, err := f.goals.List(context.Background(), u.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding goals")
	assert.Nil(t, goals)
}

func TestGemini_AnalyzeCV(t *testing.T) {
	f := newFixture(t)
	u := f.loginAs(t, "ada_l")

	cv, err := f.gemini.AnalyzeCV(context.Background(), u.ID, "cv.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", cv.Summary().BasicInfo.Name)
}

func TestGemini_SubmitPlanSendsQueryAndBody(t *testing.T) {
	f := newFixture(t)
	u := f.loginAs(t, "ada_l")

	resp, err := f.gemini.SubmitPlan(context.Background(), PlanRequest{
		UserID:     u.ID,
		Target:     "Backend Developer",
		Deadline:   "2025-07-01T09:30:00.000",
		CVAnalysis: domain.CVAnalysis(`{"summary":"x"}`),
	})
	require.NoError(t, err)
	assert.True(t, resp.IsArray())

	call := f.backend.CallsTo(http.MethodPost, "/gemini/plan")[0]
	assert.Equal(t, "Backend Developer", call.Query["target"])
	assert.Equal(t, "2025-07-01T09:30:00.000", call.Query["complete_time"])
	assert.Equal(t, u.ID.String(), call.Query["userId"])
	assert.JSONEq(t, `{"cvAnalysis":{"summary":"x"}}`, call.Body)
}

func TestGemini_Feedback(t *testing.T) {
	f := newFixture(t)
	u := f.loginAs(t, "ada_l")

	fb, err := f.gemini.Feedback(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Steady progress.", fb.Feedback)
	assert.Equal(t, "Keep going.", fb.MotivationQuote)
}
