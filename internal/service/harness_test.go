package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alexanderramin/coach/internal/api"
	"github.com/alexanderramin/coach/internal/domain"
	"github.com/alexanderramin/coach/internal/httpclient"
	"github.com/alexanderramin/coach/internal/planner"
	"github.com/alexanderramin/coach/internal/repository"
	"github.com/alexanderramin/coach/internal/session"
	"github.com/alexanderramin/coach/internal/testutil"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return testNow }

type countingSleeper struct{ n int }

func (s *countingSleeper) Sleep(ctx context.Context, _ time.Duration) error {
	s.n++
	return ctx.Err()
}

// harness wires the services against a fake backend and an in-memory database.
type harness struct {
	backend *testutil.FakeBackend
	store   *session.MemoryStore
	db      *sql.DB
	sleeper *countingSleeper

	goalsAPI *api.Goals
	account  *Account
	coach    *Coach
	drafts   *PlanDrafts
	draftDB  *repository.SQLitePlanDraftRepo
	cvDB     *repository.SQLiteCVRepo
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fb := testutil.NewFakeBackend(t)
	store := session.NewMemoryStore()
	client := httpclient.New(fb.URL(), store)
	database := testutil.NewTestDB(t)

	h := &harness{
		backend:  fb,
		store:    store,
		db:       database,
		sleeper:  &countingSleeper{},
		goalsAPI: api.NewGoals(client),
		draftDB:  repository.NewSQLitePlanDraftRepo(database),
		cvDB:     repository.NewSQLiteCVRepo(database),
	}
	h.account = NewAccount(api.NewAuth(client, nil), api.NewUsers(client), store, nil)
	h.account.now = func() time.Time { return testNow }

	gemini := api.NewGemini(client)
	h.coach = NewCoach(h.account, gemini, h.goalsAPI, h.cvDB)
	h.coach.now = func() time.Time { return testNow }

	workflow := planner.New(gemini, planner.WithClock(fixedClock{}), planner.WithSleeper(h.sleeper))
	h.drafts = NewPlanDrafts(h.account, workflow, h.goalsAPI, h.draftDB, h.cvDB, testutil.NewTestUoW(database))
	h.drafts.now = func() time.Time { return testNow }
	return h
}

// signIn creates an account on the fake backend and stores its session.
func (h *harness) signIn(t *testing.T, username string) domain.User {
	t.Helper()
	u := h.backend.AddUser(username, "secret1")
	require.NoError(t, h.store.SetToken(context.Background(), h.backend.LoginAs(username)))
	return u
}

func (h *harness) token(t *testing.T) string {
	t.Helper()
	tok, err := h.store.Token(context.Background())
	require.NoError(t, err)
	return tok
}
