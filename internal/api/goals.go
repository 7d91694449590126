package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/alexanderramin/coach/internal/domain"
	"github.com/alexanderramin/coach/internal/httpclient"
)

// Goals covers the goal/process endpoints. The active list lives under
// /goals while history is served from /processes.
type Goals struct {
	client *httpclient.Client
}

func NewGoals(client *httpclient.Client) *Goals {
	return &Goals{client: client}
}

func (g *Goals) List(ctx context.Context, userID domain.ID) ([]domain.Goal, error) {
	return g.list(ctx, "/goals", userID)
}

func (g *Goals) History(ctx context.Context, userID domain.ID) ([]domain.Goal, error) {
	return g.list(ctx, "/processes", userID)
}

func (g *Goals) list(ctx context.Context, path string, userID domain.ID) ([]domain.Goal, error) {
	resp, err := g.client.Do(ctx, http.MethodGet, path, httpclient.WithQuery("userId", userID.String()))
	if err != nil {
		return nil, err
	}
	return decodeGoals(resp)
}

// decodeGoals reads {"result": [...]}. A missing, null or non-list result
// yields no goals; a list that fails to decode is an error.
func decodeGoals(resp *httpclient.Response) ([]domain.Goal, error) {
	var env envelope[json.RawMessage]
	if err := resp.Decode(&env); err != nil {
		return nil, err
	}
	raw := bytes.TrimSpace(env.Result)
	if len(raw) == 0 || raw[0] != '[' {
		return []domain.Goal{}, nil
	}
	var goals []domain.Goal
	if err := json.Unmarshal(raw, &goals); err != nil {
		return nil, fmt.Errorf("decoding goals: %w", err)
	}
	return goals, nil
}

func (g *Goals) Create(ctx context.Context, userID domain.ID, payload domain.GoalPayload) error {
	_, err := g.client.Do(ctx, http.MethodPost, "/goals",
		httpclient.WithQuery("userId", userID.String()),
		httpclient.WithJSON(payload),
	)
	return err
}

func (g *Goals) Update(ctx context.Context, goalID domain.ID, payload domain.GoalPayload) error {
	_, err := g.client.Do(ctx, http.MethodPut, "/goals",
		httpclient.WithQuery("goalId", goalID.String()),
		httpclient.WithJSON(payload),
	)
	return err
}

func (g *Goals) Delete(ctx context.Context, goalID domain.ID) error {
	_, err := g.client.Do(ctx, http.MethodDelete, "/goals",
		httpclient.WithQuery("goalId", goalID.String()))
	return err
}
