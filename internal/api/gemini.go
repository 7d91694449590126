package api

import (
	"context"
	"io"
	"net/http"

	"github.com/alexanderramin/coach/internal/domain"
	"github.com/alexanderramin/coach/internal/httpclient"
)

// Gemini wraps the AI endpoints: CV analysis, plan generation and feedback.
type Gemini struct {
	client *httpclient.Client
}

func NewGemini(client *httpclient.Client) *Gemini {
	return &Gemini{client: client}
}

// AnalyzeCV uploads a CV and returns the analysis object as sent by the server.
func (g *Gemini) AnalyzeCV(ctx context.Context, userID domain.ID, filename string, file io.Reader) (domain.CVAnalysis, error) {
	resp, err := g.client.Do(ctx, http.MethodPost, "/gemini/analyze",
		httpclient.WithMultipart(map[string]string{"userId": userID.String()}, "file", filename, file))
	if err != nil {
		return nil, err
	}
	return domain.CVAnalysis(resp.Body), nil
}

// PlanRequest is one plan-generation call. Deadline is already formatted.
type PlanRequest struct {
	UserID     domain.ID
	Target     string
	Deadline   string
	CVAnalysis domain.CVAnalysis
}

type planBody struct {
	CVAnalysis domain.CVAnalysis `json:"cvAnalysis"`
}

// SubmitPlan makes a single generation attempt. The caller classifies the body.
func (g *Gemini) SubmitPlan(ctx context.Context, req PlanRequest) (*httpclient.Response, error) {
	return g.client.Do(ctx, http.MethodPost, "/gemini/plan",
		httpclient.WithQuery("target", req.Target),
		httpclient.WithQuery("complete_time", req.Deadline),
		httpclient.WithQuery("userId", req.UserID.String()),
		httpclient.WithJSON(planBody{CVAnalysis: req.CVAnalysis}),
	)
}

// Feedback fetches the AI coach's review of the user's progress.
func (g *Gemini) Feedback(ctx context.Context, userID domain.ID) (domain.Feedback, error) {
	resp, err := g.client.Do(ctx, http.MethodGet, "/gemini/feedback",
		httpclient.WithQuery("userId", userID.String()))
	if err != nil {
		return domain.Feedback{}, err
	}
	var env envelope[domain.Feedback]
	if err := resp.Decode(&env); err != nil {
		return domain.Feedback{}, err
	}
	return env.Result, nil
}
