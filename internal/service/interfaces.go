package service

import (
	"context"
	"io"

	"github.com/alexanderramin/coach/internal/domain"
	"github.com/alexanderramin/coach/internal/planner"
)

// GoalAPI is the goal/process surface of the backend.
type GoalAPI interface {
	List(ctx context.Context, userID domain.ID) ([]domain.Goal, error)
	History(ctx context.Context, userID domain.ID) ([]domain.Goal, error)
	Create(ctx context.Context, userID domain.ID, payload domain.GoalPayload) error
	Update(ctx context.Context, goalID domain.ID, payload domain.GoalPayload) error
	Delete(ctx context.Context, goalID domain.ID) error
}

type AuthAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context) error
}

type UserAPI interface {
	Me(ctx context.Context) (*domain.User, error)
	Register(ctx context.Context, r domain.Registration) error
	UpdateProfile(ctx context.Context, userID domain.ID, p domain.ProfileUpdate) error
	ForgotPassword(ctx context.Context, email string) error
	ConfirmOTP(ctx context.Context, email, otp string) (domain.OTPGrant, error)
	ResetPassword(ctx context.Context, grant domain.OTPGrant, reset domain.PasswordReset) error
}

type GeminiAPI interface {
	AnalyzeCV(ctx context.Context, userID domain.ID, filename string, file io.Reader) (domain.CVAnalysis, error)
	Feedback(ctx context.Context, userID domain.ID) (domain.Feedback, error)
}

// PlanRunner generates a plan, retrying while the backend is not ready.
type PlanRunner interface {
	Run(ctx context.Context, req planner.Request) (*planner.Result, error)
}
