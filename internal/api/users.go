package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/alexanderramin/coach/internal/domain"
	"github.com/alexanderramin/coach/internal/httpclient"
)

type Users struct {
	client *httpclient.Client
}

func NewUsers(client *httpclient.Client) *Users {
	return &Users{client: client}
}

// Me returns the logged-in user, including the last CV analysis.
func (u *Users) Me(ctx context.Context) (*domain.User, error) {
	resp, err := u.client.Do(ctx, http.MethodGet, "/users/myInfo")
	if err != nil {
		return nil, err
	}
	var env envelope[domain.User]
	if err := resp.Decode(&env); err != nil {
		return nil, err
	}
	return &env.Result, nil
}

type registrationBody struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	DoB       string `json:"doB"`
}

// Register creates an account. The confirmation field is never sent.
func (u *Users) Register(ctx context.Context, r domain.Registration) error {
	_, err := u.client.Do(ctx, http.MethodPost, "/users/createUser",
		httpclient.SkipAuth(),
		httpclient.WithJSON(registrationBody{
			Username:  r.Username,
			Password:  r.Password,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Email:     r.Email,
			DoB:       r.DoB,
		}),
	)
	return err
}

// UpdateProfile saves profile fields. Blank passwords are omitted from the body.
func (u *Users) UpdateProfile(ctx context.Context, userID domain.ID, p domain.ProfileUpdate) error {
	_, err := u.client.Do(ctx, http.MethodPut, "/users/"+url.PathEscape(userID.String()),
		httpclient.WithJSON(p))
	return err
}

// ForgotPassword asks the backend to email a one-time code.
func (u *Users) ForgotPassword(ctx context.Context, email string) error {
	_, err := u.client.Do(ctx, http.MethodPost, "/users/forgot-password",
		httpclient.SkipAuth(),
		httpclient.WithQuery("email", email),
	)
	return err
}

type otpResult struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ConfirmOTP trades the emailed code for a temporary reset token.
func (u *Users) ConfirmOTP(ctx context.Context, email, otp string) (domain.OTPGrant, error) {
	resp, err := u.client.Do(ctx, http.MethodPost, "/users/confirm-otp",
		httpclient.SkipAuth(),
		httpclient.WithQuery("email", email),
		httpclient.WithQuery("otp", otp),
	)
	if err != nil {
		return domain.OTPGrant{}, err
	}
	token := ResolveToken(resp, OTPStrategies)
	if token == "" {
		return domain.OTPGrant{}, ErrNoToken
	}

	var env envelope[otpResult]
	// result may be a bare string token; identity fields are optional then.
	_ = resp.Decode(&env)
	return domain.OTPGrant{
		Token:    token,
		Username: env.Result.Username,
		Email:    domain.CoalesceStr(env.Result.Email, email),
	}, nil
}

// ResetPassword sets a new password using the OTP grant's token rather than
// the session token.
func (u *Users) ResetPassword(ctx context.Context, grant domain.OTPGrant, reset domain.PasswordReset) error {
	_, err := u.client.Do(ctx, http.MethodPost, "/users/reset-password",
		httpclient.SkipAuth(),
		httpclient.WithBearer(grant.Token),
		httpclient.WithQuery("newPassword", reset.NewPassword),
		httpclient.WithQuery("confirmPassword", reset.ConfirmPassword),
		httpclient.WithQuery("email", grant.Email),
	)
	return err
}
