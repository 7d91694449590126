package cli

import (
	"errors"

	"github.com/alexanderramin/coach/internal/api"
	"github.com/alexanderramin/coach/internal/httpclient"
	"github.com/alexanderramin/coach/internal/planner"
)

var (
	errNotLoggedIn    = errors.New("not logged in, run `coach login` first")
	errSessionExpired = errors.New("your session has expired, run `coach login` again")
	errNeedsYes       = errors.New("this cannot be undone; confirm in a terminal or pass --yes")
)

// userError carries the one line shown to the user while keeping the cause
// available to errors.Is.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

// failure turns a service error into the message a command prints. Backend
// errors show the server's message or fallback; plan workflow failures show
// fallback even when the last attempt carried a server message; local
// validation errors pass through unchanged.
func failure(err error, fallback string) error {
	if err == nil {
		return nil
	}
	var apiErr *httpclient.APIError
	switch {
	case errors.Is(err, api.ErrNotLoggedIn):
		return &userError{msg: errNotLoggedIn.Error(), err: err}
	case errors.Is(err, planner.ErrGenerationFailed):
		return &userError{msg: fallback, err: err}
	case errors.As(err, &apiErr):
		if apiErr.Unauthorized() && apiErr.Message == "" {
			return &userError{msg: errSessionExpired.Error(), err: err}
		}
		return &userError{msg: httpclient.UserMessage(err, fallback), err: err}
	default:
		return err
	}
}
