package api

import "errors"

var (
	// ErrNoToken indicates a login-style response carried no recognizable token.
	ErrNoToken = errors.New("no token returned from server")

	// ErrNotLoggedIn indicates an operation needs a session and none is stored.
	ErrNotLoggedIn = errors.New("not logged in")
)
