package service

import "errors"

var (
	// ErrGoalNotFound indicates the goal is not in the loaded list.
	ErrGoalNotFound = errors.New("goal not found")

	// ErrNoCVAnalysis indicates plan generation was asked for before any CV
	// was analyzed.
	ErrNoCVAnalysis = errors.New("no CV analysis found, run `coach cv analyze <file>` first")

	// ErrTargetRequired indicates an empty plan target.
	ErrTargetRequired = errors.New("Please enter your target")

	// ErrCredentialsRequired indicates a login attempt without username or password.
	ErrCredentialsRequired = errors.New("Please enter username and password")

	// ErrEmailRequired indicates a password flow step without an email.
	ErrEmailRequired = errors.New("Please enter your email")

	// ErrOTPRequired indicates an empty one-time code.
	ErrOTPRequired = errors.New("Please enter the code from your email")
)
