package domain

import (
	"errors"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const dateLayout = "2006-01-02"

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// User is the authenticated account as returned by /users/myInfo.
type User struct {
	ID        ID         `json:"id"`
	Username  string     `json:"username"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	DoB       string     `json:"doB"`
	Metadata  CVAnalysis `json:"metadata,omitempty"`
}

// DisplayName prefers the full name and falls back to the username.
func (u *User) DisplayName() string {
	full := u.FirstName
	if u.LastName != "" {
		if full != "" {
			full += " "
		}
		full += u.LastName
	}
	return CoalesceStr(full, u.Username)
}

// Registration is the sign-up form.
type Registration struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	DoB             string `json:"doB"`
}

// Validate checks the form against the current time.
func (r *Registration) Validate() error {
	return r.ValidateAt(time.Now())
}

// ValidateAt checks the form; now is used for the date-of-birth bound.
func (r *Registration) ValidateAt(now time.Time) error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Username,
			validation.Required.Error("Username is required"),
			validation.Length(4, 20).Error("Username must be between 4 and 20 characters"),
			validation.Match(usernamePattern).Error("Username can only contain letters, numbers, and underscores"),
		),
		validation.Field(&r.Password,
			validation.Required.Error("Password is required"),
			validation.Length(6, 128).Error("Password must be at least 6 characters"),
		),
		validation.Field(&r.ConfirmPassword,
			validation.Required.Error("Please confirm your password"),
			validation.By(matches(r.Password)),
		),
		validation.Field(&r.Email,
			validation.Required.Error("Email is required"),
			validation.Match(emailPattern).Error("Email is not valid"),
		),
		validation.Field(&r.DoB, validation.By(dateNotAfter(now))),
	)
}

// ProfileUpdate is the editable subset of the profile. Blank passwords mean
// "unchanged" and are not sent.
type ProfileUpdate struct {
	Username        string     `json:"username,omitempty"`
	FirstName       string     `json:"firstName,omitempty"`
	LastName        string     `json:"lastName,omitempty"`
	Email           string     `json:"email,omitempty"`
	DoB             string     `json:"doB,omitempty"`
	Password        string     `json:"password,omitempty"`
	ConfirmPassword string     `json:"confirmPassword,omitempty"`
	Metadata        CVAnalysis `json:"metadata,omitempty"`
}

// Validate requires a matching confirmation only when a new password is set.
func (p *ProfileUpdate) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Email, validation.When(p.Email != "", validation.Match(emailPattern).Error("Email is not valid"))),
		validation.Field(&p.ConfirmPassword, validation.When(p.Password != "",
			validation.Required.Error("Please confirm your new password"),
			validation.By(matches(p.Password)),
		)),
	)
}

// ProfileFromUser seeds an update with the user's current values.
func ProfileFromUser(u *User) ProfileUpdate {
	return ProfileUpdate{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		DoB:       u.DoB,
		Metadata:  u.Metadata,
	}
}

// PasswordReset is the last step of the forgot-password flow.
type PasswordReset struct {
	NewPassword     string
	ConfirmPassword string
}

var errResetIncomplete = errors.New("Please enter and confirm your new password")

// Validate mirrors the reset form's checks.
func (p *PasswordReset) Validate() error {
	if p.NewPassword == "" || p.ConfirmPassword == "" {
		return errResetIncomplete
	}
	return matches(p.NewPassword)(p.ConfirmPassword)
}

// OTPGrant is the temporary credential issued after confirming a reset code.
type OTPGrant struct {
	Token    string
	Username string
	Email    string
}

// Feedback is the AI coach's progress review.
type Feedback struct {
	Feedback        string `json:"feedback"`
	MotivationQuote string `json:"motivation_quote,omitempty"`
}

func matches(want string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != want {
			return errors.New("Passwords do not match")
		}
		return nil
	}
}

func dateNotAfter(now time.Time) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return errors.New("Invalid date format (expected YYYY-MM-DD)")
		}
		if d.After(now) {
			return errors.New("Date of birth cannot be in the future")
		}
		return nil
	}
}
