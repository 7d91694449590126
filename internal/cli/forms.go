package cli

import (
	"errors"
	"strings"
	"time"

	"github.com/alexanderramin/coach/internal/cli/formatter"
	"github.com/alexanderramin/coach/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// coachHuhTheme styles huh forms with the formatter palette.
func coachHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func themed(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithTheme(coachHuhTheme()).WithShowHelp(false)
}

func loginForm(username, password *string) *huh.Form {
	return themed(huh.NewGroup(
		huh.NewInput().Title("Username").Value(username).Validate(required("Please enter username and password")),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(password).Validate(required("Please enter username and password")),
	))
}

func registerForm(r *domain.Registration) *huh.Form {
	return themed(
		huh.NewGroup(
			huh.NewInput().Title("Username").Description("4-20 letters, numbers or underscores").Value(&r.Username),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&r.Password),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&r.ConfirmPassword),
		),
		huh.NewGroup(
			huh.NewInput().Title("First name").Value(&r.FirstName),
			huh.NewInput().Title("Last name").Value(&r.LastName),
			huh.NewInput().Title("Email").Value(&r.Email),
			huh.NewInput().Title("Date of birth").Placeholder("1990-12-31").Value(&r.DoB).Validate(validateOptionalDate),
		),
	)
}

// resetForm collects whatever the reset flow is still missing.
func resetForm(otp *string, askOTP bool, reset *domain.PasswordReset) *huh.Form {
	fields := []huh.Field{}
	if askOTP {
		fields = append(fields, huh.NewInput().Title("Code from your email").Value(otp).Validate(required("Please enter the code from your email")))
	}
	fields = append(fields,
		huh.NewInput().Title("New password").EchoMode(huh.EchoModePassword).Value(&reset.NewPassword),
		huh.NewInput().Title("Confirm new password").EchoMode(huh.EchoModePassword).Value(&reset.ConfirmPassword),
	)
	return themed(huh.NewGroup(fields...))
}

func planForm(target, deadline *string) *huh.Form {
	return themed(huh.NewGroup(
		huh.NewText().Title("What do you want to become?").Placeholder("Backend developer at a fintech").Value(target).Validate(required("Please enter your target")),
		huh.NewInput().Title("Deadline").Placeholder("YYYY-MM-DD or +90d").Value(deadline).Validate(required("Please select deadline")),
	))
}

func confirmForm(title, description string, ok *bool) *huh.Form {
	return themed(huh.NewGroup(
		huh.NewConfirm().Title(title).Description(description).Affirmative("Yes").Negative("No").Value(ok),
	))
}

func required(msg string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(msg)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return errors.New("Invalid date format (expected YYYY-MM-DD)")
	}
	return nil
}

// confirm asks a yes/no question, refusing outright when no one can answer.
func (a *App) confirm(title, description string) (bool, error) {
	if !a.interactive() {
		return false, errNeedsYes
	}
	if a.Confirm != nil {
		return a.Confirm(title, description)
	}
	var ok bool
	if err := confirmForm(title, description, &ok).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}
