package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/coach/internal/cli/formatter"
	"github.com/alexanderramin/coach/internal/domain"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session on this machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (username == "" || password == "") && app.interactive() {
				if err := loginForm(&username, &password).Run(); err != nil {
					return err
				}
			}
			u, err := app.Account.Login(cmd.Context(), username, password)
			if err != nil {
				return failure(err, "Login failed")
			}
			writeln(cmd, formatter.Success("Logged in as "+formatter.Bold(u.DisplayName())))
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username or email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Account.Logout(cmd.Context()); err != nil {
				return failure(err, "Logout failed")
			}
			writeln(cmd, "Logged out.")
			return nil
		},
	}
}

func newRegisterCmd(app *App) *cobra.Command {
	var r domain.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if r.Username == "" && app.interactive() {
				if err := registerForm(&r).Run(); err != nil {
					return err
				}
			}
			u, err := app.Account.Register(cmd.Context(), r)
			if err != nil {
				return failure(err, "Registration failed")
			}
			writeln(cmd, formatter.Success(fmt.Sprintf("Welcome, %s! You are logged in.", u.DisplayName())))
			writeln(cmd, formatter.Dim("Next: coach cv analyze <file>"))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&r.Username, "username", "", "Username (4-20 letters, numbers, underscores)")
	f.StringVar(&r.Password, "password", "", "Password (at least 6 characters)")
	f.StringVar(&r.ConfirmPassword, "confirm-password", "", "Repeat the password")
	f.StringVar(&r.FirstName, "first-name", "", "First name")
	f.StringVar(&r.LastName, "last-name", "", "Last name")
	f.StringVar(&r.Email, "email", "", "Email address")
	f.StringVar(&r.DoB, "dob", "", "Date of birth (YYYY-MM-DD)")
	return cmd
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			me, err := app.currentUser(cmd.Context())
			if err != nil {
				return err
			}
			writeln(cmd, formatter.FormatUser(me))
			return nil
		},
	}
}

func newProfileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage your profile",
	}
	cmd.AddCommand(newProfileUpdateCmd(app))
	return cmd
}

func newProfileUpdateCmd(app *App) *cobra.Command {
	var flags domain.ProfileUpdate

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields; unset flags keep their current value",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			me, err := app.currentUser(ctx)
			if err != nil {
				return err
			}

			upd := domain.ProfileFromUser(me)
			changed := cmd.Flags().Changed
			set := func(name string, dst *string, v string) {
				if changed(name) {
					*dst = strings.TrimSpace(v)
				}
			}
			set("first-name", &upd.FirstName, flags.FirstName)
			set("last-name", &upd.LastName, flags.LastName)
			set("email", &upd.Email, flags.Email)
			set("dob", &upd.DoB, flags.DoB)
			upd.Password = flags.Password
			upd.ConfirmPassword = flags.ConfirmPassword

			if err := app.Account.UpdateProfile(ctx, upd); err != nil {
				return failure(err, "Update failed")
			}
			writeln(cmd, formatter.Success("Profile updated."))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.FirstName, "first-name", "", "First name")
	f.StringVar(&flags.LastName, "last-name", "", "Last name")
	f.StringVar(&flags.Email, "email", "", "Email address")
	f.StringVar(&flags.DoB, "dob", "", "Date of birth (YYYY-MM-DD)")
	f.StringVar(&flags.Password, "password", "", "New password (leave unset to keep the current one)")
	f.StringVar(&flags.ConfirmPassword, "confirm-password", "", "Repeat the new password")
	return cmd
}

func newPasswordCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Reset a forgotten password with an emailed code",
	}
	cmd.AddCommand(
		newPasswordForgotCmd(app),
		newPasswordConfirmCmd(app),
		newPasswordResetCmd(app),
	)
	return cmd
}

func newPasswordForgotCmd(app *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "forgot",
		Short: "Email a one-time reset code",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Account.ForgotPassword(cmd.Context(), email); err != nil {
				return failure(err, "Failed to send code")
			}
			writeln(cmd, formatter.Success("A reset code was sent to "+email+"."))
			writeln(cmd, formatter.Dim("Next: coach password reset --email "+email+" --otp <code>"))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	return cmd
}

func newPasswordConfirmCmd(app *App) *cobra.Command {
	var email, otp string

	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Exchange the emailed code for a reset token",
		RunE: func(cmd *cobra.Command, args []string) error {
			grant, err := app.Account.ConfirmOTP(cmd.Context(), email, otp)
			if err != nil {
				return failure(err, "Invalid code")
			}
			writeln(cmd, formatter.Success("Code accepted."))
			printf(cmd, "Reset token: %s\n", grant.Token)
			writeln(cmd, formatter.Dim(fmt.Sprintf("Next: coach password reset --email %s --token %s", domain.CoalesceStr(grant.Email, email), grant.Token)))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&otp, "otp", "", "Code from the email")
	return cmd
}

func newPasswordResetCmd(app *App) *cobra.Command {
	var (
		email, otp string
		grant      domain.OTPGrant
		reset      domain.PasswordReset
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Set a new password and sign in with it",
		Long: "Set a new password. Pass --token from `coach password confirm`, or --otp to\n" +
			"confirm the emailed code and reset in one step.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if app.interactive() && (reset.NewPassword == "" || (grant.Token == "" && otp == "")) {
				if err := resetForm(&otp, grant.Token == "" && otp == "", &reset).Run(); err != nil {
					return err
				}
			}
			if grant.Token == "" {
				confirmed, err := app.Account.ConfirmOTP(ctx, email, otp)
				if err != nil {
					return failure(err, "Invalid code")
				}
				confirmed.Username = domain.CoalesceStr(grant.Username, confirmed.Username)
				grant = confirmed
			}
			grant.Email = domain.CoalesceStr(grant.Email, email)

			loggedIn, err := app.Account.ResetPassword(ctx, grant, reset)
			if err != nil {
				return failure(err, "Failed to reset password")
			}
			if loggedIn {
				writeln(cmd, formatter.Success("Password updated. You are logged in."))
			} else {
				writeln(cmd, formatter.Success("Password updated."))
				writeln(cmd, formatter.Dim("Sign in with: coach login"))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&email, "email", "", "Account email")
	f.StringVar(&otp, "otp", "", "Code from the email (skips `password confirm`)")
	f.StringVar(&grant.Token, "token", "", "Reset token printed by `coach password confirm`")
	f.StringVar(&grant.Username, "username", "", "Username to sign in with afterwards (defaults to the email)")
	f.StringVar(&reset.NewPassword, "password", "", "New password")
	f.StringVar(&reset.ConfirmPassword, "confirm-password", "", "Repeat the new password")
	return cmd
}
