package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getMultiline = GetMultiline

var errPasswordMismatch = errors.New("passwords do not match")

// readNewPassword asks for a password twice. Both byte slices are wiped
// before returning.
func (a *App) readNewPassword() (string, error) {
	first, err := getPassword(a.out, "Enter password")
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(first)

	second, err := getPassword(a.out, "Repeat password")
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(second)

	if string(first) != string(second) {
		fmt.Fprintln(a.out, "Passwords do not match")
		return "", errPasswordMismatch
	}
	return string(first), nil
}

// Register prompts for the account fields and creates the account. On
// success the session manager moves the view to the registration notice.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	fullName, err := getSimpleText(a.reader, "Enter full name (optional)", a.out)
	if err != nil {
		return err
	}
	password, err := a.readNewPassword()
	if err != nil {
		return err
	}

	err = a.session.Register(ctx, models.RegisterRequest{
		Email:    email,
		Username: username,
		FullName: fullName,
		Password: password,
	})
	if err != nil {
		return a.reportFailure(err)
	}

	fmt.Fprintln(a.out, "Registration successful. Check your e-mail for the verification token, then run 'verify <token>'.")
	return nil
}

// Login prompts for credentials and authenticates. The password byte slice
// is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email or username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, email, string(password)); err != nil {
		return a.reportFailure(err)
	}

	if id := a.session.State().Identity; id != nil {
		fmt.Fprintf(a.out, "Welcome, %s!\n", id.DisplayName())
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) VerifyEmail(ctx context.Context, token string) error {
	if err := a.session.VerifyEmail(ctx, token); err != nil {
		return a.reportFailure(err)
	}
	fmt.Fprintln(a.out, "E-mail verified")

	if a.isLoggedIn() {
		if err := a.session.RefreshIdentity(ctx); err != nil {
			a.logger.Warn(ctx, "failed to refresh identity after verification", "error", err)
		}
	}
	return nil
}

func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	if err := a.session.RequestPasswordReset(ctx, email); err != nil {
		return a.reportFailure(err)
	}
	fmt.Fprintln(a.out, "If the address is registered, a reset token has been sent. Run 'reset <token>'.")
	return nil
}

func (a *App) ResetPassword(ctx context.Context, token string) error {
	password, err := a.readNewPassword()
	if err != nil {
		return err
	}

	if err := a.session.ResetPassword(ctx, token, password); err != nil {
		return a.reportFailure(err)
	}
	fmt.Fprintln(a.out, "Password changed, you can log in now")
	return nil
}
