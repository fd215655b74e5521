package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/useradmin/internal/client/models"
)

// getSimpleText, getOptionalText, getPassword and confirm are indirections
// used to facilitate testing. They point to interactive input helpers and
// can be swapped in tests.
var (
	getSimpleText   = GetSimpleText
	getOptionalText = GetOptionalText
	getPassword     = GetPassword
	confirm         = Confirm
)

// Register prompts for name, email, phone and password and creates the
// account. It does not log in.
func (a *App) Register(ctx context.Context) error {
	var r models.Registration
	var err error

	if r.Name, err = getSimpleText(a.reader, "Enter name", a.out); err != nil {
		return err
	}
	if r.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}
	if r.Phone, err = getSimpleText(a.reader, "Enter phone (optional)", a.out); err != nil {
		return err
	}
	if r.Password, err = getPassword(a.reader, "Enter password", a.out); err != nil {
		return err
	}

	msg, err := a.auth.Register(ctx, r)
	if err != nil {
		return a.fail(ctx, "Registration failed", err)
	}
	a.notifier.Success(ctx, msg+". You can log in now.")
	return nil
}

// Login prompts for credentials and opens a session. A successful login
// clears the pending re-login state and resets the users list.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}

	u, err := a.auth.Login(ctx, email, password)
	if err != nil {
		return a.fail(ctx, "Login failed", err)
	}

	a.needsLogin.Store(false)
	a.listLoaded = false
	a.notifier.Success(ctx, fmt.Sprintf("Welcome, %s", u.Name))
	return nil
}

// Logout forgets the local session.
func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout(ctx)
	a.needsLogin.Store(false)
	a.listLoaded = false
	a.notifier.Info(ctx, "Logged out")
	return nil
}
