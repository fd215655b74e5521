package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/useradmin/internal/client/models"
)

// WhoAmI prints the session user without calling the server.
func (a *App) WhoAmI(ctx context.Context) error {
	u := a.session.User()
	if u == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	renderProfile(a.out, u)
	return nil
}

// RefreshProfile reloads the profile from the server into the session.
func (a *App) RefreshProfile(ctx context.Context) error {
	u, err := a.profile.Refresh(ctx)
	if err != nil {
		return a.fail(ctx, "Loading profile failed", err)
	}
	renderProfile(a.out, u)
	return nil
}

func (a *App) EditProfile(ctx context.Context) error {
	current := a.session.User()
	if current == nil {
		current = &models.User{}
	}

	var upd models.ProfileUpdate
	var err error
	if upd.Name, err = getOptionalText(a.reader, "Name", current.Name, a.out); err != nil {
		return err
	}
	if upd.Email, err = getOptionalText(a.reader, "Email", current.Email, a.out); err != nil {
		return err
	}
	if upd.ImagePath, err = getSimpleText(a.reader, "Profile image file (optional)", a.out); err != nil {
		return err
	}

	u, msg, err := a.profile.UpdateProfile(ctx, upd)
	if err != nil {
		return a.fail(ctx, "Updating profile failed", err)
	}
	a.notifier.Success(ctx, msg)
	renderProfile(a.out, u)
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	var pc models.PasswordChange
	var err error
	if pc.CurrentPassword, err = getPassword(a.reader, "Current password", a.out); err != nil {
		return err
	}
	if pc.NewPassword, err = getPassword(a.reader, "New password", a.out); err != nil {
		return err
	}
	if pc.ConfirmPassword, err = getPassword(a.reader, "Confirm new password", a.out); err != nil {
		return err
	}

	msg, err := a.profile.ChangePassword(ctx, pc)
	if err != nil {
		return a.fail(ctx, "Changing password failed", err)
	}
	a.notifier.Success(ctx, msg)
	return nil
}

// DeleteAccount removes the operator's own account after confirmation and
// ends the session.
func (a *App) DeleteAccount(ctx context.Context) error {
	ok, err := confirm(a.reader, "Delete your account? This cannot be undone.", a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.notifier.Info(ctx, "Account kept")
		return nil
	}

	msg, err := a.profile.DeleteAccount(ctx)
	if err != nil {
		return a.fail(ctx, "Deleting account failed", err)
	}
	a.listLoaded = false
	a.notifier.Success(ctx, msg)
	return nil
}
