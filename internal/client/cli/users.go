package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/useradmin/internal/client/models"
)

// Users loads the current page (page 1 on first use after login) and
// prints it.
func (a *App) Users(ctx context.Context) error {
	var err error
	if a.listLoaded {
		err = a.users.Refresh(ctx)
	} else {
		err = a.users.Start(ctx)
	}
	if err != nil {
		return err
	}
	a.listLoaded = true
	renderUsers(a.out, a.users.View())
	return nil
}

func (a *App) NextPage(ctx context.Context) error {
	return a.turnPage(ctx, a.users.NextPage, "Already on the last page")
}

func (a *App) PrevPage(ctx context.Context) error {
	return a.turnPage(ctx, a.users.PrevPage, "Already on the first page")
}

// GoToPage moves to page arg; out of range numbers are clamped.
func (a *App) GoToPage(ctx context.Context, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		a.notifier.Error(ctx, fmt.Sprintf("Not a page number: %q", arg))
		return err
	}
	return a.turnPage(ctx, func() bool { return a.users.SetPage(n) }, "Already there")
}

func (a *App) turnPage(ctx context.Context, move func() bool, noop string) error {
	if !a.listLoaded {
		return a.Users(ctx)
	}
	if !move() {
		a.notifier.Info(ctx, noop)
		return nil
	}
	a.users.Wait()
	renderUsers(a.out, a.users.View())
	return nil
}

// Search filters the list by term after the debounce window; an empty
// term shows everyone again.
func (a *App) Search(ctx context.Context, term string) error {
	a.users.SetSearchTerm(term)
	a.users.Wait()
	a.listLoaded = true
	renderUsers(a.out, a.users.View())
	return nil
}

func (a *App) AddUser(ctx context.Context) error {
	var f models.UserFields
	var err error

	if f.Name, err = getSimpleText(a.reader, "Name", a.out); err != nil {
		return err
	}
	if f.Email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}
	if f.Phone, err = getSimpleText(a.reader, "Phone (optional)", a.out); err != nil {
		return err
	}
	if f.Password, err = getPassword(a.reader, "Initial password (optional)", a.out); err != nil {
		return err
	}

	if _, err := a.users.CreateRecord(ctx, f); err != nil {
		if isLocalError(err) {
			return a.fail(ctx, "", err)
		}
		return err
	}
	a.listLoaded = true
	renderUsers(a.out, a.users.View())
	return nil
}

// EditUser prompts for each field showing the current value when the user
// is on the shown page. Only changed fields are sent.
func (a *App) EditUser(ctx context.Context, id string) error {
	var current models.User
	for _, u := range a.users.View().Records {
		if u.ID == id {
			current = u
			break
		}
	}

	var f models.UserFields
	name, err := getOptionalText(a.reader, "Name", current.Name, a.out)
	if err != nil {
		return err
	}
	email, err := getOptionalText(a.reader, "Email", current.Email, a.out)
	if err != nil {
		return err
	}
	phone, err := getOptionalText(a.reader, "Phone", current.Phone, a.out)
	if err != nil {
		return err
	}
	if name != current.Name {
		f.Name = name
	}
	if email != current.Email {
		f.Email = email
	}
	if phone != current.Phone {
		f.Phone = phone
	}

	if _, err := a.users.UpdateRecord(ctx, id, f); err != nil {
		if isLocalError(err) {
			a.notifier.Info(ctx, "Nothing changed")
			return nil
		}
		return err
	}
	a.listLoaded = true
	renderUsers(a.out, a.users.View())
	return nil
}

func (a *App) RemoveUser(ctx context.Context, id string) error {
	ok, err := confirm(a.reader, fmt.Sprintf("Delete user %s?", id), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.users.DeleteRecord(ctx, id); err != nil {
		return err
	}
	renderUsers(a.out, a.users.View())
	return nil
}
