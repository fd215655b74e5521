package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/dmitrijs2005/useradmin/internal/client/gateway"
	"github.com/dmitrijs2005/useradmin/internal/client/listview"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/client/notify"
	"github.com/dmitrijs2005/useradmin/internal/client/services"
	"github.com/dmitrijs2005/useradmin/internal/logging"
)

// UsersController is the users list as the REPL drives it.
type UsersController interface {
	Start(ctx context.Context) error
	Refresh(ctx context.Context) error
	View() listview.View
	SetPage(n int) bool
	NextPage() bool
	PrevPage() bool
	SetSearchTerm(s string)
	DeleteRecord(ctx context.Context, id string) error
	CreateRecord(ctx context.Context, f models.UserFields) (*models.User, error)
	UpdateRecord(ctx context.Context, id string, f models.UserFields) (*models.User, error)
	Wait()
	Close()
}

// SessionState is the read side of the session plus the token drop used
// when the API rejects it.
type SessionState interface {
	User() *models.User
	LoggedIn() bool
	Token(ctx context.Context) string
	ExpireToken(ctx context.Context)
}

type Deps struct {
	Auth     services.AuthService
	Profile  services.ProfileService
	Users    UsersController
	Session  SessionState
	Notifier notify.Notifier
	Log      logging.Logger
	In       io.Reader
	Out      io.Writer
}

type App struct {
	auth     services.AuthService
	profile  services.ProfileService
	users    UsersController
	session  SessionState
	notifier notify.Notifier
	log      logging.Logger
	reader   *bufio.Reader
	out      io.Writer

	needsLogin atomic.Bool
	listLoaded bool
}

func NewApp(ctx context.Context, d Deps) *App {
	a := &App{
		auth:     d.Auth,
		profile:  d.Profile,
		users:    d.Users,
		session:  d.Session,
		notifier: d.Notifier,
		log:      d.Log.With("component", "cli"),
		reader:   bufio.NewReader(d.In),
		out:      d.Out,
	}
	// a remembered user without a usable token has to log in again
	if a.session.LoggedIn() && a.session.Token(ctx) == "" {
		a.needsLogin.Store(true)
	}
	return a
}

// Run greets the operator and blocks in the REPL until exit or EOF.
func (a *App) Run(ctx context.Context) {
	defer func() {
		a.users.Close()
		a.users.Wait()
	}()

	fmt.Fprintln(a.out, "User admin CLI (type 'help' for commands)")
	if a.mustLogin() {
		fmt.Fprintln(a.out, "Your session has expired, please log in again.")
	}
	runREPL(ctx, a, a.status, a.reader)
}

// SessionExpired is the gateway hook for a rejected token. It drops the
// token, tells the operator once, and makes the REPL ask for a login
// before the next command.
func (a *App) SessionExpired(ctx context.Context, message string) {
	a.session.ExpireToken(ctx)
	if a.needsLogin.CompareAndSwap(false, true) {
		a.log.Info(ctx, "session expired", "reason", message)
		a.notifier.Error(ctx, "Session expired ("+message+"), please log in again")
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.LoggedIn()
}

func (a *App) mustLogin() bool {
	return a.needsLogin.Load()
}

func (a *App) status() string {
	u := a.session.User()
	switch {
	case u == nil:
		return ""
	case a.mustLogin():
		return fmt.Sprintf("(%s, login required)", u.Email)
	default:
		return fmt.Sprintf("(%s)", u.Email)
	}
}

// fail reports err unless the session hook already did.
func (a *App) fail(ctx context.Context, what string, err error) error {
	switch {
	case errors.Is(err, gateway.ErrSessionExpired):
	case errors.Is(err, models.ErrRequired), errors.Is(err, models.ErrPasswordMismatch):
		a.notifier.Error(ctx, err.Error())
	default:
		a.notifier.Error(ctx, what+": "+gateway.Message(err))
	}
	return err
}
