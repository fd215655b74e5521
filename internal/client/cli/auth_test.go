package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/useradmin/internal/client/gateway"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/client/notify"
	"github.com/dmitrijs2005/useradmin/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubInputs(t *testing.T, answers ...string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	next := func() (string, error) {
		if len(answers) == 0 {
			return "", io.EOF
		}
		v := answers[0]
		answers = answers[1:]
		return v, nil
	}
	getSimpleText = func(*bufio.Reader, string, io.Writer) (string, error) { return next() }
	getPassword = func(*bufio.Reader, string, io.Writer) (string, error) { return next() }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

type fakeAuth struct {
	reg      models.Registration
	regMsg   string
	regErr   error
	email    string
	password string
	user     *models.User
	loginErr error
	logouts  int
}

func (f *fakeAuth) Register(_ context.Context, r models.Registration) (string, error) {
	f.reg = r
	return f.regMsg, f.regErr
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (*models.User, error) {
	f.email, f.password = email, password
	return f.user, f.loginErr
}

func (f *fakeAuth) Logout(context.Context) { f.logouts++ }

func newTestApp(f *fakeAuth) (*App, *notify.Recorder) {
	rec := &notify.Recorder{}
	return &App{
		auth:     f,
		notifier: rec,
		log:      logging.Discard(),
		reader:   bufio.NewReader(strings.NewReader("")),
		out:      &bytes.Buffer{},
	}, rec
}

func TestRegister_Success(t *testing.T) {
	f := &fakeAuth{regMsg: "User registered successfully"}
	a, rec := newTestApp(f)
	stubInputs(t, "Alice", "alice@example.org", "", "secret")

	require.NoError(t, a.Register(context.Background()))
	assert.Equal(t, models.Registration{Name: "Alice", Email: "alice@example.org", Password: "secret"}, f.reg)
	assert.Equal(t, []string{"User registered successfully. You can log in now."}, rec.Texts(notify.LevelSuccess))
}

func TestRegister_ServerErrorIsNotified(t *testing.T) {
	f := &fakeAuth{regErr: &gateway.APIError{Status: 409, Message: "User already exists"}}
	a, rec := newTestApp(f)
	stubInputs(t, "Alice", "alice@example.org", "", "secret")

	assert.Error(t, a.Register(context.Background()))
	assert.Equal(t, []string{"Registration failed: User already exists"}, rec.Texts(notify.LevelError))
}

func TestRegister_InputError(t *testing.T) {
	a, _ := newTestApp(&fakeAuth{})
	stubInputs(t)

	assert.ErrorIs(t, a.Register(context.Background()), io.EOF)
}

func TestLogin_ClearsPendingRelogin(t *testing.T) {
	f := &fakeAuth{user: &models.User{Name: "Ann"}}
	a, rec := newTestApp(f)
	a.needsLogin.Store(true)
	a.listLoaded = true
	stubInputs(t, "ann@example.org", "pw")

	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, "ann@example.org", f.email)
	assert.Equal(t, "pw", f.password)
	assert.False(t, a.mustLogin())
	assert.False(t, a.listLoaded)
	assert.Equal(t, []string{"Welcome, Ann"}, rec.Texts(notify.LevelSuccess))
}

func TestLogin_Failure(t *testing.T) {
	f := &fakeAuth{loginErr: &gateway.APIError{Status: 401, Message: "Invalid credentials"}}
	a, rec := newTestApp(f)
	a.needsLogin.Store(true)
	stubInputs(t, "ann@example.org", "bad")

	assert.Error(t, a.Login(context.Background()))
	assert.True(t, a.mustLogin())
	assert.Equal(t, []string{"Login failed: Invalid credentials"}, rec.Texts(notify.LevelError))
}

func TestLogin_ValidationMessageShownAsIs(t *testing.T) {
	f := &fakeAuth{loginErr: models.ErrRequired}
	a, rec := newTestApp(f)
	stubInputs(t, "", "")

	assert.Error(t, a.Login(context.Background()))
	assert.Equal(t, []string{models.ErrRequired.Error()}, rec.Texts(notify.LevelError))
}

func TestLogout(t *testing.T) {
	f := &fakeAuth{}
	a, rec := newTestApp(f)
	a.needsLogin.Store(true)

	require.NoError(t, a.Logout(context.Background()))
	assert.Equal(t, 1, f.logouts)
	assert.False(t, a.mustLogin())
	assert.Equal(t, []string{"Logged out"}, rec.Texts(notify.LevelInfo))
}
