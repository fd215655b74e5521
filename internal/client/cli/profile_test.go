package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/useradmin/internal/client/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_ProfileCommands(t *testing.T) {
	s := newStack(t)
	s.seed()

	img := filepath.Join(t.TempDir(), "bob.png")
	require.NoError(t, os.WriteFile(img, []byte("png"), 0o600))

	s.app(t,
		"login", "bob@example.org", "pw",
		"editprofile", "Robert", "", img,
		"passwd", "pw", "new", "typo",
		"passwd", "wrong", "new", "new",
		"passwd", "pw", "new", "new",
		"profile",
		"deleteaccount", "no",
		"deleteaccount", "yes",
		"whoami",
		"exit",
	).Run(context.Background())

	assert.Equal(t, []string{
		"Welcome, Bob",
		"Profile updated successfully",
		"Password updated successfully",
		"Account deleted",
	}, s.notes.Texts(notify.LevelSuccess))
	assert.Equal(t, []string{
		"passwords do not match",
		"Changing password failed: Current password is incorrect",
	}, s.notes.Texts(notify.LevelError))
	assert.Equal(t, []string{"Account kept"}, s.notes.Texts(notify.LevelInfo))

	out := s.out.String()
	assert.Contains(t, out, "/uploads/bob.png")
	assert.Contains(t, out, "Robert")

	for _, u := range s.srv.Users() {
		assert.NotEqual(t, "u-bob", u.ID)
	}
	assert.Nil(t, s.store.User())
}

func TestWhoAmI_LoggedOut(t *testing.T) {
	s := newStack(t)
	app := s.app(t)

	require.NoError(t, app.WhoAmI(context.Background()))
	assert.Contains(t, s.out.String(), "Not logged in")
}
