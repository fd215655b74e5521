package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/useradmin/internal/client/client"
	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/dmitrijs2005/useradmin/internal/client/repositories/kvstore"
	"github.com/dmitrijs2005/useradmin/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) kvstore.Repository {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return kvstore.NewSQLiteRepository(db)
}

func slot(t *testing.T, repo kvstore.Repository, key string) []byte {
	t.Helper()
	v, err := repo.Get(context.Background(), key)
	require.NoError(t, err)
	return v
}

var ann = &models.User{ID: "u1", Name: "Ann", Email: "ann@example.org"}

func TestLogin_ThenReloadRehydratesSameUser(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	s := New(ctx, repo, logging.Discard())
	require.NoError(t, s.Login(ctx, ann, "tok-1"))

	reloaded := New(ctx, repo, logging.Discard())
	assert.Equal(t, ann, reloaded.User())
	assert.Equal(t, "tok-1", reloaded.Token(ctx))
}

func TestLogout_ThenReloadHasNoUser(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	s := New(ctx, repo, logging.Discard())
	require.NoError(t, s.Login(ctx, ann, "tok-1"))
	s.Logout(ctx)

	assert.Nil(t, s.User())
	assert.False(t, s.LoggedIn())
	assert.Nil(t, New(ctx, repo, logging.Discard()).User())
	assert.Nil(t, slot(t, repo, TokenKey))
	assert.Nil(t, slot(t, repo, UserKey))
}

func TestLogout_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, newRepo(t), logging.Discard())

	s.Logout(ctx)
	s.Logout(ctx)
	assert.Nil(t, s.User())
}

func TestUpdate_KeepsToken(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	s := New(ctx, repo, logging.Discard())
	require.NoError(t, s.Login(ctx, ann, "tok-1"))

	changed := &models.User{ID: "u1", Name: "Ann", Email: "ann@example.org", Avatar: "/uploads/ann.png"}
	require.NoError(t, s.Update(ctx, changed))

	assert.Equal(t, "tok-1", s.Token(ctx))
	assert.Equal(t, changed, s.User())
	assert.Equal(t, changed, New(ctx, repo, logging.Discard()).User())
}

func TestUpdate_WithoutTokenDoesNotCreateOne(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	s := New(ctx, repo, logging.Discard())

	require.NoError(t, s.Update(ctx, ann))
	assert.Nil(t, slot(t, repo, TokenKey))
	assert.True(t, s.LoggedIn())
}

func TestLogin_EmptyTokenRemovesTokenSlot(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	s := New(ctx, repo, logging.Discard())

	require.NoError(t, s.Login(ctx, ann, "tok-1"))
	require.NoError(t, s.Login(ctx, ann, ""))

	assert.Nil(t, slot(t, repo, TokenKey))
	assert.Equal(t, "", s.Token(ctx))
	assert.Equal(t, ann, s.User())
}

func TestLogin_NilUser(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	s := New(ctx, repo, logging.Discard())

	assert.ErrorIs(t, s.Login(ctx, nil, "tok"), ErrNoUser)
	assert.ErrorIs(t, s.Update(ctx, nil), ErrNoUser)
	assert.Nil(t, slot(t, repo, TokenKey))
}

func TestLogin_StoresCopy(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, newRepo(t), logging.Discard())

	u := &models.User{ID: "u1", Name: "Ann"}
	require.NoError(t, s.Login(ctx, u, "tok"))
	u.Name = "mutated by caller"

	assert.Equal(t, "Ann", s.User().Name)
}

func TestRehydrate_BrokenValuesAreErased(t *testing.T) {
	cases := map[string]string{
		"undefined literal": "undefined",
		"padded undefined":  "  undefined\n",
		"null literal":      "null",
		"blank":             "   ",
		"garbage":           "{not json",
		"json scalar":       "42",
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)
			require.NoError(t, repo.Set(ctx, UserKey, []byte(raw)))

			var s *Store
			require.NotPanics(t, func() { s = New(ctx, repo, logging.Discard()) })

			assert.Nil(t, s.User())
			assert.Nil(t, slot(t, repo, UserKey))
		})
	}
}

func TestRehydrate_EmptyValueRowIsDeleted(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	require.NoError(t, repo.Set(ctx, UserKey, []byte("")))

	s := New(ctx, repo, logging.Discard())
	assert.Nil(t, s.User())

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, all, UserKey)
}

func TestRehydrate_Absent(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	require.NoError(t, repo.Set(ctx, TokenKey, []byte("orphan-token")))

	s := New(ctx, repo, logging.Discard())

	assert.Nil(t, s.User())
	// a token without a user is a valid state and is left alone
	assert.Equal(t, "orphan-token", s.Token(ctx))
}

func TestExpireToken_KeepsUser(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	s := New(ctx, repo, logging.Discard())
	require.NoError(t, s.Login(ctx, ann, "tok"))

	s.ExpireToken(ctx)

	assert.Equal(t, "", s.Token(ctx))
	assert.Equal(t, ann, s.User())
	assert.NotNil(t, slot(t, repo, UserKey))
}

// failingRepo fails every write but serves reads from the wrapped store.
type failingRepo struct {
	kvstore.Repository
}

var errDiskFull = errors.New("disk full")

func (f failingRepo) Set(context.Context, string, []byte) error { return errDiskFull }
func (f failingRepo) Delete(context.Context, string) error      { return errDiskFull }
func (f failingRepo) Batch(context.Context, func(context.Context, kvstore.Repository) error) error {
	return errDiskFull
}

func TestDurableFailure_DoesNotRollBackMemory(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, failingRepo{newRepo(t)}, logging.Discard())

	require.NoError(t, s.Login(ctx, ann, "tok"))
	assert.Equal(t, ann, s.User())

	changed := &models.User{ID: "u1", Name: "Ann B."}
	require.NoError(t, s.Update(ctx, changed))
	assert.Equal(t, changed, s.User())

	s.Logout(ctx)
	assert.Nil(t, s.User())
}

type brokenReads struct {
	kvstore.Repository
}

func (brokenReads) Get(context.Context, string) ([]byte, error) { return nil, errDiskFull }

func TestRehydrate_ReadFailureYieldsNoSession(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, brokenReads{newRepo(t)}, logging.Discard())

	assert.Nil(t, s.User())
	assert.Equal(t, "", s.Token(ctx))
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return tok
}

func TestTokenExpiry(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, newRepo(t), logging.Discard())

	_, ok := s.TokenExpiry(ctx)
	assert.False(t, ok, "no token")

	require.NoError(t, s.Login(ctx, ann, "opaque-token"))
	_, ok = s.TokenExpiry(ctx)
	assert.False(t, ok, "non-JWT token")

	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Login(ctx, ann, signed(t, exp)))
	got, ok := s.TokenExpiry(ctx)
	require.True(t, ok)
	assert.True(t, exp.Equal(got))
}

func TestDropExpiredToken(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	s := New(ctx, newRepo(t), logging.Discard(), WithClock(clock))

	require.NoError(t, s.Login(ctx, ann, signed(t, clock.Now().Add(time.Hour))))
	assert.False(t, s.DropExpiredToken(ctx))
	assert.NotEmpty(t, s.Token(ctx))

	clock.Advance(2 * time.Hour)
	assert.True(t, s.DropExpiredToken(ctx))
	assert.Empty(t, s.Token(ctx))
	assert.Equal(t, ann, s.User())
}
