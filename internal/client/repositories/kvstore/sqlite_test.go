package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE kv (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)
	return db
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "auth_token", []byte("tok")))

	v, err := r.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.Equal(t, []byte("tok"), v)
}

func TestGet_AbsentIsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "user")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSet_Upserts(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "user", []byte(`{"name":"old"}`)))
	require.NoError(t, r.Set(ctx, "user", []byte(`{"name":"new"}`)))

	v, err := r.Get(ctx, "user")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"new"}`, string(v))
}

func TestSet_NilValueStoredAsEmpty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "user", nil))

	v, err := r.Get(ctx, "user")
	require.NoError(t, err)
	assert.NotNil(t, v)
	assert.Empty(t, v)
}

func TestEmptyValue_PresentNotAbsent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "user", []byte("")))

	v, err := r.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, []byte{}, v)

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"user": {}}, m)
}

func TestDelete_Idempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "auth_token", []byte("tok")))
	require.NoError(t, r.Delete(ctx, "auth_token"))
	require.NoError(t, r.Delete(ctx, "auth_token"))

	v, err := r.Get(ctx, "auth_token")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestListAndClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "auth_token", []byte("tok")))
	require.NoError(t, r.Set(ctx, "user", []byte("{}")))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"auth_token": []byte("tok"), "user": []byte("{}")}, m)

	require.NoError(t, r.Clear(ctx))
	m, err = r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestBatch_CommitsAll(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	err := r.Batch(ctx, func(ctx context.Context, tx Repository) error {
		if err := tx.Set(ctx, "auth_token", []byte("tok")); err != nil {
			return err
		}
		return tx.Set(ctx, "user", []byte(`{"_id":"1"}`))
	})
	require.NoError(t, err)

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 2)
}

func TestBatch_RollsBackOnError(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	require.NoError(t, r.Set(ctx, "user", []byte("before")))

	boom := errors.New("boom")
	err := r.Batch(ctx, func(ctx context.Context, tx Repository) error {
		require.NoError(t, tx.Set(ctx, "user", []byte("after")))
		return boom
	})
	require.ErrorIs(t, err, boom)

	v, err := r.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, []byte("before"), v)
}

func TestBatch_NestedRunsInline(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	err := r.Batch(ctx, func(ctx context.Context, tx Repository) error {
		return tx.Batch(ctx, func(ctx context.Context, inner Repository) error {
			return inner.Set(ctx, "user", []byte("{}"))
		})
	})
	require.NoError(t, err)

	v, err := r.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)
}

func TestErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	assert.ErrorContains(t, err, "failed to get kv[k]")
	assert.ErrorContains(t, r.Set(ctx, "k", []byte("v")), "failed to set kv[k]")
	assert.ErrorContains(t, r.Delete(ctx, "k"), "failed to delete kv[k]")
	assert.ErrorContains(t, r.Clear(ctx), "failed to clear kv")
	_, err = r.List(ctx)
	assert.ErrorContains(t, err, "failed to list kv")
}
