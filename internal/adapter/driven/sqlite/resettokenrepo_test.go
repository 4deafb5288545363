package sqlite

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/routergate/internal/domain/model"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedToken(t *testing.T, db *DB, hash string, expiresAt time.Time) model.ResetToken {
	t.Helper()
	u := createUser(t, NewUserRepo(db), hash+"@example.com")
	tok := model.ResetToken{UserID: u.ID, TokenHash: hash, ExpiresAt: expiresAt, CreatedAt: fixedNow}
	require.NoError(t, NewResetTokenRepo(db).Create(context.Background(), tok))
	return tok
}

func TestResetTokenRepo_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResetTokenRepo(db)
	ctx := context.Background()

	want := seedToken(t, db, "abc", fixedNow.Add(time.Hour))

	got, err := repo.GetByHash(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.UserID, got.UserID)
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))
	assert.True(t, fixedNow.Equal(got.CreatedAt))
	assert.False(t, got.Used)

	missing, err := repo.GetByHash(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestResetTokenRepo_MarkUsedOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResetTokenRepo(db)
	ctx := context.Background()

	seedToken(t, db, "once", fixedNow.Add(time.Hour))

	ok, err := repo.MarkUsed(ctx, "once", fixedNow)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkUsed(ctx, "once", fixedNow)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByHash(ctx, "once")
	require.NoError(t, err)
	assert.True(t, got.Used)
}

func TestResetTokenRepo_MarkUsedRejectsExpired(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResetTokenRepo(db)
	ctx := context.Background()

	seedToken(t, db, "late", fixedNow.Add(time.Hour))

	ok, err := repo.MarkUsed(ctx, "late", fixedNow.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.MarkUsed(ctx, "missing", fixedNow)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResetTokenRepo_ConcurrentMarkUsedSingleWinner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResetTokenRepo(db)
	ctx := context.Background()

	seedToken(t, db, "race", fixedNow.Add(time.Hour))

	const workers = 16
	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	start := make(chan struct{})
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := repo.MarkUsed(ctx, "race", fixedNow)
			assert.NoError(t, err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}
