package alarms

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/local-notification/internal/domain/notification"
)

// openTestRepository opens a fresh database in a temporary folder.
func openTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()

	repo, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "alarms.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = repo.Close()
	})

	return repo
}

// TestOpen_RequiresPath verifies that an empty path is rejected.
func TestOpen_RequiresPath(t *testing.T) {
	t.Parallel()

	repo, err := Open(context.Background(), " ")
	require.ErrorIs(t, err, errPathRequired)
	require.Nil(t, repo)
}

// TestSQLiteRepository_SaveOverwritesTag ensures saving a tag twice keeps only the latest alert.
func TestSQLiteRepository_SaveOverwritesTag(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := openTestRepository(t)
	fireAt := time.UnixMilli(time.Now().UnixMilli())

	require.NoError(t, repo.Save(ctx, &domain.Alert{Tag: 5, Title: "t", Message: "first", FireAt: fireAt}))
	require.NoError(t, repo.Save(ctx, &domain.Alert{
		Tag:            5,
		Title:          "t",
		Message:        "second",
		FireAt:         fireAt.Add(time.Minute),
		RepeatInterval: time.Hour,
	}))
	require.NoError(t, repo.Save(ctx, &domain.Alert{Tag: 1, Title: "a", Message: "b", FireAt: fireAt}))

	alerts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	require.Equal(t, 1, alerts[0].Tag)
	require.Equal(t, 5, alerts[1].Tag)
	require.Equal(t, "second", alerts[1].Message)
	require.True(t, fireAt.Add(time.Minute).Equal(alerts[1].FireAt))
	require.Equal(t, time.Hour, alerts[1].RepeatInterval)

	require.ErrorIs(t, repo.Save(ctx, nil), errNilAlert)
}

// TestSQLiteRepository_Delete checks that deleting is idempotent.
func TestSQLiteRepository_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := openTestRepository(t)

	require.NoError(t, repo.Save(ctx, &domain.Alert{Tag: 7, Title: "t", Message: "m", FireAt: time.Now()}))
	require.NoError(t, repo.Delete(ctx, 7))
	require.NoError(t, repo.Delete(ctx, 7))

	alerts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, alerts)
}

// TestSQLiteRepository_Reopen verifies alerts survive closing and reopening the database.
func TestSQLiteRepository_Reopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "alarms.db")

	repo, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, &domain.Alert{Tag: 3, Title: "t", Message: "m", FireAt: time.Now()}))
	require.NoError(t, repo.Close())

	repo, err = Open(ctx, path)
	require.NoError(t, err)

	defer func() {
		_ = repo.Close()
	}()

	alerts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, 3, alerts[0].Tag)
}
