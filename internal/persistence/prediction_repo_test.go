package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixbrock/flightprice/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRepo(t *testing.T) *PredictionRepo {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "predictions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestOpenWithoutPathIsDisabled(t *testing.T) {
	_, err := Open("  ")
	assert.ErrorIs(t, err, ErrDisabled)

	var repo *PredictionRepo
	_, err = repo.Recent(context.Background(), 5)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predictions.db")
	repo, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())
}

func TestInsertAndRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		err := repo.Insert(ctx, domain.Prediction{
			Id:        id,
			Input:     domain.FlightData{Airline: "Indigo", DaysLeft: i + 1, Duration: 2.5},
			Price:     float64(1000 * (i + 1)),
			Currency:  domain.Currency,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	got, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Id)
	assert.Equal(t, "b", got[1].Id)
	assert.Equal(t, 3, got[0].Input.DaysLeft)
	assert.Equal(t, "Indigo", got[0].Input.Airline)
	assert.InDelta(t, 3000, got[0].Price, 1e-9)
	assert.Equal(t, base.Add(2*time.Minute), got[0].CreatedAt)
}

func TestInsertRequiresId(t *testing.T) {
	repo := openTestRepo(t)
	err := repo.Insert(context.Background(), domain.Prediction{Price: 1})
	require.Error(t, err)
}

func TestInsertRejectsDuplicateId(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	p := domain.Prediction{Id: "dup", Price: 1, Currency: domain.Currency}
	require.NoError(t, repo.Insert(ctx, p))
	require.Error(t, repo.Insert(ctx, p))
}
