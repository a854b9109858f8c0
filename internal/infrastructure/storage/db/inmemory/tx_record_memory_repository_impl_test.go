package inmemory_test

import (
	"context"
	"testing"
	"time"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/coincore-network/coincore-daemon/internal/infrastructure/storage/db/inmemory"
	"github.com/stretchr/testify/require"
)

func newTestRecord(id, asset string) domain.TxRecord {
	return domain.TxRecord{
		ID:          id,
		Engine:      "fiat_withdrawal",
		SourceLabel: "USD Account",
		TargetLabel: "Checking",
		Asset:       asset,
		AmountMinor: 49900,
		FeeMinor:    100,
		CreatedAt:   time.Now(),
	}
}

func TestInmemoryAddAndGetRecord(t *testing.T) {
	repo := inmemory.NewTxRecordRepositoryImpl()
	ctx := context.Background()

	record := newTestRecord("rec-1", "USD")
	require.NoError(t, repo.AddRecord(ctx, record))

	got, err := repo.GetRecord(ctx, "rec-1")
	require.NoError(t, err)
	require.Equal(t, record.ID, got.ID)
	require.Equal(t, record.AmountMinor, got.AmountMinor)

	_, err = repo.GetRecord(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestInmemoryAddRecordIsIdempotent(t *testing.T) {
	repo := inmemory.NewTxRecordRepositoryImpl()
	ctx := context.Background()

	record := newTestRecord("rec-1", "USD")
	require.NoError(t, repo.AddRecord(ctx, record))

	duplicate := record
	duplicate.AmountMinor = 1
	require.NoError(t, repo.AddRecord(ctx, duplicate))

	got, err := repo.GetRecord(ctx, "rec-1")
	require.NoError(t, err)
	require.Equal(t, record.AmountMinor, got.AmountMinor)

	all, err := repo.GetAllRecords(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestInmemoryListingPreservesInsertionOrder(t *testing.T) {
	repo := inmemory.NewTxRecordRepositoryImpl()
	ctx := context.Background()

	require.NoError(t, repo.AddRecord(ctx, newTestRecord("rec-3", "USD")))
	require.NoError(t, repo.AddRecord(ctx, newTestRecord("rec-1", "BTC")))
	require.NoError(t, repo.AddRecord(ctx, newTestRecord("rec-2", "USD")))

	all, err := repo.GetAllRecords(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "rec-3", all[0].ID)
	require.Equal(t, "rec-1", all[1].ID)
	require.Equal(t, "rec-2", all[2].ID)

	usd, err := repo.GetRecordsByAsset(ctx, "USD")
	require.NoError(t, err)
	require.Len(t, usd, 2)
	require.Equal(t, "rec-3", usd[0].ID)
	require.Equal(t, "rec-2", usd[1].ID)
}
