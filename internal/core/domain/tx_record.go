package domain

import (
	"context"
	"time"
)

// TxRecord is the persisted trace of an executed transaction, used to
// feed activity lists and invalidate balance caches across sessions.
type TxRecord struct {
	ID string `badgerhold:"key"`
	// TxID is the chain hash for hashed results, empty for custodial
	// ones.
	TxID        string
	Engine      string
	SourceLabel string
	TargetLabel string
	Asset       string
	// AmountMinor and FeeMinor in the asset's minor units.
	AmountMinor int64
	FeeMinor    int64
	CreatedAt   time.Time
}

// TxRecordRepository stores executed transaction records.
type TxRecordRepository interface {
	AddRecord(ctx context.Context, record TxRecord) error
	GetRecord(ctx context.Context, id string) (*TxRecord, error)
	GetAllRecords(ctx context.Context) ([]TxRecord, error)
	GetRecordsByAsset(ctx context.Context, ticker string) ([]TxRecord, error)
}
