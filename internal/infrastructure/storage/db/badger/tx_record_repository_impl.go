package dbbadger

import (
	"context"
	"errors"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type txRecordRepositoryImpl struct {
	store *badgerhold.Store
}

// NewTxRecordRepositoryImpl initialize a badger implementation of the
// domain.TxRecordRepository
func NewTxRecordRepositoryImpl(store *badgerhold.Store) domain.TxRecordRepository {
	return txRecordRepositoryImpl{store}
}

func (r txRecordRepositoryImpl) AddRecord(
	ctx context.Context, record domain.TxRecord,
) error {
	if err := r.store.Insert(record.ID, &record); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return nil
		}
		return err
	}
	return nil
}

func (r txRecordRepositoryImpl) GetRecord(
	ctx context.Context, id string,
) (*domain.TxRecord, error) {
	var record domain.TxRecord
	if err := r.store.Get(id, &record); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r txRecordRepositoryImpl) GetAllRecords(
	ctx context.Context,
) ([]domain.TxRecord, error) {
	return r.findRecords(&badgerhold.Query{})
}

func (r txRecordRepositoryImpl) GetRecordsByAsset(
	ctx context.Context, ticker string,
) ([]domain.TxRecord, error) {
	query := badgerhold.Where("Asset").Eq(ticker)
	return r.findRecords(query)
}

func (r txRecordRepositoryImpl) findRecords(
	query *badgerhold.Query,
) ([]domain.TxRecord, error) {
	records := make([]domain.TxRecord, 0)
	if err := r.store.Find(&records, query); err != nil {
		return nil, err
	}
	return records, nil
}
