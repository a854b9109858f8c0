package inmemory

import (
	"context"
	"sync"

	"github.com/coincore-network/coincore-daemon/internal/core/domain"
)

type txRecordInmemoryStore struct {
	records map[string]domain.TxRecord
	// order preserves insertion order for listing.
	order  []string
	locker *sync.RWMutex
}

// TxRecordRepositoryImpl is the in-memory implementation of the
// domain.TxRecordRepository, used by tests and the simulator.
type TxRecordRepositoryImpl struct {
	store *txRecordInmemoryStore
}

// NewTxRecordRepositoryImpl returns a new empty TxRecordRepositoryImpl
func NewTxRecordRepositoryImpl() *TxRecordRepositoryImpl {
	return &TxRecordRepositoryImpl{
		store: &txRecordInmemoryStore{
			records: map[string]domain.TxRecord{},
			locker:  &sync.RWMutex{},
		},
	}
}

func (r TxRecordRepositoryImpl) AddRecord(
	ctx context.Context, record domain.TxRecord,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.records[record.ID]; !ok {
		r.store.records[record.ID] = record
		r.store.order = append(r.store.order, record.ID)
	}
	return nil
}

func (r TxRecordRepositoryImpl) GetRecord(
	ctx context.Context, id string,
) (*domain.TxRecord, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	record, ok := r.store.records[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &record, nil
}

func (r TxRecordRepositoryImpl) GetAllRecords(
	ctx context.Context,
) ([]domain.TxRecord, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	records := make([]domain.TxRecord, 0, len(r.store.order))
	for _, id := range r.store.order {
		records = append(records, r.store.records[id])
	}
	return records, nil
}

func (r TxRecordRepositoryImpl) GetRecordsByAsset(
	ctx context.Context, ticker string,
) ([]domain.TxRecord, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	records := make([]domain.TxRecord, 0)
	for _, id := range r.store.order {
		if record := r.store.records[id]; record.Asset == ticker {
			records = append(records, record)
		}
	}
	return records, nil
}
