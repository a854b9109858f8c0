package domain

// TxResult is the terminal outcome of an executed transaction. It is
// consumed once by the initiating account to trigger cache
// invalidation.
type TxResult interface {
	ResultAmount() Money
}

// HashedTxResult is the outcome of an on-chain broadcast.
type HashedTxResult struct {
	TxID   string
	Amount Money
}

func (r HashedTxResult) ResultAmount() Money { return r.Amount }

// UnHashedTxResult is the outcome of a custodial ledger operation,
// which produces no chain hash.
type UnHashedTxResult struct {
	Amount Money
}

func (r UnHashedTxResult) ResultAmount() Money { return r.Amount }
