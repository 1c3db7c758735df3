// Package store provides LedgerStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/clearledger/recon-engine/recon"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements recon.LedgerStore with maps under a single mutex.
// The mutex makes ClaimMatch atomic, mirroring what the SQLite store
// gets from transactions and unique constraints.
type Memory struct {
	mu              sync.RWMutex
	payments        map[recon.PaymentID]recon.Payment
	transactions    map[recon.TransactionID]recon.BankTransaction
	reconciliations map[recon.ReconciliationID]recon.Reconciliation
	matches         map[recon.MatchID]recon.Match
	matchByPayment  map[recon.PaymentID]recon.MatchID
	matchByTx       map[recon.TransactionID]recon.MatchID
	dedup           map[string]bool // org + "\x00" + dedup key
}

func NewMemory() *Memory {
	return &Memory{
		payments:        make(map[recon.PaymentID]recon.Payment),
		transactions:    make(map[recon.TransactionID]recon.BankTransaction),
		reconciliations: make(map[recon.ReconciliationID]recon.Reconciliation),
		matches:         make(map[recon.MatchID]recon.Match),
		matchByPayment:  make(map[recon.PaymentID]recon.MatchID),
		matchByTx:       make(map[recon.TransactionID]recon.MatchID),
		dedup:           make(map[string]bool),
	}
}

func dedupKey(org recon.OrganizationID, key string) string {
	return string(org) + "\x00" + key
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (m *Memory) SavePayment(_ context.Context, p recon.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = p
	return nil
}

func (m *Memory) GetPayment(_ context.Context, org recon.OrganizationID, id recon.PaymentID) (*recon.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[id]
	if !ok || p.OrganizationID != org {
		return nil, nil
	}
	return &p, nil
}

func (m *Memory) FindPayments(_ context.Context, f recon.PaymentFilter) ([]recon.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []recon.Payment
	for _, p := range m.payments {
		if p.OrganizationID != f.OrganizationID {
			continue
		}
		if f.From != nil && p.ReceivedDate.Before(*f.From) {
			continue
		}
		if f.To != nil && p.ReceivedDate.After(*f.To) {
			continue
		}
		if f.Reconciled != nil && p.Reconciled != *f.Reconciled {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].ReceivedDate.Equal(result[j].ReceivedDate) {
			return result[i].ReceivedDate.Before(result[j].ReceivedDate)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) UpdatePayment(_ context.Context, p recon.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.payments[p.ID]
	if !ok || existing.OrganizationID != p.OrganizationID {
		return &recon.NotFoundError{Kind: "payment", ID: string(p.ID)}
	}
	m.payments[p.ID] = p
	return nil
}

// =============================================================================
// BANK TRANSACTIONS
// =============================================================================

func (m *Memory) SaveTransaction(_ context.Context, tx recon.BankTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := dedupKey(tx.OrganizationID, tx.DedupKey)
	if m.dedup[key] {
		return recon.ErrDuplicateTransaction
	}
	m.transactions[tx.ID] = tx
	m.dedup[key] = true
	return nil
}

func (m *Memory) GetTransaction(_ context.Context, org recon.OrganizationID, id recon.TransactionID) (*recon.BankTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tx, ok := m.transactions[id]
	if !ok || tx.OrganizationID != org {
		return nil, nil
	}
	return &tx, nil
}

func (m *Memory) FindTransactions(_ context.Context, f recon.TransactionFilter) ([]recon.BankTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []recon.BankTransaction
	for _, tx := range m.transactions {
		if tx.OrganizationID != f.OrganizationID {
			continue
		}
		if f.From != nil && tx.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && tx.Date.After(*f.To) {
			continue
		}
		if f.Reconciled != nil && tx.Reconciled != *f.Reconciled {
			continue
		}
		result = append(result, tx)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) UpdateTransaction(_ context.Context, tx recon.BankTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.transactions[tx.ID]
	if !ok || existing.OrganizationID != tx.OrganizationID {
		return &recon.NotFoundError{Kind: "bank_transaction", ID: string(tx.ID)}
	}
	m.transactions[tx.ID] = tx
	return nil
}

// =============================================================================
// RECONCILIATIONS
// =============================================================================

func (m *Memory) SaveReconciliation(_ context.Context, r recon.Reconciliation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reconciliations[r.ID] = r
	return nil
}

func (m *Memory) GetReconciliation(_ context.Context, org recon.OrganizationID, id recon.ReconciliationID) (*recon.Reconciliation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reconciliations[id]
	if !ok || r.OrganizationID != org {
		return nil, nil
	}
	return &r, nil
}

func (m *Memory) UpdateReconciliation(_ context.Context, r recon.Reconciliation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.reconciliations[r.ID]
	if !ok || existing.OrganizationID != r.OrganizationID {
		return &recon.NotFoundError{Kind: "reconciliation", ID: string(r.ID)}
	}
	m.reconciliations[r.ID] = r
	return nil
}

func (m *Memory) FindReconciliations(_ context.Context, org recon.OrganizationID) ([]recon.Reconciliation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []recon.Reconciliation
	for _, r := range m.reconciliations {
		if r.OrganizationID == org {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartDate.Equal(result[j].StartDate) {
			return result[i].StartDate.Before(result[j].StartDate)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// =============================================================================
// MATCHES
// =============================================================================

// ClaimMatch atomically links a payment and a transaction. All checks
// and writes happen under one lock: a losing concurrent claim observes
// a reconciled flag or an existing match and fails cleanly.
func (m *Memory) ClaimMatch(_ context.Context, match recon.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.payments[match.PaymentID]
	if !ok || p.Reconciled {
		return recon.ErrClaimLost
	}
	if _, linked := m.matchByPayment[match.PaymentID]; linked {
		return recon.ErrClaimLost
	}

	tx, ok := m.transactions[match.BankTransactionID]
	if !ok || tx.Reconciled {
		return recon.ErrClaimLost
	}
	if _, linked := m.matchByTx[match.BankTransactionID]; linked {
		return recon.ErrClaimLost
	}

	p.Reconciled = true
	tx.Reconciled = true
	paymentID := match.PaymentID
	tx.PaymentID = &paymentID

	m.payments[p.ID] = p
	m.transactions[tx.ID] = tx
	m.matches[match.ID] = match
	m.matchByPayment[match.PaymentID] = match.ID
	m.matchByTx[match.BankTransactionID] = match.ID
	return nil
}

func (m *Memory) FindMatches(_ context.Context, org recon.OrganizationID, reconciliationID recon.ReconciliationID) ([]recon.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []recon.Match
	for _, match := range m.matches {
		if match.ReconciliationID != reconciliationID {
			continue
		}
		if p, ok := m.payments[match.PaymentID]; !ok || p.OrganizationID != org {
			continue
		}
		result = append(result, match)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) FindMatchForPayment(_ context.Context, org recon.OrganizationID, id recon.PaymentID) (*recon.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.payments[id]
	if !ok || p.OrganizationID != org {
		return nil, nil
	}
	matchID, ok := m.matchByPayment[id]
	if !ok {
		return nil, nil
	}
	match := m.matches[matchID]
	return &match, nil
}

func (m *Memory) FindMatchForTransaction(_ context.Context, org recon.OrganizationID, id recon.TransactionID) (*recon.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tx, ok := m.transactions[id]
	if !ok || tx.OrganizationID != org {
		return nil, nil
	}
	matchID, ok := m.matchByTx[id]
	if !ok {
		return nil, nil
	}
	match := m.matches[matchID]
	return &match, nil
}
