/*
store.go - Persistence interface for the reconciliation ledger

PURPOSE:
  Defines the interface between the engine and durable storage. The
  store is the arbiter of consistency: the match claim is a single
  conditional transactional write, not an application-level lock.

KEY INTERFACE:
  LedgerStore: Payments, bank transactions, reconciliations, and
  matches, all scoped per organization.

QUERY FILTERS:
  Queries take explicit, strongly-typed filter structs (PaymentFilter,
  TransactionFilter) rather than ad-hoc predicate maps. A nil field
  means "no constraint".

THE CLAIM CONTRACT:
  ClaimMatch must atomically, in one unit of work:
    1. Verify the payment is currently unreconciled, then mark it reconciled
    2. Verify the transaction is currently unreconciled, then mark it
       reconciled and set its PaymentID back-reference
    3. Insert the match row
  If either precondition fails (another claim won the race), the whole
  claim fails with ErrClaimLost and nothing is written. Stores should
  additionally enforce uniqueness of payment_id and bank_transaction_id
  across match rows so a losing attempt can never corrupt state.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite (unique constraints + conditional updates)
  - recon/store: In-memory for testing

SEE ALSO:
  - matcher.go: Drives ClaimMatch during auto-match runs
  - store/sqlite/sqlite.go: Concrete implementation
*/
package recon

import "context"

// =============================================================================
// QUERY FILTERS - Typed query specifications
// =============================================================================

// PaymentFilter selects payments for one organization. From/To bound
// the received date (inclusive); Reconciled filters on the flag.
type PaymentFilter struct {
	OrganizationID OrganizationID
	From           *Date
	To             *Date
	Reconciled     *bool
}

// TransactionFilter selects bank transactions for one organization.
type TransactionFilter struct {
	OrganizationID OrganizationID
	From           *Date
	To             *Date
	Reconciled     *bool
}

// =============================================================================
// LEDGER STORE
// =============================================================================

// LedgerStore is durable storage for all reconciliation state.
//
// ORDERING: FindPayments returns rows ordered by received date then ID;
// FindTransactions by date then ID. The matcher depends on this for
// deterministic, idempotent runs.
//
// SCOPING: every read takes the organization; a record belonging to a
// different organization is invisible - Get* return (nil, nil) exactly
// as for a record that does not exist. The engine turns that nil into
// a NotFoundError so callers cannot probe for foreign records.
type LedgerStore interface {
	// Payments. Created by the wider system; the engine reads them and
	// flips Reconciled via match claims or propagation.
	SavePayment(ctx context.Context, p Payment) error
	GetPayment(ctx context.Context, org OrganizationID, id PaymentID) (*Payment, error)
	FindPayments(ctx context.Context, f PaymentFilter) ([]Payment, error)
	UpdatePayment(ctx context.Context, p Payment) error

	// Bank transactions. SaveTransaction rejects a duplicate dedup key
	// for the organization with ErrDuplicateTransaction.
	SaveTransaction(ctx context.Context, tx BankTransaction) error
	GetTransaction(ctx context.Context, org OrganizationID, id TransactionID) (*BankTransaction, error)
	FindTransactions(ctx context.Context, f TransactionFilter) ([]BankTransaction, error)
	UpdateTransaction(ctx context.Context, tx BankTransaction) error

	// Reconciliations. Never deleted.
	SaveReconciliation(ctx context.Context, r Reconciliation) error
	GetReconciliation(ctx context.Context, org OrganizationID, id ReconciliationID) (*Reconciliation, error)
	UpdateReconciliation(ctx context.Context, r Reconciliation) error
	FindReconciliations(ctx context.Context, org OrganizationID) ([]Reconciliation, error)

	// Matches. ClaimMatch is the atomic claim described above.
	ClaimMatch(ctx context.Context, m Match) error
	FindMatches(ctx context.Context, org OrganizationID, reconciliationID ReconciliationID) ([]Match, error)
	FindMatchForPayment(ctx context.Context, org OrganizationID, id PaymentID) (*Match, error)
	FindMatchForTransaction(ctx context.Context, org OrganizationID, id TransactionID) (*Match, error)
}
