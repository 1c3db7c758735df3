/*
Package recon provides the core bank reconciliation engine.

PURPOSE:
  This package contains the domain types and algorithms for reconciling
  an organization's recorded payments against externally reported bank
  activity. It covers transaction import with deduplication, period
  creation with baseline auto-matching, a deterministic auto-match
  algorithm, manual override matching, and period completion.

KEY CONCEPTS IN THIS FILE (types.go):
  - Payment: A recorded receipt of money (created elsewhere, matched here)
  - BankTransaction: One line of externally reported bank activity
  - Reconciliation: A bounded review period with computed totals
  - Match: The explicit 1:1 link between a Payment and a BankTransaction

DESIGN PRINCIPLES:
  1. Exactness: Uses decimal.Decimal for money - amount comparison is
     exact, never floating-point-approximate
  2. Type Safety: Strong typing for IDs prevents mixing payment and
     transaction identifiers
  3. Statelessness: All state lives in the LedgerStore; the engine
     holds no mutable state between calls
  4. Determinism: Matching is explainable and repeatable - no fuzzy
     scoring, no guessing between equal-quality candidates

SEE ALSO:
  - matcher.go: The deterministic auto-match algorithm
  - period.go: Reconciliation period lifecycle
  - store.go: Persistence interface and typed query filters
*/
package recon

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type OrganizationID string
type PaymentID string
type TransactionID string
type ReconciliationID string
type MatchID string

// NewID returns a fresh identifier for engine-created records.
func NewID() string { return uuid.NewString() }

// =============================================================================
// PAYMENT - A recorded receipt of money
// =============================================================================

type PaymentMethod string

const (
	MethodCheck    PaymentMethod = "check"
	MethodACH      PaymentMethod = "ach"
	MethodCard     PaymentMethod = "card"
	MethodCash     PaymentMethod = "cash"
	MethodTransfer PaymentMethod = "transfer"
)

// Payment is a receipt of money recorded by the wider system (rent, fees).
// The engine only ever mutates its Reconciled flag, and only through a
// match claim or reconciled-propagation from a linked bank transaction.
type Payment struct {
	ID             PaymentID
	OrganizationID OrganizationID
	Amount         decimal.Decimal
	ReceivedDate   Date
	Method         PaymentMethod
	Reference      string
	Reconciled     bool
	CreatedAt      time.Time
}

// =============================================================================
// BANK TRANSACTION - One line of actual bank activity
// =============================================================================

// ImportSource tags where a transaction batch came from. Audit only;
// it has no effect on matching or deduplication.
type ImportSource string

const (
	SourceManual     ImportSource = "manual"
	SourceFileImport ImportSource = "file_import"
)

// BankTransaction is an imported line item from the bank's activity feed.
// Never deleted; corrections are field updates (see Engine.UpdateBankTransaction).
type BankTransaction struct {
	ID             TransactionID
	OrganizationID OrganizationID
	Date           Date
	Amount         decimal.Decimal
	Description    string
	Reference      string
	AccountID      string
	AccountName    string
	Source         ImportSource
	DedupKey       string
	Reconciled     bool
	PaymentID      *PaymentID // Set when linked to a payment via a match
	CreatedAt      time.Time
}

// TransactionInput is one candidate row handed to the importer.
// Amounts are assumed positive; shape validation is an external concern.
type TransactionInput struct {
	Date        Date
	Amount      decimal.Decimal
	Description string
	Reference   string
	AccountID   string
	AccountName string
}

// DedupKey computes the deduplication key for a candidate: date, amount,
// and reference if present, else description. Two imports with the same
// key for the same organization collapse to one stored record.
func (in TransactionInput) DedupKey() string {
	tail := in.Reference
	if tail == "" {
		tail = in.Description
	}
	return in.Date.String() + "|" + in.Amount.String() + "|" + tail
}

// =============================================================================
// RECONCILIATION - A bounded review period
// =============================================================================

type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Reconciliation covers [StartDate, EndDate] for one organization.
// Totals are defined over ALL payments/transactions in the window,
// matched or not - a period can be balanced in total while still
// containing individually unmatched items.
type Reconciliation struct {
	ID             ReconciliationID
	OrganizationID OrganizationID
	StartDate      Date
	EndDate        Date
	Status         Status
	ExpectedTotal  decimal.Decimal // Sum of payments in window
	ActualTotal    decimal.Decimal // Sum of bank transactions in window
	Difference     decimal.Decimal // Actual - Expected
	Notes          string
	ReviewedBy     string
	ReviewedAt     *time.Time
	CreatedAt      time.Time
}

// Contains reports whether a date falls within the period window.
func (r Reconciliation) Contains(d Date) bool {
	return !d.Before(r.StartDate) && !d.After(r.EndDate)
}

// =============================================================================
// MATCH - The 1:1 link between a payment and a bank transaction
// =============================================================================

// Match links exactly one Payment to exactly one BankTransaction within
// one Reconciliation. A payment or transaction participates in at most
// one match, enforced by the store even under concurrent claims.
type Match struct {
	ID                MatchID
	ReconciliationID  ReconciliationID
	PaymentID         PaymentID
	BankTransactionID TransactionID
	CreatedAt         time.Time
}

// =============================================================================
// OPERATION RESULTS
// =============================================================================

// ImportResult reports how an import batch was handled.
type ImportResult struct {
	Imported   int
	Duplicates int
}

// MatchRunResult reports an auto-match pass. Suggested counts ambiguous
// pairings the matcher declined to create automatically.
type MatchRunResult struct {
	Matched   int
	Suggested int
}

// PeriodResult is returned from period creation: the persisted period,
// the baseline auto-match counts, and what remains to review.
type PeriodResult struct {
	Reconciliation        Reconciliation
	Matched               int
	Suggested             int
	UnmatchedPayments     []Payment
	UnmatchedTransactions []BankTransaction
}

// PeriodDetail is the full read view of a period.
type PeriodDetail struct {
	Reconciliation        Reconciliation
	Matches               []Match
	UnmatchedPayments     []Payment
	UnmatchedTransactions []BankTransaction
}

// TransactionUpdate carries optional field corrections for a bank
// transaction. Nil fields are left untouched.
type TransactionUpdate struct {
	Date        *Date
	Amount      *decimal.Decimal
	Description *string
	Reference   *string
	Reconciled  *bool
}
