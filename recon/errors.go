/*
errors.go - Centralized error types for the reconciliation engine

PURPOSE:
  All error kinds in one place for consistency and discoverability.
  The engine raises distinguishable error kinds; the API layer maps
  them to client-facing responses.

ERROR CATEGORIES:
  1. Lookup errors - Missing or foreign-organization records
  2. Validation errors - Malformed period ranges
  3. Matching errors - Conflicts and lost concurrent claims
  4. Store errors - Persistence failures during import

USAGE:
  Callers should test with errors.Is / errors.As:

    if errors.Is(err, recon.ErrConflict) {
        // surface as 409
    }

SEE ALSO:
  - matcher.go: Recovers from ErrClaimLost internally
  - manual.go: Converts ErrClaimLost into a Conflict
*/
package recon

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced reconciliation, payment,
	// or bank transaction does not exist or belongs to another
	// organization. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidPeriod is returned when a period's end date is not
	// strictly after its start date.
	ErrInvalidPeriod = errors.New("invalid period: end date must be after start date")

	// ErrConflict is returned when a manual match targets a payment or
	// bank transaction already linked to a different counterpart.
	ErrConflict = errors.New("already matched to a different counterpart")

	// ErrClaimLost is an internal condition: a transactional match claim
	// failed because a concurrent operation claimed one of the records
	// first. The auto-matcher recovers from it locally; the manual
	// matcher surfaces it as ErrConflict.
	ErrClaimLost = errors.New("match claim lost to concurrent operation")

	// ErrCompleted is returned when an operation targets a reconciliation
	// that has already been completed. Completion is terminal.
	ErrCompleted = errors.New("reconciliation already completed")

	// ErrDuplicateTransaction is returned by stores when a bank
	// transaction with the same dedup key already exists for the
	// organization. The importer counts these, it does not fail.
	ErrDuplicateTransaction = errors.New("duplicate bank transaction")

	// ErrImportFailed is returned when persisting an imported transaction
	// fails. Records already imported in the same batch stay committed.
	ErrImportFailed = errors.New("failed to persist imported transaction")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError names the missing record kind and identifier.
type NotFoundError struct {
	Kind string // "reconciliation", "payment", "bank_transaction"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError identifies which side of a manual match was already
// linked, and to what.
type ConflictError struct {
	PaymentID         PaymentID
	BankTransactionID TransactionID
	ExistingMatchID   MatchID
	Side              string // "payment" or "bank_transaction"
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already linked by match %s (payment=%s, transaction=%s)",
		e.Side, e.ExistingMatchID, e.PaymentID, e.BankTransactionID)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict returns true for match conflicts and post-completion
// mutation attempts. Both map to HTTP 409 at the API layer.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrCompleted)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrNotFound) ||
		IsConflict(err)
}
