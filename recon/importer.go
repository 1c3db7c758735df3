/*
importer.go - Bank transaction import with deduplication

PURPOSE:
  Ingests a batch of externally reported bank transactions (CSV/OFX
  import or manual entry happen upstream) and persists new ones as
  unreconciled. Previously imported transactions are detected by dedup
  key and skipped, so re-importing an identical batch is a safe no-op.

DEDUP KEY:
  (organization, date, amount, reference-if-present-else-description).
  The key is computed once at import time and stored on the record; the
  store enforces its uniqueness per organization.

FAILURE MODEL:
  Each transaction is independent. A persistence failure aborts the
  operation with the counts accumulated so far, but records already
  written stay committed - there is no cross-batch rollback and no
  silent partial import.

SEE ALSO:
  - types.go: TransactionInput.DedupKey
  - store/sqlite/sqlite.go: Unique index backing the dedup check
*/
package recon

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Import persists a batch of candidate bank transactions for an
// organization, returning how many were newly imported and how many
// were duplicates of previously imported transactions.
//
// Amounts are assumed positive; request-shape validation is the
// caller's concern.
func (e *Engine) Import(ctx context.Context, org OrganizationID, candidates []TransactionInput, source ImportSource) (ImportResult, error) {
	var result ImportResult

	for _, in := range candidates {
		tx := BankTransaction{
			ID:             TransactionID(NewID()),
			OrganizationID: org,
			Date:           in.Date,
			Amount:         in.Amount,
			Description:    in.Description,
			Reference:      in.Reference,
			AccountID:      in.AccountID,
			AccountName:    in.AccountName,
			Source:         source,
			DedupKey:       in.DedupKey(),
			Reconciled:     false,
			CreatedAt:      time.Now().UTC(),
		}

		err := e.Store.SaveTransaction(ctx, tx)
		if errors.Is(err, ErrDuplicateTransaction) {
			result.Duplicates++
			continue
		}
		if err != nil {
			return result, fmt.Errorf("%w: %v", ErrImportFailed, err)
		}
		result.Imported++
	}

	return result, nil
}
