/*
transactions.go - Bank transaction corrections

PURPOSE:
  Bank transactions are never deleted, but data-entry errors happen
  (a check that cleared on a different date than recorded, a mistyped
  amount). This file implements field corrections with two rules:

  PROPAGATION: marking a transaction reconciled when it has a linked
  payment marks that payment reconciled too, keeping the two sides
  consistent.

  COMPLETED-PERIOD POLICY: a transaction that participates in a match
  belonging to a COMPLETED reconciliation rejects updates. Completed
  totals are frozen; allowing the edit would silently falsify them.
  Unmatched transactions stay editable.

SEE ALSO:
  - period.go: Completion semantics
*/
package recon

import "context"

// UpdateBankTransaction applies field corrections to a bank transaction
// and returns the updated record.
func (e *Engine) UpdateBankTransaction(ctx context.Context, org OrganizationID, id TransactionID, update TransactionUpdate) (*BankTransaction, error) {
	tx, err := e.Store.GetTransaction(ctx, org, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, &NotFoundError{Kind: "bank_transaction", ID: string(id)}
	}

	match, err := e.Store.FindMatchForTransaction(ctx, org, id)
	if err != nil {
		return nil, err
	}
	if match != nil {
		rec, err := e.Store.GetReconciliation(ctx, org, match.ReconciliationID)
		if err != nil {
			return nil, err
		}
		if rec != nil && rec.Status == StatusCompleted {
			return nil, ErrCompleted
		}
	}

	if update.Date != nil {
		tx.Date = *update.Date
	}
	if update.Amount != nil {
		tx.Amount = *update.Amount
	}
	if update.Description != nil {
		tx.Description = *update.Description
	}
	if update.Reference != nil {
		tx.Reference = *update.Reference
	}
	if update.Reconciled != nil {
		tx.Reconciled = *update.Reconciled
	}

	if err := e.Store.UpdateTransaction(ctx, *tx); err != nil {
		return nil, err
	}

	// Propagate an operator "mark reconciled" to the linked payment.
	if update.Reconciled != nil && *update.Reconciled && tx.PaymentID != nil {
		payment, err := e.Store.GetPayment(ctx, org, *tx.PaymentID)
		if err != nil {
			return nil, err
		}
		if payment != nil && !payment.Reconciled {
			payment.Reconciled = true
			if err := e.Store.UpdatePayment(ctx, *payment); err != nil {
				return nil, err
			}
		}
	}

	return tx, nil
}
