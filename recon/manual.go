/*
manual.go - Operator override matching

PURPOSE:
  Links one specific payment to one specific bank transaction on
  operator request. No amount or date equality is enforced: manual
  matching is an explicit override and may link records that differ
  (e.g. a partial payment recorded separately from a single deposit).

PRECONDITIONS:
  - Reconciliation, payment, and transaction all belong to the caller's
    organization (ErrNotFound otherwise)
  - The reconciliation is still in progress (ErrCompleted otherwise)
  - Neither side is already linked to a DIFFERENT counterpart
    (ErrConflict otherwise). Re-matching the same pair returns the
    existing match - an idempotent success.

SEE ALSO:
  - matcher.go: The automatic counterpart of this operation
*/
package recon

import (
	"context"
	"errors"
	"time"
)

// ManualMatch links a payment to a bank transaction within a
// reconciliation, marking both sides reconciled.
func (e *Engine) ManualMatch(ctx context.Context, org OrganizationID, reconciliationID ReconciliationID, paymentID PaymentID, transactionID TransactionID) (*Match, error) {
	rec, err := e.Store.GetReconciliation(ctx, org, reconciliationID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &NotFoundError{Kind: "reconciliation", ID: string(reconciliationID)}
	}
	if rec.Status == StatusCompleted {
		return nil, ErrCompleted
	}

	payment, err := e.Store.GetPayment(ctx, org, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, &NotFoundError{Kind: "payment", ID: string(paymentID)}
	}

	tx, err := e.Store.GetTransaction(ctx, org, transactionID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, &NotFoundError{Kind: "bank_transaction", ID: string(transactionID)}
	}

	existingP, err := e.Store.FindMatchForPayment(ctx, org, paymentID)
	if err != nil {
		return nil, err
	}
	existingT, err := e.Store.FindMatchForTransaction(ctx, org, transactionID)
	if err != nil {
		return nil, err
	}

	// Same pair already linked: idempotent success.
	if existingP != nil && existingT != nil && existingP.ID == existingT.ID {
		return existingP, nil
	}
	if existingP != nil {
		return nil, &ConflictError{
			PaymentID:         paymentID,
			BankTransactionID: existingP.BankTransactionID,
			ExistingMatchID:   existingP.ID,
			Side:              "payment",
		}
	}
	if existingT != nil {
		return nil, &ConflictError{
			PaymentID:         existingT.PaymentID,
			BankTransactionID: transactionID,
			ExistingMatchID:   existingT.ID,
			Side:              "bank_transaction",
		}
	}

	m := Match{
		ID:                MatchID(NewID()),
		ReconciliationID:  reconciliationID,
		PaymentID:         paymentID,
		BankTransactionID: transactionID,
		CreatedAt:         time.Now().UTC(),
	}

	if err := e.Store.ClaimMatch(ctx, m); err != nil {
		// A concurrent operation claimed one of the sides between our
		// checks and the claim. For the operator this IS a conflict.
		if errors.Is(err, ErrClaimLost) {
			return nil, &ConflictError{
				PaymentID:         paymentID,
				BankTransactionID: transactionID,
				Side:              "payment",
			}
		}
		return nil, err
	}

	return &m, nil
}
