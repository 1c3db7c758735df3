/*
matcher.go - Deterministic auto-match algorithm

PURPOSE:
  Links unreconciled payments to unreconciled bank transactions where
  a confident match exists: exactly equal amount, date within the
  engine's tolerance window, and exactly one surviving candidate.

TIE-BREAK POLICY:
  Never guess between multiple equal-quality candidates. Two
  transactions of the same amount on the same day are reported as a
  suggestion for manual review, not auto-linked.

DETERMINISM:
  Payments are processed in ascending (received date, ID) order and
  candidates considered in ascending (date, ID) order, so repeated runs
  against unchanged data produce identical results. Already-matched
  records are excluded from the pools by construction (they are no
  longer unreconciled), which makes re-running idempotent.

CONCURRENCY:
  The claim step is delegated to LedgerStore.ClaimMatch, which is
  atomic and conditioned on both sides still being unreconciled. When
  a concurrent run wins a claim, this run treats the transaction as no
  longer a candidate and re-evaluates the payment against the rest.

SEE ALSO:
  - manual.go: Operator override matching (no amount/date checks)
  - store.go: The ClaimMatch contract
*/
package recon

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// AutoMatch runs an auto-match pass over an existing reconciliation
// period: it re-derives the period's date window, matches inside it,
// and recomputes the period's totals afterward.
func (e *Engine) AutoMatch(ctx context.Context, org OrganizationID, reconciliationID ReconciliationID) (MatchRunResult, error) {
	rec, err := e.Store.GetReconciliation(ctx, org, reconciliationID)
	if err != nil {
		return MatchRunResult{}, err
	}
	if rec == nil {
		return MatchRunResult{}, &NotFoundError{Kind: "reconciliation", ID: string(reconciliationID)}
	}
	if rec.Status == StatusCompleted {
		return MatchRunResult{}, ErrCompleted
	}

	result, err := e.autoMatchWindow(ctx, org, rec.ID, rec.StartDate, rec.EndDate)
	if err != nil {
		return result, err
	}

	if err := e.RecomputeTotals(ctx, org, rec.ID); err != nil {
		return result, err
	}
	return result, nil
}

// autoMatchWindow matches unreconciled payments against unreconciled
// bank transactions within [start, end], attributing created matches
// to the given reconciliation.
func (e *Engine) autoMatchWindow(ctx context.Context, org OrganizationID, reconciliationID ReconciliationID, start, end Date) (MatchRunResult, error) {
	var result MatchRunResult

	unreconciled := false
	payments, err := e.Store.FindPayments(ctx, PaymentFilter{
		OrganizationID: org,
		From:           &start,
		To:             &end,
		Reconciled:     &unreconciled,
	})
	if err != nil {
		return result, fmt.Errorf("load payments: %w", err)
	}

	transactions, err := e.Store.FindTransactions(ctx, TransactionFilter{
		OrganizationID: org,
		From:           &start,
		To:             &end,
		Reconciled:     &unreconciled,
	})
	if err != nil {
		return result, fmt.Errorf("load transactions: %w", err)
	}

	// Stores return ordered rows; sort again so determinism does not
	// depend on the store implementation.
	sort.Slice(payments, func(i, j int) bool {
		if !payments[i].ReceivedDate.Equal(payments[j].ReceivedDate) {
			return payments[i].ReceivedDate.Before(payments[j].ReceivedDate)
		}
		return payments[i].ID < payments[j].ID
	})
	sort.Slice(transactions, func(i, j int) bool {
		if !transactions[i].Date.Equal(transactions[j].Date) {
			return transactions[i].Date.Before(transactions[j].Date)
		}
		return transactions[i].ID < transactions[j].ID
	})

	// Transactions claimed in this run (or lost to a concurrent run).
	claimed := make(map[TransactionID]bool)

	for _, p := range payments {
		for {
			candidates := e.candidatesFor(p, transactions, claimed)

			if len(candidates) == 0 {
				break
			}
			if len(candidates) > 1 {
				// Ambiguous. Leave for manual review.
				result.Suggested++
				break
			}

			tx := candidates[0]
			m := Match{
				ID:                MatchID(NewID()),
				ReconciliationID:  reconciliationID,
				PaymentID:         p.ID,
				BankTransactionID: tx.ID,
				CreatedAt:         time.Now().UTC(),
			}

			err := e.Store.ClaimMatch(ctx, m)
			if errors.Is(err, ErrClaimLost) {
				// A concurrent operation claimed the payment or the
				// transaction. Drop the transaction from the pool and
				// re-evaluate; if the payment itself was claimed the
				// next claim attempt loses the same way and the
				// candidate pool drains.
				claimed[tx.ID] = true
				continue
			}
			if err != nil {
				return result, fmt.Errorf("claim match: %w", err)
			}

			claimed[tx.ID] = true
			result.Matched++
			break
		}
	}

	return result, nil
}

// candidatesFor returns the transactions that could match a payment:
// exactly equal amount, within the tolerance window, not yet claimed.
func (e *Engine) candidatesFor(p Payment, transactions []BankTransaction, claimed map[TransactionID]bool) []BankTransaction {
	var candidates []BankTransaction
	for _, tx := range transactions {
		if claimed[tx.ID] {
			continue
		}
		if !tx.Amount.Equal(p.Amount) {
			continue
		}
		if AbsDaysBetween(p.ReceivedDate, tx.Date) > e.ToleranceDays {
			continue
		}
		candidates = append(candidates, tx)
	}
	return candidates
}
