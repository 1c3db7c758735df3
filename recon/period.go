/*
period.go - Reconciliation period lifecycle

PURPOSE:
  Creates a reconciliation covering a date range (running the
  auto-matcher as a baseline pass), keeps its totals current, and
  finalizes it with a reviewer identity and timestamp.

STATE MACHINE:
  IN_PROGRESS -> COMPLETED. One-way, no other states, no deletion.
  A completed reconciliation cannot be reopened and its notes,
  reviewer, and totals are immutable.

TOTALS:
  expectedTotal = sum of ALL payments in the window
  actualTotal   = sum of ALL bank transactions in the window
  difference    = actual - expected
  Totals cover every item in range, matched or not, and are recomputed
  after any match-affecting operation so they stay derivable.

SEE ALSO:
  - matcher.go: The baseline pass run at creation
  - transactions.go: Bank transaction corrections and the completed-period policy
*/
package recon

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CreatePeriod opens a reconciliation for [start, end], runs the
// baseline auto-match pass, computes totals, and reports what remains
// unmatched for review.
func (e *Engine) CreatePeriod(ctx context.Context, org OrganizationID, start, end Date) (*PeriodResult, error) {
	if !end.After(start) {
		return nil, ErrInvalidPeriod
	}

	rec := Reconciliation{
		ID:             ReconciliationID(NewID()),
		OrganizationID: org,
		StartDate:      start,
		EndDate:        end,
		Status:         StatusInProgress,
		ExpectedTotal:  decimal.Zero,
		ActualTotal:    decimal.Zero,
		Difference:     decimal.Zero,
		CreatedAt:      time.Now().UTC(),
	}
	if err := e.Store.SaveReconciliation(ctx, rec); err != nil {
		return nil, fmt.Errorf("save reconciliation: %w", err)
	}

	run, err := e.autoMatchWindow(ctx, org, rec.ID, start, end)
	if err != nil {
		return nil, err
	}

	if err := e.RecomputeTotals(ctx, org, rec.ID); err != nil {
		return nil, err
	}

	updated, err := e.Store.GetReconciliation(ctx, org, rec.ID)
	if err != nil {
		return nil, err
	}

	unmatchedPayments, unmatchedTransactions, err := e.unmatchedInWindow(ctx, org, start, end)
	if err != nil {
		return nil, err
	}

	return &PeriodResult{
		Reconciliation:        *updated,
		Matched:               run.Matched,
		Suggested:             run.Suggested,
		UnmatchedPayments:     unmatchedPayments,
		UnmatchedTransactions: unmatchedTransactions,
	}, nil
}

// GetPeriod returns a reconciliation with its matches and the items in
// its window that still need review.
func (e *Engine) GetPeriod(ctx context.Context, org OrganizationID, id ReconciliationID) (*PeriodDetail, error) {
	rec, err := e.Store.GetReconciliation(ctx, org, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &NotFoundError{Kind: "reconciliation", ID: string(id)}
	}

	matches, err := e.Store.FindMatches(ctx, org, id)
	if err != nil {
		return nil, err
	}

	unmatchedPayments, unmatchedTransactions, err := e.unmatchedInWindow(ctx, org, rec.StartDate, rec.EndDate)
	if err != nil {
		return nil, err
	}

	return &PeriodDetail{
		Reconciliation:        *rec,
		Matches:               matches,
		UnmatchedPayments:     unmatchedPayments,
		UnmatchedTransactions: unmatchedTransactions,
	}, nil
}

// RecomputeTotals re-derives a period's totals from the payments and
// bank transactions in its window, matched or not.
func (e *Engine) RecomputeTotals(ctx context.Context, org OrganizationID, id ReconciliationID) error {
	rec, err := e.Store.GetReconciliation(ctx, org, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return &NotFoundError{Kind: "reconciliation", ID: string(id)}
	}
	if rec.Status == StatusCompleted {
		return ErrCompleted
	}

	payments, err := e.Store.FindPayments(ctx, PaymentFilter{
		OrganizationID: org,
		From:           &rec.StartDate,
		To:             &rec.EndDate,
	})
	if err != nil {
		return err
	}
	transactions, err := e.Store.FindTransactions(ctx, TransactionFilter{
		OrganizationID: org,
		From:           &rec.StartDate,
		To:             &rec.EndDate,
	})
	if err != nil {
		return err
	}

	expected := decimal.Zero
	for _, p := range payments {
		expected = expected.Add(p.Amount)
	}
	actual := decimal.Zero
	for _, tx := range transactions {
		actual = actual.Add(tx.Amount)
	}

	rec.ExpectedTotal = expected
	rec.ActualTotal = actual
	rec.Difference = actual.Sub(expected)

	return e.Store.UpdateReconciliation(ctx, *rec)
}

// CompletePeriod finalizes a reconciliation with the reviewer's
// identity. Terminal: a second completion, or any later mutation of
// notes or reviewer, fails with ErrCompleted.
func (e *Engine) CompletePeriod(ctx context.Context, org OrganizationID, id ReconciliationID, reviewerID, notes string) (*Reconciliation, error) {
	rec, err := e.Store.GetReconciliation(ctx, org, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &NotFoundError{Kind: "reconciliation", ID: string(id)}
	}
	if rec.Status == StatusCompleted {
		return nil, ErrCompleted
	}

	// Freeze totals as of completion.
	if err := e.RecomputeTotals(ctx, org, id); err != nil {
		return nil, err
	}
	rec, err = e.Store.GetReconciliation(ctx, org, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec.Status = StatusCompleted
	rec.ReviewedBy = reviewerID
	rec.ReviewedAt = &now
	if notes != "" {
		rec.Notes = notes
	}

	if err := e.Store.UpdateReconciliation(ctx, *rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListPeriods returns all reconciliations for an organization.
func (e *Engine) ListPeriods(ctx context.Context, org OrganizationID) ([]Reconciliation, error) {
	return e.Store.FindReconciliations(ctx, org)
}

func (e *Engine) unmatchedInWindow(ctx context.Context, org OrganizationID, start, end Date) ([]Payment, []BankTransaction, error) {
	unreconciled := false
	payments, err := e.Store.FindPayments(ctx, PaymentFilter{
		OrganizationID: org,
		From:           &start,
		To:             &end,
		Reconciled:     &unreconciled,
	})
	if err != nil {
		return nil, nil, err
	}
	transactions, err := e.Store.FindTransactions(ctx, TransactionFilter{
		OrganizationID: org,
		From:           &start,
		To:             &end,
		Reconciled:     &unreconciled,
	})
	if err != nil {
		return nil, nil, err
	}
	return payments, transactions, nil
}
