package recon_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearledger/recon-engine/recon"
)

func TestManualMatch_OverridesAmountAndDate(t *testing.T) {
	// GIVEN: A payment and a transaction the auto-matcher would never
	// pair (different amount, far-apart dates)
	// WHEN: An operator matches them manually
	// THEN: The match is created and both sides are reconciled

	engine, st := newTestEngine()
	ctx := context.Background()

	seedPayment(t, st, testOrg, "pay-1", "100", recon.NewDate(2024, time.January, 2))
	seedTransaction(t, st, testOrg, "tx-1", "99.50", recon.NewDate(2024, time.January, 28), "Wire, fee deducted")
	seedReconciliation(t, st, testOrg, "rec-1",
		recon.NewDate(2024, time.January, 1), recon.NewDate(2024, time.January, 31))

	m, err := engine.ManualMatch(ctx, testOrg, "rec-1", "pay-1", "tx-1")
	require.NoError(t, err)
	assert.Equal(t, recon.PaymentID("pay-1"), m.PaymentID)
	assert.Equal(t, recon.TransactionID("tx-1"), m.BankTransactionID)

	p, err := st.GetPayment(ctx, testOrg, "pay-1")
	require.NoError(t, err)
	assert.True(t, p.Reconciled)

	tx, err := st.GetTransaction(ctx, testOrg, "tx-1")
	require.NoError(t, err)
	assert.True(t, tx.Reconciled)
	require.NotNil(t, tx.PaymentID)
	assert.Equal(t, recon.PaymentID("pay-1"), *tx.PaymentID)
}

func TestManualMatch_IdempotentForSamePair(t *testing.T) {
	// GIVEN: A pair that has already been matched manually
	// WHEN: The same pair is submitted again
	// THEN: The existing match is returned, no duplicate created

	engine, st := newTestEngine()
	ctx := context.Background()
	day := recon.NewDate(2024, time.February, 10)

	seedPayment(t, st, testOrg, "pay-1", "40", day)
	seedTransaction(t, st, testOrg, "tx-1", "40", day, "Deposit")
	seedReconciliation(t, st, testOrg, "rec-1", day.AddDays(-9), day.AddDays(18))

	first, err := engine.ManualMatch(ctx, testOrg, "rec-1", "pay-1", "tx-1")
	require.NoError(t, err)

	second, err := engine.ManualMatch(ctx, testOrg, "rec-1", "pay-1", "tx-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	matches, err := st.FindMatches(ctx, testOrg, "rec-1")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestManualMatch_ConflictOnMatchedPayment(t *testing.T) {
	// GIVEN: A payment already matched to one transaction
	// WHEN: It is submitted against a different transaction
	// THEN: A conflict identifying the existing match is returned

	engine, st := newTestEngine()
	ctx := context.Background()
	day := recon.NewDate(2024, time.March, 10)

	seedPayment(t, st, testOrg, "pay-1", "40", day)
	seedTransaction(t, st, testOrg, "tx-1", "40", day, "Deposit A")
	seedTransaction(t, st, testOrg, "tx-2", "40", day, "Deposit B")
	seedReconciliation(t, st, testOrg, "rec-1", day.AddDays(-9), day.AddDays(18))

	existing, err := engine.ManualMatch(ctx, testOrg, "rec-1", "pay-1", "tx-1")
	require.NoError(t, err)

	_, err = engine.ManualMatch(ctx, testOrg, "rec-1", "pay-1", "tx-2")
	require.Error(t, err)
	assert.True(t, recon.IsConflict(err))

	var conflict *recon.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, existing.ID, conflict.ExistingMatchID)
	assert.Equal(t, "payment", conflict.Side)
}

func TestManualMatch_ConflictOnMatchedTransaction(t *testing.T) {
	// GIVEN: A transaction already matched to one payment
	// WHEN: A second payment is submitted against it
	// THEN: A conflict identifying the existing match is returned

	engine, st := newTestEngine()
	ctx := context.Background()
	day := recon.NewDate(2024, time.March, 10)

	seedPayment(t, st, testOrg, "pay-1", "40", day)
	seedPayment(t, st, testOrg, "pay-2", "40", day)
	seedTransaction(t, st, testOrg, "tx-1", "40", day, "Deposit")
	seedReconciliation(t, st, testOrg, "rec-1", day.AddDays(-9), day.AddDays(18))

	existing, err := engine.ManualMatch(ctx, testOrg, "rec-1", "pay-1", "tx-1")
	require.NoError(t, err)

	_, err = engine.ManualMatch(ctx, testOrg, "rec-1", "pay-2", "tx-1")
	require.Error(t, err)
	assert.True(t, recon.IsConflict(err))

	var conflict *recon.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, existing.ID, conflict.ExistingMatchID)
	assert.Equal(t, "bank_transaction", conflict.Side)
}

func TestManualMatch_RejectsForeignRecords(t *testing.T) {
	// GIVEN: A payment and transaction belonging to another organization
	// WHEN: The caller tries to match them under its own organization
	// THEN: Not-found is returned - cross-org records are invisible

	engine, st := newTestEngine()
	ctx := context.Background()
	day := recon.NewDate(2024, time.April, 10)

	seedPayment(t, st, "org-2", "pay-theirs", "40", day)
	seedTransaction(t, st, "org-2", "tx-theirs", "40", day, "Not yours")
	seedReconciliation(t, st, testOrg, "rec-1", day.AddDays(-9), day.AddDays(18))

	_, err := engine.ManualMatch(ctx, testOrg, "rec-1", "pay-theirs", "tx-theirs")
	assert.True(t, recon.IsNotFound(err))
}

func TestManualMatch_CompletedPeriodRejected(t *testing.T) {
	// GIVEN: A completed reconciliation
	// WHEN: A manual match is submitted against it
	// THEN: The request is rejected

	engine, st := newTestEngine()
	ctx := context.Background()
	day := recon.NewDate(2024, time.May, 10)

	seedPayment(t, st, testOrg, "pay-1", "40", day)
	seedTransaction(t, st, testOrg, "tx-1", "40", day, "Deposit")
	rec := seedReconciliation(t, st, testOrg, "rec-1", day.AddDays(-9), day.AddDays(18))
	rec.Status = recon.StatusCompleted
	require.NoError(t, st.UpdateReconciliation(ctx, rec))

	_, err := engine.ManualMatch(ctx, testOrg, "rec-1", "pay-1", "tx-1")
	assert.ErrorIs(t, err, recon.ErrCompleted)
}
