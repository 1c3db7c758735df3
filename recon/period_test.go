package recon_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearledger/recon-engine/recon"
)

func TestCreatePeriod_RejectsInvalidRange(t *testing.T) {
	// GIVEN: An end date on or before the start date
	// WHEN: A period is created
	// THEN: The request is rejected before anything is persisted

	engine, st := newTestEngine()
	ctx := context.Background()
	day := recon.NewDate(2024, time.January, 15)

	_, err := engine.CreatePeriod(ctx, testOrg, day, day)
	assert.ErrorIs(t, err, recon.ErrInvalidPeriod)

	_, err = engine.CreatePeriod(ctx, testOrg, day, day.AddDays(-1))
	assert.ErrorIs(t, err, recon.ErrInvalidPeriod)

	periods, err := st.FindReconciliations(ctx, testOrg)
	require.NoError(t, err)
	assert.Empty(t, periods)
}

func TestCreatePeriod_RunsBaselineMatchAndTotals(t *testing.T) {
	// GIVEN: A matched pair plus an extra unmatched transaction
	// WHEN: A period covering them is created
	// THEN: The baseline match runs and totals reflect ALL items in the
	// window, matched or not

	engine, st := newTestEngine()
	ctx := context.Background()

	seedPayment(t, st, testOrg, "pay-1", "1000", recon.NewDate(2024, time.January, 15))
	seedTransaction(t, st, testOrg, "tx-1", "1000", recon.NewDate(2024, time.January, 16), "Rent")
	seedTransaction(t, st, testOrg, "tx-stray", "25", recon.NewDate(2024, time.January, 20), "Bank fee")

	result, err := engine.CreatePeriod(ctx, testOrg,
		recon.NewDate(2024, time.January, 1), recon.NewDate(2024, time.January, 31))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Matched)
	assert.Empty(t, result.UnmatchedPayments)
	require.Len(t, result.UnmatchedTransactions, 1)
	assert.Equal(t, recon.TransactionID("tx-stray"), result.UnmatchedTransactions[0].ID)

	rec := result.Reconciliation
	assert.Equal(t, recon.StatusInProgress, rec.Status)
	assert.True(t, rec.ExpectedTotal.Equal(amount("1000")))
	assert.True(t, rec.ActualTotal.Equal(amount("1025")))
	assert.True(t, rec.Difference.Equal(amount("25")), "difference is actual minus expected")
}

func TestGetPeriod_FullDetail(t *testing.T) {
	// GIVEN: A created period with one match and one unmatched payment
	// WHEN: The period is read back
	// THEN: The detail view lists the match and the leftovers

	engine, st := newTestEngine()
	ctx := context.Background()

	seedPayment(t, st, testOrg, "pay-1", "300", recon.NewDate(2024, time.February, 5))
	seedPayment(t, st, testOrg, "pay-2", "80", recon.NewDate(2024, time.February, 6))
	seedTransaction(t, st, testOrg, "tx-1", "300", recon.NewDate(2024, time.February, 5), "Deposit")

	created, err := engine.CreatePeriod(ctx, testOrg,
		recon.NewDate(2024, time.February, 1), recon.NewDate(2024, time.February, 29))
	require.NoError(t, err)

	detail, err := engine.GetPeriod(ctx, testOrg, created.Reconciliation.ID)
	require.NoError(t, err)

	require.Len(t, detail.Matches, 1)
	assert.Equal(t, recon.PaymentID("pay-1"), detail.Matches[0].PaymentID)
	require.Len(t, detail.UnmatchedPayments, 1)
	assert.Equal(t, recon.PaymentID("pay-2"), detail.UnmatchedPayments[0].ID)
	assert.Empty(t, detail.UnmatchedTransactions)
}

func TestGetPeriod_ScopedToOrganization(t *testing.T) {
	// GIVEN: A period belonging to another organization
	// WHEN: It is requested under the caller's organization
	// THEN: Not-found is returned

	engine, st := newTestEngine()
	ctx := context.Background()

	seedReconciliation(t, st, "org-2", "rec-theirs",
		recon.NewDate(2024, time.March, 1), recon.NewDate(2024, time.March, 31))

	_, err := engine.GetPeriod(ctx, testOrg, "rec-theirs")
	assert.True(t, recon.IsNotFound(err))
}

func TestRecomputeTotals_ReflectsLaterActivity(t *testing.T) {
	// GIVEN: A period created before a late-arriving bank transaction
	// WHEN: Totals are recomputed
	// THEN: The stored totals pick up the new item

	engine, st := newTestEngine()
	ctx := context.Background()

	seedPayment(t, st, testOrg, "pay-1", "200", recon.NewDate(2024, time.April, 10))
	created, err := engine.CreatePeriod(ctx, testOrg,
		recon.NewDate(2024, time.April, 1), recon.NewDate(2024, time.April, 30))
	require.NoError(t, err)
	require.True(t, created.Reconciliation.ActualTotal.IsZero())

	seedTransaction(t, st, testOrg, "tx-late", "200", recon.NewDate(2024, time.April, 12), "Late feed")

	require.NoError(t, engine.RecomputeTotals(ctx, testOrg, created.Reconciliation.ID))

	rec, err := st.GetReconciliation(ctx, testOrg, created.Reconciliation.ID)
	require.NoError(t, err)
	assert.True(t, rec.ActualTotal.Equal(amount("200")))
	assert.True(t, rec.Difference.IsZero())
}

func TestCompletePeriod_FreezesAndRecords(t *testing.T) {
	// GIVEN: An in-progress period
	// WHEN: It is completed with a reviewer and notes
	// THEN: Status, reviewer, timestamp, and notes are recorded

	engine, st := newTestEngine()
	ctx := context.Background()

	seedPayment(t, st, testOrg, "pay-1", "150", recon.NewDate(2024, time.May, 10))
	created, err := engine.CreatePeriod(ctx, testOrg,
		recon.NewDate(2024, time.May, 1), recon.NewDate(2024, time.May, 31))
	require.NoError(t, err)

	rec, err := engine.CompletePeriod(ctx, testOrg, created.Reconciliation.ID, "user-7", "reviewed against May statement")
	require.NoError(t, err)
	assert.Equal(t, recon.StatusCompleted, rec.Status)
	assert.Equal(t, "user-7", rec.ReviewedBy)
	assert.NotNil(t, rec.ReviewedAt)
	assert.Equal(t, "reviewed against May statement", rec.Notes)

	stored, err := st.GetReconciliation(ctx, testOrg, created.Reconciliation.ID)
	require.NoError(t, err)
	assert.Equal(t, recon.StatusCompleted, stored.Status)
}

func TestCompletePeriod_IsTerminal(t *testing.T) {
	// GIVEN: A completed period
	// WHEN: It is completed again, or totals recomputed
	// THEN: Both are rejected - completion is terminal

	engine, st := newTestEngine()
	ctx := context.Background()

	created, err := engine.CreatePeriod(ctx, testOrg,
		recon.NewDate(2024, time.June, 1), recon.NewDate(2024, time.June, 30))
	require.NoError(t, err)

	_, err = engine.CompletePeriod(ctx, testOrg, created.Reconciliation.ID, "user-1", "")
	require.NoError(t, err)

	_, err = engine.CompletePeriod(ctx, testOrg, created.Reconciliation.ID, "user-2", "")
	assert.ErrorIs(t, err, recon.ErrCompleted)

	err = engine.RecomputeTotals(ctx, testOrg, created.Reconciliation.ID)
	assert.ErrorIs(t, err, recon.ErrCompleted)

	// Reviewer from the first completion sticks
	stored, err := st.GetReconciliation(ctx, testOrg, created.Reconciliation.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", stored.ReviewedBy)
}

func TestListPeriods(t *testing.T) {
	// GIVEN: Two periods for the caller and one for another org
	// WHEN: Periods are listed
	// THEN: Only the caller's periods come back

	engine, st := newTestEngine()
	ctx := context.Background()

	_, err := engine.CreatePeriod(ctx, testOrg,
		recon.NewDate(2024, time.January, 1), recon.NewDate(2024, time.January, 31))
	require.NoError(t, err)
	_, err = engine.CreatePeriod(ctx, testOrg,
		recon.NewDate(2024, time.February, 1), recon.NewDate(2024, time.February, 29))
	require.NoError(t, err)
	seedReconciliation(t, st, "org-2", "rec-theirs",
		recon.NewDate(2024, time.January, 1), recon.NewDate(2024, time.January, 31))

	periods, err := engine.ListPeriods(ctx, testOrg)
	require.NoError(t, err)
	assert.Len(t, periods, 2)
	for _, p := range periods {
		assert.Equal(t, testOrg, p.OrganizationID)
	}
}
