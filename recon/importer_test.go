package recon_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearledger/recon-engine/recon"
)

func TestImport_Basic(t *testing.T) {
	// GIVEN: An empty ledger
	// WHEN: Three distinct rows are imported
	// THEN: All three are stored, none reported as duplicates

	engine, st := newTestEngine()
	ctx := context.Background()
	jan := recon.NewDate(2024, time.January, 10)

	result, err := engine.Import(ctx, testOrg, []recon.TransactionInput{
		{Date: jan, Amount: amount("100"), Description: "Deposit A", Reference: "A-1"},
		{Date: jan, Amount: amount("200"), Description: "Deposit B", Reference: "B-1"},
		{Date: jan.AddDays(1), Amount: amount("100"), Description: "Deposit C"},
	}, recon.SourceFileImport)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 0, result.Duplicates)

	txs, err := st.FindTransactions(ctx, recon.TransactionFilter{OrganizationID: testOrg})
	require.NoError(t, err)
	assert.Len(t, txs, 3)
	for _, tx := range txs {
		assert.NotEmpty(t, tx.ID)
		assert.NotEmpty(t, tx.DedupKey)
		assert.Equal(t, recon.SourceFileImport, tx.Source)
		assert.False(t, tx.Reconciled)
	}
}

func TestImport_Idempotent(t *testing.T) {
	// GIVEN: A batch already imported once
	// WHEN: The exact same batch is imported again
	// THEN: Every row is a duplicate and the ledger is unchanged

	engine, st := newTestEngine()
	ctx := context.Background()
	batch := []recon.TransactionInput{
		{Date: recon.NewDate(2024, time.February, 1), Amount: amount("500"), Description: "Rent", Reference: "R-42"},
		{Date: recon.NewDate(2024, time.February, 2), Amount: amount("75.50"), Description: "Fee"},
	}

	first, err := engine.Import(ctx, testOrg, batch, recon.SourceFileImport)
	require.NoError(t, err)
	require.Equal(t, 2, first.Imported)

	second, err := engine.Import(ctx, testOrg, batch, recon.SourceFileImport)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 2, second.Duplicates)

	txs, err := st.FindTransactions(ctx, recon.TransactionFilter{OrganizationID: testOrg})
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestImport_DedupKeyFallsBackToDescription(t *testing.T) {
	// GIVEN: Rows without a reference
	// WHEN: Two rows share date, amount, and description
	// THEN: They collapse to one record, while a row differing only in
	// description is kept

	engine, st := newTestEngine()
	ctx := context.Background()
	day := recon.NewDate(2024, time.March, 5)

	result, err := engine.Import(ctx, testOrg, []recon.TransactionInput{
		{Date: day, Amount: amount("60"), Description: "ATM withdrawal"},
		{Date: day, Amount: amount("60"), Description: "ATM withdrawal"},
		{Date: day, Amount: amount("60"), Description: "Branch withdrawal"},
	}, recon.SourceManual)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Duplicates)

	txs, err := st.FindTransactions(ctx, recon.TransactionFilter{OrganizationID: testOrg})
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestImport_ReferenceTakesPriorityOverDescription(t *testing.T) {
	// GIVEN: Two rows with the same reference but different descriptions
	// WHEN: Both are imported
	// THEN: The reference wins the dedup key, so the second is a duplicate

	engine, _ := newTestEngine()
	ctx := context.Background()
	day := recon.NewDate(2024, time.March, 6)

	result, err := engine.Import(ctx, testOrg, []recon.TransactionInput{
		{Date: day, Amount: amount("300"), Description: "Check deposit", Reference: "CHK-9"},
		{Date: day, Amount: amount("300"), Description: "Mobile deposit", Reference: "CHK-9"},
	}, recon.SourceFileImport)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Duplicates)
}

func TestImport_ScopedToOrganization(t *testing.T) {
	// GIVEN: The same row imported by two organizations
	// WHEN: Each org imports it once
	// THEN: Neither import is a duplicate of the other's

	engine, st := newTestEngine()
	ctx := context.Background()
	row := recon.TransactionInput{
		Date: recon.NewDate(2024, time.April, 1), Amount: amount("10"), Description: "Shared", Reference: "S-1",
	}

	r1, err := engine.Import(ctx, testOrg, []recon.TransactionInput{row}, recon.SourceManual)
	require.NoError(t, err)
	r2, err := engine.Import(ctx, "org-2", []recon.TransactionInput{row}, recon.SourceManual)
	require.NoError(t, err)

	assert.Equal(t, 1, r1.Imported)
	assert.Equal(t, 1, r2.Imported)
	assert.Equal(t, 0, r2.Duplicates)

	other, err := st.FindTransactions(ctx, recon.TransactionFilter{OrganizationID: "org-2"})
	require.NoError(t, err)
	assert.Len(t, other, 1)
}
