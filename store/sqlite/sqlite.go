/*
Package sqlite provides a SQLite-backed implementation of recon.LedgerStore.

PURPOSE:
  Implements durable storage for payments, bank transactions,
  reconciliations, and matches. In production the same patterns apply
  to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  payments:                Recorded receipts, reconciled flag
  bank_transactions:       Imported bank activity, dedup key, payment back-reference
  reconciliations:         Review periods with frozen-on-completion totals
  reconciliation_matches:  1:1 payment <-> transaction links

INVARIANT ENFORCEMENT:
  The schema backs the engine's invariants directly:
  - UNIQUE(organization_id, dedup_key) on bank_transactions: a
    transaction is never imported twice
  - UNIQUE(payment_id) and UNIQUE(bank_transaction_id) on
    reconciliation_matches: the 1:1 pairing holds even if two claims
    race past the conditional updates
  - ClaimMatch runs as one database transaction with conditional
    "WHERE reconciled = 0" updates; a losing concurrent claim rolls
    back cleanly with recon.ErrClaimLost

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better
  concurrency: readers don't block, single writer at a time.

USAGE:
  st, err := sqlite.New("./data/recon.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()
  engine := recon.NewEngine(st)

SEE ALSO:
  - recon/store.go: Interface definition and the claim contract
  - recon/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/clearledger/recon-engine/recon"
	"github.com/shopspring/decimal"
)

// Store implements recon.LedgerStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Payments (created by the wider system; engine flips reconciled)
	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		received_date TEXT NOT NULL,
		method TEXT NOT NULL,
		reference TEXT,
		reconciled INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_org_date
		ON payments(organization_id, received_date);
	CREATE INDEX IF NOT EXISTS idx_payments_org_reconciled
		ON payments(organization_id, reconciled);

	-- Bank transactions (imported; never deleted)
	CREATE TABLE IF NOT EXISTS bank_transactions (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		date TEXT NOT NULL,
		amount TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		reference TEXT,
		account_id TEXT,
		account_name TEXT,
		source TEXT NOT NULL,
		dedup_key TEXT NOT NULL,
		reconciled INTEGER NOT NULL DEFAULT 0,
		payment_id TEXT,
		created_at TEXT NOT NULL
	);

	-- CRITICAL: a bank transaction is never imported twice
	CREATE UNIQUE INDEX IF NOT EXISTS idx_bank_transactions_dedup
		ON bank_transactions(organization_id, dedup_key);
	CREATE INDEX IF NOT EXISTS idx_bank_transactions_org_date
		ON bank_transactions(organization_id, date);
	CREATE INDEX IF NOT EXISTS idx_bank_transactions_org_reconciled
		ON bank_transactions(organization_id, reconciled);

	-- Reconciliation periods (never deleted)
	CREATE TABLE IF NOT EXISTS reconciliations (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'IN_PROGRESS',
		expected_total TEXT NOT NULL DEFAULT '0',
		actual_total TEXT NOT NULL DEFAULT '0',
		difference TEXT NOT NULL DEFAULT '0',
		notes TEXT,
		reviewed_by TEXT,
		reviewed_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reconciliations_org
		ON reconciliations(organization_id, start_date);

	-- Matches (1:1 pairing enforced at the schema level)
	CREATE TABLE IF NOT EXISTS reconciliation_matches (
		id TEXT PRIMARY KEY,
		reconciliation_id TEXT NOT NULL,
		payment_id TEXT NOT NULL UNIQUE,
		bank_transaction_id TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL,
		FOREIGN KEY (reconciliation_id) REFERENCES reconciliations(id),
		FOREIGN KEY (payment_id) REFERENCES payments(id),
		FOREIGN KEY (bank_transaction_id) REFERENCES bank_transactions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_matches_reconciliation
		ON reconciliation_matches(reconciliation_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (s *Store) SavePayment(ctx context.Context, p recon.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO payments (id, organization_id, amount, received_date, method, reference, reconciled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		p.ID,
		p.OrganizationID,
		p.Amount.String(),
		p.ReceivedDate.String(),
		p.Method,
		nullString(p.Reference),
		boolToInt(p.Reconciled),
		p.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

func (s *Store) GetPayment(ctx context.Context, org recon.OrganizationID, id recon.PaymentID) (*recon.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := paymentSelect + ` WHERE id = ? AND organization_id = ?`
	payments, err := s.queryPayments(ctx, query, id, org)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, nil
	}
	return &payments[0], nil
}

func (s *Store) FindPayments(ctx context.Context, f recon.PaymentFilter) ([]recon.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conditions := []string{"organization_id = ?"}
	args := []any{f.OrganizationID}

	if f.From != nil {
		conditions = append(conditions, "received_date >= ?")
		args = append(args, f.From.String())
	}
	if f.To != nil {
		conditions = append(conditions, "received_date <= ?")
		args = append(args, f.To.String())
	}
	if f.Reconciled != nil {
		conditions = append(conditions, "reconciled = ?")
		args = append(args, boolToInt(*f.Reconciled))
	}

	query := paymentSelect + ` WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY received_date ASC, id ASC`

	return s.queryPayments(ctx, query, args...)
}

func (s *Store) UpdatePayment(ctx context.Context, p recon.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE payments
		SET amount = ?, received_date = ?, method = ?, reference = ?, reconciled = ?
		WHERE id = ? AND organization_id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		p.Amount.String(),
		p.ReceivedDate.String(),
		p.Method,
		nullString(p.Reference),
		boolToInt(p.Reconciled),
		p.ID,
		p.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &recon.NotFoundError{Kind: "payment", ID: string(p.ID)}
	}
	return nil
}

const paymentSelect = `
	SELECT id, organization_id, amount, received_date, method, reference, reconciled, created_at
	FROM payments`

func (s *Store) queryPayments(ctx context.Context, query string, args ...any) ([]recon.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []recon.Payment
	for rows.Next() {
		var (
			p            recon.Payment
			amount       string
			receivedDate string
			reference    sql.NullString
			reconciled   int
			createdAt    string
		)
		if err := rows.Scan(&p.ID, &p.OrganizationID, &amount, &receivedDate,
			&p.Method, &reference, &reconciled, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}

		p.Amount = mustDecimal(amount)
		p.ReceivedDate, _ = recon.ParseDate(receivedDate)
		p.Reference = reference.String
		p.Reconciled = reconciled != 0
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// =============================================================================
// BANK TRANSACTIONS
// =============================================================================

func (s *Store) SaveTransaction(ctx context.Context, tx recon.BankTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO bank_transactions
		(id, organization_id, date, amount, description, reference, account_id, account_name,
		 source, dedup_key, reconciled, payment_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		tx.ID,
		tx.OrganizationID,
		tx.Date.String(),
		tx.Amount.String(),
		tx.Description,
		nullString(tx.Reference),
		nullString(tx.AccountID),
		nullString(tx.AccountName),
		tx.Source,
		tx.DedupKey,
		boolToInt(tx.Reconciled),
		paymentIDOrNull(tx.PaymentID),
		tx.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return recon.ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to save bank transaction: %w", err)
	}
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, org recon.OrganizationID, id recon.TransactionID) (*recon.BankTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := transactionSelect + ` WHERE id = ? AND organization_id = ?`
	txs, err := s.queryTransactions(ctx, query, id, org)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, nil
	}
	return &txs[0], nil
}

func (s *Store) FindTransactions(ctx context.Context, f recon.TransactionFilter) ([]recon.BankTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conditions := []string{"organization_id = ?"}
	args := []any{f.OrganizationID}

	if f.From != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, f.From.String())
	}
	if f.To != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, f.To.String())
	}
	if f.Reconciled != nil {
		conditions = append(conditions, "reconciled = ?")
		args = append(args, boolToInt(*f.Reconciled))
	}

	query := transactionSelect + ` WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY date ASC, id ASC`

	return s.queryTransactions(ctx, query, args...)
}

func (s *Store) UpdateTransaction(ctx context.Context, tx recon.BankTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE bank_transactions
		SET date = ?, amount = ?, description = ?, reference = ?,
		    account_id = ?, account_name = ?, reconciled = ?, payment_id = ?
		WHERE id = ? AND organization_id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		tx.Date.String(),
		tx.Amount.String(),
		tx.Description,
		nullString(tx.Reference),
		nullString(tx.AccountID),
		nullString(tx.AccountName),
		boolToInt(tx.Reconciled),
		paymentIDOrNull(tx.PaymentID),
		tx.ID,
		tx.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bank transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &recon.NotFoundError{Kind: "bank_transaction", ID: string(tx.ID)}
	}
	return nil
}

const transactionSelect = `
	SELECT id, organization_id, date, amount, description, reference, account_id, account_name,
	       source, dedup_key, reconciled, payment_id, created_at
	FROM bank_transactions`

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]recon.BankTransaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank transactions: %w", err)
	}
	defer rows.Close()

	var txs []recon.BankTransaction
	for rows.Next() {
		var (
			tx          recon.BankTransaction
			date        string
			amount      string
			reference   sql.NullString
			accountID   sql.NullString
			accountName sql.NullString
			reconciled  int
			paymentID   sql.NullString
			createdAt   string
		)
		if err := rows.Scan(&tx.ID, &tx.OrganizationID, &date, &amount, &tx.Description,
			&reference, &accountID, &accountName, &tx.Source, &tx.DedupKey,
			&reconciled, &paymentID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan bank transaction: %w", err)
		}

		tx.Date, _ = recon.ParseDate(date)
		tx.Amount = mustDecimal(amount)
		tx.Reference = reference.String
		tx.AccountID = accountID.String
		tx.AccountName = accountName.String
		tx.Reconciled = reconciled != 0
		if paymentID.Valid {
			id := recon.PaymentID(paymentID.String)
			tx.PaymentID = &id
		}
		tx.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// =============================================================================
// RECONCILIATIONS
// =============================================================================

func (s *Store) SaveReconciliation(ctx context.Context, r recon.Reconciliation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO reconciliations
		(id, organization_id, start_date, end_date, status, expected_total, actual_total,
		 difference, notes, reviewed_by, reviewed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		r.ID,
		r.OrganizationID,
		r.StartDate.String(),
		r.EndDate.String(),
		r.Status,
		r.ExpectedTotal.String(),
		r.ActualTotal.String(),
		r.Difference.String(),
		nullString(r.Notes),
		nullString(r.ReviewedBy),
		nullTime(r.ReviewedAt),
		r.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save reconciliation: %w", err)
	}
	return nil
}

func (s *Store) GetReconciliation(ctx context.Context, org recon.OrganizationID, id recon.ReconciliationID) (*recon.Reconciliation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := reconciliationSelect + ` WHERE id = ? AND organization_id = ?`
	recs, err := s.queryReconciliations(ctx, query, id, org)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

func (s *Store) UpdateReconciliation(ctx context.Context, r recon.Reconciliation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE reconciliations
		SET status = ?, expected_total = ?, actual_total = ?, difference = ?,
		    notes = ?, reviewed_by = ?, reviewed_at = ?
		WHERE id = ? AND organization_id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		r.Status,
		r.ExpectedTotal.String(),
		r.ActualTotal.String(),
		r.Difference.String(),
		nullString(r.Notes),
		nullString(r.ReviewedBy),
		nullTime(r.ReviewedAt),
		r.ID,
		r.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reconciliation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &recon.NotFoundError{Kind: "reconciliation", ID: string(r.ID)}
	}
	return nil
}

func (s *Store) FindReconciliations(ctx context.Context, org recon.OrganizationID) ([]recon.Reconciliation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := reconciliationSelect + ` WHERE organization_id = ? ORDER BY start_date ASC, id ASC`
	return s.queryReconciliations(ctx, query, org)
}

const reconciliationSelect = `
	SELECT id, organization_id, start_date, end_date, status, expected_total, actual_total,
	       difference, notes, reviewed_by, reviewed_at, created_at
	FROM reconciliations`

func (s *Store) queryReconciliations(ctx context.Context, query string, args ...any) ([]recon.Reconciliation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reconciliations: %w", err)
	}
	defer rows.Close()

	var recs []recon.Reconciliation
	for rows.Next() {
		var (
			r          recon.Reconciliation
			startDate  string
			endDate    string
			expected   string
			actual     string
			difference string
			notes      sql.NullString
			reviewedBy sql.NullString
			reviewedAt sql.NullString
			createdAt  string
		)
		if err := rows.Scan(&r.ID, &r.OrganizationID, &startDate, &endDate, &r.Status,
			&expected, &actual, &difference, &notes, &reviewedBy, &reviewedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan reconciliation: %w", err)
		}

		r.StartDate, _ = recon.ParseDate(startDate)
		r.EndDate, _ = recon.ParseDate(endDate)
		r.ExpectedTotal = mustDecimal(expected)
		r.ActualTotal = mustDecimal(actual)
		r.Difference = mustDecimal(difference)
		r.Notes = notes.String
		r.ReviewedBy = reviewedBy.String
		if reviewedAt.Valid {
			t, _ := time.Parse(time.RFC3339, reviewedAt.String)
			r.ReviewedAt = &t
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// =============================================================================
// MATCHES
// =============================================================================

// ClaimMatch links a payment and a bank transaction in one database
// transaction. The conditional updates ("WHERE reconciled = 0") are the
// claim: if a concurrent operation already reconciled either side, zero
// rows are affected and the whole claim rolls back with
// recon.ErrClaimLost. The unique constraints on the match table are a
// second line of defense against racing claims.
func (s *Store) ClaimMatch(ctx context.Context, m recon.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	res, err := sqlTx.ExecContext(ctx,
		`UPDATE payments SET reconciled = 1 WHERE id = ? AND reconciled = 0`,
		m.PaymentID,
	)
	if err != nil {
		return fmt.Errorf("failed to claim payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return recon.ErrClaimLost
	}

	res, err = sqlTx.ExecContext(ctx,
		`UPDATE bank_transactions SET reconciled = 1, payment_id = ? WHERE id = ? AND reconciled = 0`,
		m.PaymentID, m.BankTransactionID,
	)
	if err != nil {
		return fmt.Errorf("failed to claim bank transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return recon.ErrClaimLost
	}

	_, err = sqlTx.ExecContext(ctx,
		`INSERT INTO reconciliation_matches (id, reconciliation_id, payment_id, bank_transaction_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.ReconciliationID, m.PaymentID, m.BankTransactionID,
		m.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return recon.ErrClaimLost
		}
		return fmt.Errorf("failed to insert match: %w", err)
	}

	return sqlTx.Commit()
}

func (s *Store) FindMatches(ctx context.Context, org recon.OrganizationID, reconciliationID recon.ReconciliationID) ([]recon.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := matchSelect + `
		JOIN payments p ON p.id = m.payment_id
		WHERE m.reconciliation_id = ? AND p.organization_id = ?
		ORDER BY m.id ASC`

	return s.queryMatches(ctx, query, reconciliationID, org)
}

func (s *Store) FindMatchForPayment(ctx context.Context, org recon.OrganizationID, id recon.PaymentID) (*recon.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := matchSelect + `
		JOIN payments p ON p.id = m.payment_id
		WHERE m.payment_id = ? AND p.organization_id = ?`

	matches, err := s.queryMatches(ctx, query, id, org)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

func (s *Store) FindMatchForTransaction(ctx context.Context, org recon.OrganizationID, id recon.TransactionID) (*recon.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := matchSelect + `
		JOIN bank_transactions t ON t.id = m.bank_transaction_id
		WHERE m.bank_transaction_id = ? AND t.organization_id = ?`

	matches, err := s.queryMatches(ctx, query, id, org)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

const matchSelect = `
	SELECT m.id, m.reconciliation_id, m.payment_id, m.bank_transaction_id, m.created_at
	FROM reconciliation_matches m`

func (s *Store) queryMatches(ctx context.Context, query string, args ...any) ([]recon.Match, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []recon.Match
	for rows.Next() {
		var (
			m         recon.Match
			createdAt string
		)
		if err := rows.Scan(&m.ID, &m.ReconciliationID, &m.PaymentID, &m.BankTransactionID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"reconciliation_matches", "reconciliations", "bank_transactions", "payments"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func paymentIDOrNull(id *recon.PaymentID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*id), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
