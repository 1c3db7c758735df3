package recon

// =============================================================================
// ENGINE - Stateless facade over the ledger store
// =============================================================================

// DefaultToleranceDays is the default clearing-delay window: a bank
// transaction within this many days of a payment's received date is a
// match candidate. Tunable per engine, not a hidden constant.
const DefaultToleranceDays = 3

// Engine performs all reconciliation operations. It holds no state
// between calls; the LedgerStore is the only shared mutable resource.
type Engine struct {
	Store LedgerStore

	// ToleranceDays is the maximum distance, in days, between a
	// payment's received date and a candidate transaction's date.
	ToleranceDays int
}

// NewEngine creates an engine with the default date tolerance.
func NewEngine(store LedgerStore) *Engine {
	return &Engine{Store: store, ToleranceDays: DefaultToleranceDays}
}
