package core

// reconcile.go checks each customer's running balance.
//
// Transactions are grouped by customer and walked in date order. Each
// transaction's recorded post-balance is compared with the previous balance
// adjusted by the signed amount; mismatches beyond the tolerance become
// ReconciliationIssues. Customers are independent, so groups are checked on
// a bounded errgroup and the results are stitched back together in the order
// customers first appear in the input.

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// DefaultReconcileTolerance is the absolute currency difference allowed
// between expected and recorded balances.
const DefaultReconcileTolerance = 1.0

// ReconcileOptions configures Reconcile.
type ReconcileOptions struct {
	// Tolerance is the allowed absolute balance difference. Zero or
	// negative selects DefaultReconcileTolerance; config rejects both.
	Tolerance float64

	// Workers bounds how many customer groups are checked in parallel
	// (default: GOMAXPROCS)
	Workers int
}

func (o ReconcileOptions) withDefaults() ReconcileOptions {
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultReconcileTolerance
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// customerGroup is one customer's transactions in input order.
type customerGroup struct {
	customerID int64
	txs        []CleanedTransaction
}

// groupByCustomer partitions txs by customer id, ordering groups by the
// customer's first appearance.
func groupByCustomer(txs []CleanedTransaction) []customerGroup {
	index := make(map[int64]int)
	var groups []customerGroup
	for _, tx := range txs {
		i, ok := index[tx.CustomerID]
		if !ok {
			i = len(groups)
			index[tx.CustomerID] = i
			groups = append(groups, customerGroup{customerID: tx.CustomerID})
		}
		groups[i].txs = append(groups[i].txs, tx)
	}
	return groups
}

// Reconcile returns every balance mismatch in txs. Issues are ordered by the
// customer's first appearance in txs, then by chronological index within the
// customer. txs itself is not reordered.
func Reconcile(ctx context.Context, txs []CleanedTransaction, opts ReconcileOptions) ([]ReconciliationIssue, error) {
	opts = opts.withDefaults()
	groups := groupByCustomer(txs)
	perGroup := make([][]ReconciliationIssue, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i := range groups {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perGroup[i] = reconcileCustomer(groups[i], opts.Tolerance)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	issues := []ReconciliationIssue{}
	for _, gi := range perGroup {
		issues = append(issues, gi...)
	}
	return issues, nil
}

// reconcileCustomer walks one customer's ledger in date order. Transactions
// with equal dates keep their input order. The running balance is reset to
// each recorded post-balance, so one bad row produces one issue.
func reconcileCustomer(group customerGroup, tolerance float64) []ReconciliationIssue {
	sorted := make([]CleanedTransaction, len(group.txs))
	copy(sorted, group.txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TransactionDate.Before(sorted[j].TransactionDate)
	})

	var issues []ReconciliationIssue
	prev := sorted[0].AccountBalance

	for i, tx := range sorted {
		sign := 1.0
		if tx.TransactionType == TxWithdrawal {
			sign = -1.0
		}

		expected := prev + sign*tx.TransactionAmount
		actual := tx.AccountBalanceAfter

		if isFinite(actual) && math.Abs(expected-actual) > tolerance {
			issues = append(issues, ReconciliationIssue{
				CustomerID:      group.customerID,
				TxIndex:         i,
				ExpectedBalance: expected,
				ActualBalance:   actual,
			})
		}

		prev = actual
	}

	return issues
}
