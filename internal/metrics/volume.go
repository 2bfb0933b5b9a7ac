// Package metrics computes business aggregates over cleaned transactions.
//
// Every function is pure and read-only: it never mutates its input, so any
// number of them may run concurrently over the same slice. Money totals are
// accumulated with shopspring/decimal so that summing many two-decimal
// amounts does not drift.
package metrics

import (
	"strings"

	"github.com/JonMunkholm/bankrecon/internal/core"
	"github.com/shopspring/decimal"
)

// UnknownBranch is the branch key used for transactions without a branch id.
const UnknownBranch = "Unknown"

// BranchMonth is the composite key for per-branch monthly aggregates.
type BranchMonth struct {
	Branch string `json:"branch"`
	Month  string `json:"month"`
}

// branchOf returns the transaction's branch id, or UnknownBranch.
func branchOf(tx core.CleanedTransaction) string {
	if tx.BranchID.Valid && strings.TrimSpace(tx.BranchID.String) != "" {
		return tx.BranchID.String
	}
	return UnknownBranch
}

// sumByKey adds amount(tx) into the decimal bucket key(tx) and converts the
// totals back to float64.
func sumByKey[K comparable](txs []core.CleanedTransaction, key func(core.CleanedTransaction) K) map[K]float64 {
	sums := make(map[K]decimal.Decimal)
	for _, tx := range txs {
		k := key(tx)
		sums[k] = sums[k].Add(decimal.NewFromFloat(tx.TransactionAmount))
	}

	out := make(map[K]float64, len(sums))
	for k, v := range sums {
		out[k] = v.InexactFloat64()
	}
	return out
}

// MonthlyVolumeByBranch sums transaction amounts per branch and month.
func MonthlyVolumeByBranch(txs []core.CleanedTransaction) map[BranchMonth]float64 {
	return sumByKey(txs, func(tx core.CleanedTransaction) BranchMonth {
		return BranchMonth{Branch: branchOf(tx), Month: tx.TransactionMonth}
	})
}

// TotalMonthlyVolume sums transaction amounts per month across all branches.
func TotalMonthlyVolume(txs []core.CleanedTransaction) map[string]float64 {
	return sumByKey(txs, func(tx core.CleanedTransaction) string {
		return tx.TransactionMonth
	})
}

// DepositWithdrawal holds one month's deposit and withdrawal totals.
type DepositWithdrawal struct {
	Deposits    float64 `json:"deposits"`
	Withdrawals float64 `json:"withdrawals"`
}

// DepositWithdrawalByMonth totals deposits and withdrawals per month. Months
// with only other transaction types appear with zero totals.
func DepositWithdrawalByMonth(txs []core.CleanedTransaction) map[string]DepositWithdrawal {
	type pair struct{ dep, wd decimal.Decimal }
	byMonth := make(map[string]*pair)

	for _, tx := range txs {
		p, ok := byMonth[tx.TransactionMonth]
		if !ok {
			p = &pair{}
			byMonth[tx.TransactionMonth] = p
		}
		amt := decimal.NewFromFloat(tx.TransactionAmount)
		switch tx.TransactionType {
		case core.TxDeposit:
			p.dep = p.dep.Add(amt)
		case core.TxWithdrawal:
			p.wd = p.wd.Add(amt)
		}
	}

	out := make(map[string]DepositWithdrawal, len(byMonth))
	for month, p := range byMonth {
		out[month] = DepositWithdrawal{
			Deposits:    p.dep.InexactFloat64(),
			Withdrawals: p.wd.InexactFloat64(),
		}
	}
	return out
}
