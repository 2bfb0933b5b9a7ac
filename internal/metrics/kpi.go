package metrics

import (
	"fmt"

	"github.com/JonMunkholm/bankrecon/internal/core"
	"github.com/shopspring/decimal"
)

// ApprovedLoanStatus is the loan status counted as approved.
const ApprovedLoanStatus = "Approved"

// Summary holds the headline figures of a batch.
type Summary struct {
	UniqueCustomers    int     `json:"uniqueCustomers"`
	UniqueAccounts     int     `json:"uniqueAccounts"`
	TotalBalance       float64 `json:"totalBalance"`
	AverageBalance     float64 `json:"averageBalance"`
	TotalTransactions  int     `json:"totalTransactions"`
	TotalDeposits      float64 `json:"totalDeposits"`
	TotalWithdrawals   float64 `json:"totalWithdrawals"`
	NetInflow          float64 `json:"netInflow"`
	Loans              int     `json:"loans"`
	ApprovalRate       float64 `json:"approvalRate"`
	AverageLoanAmount  float64 `json:"averageLoanAmount"`
	TotalLoanAmount    float64 `json:"totalLoanAmount"`
	AverageUtilization float64 `json:"averageUtilization"`
	TotalRewards       float64 `json:"totalRewards"`
}

// Summarize computes the batch summary. Accounts are distinct
// (customer, account type) pairs. Loans are transactions with a positive loan
// amount; ApprovalRate is the approved share of those as a percentage.
// AverageUtilization is taken over every transaction with a card balance,
// counting cards without a positive limit as zero.
func Summarize(txs []core.CleanedTransaction) Summary {
	var (
		customers = make(map[int64]struct{})
		accounts  = make(map[string]struct{})

		balance, deposits, withdrawals, loanTotal, rewards decimal.Decimal

		loans, approved, cards int
		utilization            float64
	)

	for _, tx := range txs {
		customers[tx.CustomerID] = struct{}{}
		accounts[fmt.Sprintf("%d-%s", tx.CustomerID, tx.AccountType.String)] = struct{}{}
		balance = balance.Add(decimal.NewFromFloat(tx.AccountBalance))

		switch tx.TransactionType {
		case core.TxDeposit:
			deposits = deposits.Add(decimal.NewFromFloat(tx.TransactionAmount))
		case core.TxWithdrawal:
			withdrawals = withdrawals.Add(decimal.NewFromFloat(tx.TransactionAmount))
		}

		if tx.LoanAmount.Valid && tx.LoanAmount.Float64 > 0 {
			loans++
			loanTotal = loanTotal.Add(decimal.NewFromFloat(tx.LoanAmount.Float64))
			if tx.LoanStatus.Valid && tx.LoanStatus.String == ApprovedLoanStatus {
				approved++
			}
		}

		if tx.CreditCardBalance.Valid {
			cards++
			if tx.CreditLimit.Valid && tx.CreditLimit.Float64 > 0 {
				utilization += tx.CreditCardBalance.Float64 / tx.CreditLimit.Float64
			}
		}

		if tx.RewardsPoints.Valid {
			rewards = rewards.Add(decimal.NewFromFloat(tx.RewardsPoints.Float64))
		}
	}

	s := Summary{
		UniqueCustomers:   len(customers),
		UniqueAccounts:    len(accounts),
		TotalBalance:      balance.InexactFloat64(),
		TotalTransactions: len(txs),
		TotalDeposits:     deposits.InexactFloat64(),
		TotalWithdrawals:  withdrawals.InexactFloat64(),
		NetInflow:         deposits.Sub(withdrawals).InexactFloat64(),
		Loans:             loans,
		TotalLoanAmount:   loanTotal.InexactFloat64(),
		TotalRewards:      rewards.InexactFloat64(),
	}
	if len(accounts) > 0 {
		s.AverageBalance = balance.Div(decimal.NewFromInt(int64(len(accounts)))).InexactFloat64()
	}
	if loans > 0 {
		s.ApprovalRate = float64(approved) / float64(loans) * 100
		s.AverageLoanAmount = loanTotal.Div(decimal.NewFromInt(int64(loans))).InexactFloat64()
	}
	if cards > 0 {
		s.AverageUtilization = utilization / float64(cards)
	}
	return s
}
