package metrics

import (
	"github.com/JonMunkholm/bankrecon/internal/core"
	"github.com/jackc/pgx/v5/pgtype"
)

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

func num(f float64) pgtype.Float8 {
	return pgtype.Float8{Float64: f, Valid: true}
}

// tx builds a minimal cleaned transaction.
func tx(customer int64, typ core.TransactionType, amount float64, branch, month string) core.CleanedTransaction {
	t := core.CleanedTransaction{
		CustomerID:        customer,
		TransactionType:   typ,
		TransactionAmount: amount,
		TransactionMonth:  month,
	}
	if branch != "" {
		t.BranchID = text(branch)
	}
	return t
}
