package metrics

import (
	"regexp"

	"github.com/JonMunkholm/bankrecon/internal/core"
)

// FilterAll disables a Filter constraint, as does the empty string.
const FilterAll = "all"

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Filter narrows a batch the way the dashboard does.
type Filter struct {
	Branch          string `json:"branch,omitempty"`
	AccountType     string `json:"accountType,omitempty"`
	TransactionType string `json:"transactionType,omitempty"`
	// Month is a "YYYY-MM" value; any other value is ignored.
	Month string `json:"month,omitempty"`
}

func unconstrained(v string) bool {
	return v == "" || v == FilterAll
}

// IsZero reports whether f matches every transaction.
func (f Filter) IsZero() bool {
	return unconstrained(f.Branch) && unconstrained(f.AccountType) &&
		unconstrained(f.TransactionType) && (unconstrained(f.Month) || !monthPattern.MatchString(f.Month))
}

// Match reports whether tx satisfies every constraint of f.
func (f Filter) Match(tx core.CleanedTransaction) bool {
	if !unconstrained(f.Branch) && tx.BranchID.String != f.Branch {
		return false
	}
	if !unconstrained(f.AccountType) && tx.AccountType.String != f.AccountType {
		return false
	}
	if !unconstrained(f.TransactionType) && string(tx.TransactionType) != f.TransactionType {
		return false
	}
	if !unconstrained(f.Month) && monthPattern.MatchString(f.Month) && tx.TransactionMonth != f.Month {
		return false
	}
	return true
}

// Apply returns the transactions matching f in their original order. The
// input is never modified.
func (f Filter) Apply(txs []core.CleanedTransaction) []core.CleanedTransaction {
	out := make([]core.CleanedTransaction, 0, len(txs))
	for _, tx := range txs {
		if f.Match(tx) {
			out = append(out, tx)
		}
	}
	return out
}
