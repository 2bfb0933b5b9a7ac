package metrics

import (
	"sort"

	"github.com/JonMunkholm/bankrecon/internal/core"
)

// BranchChange compares one branch's volume across the two latest months.
type BranchChange struct {
	Branch    string  `json:"branch"`
	Current   float64 `json:"current"`
	Previous  float64 `json:"previous"`
	ChangePct float64 `json:"changePct"`
}

// Comparison is the current-versus-previous month volume per branch.
type Comparison struct {
	CurrentMonth  string         `json:"currentMonth"`
	PreviousMonth string         `json:"previousMonth,omitempty"`
	Branches      []BranchChange `json:"branches"`
}

// BranchComparison compares branch volumes between the two most recent
// distinct transaction months present in txs. Every branch in txs gets an
// entry, largest current volume first. ChangePct is zero when the previous
// volume is zero.
func BranchComparison(txs []core.CleanedTransaction) Comparison {
	current, previous := latestMonths(txs)
	cmp := Comparison{CurrentMonth: current, PreviousMonth: previous, Branches: []BranchChange{}}
	if current == "" {
		return cmp
	}

	volumes := MonthlyVolumeByBranch(txs)
	seen := make(map[string]struct{})
	for _, tx := range txs {
		seen[branchOf(tx)] = struct{}{}
	}

	for branch := range seen {
		bc := BranchChange{
			Branch:   branch,
			Current:  volumes[BranchMonth{Branch: branch, Month: current}],
			Previous: volumes[BranchMonth{Branch: branch, Month: previous}],
		}
		if bc.Previous != 0 {
			bc.ChangePct = (bc.Current - bc.Previous) / bc.Previous * 100
		}
		cmp.Branches = append(cmp.Branches, bc)
	}
	sort.Slice(cmp.Branches, func(i, j int) bool {
		a, b := cmp.Branches[i], cmp.Branches[j]
		if a.Current != b.Current {
			return a.Current > b.Current
		}
		return a.Branch < b.Branch
	})
	return cmp
}

// latestMonths returns the two greatest distinct TransactionMonth values.
// "YYYY-MM" strings sort chronologically.
func latestMonths(txs []core.CleanedTransaction) (current, previous string) {
	for _, tx := range txs {
		m := tx.TransactionMonth
		switch {
		case m == current || m == previous:
		case m > current:
			current, previous = m, current
		case m > previous:
			previous = m
		}
	}
	return current, previous
}
