package metrics

import (
	"math"
	"sort"

	"github.com/JonMunkholm/bankrecon/internal/core"
	"github.com/shopspring/decimal"
)

// UnknownLoanType groups loans that carry an id but no type.
const UnknownLoanType = "Unknown"

// DefaultRewardsBinSize is the bin width used by RewardsHistogram.
const DefaultRewardsBinSize = 1000

// LoanTypeCounts counts loan-bearing transactions per loan type.
func LoanTypeCounts(txs []core.CleanedTransaction) map[string]int {
	counts := make(map[string]int)
	for _, tx := range txs {
		if !tx.LoanID.Valid || tx.LoanID.String == "" || !tx.LoanAmount.Valid {
			continue
		}
		typ := UnknownLoanType
		if tx.LoanType.Valid && tx.LoanType.String != "" {
			typ = tx.LoanType.String
		}
		counts[typ]++
	}
	return counts
}

// LoanStatusCounts counts transactions per loan status.
func LoanStatusCounts(txs []core.CleanedTransaction) map[string]int {
	return textCounts(txs, func(tx core.CleanedTransaction) (string, bool) {
		return tx.LoanStatus.String, tx.LoanStatus.Valid
	})
}

// AverageLoanAmountByStatus averages loan amounts per loan status.
func AverageLoanAmountByStatus(txs []core.CleanedTransaction) map[string]float64 {
	avgs := newAverager()
	for _, tx := range txs {
		if tx.LoanStatus.Valid && tx.LoanStatus.String != "" && tx.LoanAmount.Valid {
			avgs.add(tx.LoanStatus.String, tx.LoanAmount.Float64)
		}
	}
	return avgs.result()
}

// TotalLoanAmount sums every present loan amount.
func TotalLoanAmount(txs []core.CleanedTransaction) float64 {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.LoanAmount.Valid {
			total = total.Add(decimal.NewFromFloat(tx.LoanAmount.Float64))
		}
	}
	return total.InexactFloat64()
}

// CardTypeCounts counts transactions per card type.
func CardTypeCounts(txs []core.CleanedTransaction) map[string]int {
	return textCounts(txs, func(tx core.CleanedTransaction) (string, bool) {
		return tx.CardType.String, tx.CardType.Valid
	})
}

// AverageUtilizationByCardType averages balance/limit per card type over
// cards with a positive credit limit and a known balance.
func AverageUtilizationByCardType(txs []core.CleanedTransaction) map[string]float64 {
	avgs := newAverager()
	for _, tx := range txs {
		if !tx.CardType.Valid || tx.CardType.String == "" {
			continue
		}
		if !tx.CreditLimit.Valid || tx.CreditLimit.Float64 <= 0 || !tx.CreditCardBalance.Valid {
			continue
		}
		avgs.add(tx.CardType.String, tx.CreditCardBalance.Float64/tx.CreditLimit.Float64)
	}
	return avgs.result()
}

// RewardsBin is one bin of the rewards histogram, covering [Floor, Floor+binSize).
type RewardsBin struct {
	Floor int `json:"floor"`
	Count int `json:"count"`
}

// RewardsHistogram counts transactions per rewards-points bin, lowest bin
// first. A non-positive binSize uses DefaultRewardsBinSize.
func RewardsHistogram(txs []core.CleanedTransaction, binSize int) []RewardsBin {
	if binSize <= 0 {
		binSize = DefaultRewardsBinSize
	}

	counts := make(map[int]int)
	for _, tx := range txs {
		if !tx.RewardsPoints.Valid {
			continue
		}
		floor := int(math.Floor(tx.RewardsPoints.Float64/float64(binSize))) * binSize
		counts[floor]++
	}

	bins := make([]RewardsBin, 0, len(counts))
	for floor, c := range counts {
		bins = append(bins, RewardsBin{Floor: floor, Count: c})
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].Floor < bins[j].Floor })
	return bins
}

// ProductMix is the number of distinct customers holding each product at a branch.
type ProductMix struct {
	Branch   string `json:"branch"`
	Accounts int    `json:"accounts"`
	Loans    int    `json:"loans"`
	Cards    int    `json:"cards"`
}

// ProductMixByBranch counts distinct customers with an account, a loan and a
// card per branch, sorted by branch.
func ProductMixByBranch(txs []core.CleanedTransaction) []ProductMix {
	type sets struct {
		accounts, loans, cards map[int64]struct{}
	}
	byBranch := make(map[string]*sets)
	for _, tx := range txs {
		b := branchOf(tx)
		s, ok := byBranch[b]
		if !ok {
			s = &sets{
				accounts: make(map[int64]struct{}),
				loans:    make(map[int64]struct{}),
				cards:    make(map[int64]struct{}),
			}
			byBranch[b] = s
		}
		s.accounts[tx.CustomerID] = struct{}{}
		if tx.LoanID.Valid && tx.LoanID.String != "" {
			s.loans[tx.CustomerID] = struct{}{}
		}
		if tx.CardID.Valid && tx.CardID.String != "" {
			s.cards[tx.CustomerID] = struct{}{}
		}
	}

	out := make([]ProductMix, 0, len(byBranch))
	for b, s := range byBranch {
		out = append(out, ProductMix{Branch: b, Accounts: len(s.accounts), Loans: len(s.loans), Cards: len(s.cards)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Branch < out[j].Branch })
	return out
}

// averager accumulates per-key means.
type averager struct {
	sums   map[string]float64
	counts map[string]int
}

func newAverager() *averager {
	return &averager{sums: make(map[string]float64), counts: make(map[string]int)}
}

func (a *averager) add(key string, v float64) {
	a.sums[key] += v
	a.counts[key]++
}

func (a *averager) result() map[string]float64 {
	out := make(map[string]float64, len(a.sums))
	for k, sum := range a.sums {
		out[k] = sum / float64(a.counts[k])
	}
	return out
}
