package metrics

import (
	"context"
	"sort"

	"github.com/JonMunkholm/bankrecon/internal/core"
	"golang.org/x/sync/errgroup"
)

// Options tunes Compute. Zero values select the package defaults.
type Options struct {
	Filter           Filter
	AnomalyThreshold float64
	TopCities        int
	AgeBands         []int
	RewardsBinSize   int
}

// BranchVolume is one entry of the branch/month volume table.
type BranchVolume struct {
	Branch string  `json:"branch"`
	Month  string  `json:"month"`
	Volume float64 `json:"volume"`
}

// Report gathers every aggregate for one (optionally filtered) batch.
type Report struct {
	Filter       Filter  `json:"filter"`
	Transactions int     `json:"transactions"`
	Summary      Summary `json:"summary"`

	VolumeByBranch    []BranchVolume               `json:"volumeByBranch"`
	MonthlyVolume     map[string]float64           `json:"monthlyVolume"`
	DepositWithdrawal map[string]DepositWithdrawal `json:"depositWithdrawal"`
	BranchComparison  Comparison                   `json:"branchComparison"`
	VolumeByCity      []CityVolume                 `json:"volumeByCity"`
	ProductMix        []ProductMix                 `json:"productMix"`

	AgeBands     map[string]int      `json:"ageBands"`
	Genders      map[core.Gender]int `json:"genders"`
	TopCities    []CityCount         `json:"topCities"`
	AccountTypes map[string]int      `json:"accountTypes"`

	LoanTypes         map[string]int     `json:"loanTypes"`
	LoanStatuses      map[string]int     `json:"loanStatuses"`
	AvgLoanByStatus   map[string]float64 `json:"avgLoanByStatus"`
	CardTypes         map[string]int     `json:"cardTypes"`
	UtilizationByCard map[string]float64 `json:"utilizationByCard"`
	RewardsHistogram  []RewardsBin       `json:"rewardsHistogram"`

	LTVHistogram []Bucket  `json:"ltvHistogram"`
	Anomalies    []Anomaly `json:"anomalies"`
}

// Compute filters txs and runs every aggregate concurrently. Each goroutine
// writes a distinct Report field, so no locking is needed.
func Compute(ctx context.Context, txs []core.CleanedTransaction, opts Options) (*Report, error) {
	data := txs
	if !opts.Filter.IsZero() {
		data = opts.Filter.Apply(txs)
	}

	r := &Report{Filter: opts.Filter, Transactions: len(data)}

	g, ctx := errgroup.WithContext(ctx)
	run := func(fn func()) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}

	run(func() { r.Summary = Summarize(data) })
	run(func() { r.VolumeByBranch = branchVolumes(MonthlyVolumeByBranch(data)) })
	run(func() { r.MonthlyVolume = TotalMonthlyVolume(data) })
	run(func() { r.DepositWithdrawal = DepositWithdrawalByMonth(data) })
	run(func() { r.BranchComparison = BranchComparison(data) })
	run(func() { r.VolumeByCity = VolumeByCity(data) })
	run(func() { r.ProductMix = ProductMixByBranch(data) })
	run(func() { r.AgeBands = AgeBands(data, opts.AgeBands) })
	run(func() { r.Genders = GenderCounts(data) })
	run(func() { r.TopCities = TopCities(data, opts.TopCities) })
	run(func() { r.AccountTypes = AccountTypeCounts(data) })
	run(func() { r.LoanTypes = LoanTypeCounts(data) })
	run(func() { r.LoanStatuses = LoanStatusCounts(data) })
	run(func() { r.AvgLoanByStatus = AverageLoanAmountByStatus(data) })
	run(func() { r.CardTypes = CardTypeCounts(data) })
	run(func() { r.UtilizationByCard = AverageUtilizationByCardType(data) })
	run(func() { r.RewardsHistogram = RewardsHistogram(data, opts.RewardsBinSize) })
	run(func() { r.LTVHistogram = LTVHistogram(data) })
	run(func() { r.Anomalies = DetectAnomalies(data, opts.AnomalyThreshold) })

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return r, nil
}

// branchVolumes flattens the volume map, ordered by branch then month.
func branchVolumes(m map[BranchMonth]float64) []BranchVolume {
	out := make([]BranchVolume, 0, len(m))
	for k, v := range m {
		out = append(out, BranchVolume{Branch: k.Branch, Month: k.Month, Volume: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Branch != out[j].Branch {
			return out[i].Branch < out[j].Branch
		}
		return out[i].Month < out[j].Month
	})
	return out
}
