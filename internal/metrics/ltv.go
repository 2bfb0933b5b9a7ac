package metrics

import (
	"github.com/JonMunkholm/bankrecon/internal/core"
	"github.com/shopspring/decimal"
)

// ltvContribution is a transaction's signed contribution to lifetime value.
// Only deposits and withdrawals count; this is deliberately not the sign
// policy reconciliation uses.
func ltvContribution(tx core.CleanedTransaction) decimal.Decimal {
	amt := decimal.NewFromFloat(tx.TransactionAmount)
	switch tx.TransactionType {
	case core.TxDeposit:
		return amt
	case core.TxWithdrawal:
		return amt.Neg()
	default:
		return decimal.Zero
	}
}

// CustomerLTV returns deposits minus withdrawals for one customer.
func CustomerLTV(customerID int64, txs []core.CleanedTransaction) float64 {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.CustomerID == customerID {
			total = total.Add(ltvContribution(tx))
		}
	}
	return total.InexactFloat64()
}

// LTVByCustomer returns every customer's lifetime value in one pass.
func LTVByCustomer(txs []core.CleanedTransaction) map[int64]float64 {
	totals := make(map[int64]decimal.Decimal)
	for _, tx := range txs {
		totals[tx.CustomerID] = totals[tx.CustomerID].Add(ltvContribution(tx))
	}

	out := make(map[int64]float64, len(totals))
	for id, v := range totals {
		out[id] = v.InexactFloat64()
	}
	return out
}

// Bucket is one labelled [Min, Max) range of a histogram with its count.
// A zero Max leaves the range unbounded above.
type Bucket struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max,omitempty"`
	Count int     `json:"count"`
}

// Contains reports whether v falls in the bucket's range.
func (b Bucket) Contains(v float64) bool {
	return v >= b.Min && (b.Max == 0 || v < b.Max)
}

// LTVBuckets are the fixed dollar ranges used by LTVHistogram.
var LTVBuckets = []Bucket{
	{Label: "$0-$10K", Min: 0, Max: 10_000},
	{Label: "$10K-$50K", Min: 10_000, Max: 50_000},
	{Label: "$50K-$100K", Min: 50_000, Max: 100_000},
	{Label: "$100K-$250K", Min: 100_000, Max: 250_000},
	{Label: "$250K+", Min: 250_000},
}

// LTVHistogram counts customers per LTV bucket. Customers with a negative
// LTV fall in no bucket.
func LTVHistogram(txs []core.CleanedTransaction) []Bucket {
	buckets := make([]Bucket, len(LTVBuckets))
	copy(buckets, LTVBuckets)

	for _, ltv := range LTVByCustomer(txs) {
		for i := range buckets {
			if buckets[i].Contains(ltv) {
				buckets[i].Count++
				break
			}
		}
	}
	return buckets
}
