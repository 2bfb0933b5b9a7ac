package metrics

import (
	"math"

	"github.com/JonMunkholm/bankrecon/internal/core"
)

// DefaultAnomalyThreshold is the z-score at which a transaction is flagged.
const DefaultAnomalyThreshold = 2.0

// Anomaly is a transaction whose amount is unusual for its customer.
type Anomaly struct {
	Transaction core.CleanedTransaction `json:"transaction"`
	Mean        float64                 `json:"mean"`
	StdDev      float64                 `json:"stdDev"`
	ZScore      float64                 `json:"zScore"`
}

// customerStats is the population mean and standard deviation of one
// customer's transaction amounts.
type customerStats struct {
	mean, std float64
}

func amountStats(txs []core.CleanedTransaction) map[int64]customerStats {
	type acc struct {
		sum, sumSq float64
		n          int
	}
	accs := make(map[int64]*acc)
	for _, tx := range txs {
		a, ok := accs[tx.CustomerID]
		if !ok {
			a = &acc{}
			accs[tx.CustomerID] = a
		}
		a.sum += tx.TransactionAmount
		a.n++
	}
	means := make(map[int64]float64, len(accs))
	for id, a := range accs {
		means[id] = a.sum / float64(a.n)
	}
	// Second pass over deviations keeps the variance exact for small ledgers.
	for _, tx := range txs {
		d := tx.TransactionAmount - means[tx.CustomerID]
		accs[tx.CustomerID].sumSq += d * d
	}

	out := make(map[int64]customerStats, len(accs))
	for id, a := range accs {
		out[id] = customerStats{mean: means[id], std: math.Sqrt(a.sumSq / float64(a.n))}
	}
	return out
}

// ZScore returns how many population standard deviations amount lies from
// mean. A zero standard deviation yields 0.
func ZScore(amount, mean, std float64) float64 {
	if std == 0 {
		return 0
	}
	return math.Abs(amount-mean) / std
}

// DetectAnomalies flags transactions whose amount has a z-score of at least
// threshold against the same customer's amounts. Customers whose amounts do
// not vary are never flagged. A non-positive threshold uses the default.
// Results keep input order.
func DetectAnomalies(txs []core.CleanedTransaction, threshold float64) []Anomaly {
	if threshold <= 0 {
		threshold = DefaultAnomalyThreshold
	}
	stats := amountStats(txs)

	anomalies := []Anomaly{}
	for _, tx := range txs {
		s := stats[tx.CustomerID]
		if s.std == 0 {
			continue
		}
		z := ZScore(tx.TransactionAmount, s.mean, s.std)
		if z >= threshold {
			anomalies = append(anomalies, Anomaly{
				Transaction: tx,
				Mean:        s.mean,
				StdDev:      s.std,
				ZScore:      z,
			})
		}
	}
	return anomalies
}
