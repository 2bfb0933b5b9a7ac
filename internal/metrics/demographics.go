package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JonMunkholm/bankrecon/internal/core"
	"github.com/shopspring/decimal"
)

// DefaultAgeBands are the inclusive upper bounds of the customer age bands.
var DefaultAgeBands = []int{18, 25, 35, 45, 55, 65, 75, 100}

// UnknownCity groups transactions without a city.
const UnknownCity = "Unknown"

// DefaultTopCities is the number of cities TopCities returns for n <= 0.
const DefaultTopCities = 10

// AgeBands counts transactions per customer age band. bands are ascending
// inclusive upper bounds; each band is labelled "lo-hi" where lo is one past
// the previous bound. Ages below the first bound are labelled "<first" and
// ages above the last bound are counted in the last band.
func AgeBands(txs []core.CleanedTransaction, bands []int) map[string]int {
	if len(bands) == 0 {
		bands = DefaultAgeBands
	}

	counts := make(map[string]int)
	for _, tx := range txs {
		counts[ageBandLabel(tx.CustomerAge, bands)]++
	}
	return counts
}

func ageBandLabel(age int, bands []int) string {
	if age < bands[0] {
		return fmt.Sprintf("<%d", bands[0])
	}
	idx := len(bands) - 1
	for i, b := range bands {
		if age <= b {
			idx = i
			break
		}
	}
	if idx == 0 {
		return fmt.Sprintf("%d-%d", bands[0], bands[0])
	}
	return fmt.Sprintf("%d-%d", bands[idx-1]+1, bands[idx])
}

// GenderCounts counts transactions per normalized gender.
func GenderCounts(txs []core.CleanedTransaction) map[core.Gender]int {
	counts := make(map[core.Gender]int)
	for _, tx := range txs {
		counts[tx.CustomerGender]++
	}
	return counts
}

// CityCount is a city with its transaction count.
type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

// TopCities returns the n cities with the most transactions, most active
// first. Ties are broken by city name. Transactions without a city are
// ignored.
func TopCities(txs []core.CleanedTransaction, n int) []CityCount {
	if n <= 0 {
		n = DefaultTopCities
	}

	counts := textCounts(txs, func(tx core.CleanedTransaction) (string, bool) {
		return tx.City.String, tx.City.Valid
	})

	cities := make([]CityCount, 0, len(counts))
	for city, c := range counts {
		cities = append(cities, CityCount{City: city, Count: c})
	}
	sort.Slice(cities, func(i, j int) bool {
		if cities[i].Count != cities[j].Count {
			return cities[i].Count > cities[j].Count
		}
		return cities[i].City < cities[j].City
	})

	if len(cities) > n {
		cities = cities[:n]
	}
	return cities
}

// CityVolume is a city's summed transaction amount and distinct customers.
type CityVolume struct {
	City      string  `json:"city"`
	Volume    float64 `json:"volume"`
	Customers int     `json:"customers"`
}

// VolumeByCity sums transaction amounts per city, largest volume first.
// Transactions without a city are grouped under "Unknown".
func VolumeByCity(txs []core.CleanedTransaction) []CityVolume {
	type acc struct {
		volume    decimal.Decimal
		customers map[int64]struct{}
	}
	byCity := make(map[string]*acc)
	for _, tx := range txs {
		city := UnknownCity
		if tx.City.Valid && strings.TrimSpace(tx.City.String) != "" {
			city = tx.City.String
		}
		a, ok := byCity[city]
		if !ok {
			a = &acc{customers: make(map[int64]struct{})}
			byCity[city] = a
		}
		a.volume = a.volume.Add(decimal.NewFromFloat(tx.TransactionAmount))
		a.customers[tx.CustomerID] = struct{}{}
	}

	out := make([]CityVolume, 0, len(byCity))
	for city, a := range byCity {
		out = append(out, CityVolume{City: city, Volume: a.volume.InexactFloat64(), Customers: len(a.customers)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Volume != out[j].Volume {
			return out[i].Volume > out[j].Volume
		}
		return out[i].City < out[j].City
	})
	return out
}

// AccountTypeCounts counts transactions per account type.
func AccountTypeCounts(txs []core.CleanedTransaction) map[string]int {
	return textCounts(txs, func(tx core.CleanedTransaction) (string, bool) {
		return tx.AccountType.String, tx.AccountType.Valid
	})
}

// textCounts counts the non-empty values returned by field.
func textCounts(txs []core.CleanedTransaction, field func(core.CleanedTransaction) (string, bool)) map[string]int {
	counts := make(map[string]int)
	for _, tx := range txs {
		if v, ok := field(tx); ok && v != "" {
			counts[v]++
		}
	}
	return counts
}
