package core

import (
	"strconv"
	"strings"
)

// DedupResult is the output of Deduplicate.
type DedupResult struct {
	Unique       []CleanedTransaction
	DuplicateIDs []string
}

// DedupKey returns the key a transaction is tracked under: its trimmed
// transaction id, or customerId-epochMillis-amount when it has none.
func DedupKey(tx CleanedTransaction) string {
	if id := transactionIDKey(tx); id != "" {
		return id
	}
	return strconv.FormatInt(tx.CustomerID, 10) + "-" +
		strconv.FormatInt(tx.TransactionDate.UnixMilli(), 10) + "-" +
		strconv.FormatFloat(tx.TransactionAmount, 'f', -1, 64)
}

// Deduplicate drops every transaction whose id was already accepted earlier
// in txs. Transactions without an id fall back to the composite DedupKey,
// which is never compared, so they are always kept even when otherwise
// identical. Input order is preserved.
func Deduplicate(txs []CleanedTransaction) DedupResult {
	result := DedupResult{
		Unique:       make([]CleanedTransaction, 0, len(txs)),
		DuplicateIDs: []string{},
	}
	seen := make(map[string]struct{}, len(txs))

	for _, tx := range txs {
		if id := transactionIDKey(tx); id != "" {
			if _, dup := seen[id]; dup {
				result.DuplicateIDs = append(result.DuplicateIDs, id)
				continue
			}
			seen[id] = struct{}{}
		}
		result.Unique = append(result.Unique, tx)
	}

	return result
}

func transactionIDKey(tx CleanedTransaction) string {
	if !tx.TransactionID.Valid {
		return ""
	}
	return strings.TrimSpace(tx.TransactionID.String)
}
