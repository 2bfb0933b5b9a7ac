package core

// validation.go provides row-level and dataset-level validation of raw records.
//
// Validation is categorical: each failed check appends one ErrorKind, in a
// fixed order, and the orchestrator folds the kinds into a histogram. The
// checks never stop early, so a row missing several fields reports all of them.

import (
	"math"
	"strconv"
	"strings"
)

// Accepted customer age range for a valid transaction row.
const (
	MinCustomerAge = 18
	MaxCustomerAge = 120
)

// ValidateTransaction runs every row check against raw and returns the
// failures in check order.
func ValidateTransaction(raw RawRecord) ValidationResult {
	var errs []ErrorKind

	if raw.CustomerID == "" {
		errs = append(errs, ErrMissingCustomerID)
	}
	if raw.TransactionDate == "" && raw.LastTransactionDate == "" {
		errs = append(errs, ErrMissingTransactionDate)
	}
	if raw.TransactionAmount == "" {
		errs = append(errs, ErrMissingTransactionAmount)
	}

	// A zero amount is only legitimate when the cell literally says "0".
	amount := ParseAmount(raw.TransactionAmount)
	if amount == 0 && strings.TrimSpace(raw.TransactionAmount) != "0" {
		errs = append(errs, ErrInvalidTransactionAmount)
	}

	if amount < 0 && strings.Contains(strings.ToLower(raw.TransactionType), "deposit") {
		errs = append(errs, ErrNegativeDeposit)
	}

	if !validBalance(raw.AccountBalanceAfter) {
		errs = append(errs, ErrInvalidBalanceAfter)
	}

	if !validAge(raw.Age) {
		errs = append(errs, ErrInvalidCustomerAge)
	}

	return ValidationResult{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: []string{},
	}
}

// validBalance reports whether a post-transaction balance parses to a finite
// number. Unreadable text parses to 0 and passes, like a blank cell.
func validBalance(s string) bool {
	return isFinite(ParseAmount(s))
}

// validAge reports whether s is a whole number within the accepted age range.
func validAge(s string) bool {
	age, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(age) || age != math.Trunc(age) {
		return false
	}
	return age >= MinCustomerAge && age <= MaxCustomerAge
}

// ValidateDataset validates every row and, independently, counts repeated
// transaction ids among the raw rows. The duplicate count includes rows that
// fail validation, so it can differ from the Deduplicator's count.
func ValidateDataset(rows []RawRecord) DatasetSummary {
	summary := DatasetSummary{Total: len(rows)}
	seen := make(map[string]struct{}, len(rows))

	for _, row := range rows {
		if ValidateTransaction(row).Valid {
			summary.Valid++
		} else {
			summary.Invalid++
		}

		id := strings.TrimSpace(row.TransactionID)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			summary.DuplicateRecords++
			continue
		}
		seen[id] = struct{}{}
	}

	return summary
}
