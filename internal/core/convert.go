package core

// convert.go provides the field parsers used by the validator and cleaner.
//
// These functions handle the messy reality of exported banking data:
//   - Currency symbols and thousand separators in amounts ("$1,234.56")
//   - Placeholder values ("N/A", empty cells)
//   - Several date formats (ISO, US M/D/YYYY, "Jan 2, 2006")
//   - Free-text gender and transaction type labels
//
// Every parser is total. Numeric parsers fall back to 0, the rest report
// failure through a boolean so the caller decides what "missing" means.

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// usDateRegex matches M/D/YYYY with one- or two-digit month and day.
var usDateRegex = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)

// Date layouts tried in order. ISO forms first, then the broader fallbacks.
var (
	isoDateLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	fallbackDateLayouts = []string{
		"1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"2006/01/02", "2006.01.02",
		"Jan 2, 2006", "January 2, 2006", "2 Jan 2006", "02-Jan-2006",
		"1/2/06", "01/02/06",
		"1/2/2006 15:04", "1/2/2006 15:04:05",
		time.RFC1123, time.RFC1123Z,
	}
)

// ParseAmount converts a currency-formatted string to a float.
// Empty input and "N/A" yield 0, as does anything that fails to parse.
func ParseAmount(s string) float64 {
	v, _ := parseAmountDetailed(s)
	return v
}

// parseAmountDetailed is ParseAmount plus a flag reporting whether the value
// was substituted with the 0 default.
func parseAmountDetailed(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "N/A") {
		return 0, true
	}

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '+', r == '-', r == 'e', r == 'E':
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return 0, true
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true
	}
	return v, false
}

// ParseDate parses a date in any supported layout. The result is in UTC.
// Returns false when no layout matches.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range isoDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	// M/D/YYYY is normalized the way a calendar would: 2/30/2023 is March 2.
	if m := usDateRegex.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
	}

	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

// ParseCustomerID strips everything but digits and returns the positive id.
func ParseCustomerID(s string) (int64, bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if digits == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ParseCustomerAge strips everything but digits and minus signs; the rest
// must be a single integer in [0, 120].
func ParseCustomerAge(s string) (int, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, s)

	age, err := strconv.Atoi(cleaned)
	if err != nil || age < 0 || age > 120 {
		return 0, false
	}
	return age, true
}

// NormalizeGender maps free-text gender labels to Male, Female, or Other.
func NormalizeGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male", "man":
		return GenderMale
	case "f", "female", "woman":
		return GenderFemale
	default:
		return GenderOther
	}
}

// NormalizeTransactionType maps a free-text type to a TransactionType using
// substring checks. The first matching check wins, so "Deposit Withdrawal"
// is a deposit.
func NormalizeTransactionType(s string) TransactionType {
	lower := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(lower, "deposit"):
		return TxDeposit
	case strings.Contains(lower, "with"):
		return TxWithdrawal
	case strings.Contains(lower, "trans"):
		return TxTransfer
	case strings.Contains(lower, "pay"):
		return TxPayment
	default:
		return TxOther
	}
}

// FormatDateForGrouping returns the "YYYY-MM" month key for t.
func FormatDateForGrouping(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// MonthsBetween returns the calendar month difference from a to b, ignoring
// the day of month. The result is negative when b precedes a.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// parseOptionalText returns a valid pgtype.Text only for non-blank input.
func parseOptionalText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// parseOptionalAmount parses s only when it is non-empty. An empty cell stays
// absent, while a present but unparsable cell becomes 0 like any amount.
func parseOptionalAmount(s string) pgtype.Float8 {
	if strings.TrimSpace(s) == "" {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: ParseAmount(s), Valid: true}
}

// parseOptionalNumber parses a plain number, leaving the value absent when
// the cell is empty or not numeric.
func parseOptionalNumber(s string) pgtype.Float8 {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Float8{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: v, Valid: true}
}

// parseOptionalDate parses s as a date, leaving it absent on failure.
func parseOptionalDate(s string) pgtype.Date {
	t, ok := ParseDate(s)
	if !ok {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: t, Valid: true}
}
