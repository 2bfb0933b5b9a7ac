package core

import (
	"math"
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// ParseAmount Tests
// ----------------------------------------------------------------------------

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"plain integer", "100", 100},
		{"decimal", "123.45", 123.45},
		{"currency with separators", "$1,234.56", 1234.56},
		{"negative", "-250.50", -250.5},
		{"explicit plus", "+75", 75},
		{"scientific notation", "1.5e3", 1500},
		{"surrounding whitespace", "  42.10  ", 42.1},
		{"euro symbol", "€99", 99},
		{"empty", "", 0},
		{"whitespace only", "   ", 0},
		{"N/A", "N/A", 0},
		{"n/a lowercase", "n/a", 0},
		{"letters only", "abc", 0},
		{"double dot", "1.2.3", 0},
		{"overflow", "1e999", 0},
		{"lone sign", "-", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.input)
			if got != tt.want {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if math.IsNaN(got) || math.IsInf(got, 0) {
				t.Errorf("ParseAmount(%q) returned non-finite %v", tt.input, got)
			}
		})
	}
}

func TestParseAmountDetailed(t *testing.T) {
	tests := []struct {
		input         string
		wantDefaulted bool
	}{
		{"0", false},
		{"12.5", false},
		{"", true},
		{"N/A", true},
		{"garbage", true},
	}

	for _, tt := range tests {
		_, defaulted := parseAmountDetailed(tt.input)
		if defaulted != tt.wantDefaulted {
			t.Errorf("parseAmountDetailed(%q) defaulted = %v, want %v", tt.input, defaulted, tt.wantDefaulted)
		}
	}
}

// ----------------------------------------------------------------------------
// ParseDate Tests
// ----------------------------------------------------------------------------

func TestParseDate(t *testing.T) {
	april15 := time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		input  string
		want   time.Time
		wantOK bool
	}{
		{"ISO date", "2023-04-15", april15, true},
		{"US date", "4/15/2023", april15, true},
		{"US date zero padded", "04/15/2023", april15, true},
		{"ISO datetime", "2023-04-15T10:30:00", time.Date(2023, 4, 15, 10, 30, 0, 0, time.UTC), true},
		{"RFC3339 with offset", "2023-04-15T02:00:00+02:00", time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC), true},
		{"US date overflow normalizes", "2/30/2023", time.Date(2023, 3, 2, 0, 0, 0, 0, time.UTC), true},
		{"month name", "Apr 15, 2023", april15, true},
		{"slash ISO", "2023/04/15", april15, true},
		{"surrounding whitespace", " 2023-04-15 ", april15, true},
		{"not a date", "not a date", time.Time{}, false},
		{"empty", "", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// Identifier and Demographic Parsers
// ----------------------------------------------------------------------------

func TestParseCustomerID(t *testing.T) {
	tests := []struct {
		input  string
		want   int64
		wantOK bool
	}{
		{"42", 42, true},
		{"CUST-0042", 42, true},
		{" 7 ", 7, true},
		{"0", 0, false},
		{"", 0, false},
		{"abc", 0, false},
		{"99999999999999999999999", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseCustomerID(tt.input)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseCustomerID(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseCustomerAge(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"35", 35, true},
		{"35 years", 35, true},
		{"0", 0, true},
		{"120", 120, true},
		{"121", 0, false},
		{"-5", 0, false},
		{"", 0, false},
		{"unknown", 0, false},
		{"25-30", 0, false},
		{"30-", 0, false},
		{"2-5", 0, false},
		{"--5", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseCustomerAge(tt.input)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseCustomerAge(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestNormalizeGender(t *testing.T) {
	tests := []struct {
		input string
		want  Gender
	}{
		{"M", GenderMale},
		{"male", GenderMale},
		{"Man", GenderMale},
		{"f", GenderFemale},
		{"FEMALE", GenderFemale},
		{"woman", GenderFemale},
		{"nonbinary", GenderOther},
		{"", GenderOther},
	}

	for _, tt := range tests {
		if got := NormalizeGender(tt.input); got != tt.want {
			t.Errorf("NormalizeGender(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeTransactionType(t *testing.T) {
	tests := []struct {
		input string
		want  TransactionType
	}{
		{"Deposit", TxDeposit},
		{"Withdrawal", TxWithdrawal},
		{"ATM withdraw", TxWithdrawal},
		{"Transfer", TxTransfer},
		{"Bill Payment", TxPayment},
		{"Fee", TxOther},
		{"", TxOther},
		// First matching check wins.
		{"Deposit Withdrawal", TxDeposit},
		{"Transfer with fee", TxWithdrawal},
	}

	for _, tt := range tests {
		if got := NormalizeTransactionType(tt.input); got != tt.want {
			t.Errorf("NormalizeTransactionType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// ----------------------------------------------------------------------------
// Date Helpers
// ----------------------------------------------------------------------------

func TestFormatDateForGrouping(t *testing.T) {
	got := FormatDateForGrouping(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))
	if got != "2024-03" {
		t.Errorf("FormatDateForGrouping = %q, want %q", got, "2024-03")
	}
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same month", date(2023, 4, 1), date(2023, 4, 30), 0},
		{"ignores day", date(2023, 1, 31), date(2023, 2, 1), 1},
		{"across years", date(2021, 11, 15), date(2023, 2, 15), 15},
		{"negative", date(2023, 5, 1), date(2023, 2, 1), -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthsBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("MonthsBetween = %d, want %d", got, tt.want)
			}
		})
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
