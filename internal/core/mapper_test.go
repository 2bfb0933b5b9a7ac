package core

import (
	"testing"
	"time"
)

func TestFieldNames(t *testing.T) {
	names := FieldNames()
	if len(names) != 40 {
		t.Fatalf("len(FieldNames()) = %d, want 40", len(names))
	}
	if names[0] != ColCustomerID || names[len(names)-1] != ColAnomaly {
		t.Errorf("FieldNames() order = %q ... %q", names[0], names[len(names)-1])
	}

	seen := make(map[string]bool)
	for _, n := range names {
		if seen[n] {
			t.Errorf("duplicate field name %q", n)
		}
		seen[n] = true
	}
}

func TestMapRow(t *testing.T) {
	row := map[string]any{
		"Customer ID":        1001,
		"Age":                int64(42),
		"Transaction Amount": 19.99,
		"Anomaly":            true,
		"Transaction Date":   time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
		"First Name":         nil,
		"Not A Column":       "ignored",
	}

	rec := MapRow(row)

	tests := []struct {
		field string
		got   string
		want  string
	}{
		{"CustomerID", rec.CustomerID, "1001"},
		{"Age", rec.Age, "42"},
		{"TransactionAmount", rec.TransactionAmount, "19.99"},
		{"Anomaly", rec.Anomaly, "true"},
		{"TransactionDate", rec.TransactionDate, "2023-04-15"},
		{"FirstName", rec.FirstName, ""},
		{"Email", rec.Email, ""},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.field, tt.got, tt.want)
		}
	}
}

func TestMapStringRow(t *testing.T) {
	rec := MapStringRow(map[string]string{
		"Customer ID":                       "7",
		"Account Balance After Transaction": "1,000",
		"Approval/Rejection Date":           "2023-01-01",
	})

	if rec.CustomerID != "7" || rec.AccountBalanceAfter != "1,000" || rec.ApprovalRejectionDate != "2023-01-01" {
		t.Errorf("MapStringRow = %+v", rec)
	}
}

func TestIsCanonicalField(t *testing.T) {
	if !IsCanonicalField(ColTransactionID) || IsCanonicalField("transactionid") {
		t.Error("IsCanonicalField should match exact column names only")
	}
}
