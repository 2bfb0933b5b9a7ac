package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Canonical column names as they appear in the source header row.
const (
	ColCustomerID            = "Customer ID"
	ColFirstName             = "First Name"
	ColLastName              = "Last Name"
	ColAge                   = "Age"
	ColGender                = "Gender"
	ColAddress               = "Address"
	ColCity                  = "City"
	ColContactNumber         = "Contact Number"
	ColEmail                 = "Email"
	ColAccountType           = "Account Type"
	ColAccountBalance        = "Account Balance"
	ColDateOfAccountOpening  = "Date Of Account Opening"
	ColLastTransactionDate   = "Last Transaction Date"
	ColTransactionID         = "TransactionID"
	ColTransactionDate       = "Transaction Date"
	ColTransactionType       = "Transaction Type"
	ColTransactionAmount     = "Transaction Amount"
	ColAccountBalanceAfter   = "Account Balance After Transaction"
	ColBranchID              = "Branch ID"
	ColLoanID                = "Loan ID"
	ColLoanAmount            = "Loan Amount"
	ColLoanType              = "Loan Type"
	ColInterestRate          = "Interest Rate"
	ColLoanTerm              = "Loan Term"
	ColApprovalRejectionDate = "Approval/Rejection Date"
	ColLoanStatus            = "Loan Status"
	ColCardID                = "CardID"
	ColCardType              = "Card Type"
	ColCreditLimit           = "Credit Limit"
	ColCreditCardBalance     = "Credit Card Balance"
	ColMinimumPaymentDue     = "Minimum Payment Due"
	ColPaymentDueDate        = "Payment Due Date"
	ColLastCreditCardPayment = "Last Credit Card Payment Date"
	ColRewardsPoints         = "Rewards Points"
	ColFeedbackID            = "Feedback ID"
	ColFeedbackDate          = "Feedback Date"
	ColFeedbackType          = "Feedback Type"
	ColResolutionStatus      = "Resolution Status"
	ColResolutionDate        = "Resolution Date"
	ColAnomaly               = "Anomaly"
)

// fieldBinding ties a column name to the RawRecord field it populates.
type fieldBinding struct {
	name string
	ptr  func(*RawRecord) *string
}

// fieldBindings lists every canonical column in header order.
var fieldBindings = []fieldBinding{
	{ColCustomerID, func(r *RawRecord) *string { return &r.CustomerID }},
	{ColFirstName, func(r *RawRecord) *string { return &r.FirstName }},
	{ColLastName, func(r *RawRecord) *string { return &r.LastName }},
	{ColAge, func(r *RawRecord) *string { return &r.Age }},
	{ColGender, func(r *RawRecord) *string { return &r.Gender }},
	{ColAddress, func(r *RawRecord) *string { return &r.Address }},
	{ColCity, func(r *RawRecord) *string { return &r.City }},
	{ColContactNumber, func(r *RawRecord) *string { return &r.ContactNumber }},
	{ColEmail, func(r *RawRecord) *string { return &r.Email }},
	{ColAccountType, func(r *RawRecord) *string { return &r.AccountType }},
	{ColAccountBalance, func(r *RawRecord) *string { return &r.AccountBalance }},
	{ColDateOfAccountOpening, func(r *RawRecord) *string { return &r.DateOfAccountOpening }},
	{ColLastTransactionDate, func(r *RawRecord) *string { return &r.LastTransactionDate }},
	{ColTransactionID, func(r *RawRecord) *string { return &r.TransactionID }},
	{ColTransactionDate, func(r *RawRecord) *string { return &r.TransactionDate }},
	{ColTransactionType, func(r *RawRecord) *string { return &r.TransactionType }},
	{ColTransactionAmount, func(r *RawRecord) *string { return &r.TransactionAmount }},
	{ColAccountBalanceAfter, func(r *RawRecord) *string { return &r.AccountBalanceAfter }},
	{ColBranchID, func(r *RawRecord) *string { return &r.BranchID }},
	{ColLoanID, func(r *RawRecord) *string { return &r.LoanID }},
	{ColLoanAmount, func(r *RawRecord) *string { return &r.LoanAmount }},
	{ColLoanType, func(r *RawRecord) *string { return &r.LoanType }},
	{ColInterestRate, func(r *RawRecord) *string { return &r.InterestRate }},
	{ColLoanTerm, func(r *RawRecord) *string { return &r.LoanTerm }},
	{ColApprovalRejectionDate, func(r *RawRecord) *string { return &r.ApprovalRejectionDate }},
	{ColLoanStatus, func(r *RawRecord) *string { return &r.LoanStatus }},
	{ColCardID, func(r *RawRecord) *string { return &r.CardID }},
	{ColCardType, func(r *RawRecord) *string { return &r.CardType }},
	{ColCreditLimit, func(r *RawRecord) *string { return &r.CreditLimit }},
	{ColCreditCardBalance, func(r *RawRecord) *string { return &r.CreditCardBalance }},
	{ColMinimumPaymentDue, func(r *RawRecord) *string { return &r.MinimumPaymentDue }},
	{ColPaymentDueDate, func(r *RawRecord) *string { return &r.PaymentDueDate }},
	{ColLastCreditCardPayment, func(r *RawRecord) *string { return &r.LastCreditCardPayment }},
	{ColRewardsPoints, func(r *RawRecord) *string { return &r.RewardsPoints }},
	{ColFeedbackID, func(r *RawRecord) *string { return &r.FeedbackID }},
	{ColFeedbackDate, func(r *RawRecord) *string { return &r.FeedbackDate }},
	{ColFeedbackType, func(r *RawRecord) *string { return &r.FeedbackType }},
	{ColResolutionStatus, func(r *RawRecord) *string { return &r.ResolutionStatus }},
	{ColResolutionDate, func(r *RawRecord) *string { return &r.ResolutionDate }},
	{ColAnomaly, func(r *RawRecord) *string { return &r.Anomaly }},
}

// FieldNames returns the canonical column names in header order.
func FieldNames() []string {
	names := make([]string, len(fieldBindings))
	for i, b := range fieldBindings {
		names[i] = b.name
	}
	return names
}

// IsCanonicalField reports whether name is one of the canonical columns.
func IsCanonicalField(name string) bool {
	for _, b := range fieldBindings {
		if b.name == name {
			return true
		}
	}
	return false
}

// MapRow projects an arbitrary keyed row onto a RawRecord. Unknown keys are
// ignored and missing or nil values become empty strings.
func MapRow(row map[string]any) RawRecord {
	var rec RawRecord
	for _, b := range fieldBindings {
		*b.ptr(&rec) = stringify(row[b.name])
	}
	return rec
}

// MapStringRow is MapRow for rows that are already all strings, such as the
// output of a header-driven CSV reader.
func MapStringRow(row map[string]string) RawRecord {
	var rec RawRecord
	for _, b := range fieldBindings {
		*b.ptr(&rec) = row[b.name]
	}
	return rec
}

// stringify coerces a loosely-typed cell value to its string form.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}
