package core

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// RawRecord is one input row projected onto the canonical banking columns.
// Every field holds the original text; absent values are empty strings.
type RawRecord struct {
	CustomerID            string `json:"Customer ID"`
	FirstName             string `json:"First Name"`
	LastName              string `json:"Last Name"`
	Age                   string `json:"Age"`
	Gender                string `json:"Gender"`
	Address               string `json:"Address"`
	City                  string `json:"City"`
	ContactNumber         string `json:"Contact Number"`
	Email                 string `json:"Email"`
	AccountType           string `json:"Account Type"`
	AccountBalance        string `json:"Account Balance"`
	DateOfAccountOpening  string `json:"Date Of Account Opening"`
	LastTransactionDate   string `json:"Last Transaction Date"`
	TransactionID         string `json:"TransactionID"`
	TransactionDate       string `json:"Transaction Date"`
	TransactionType       string `json:"Transaction Type"`
	TransactionAmount     string `json:"Transaction Amount"`
	AccountBalanceAfter   string `json:"Account Balance After Transaction"`
	BranchID              string `json:"Branch ID"`
	LoanID                string `json:"Loan ID"`
	LoanAmount            string `json:"Loan Amount"`
	LoanType              string `json:"Loan Type"`
	InterestRate          string `json:"Interest Rate"`
	LoanTerm              string `json:"Loan Term"`
	ApprovalRejectionDate string `json:"Approval/Rejection Date"`
	LoanStatus            string `json:"Loan Status"`
	CardID                string `json:"CardID"`
	CardType              string `json:"Card Type"`
	CreditLimit           string `json:"Credit Limit"`
	CreditCardBalance     string `json:"Credit Card Balance"`
	MinimumPaymentDue     string `json:"Minimum Payment Due"`
	PaymentDueDate        string `json:"Payment Due Date"`
	LastCreditCardPayment string `json:"Last Credit Card Payment Date"`
	RewardsPoints         string `json:"Rewards Points"`
	FeedbackID            string `json:"Feedback ID"`
	FeedbackDate          string `json:"Feedback Date"`
	FeedbackType          string `json:"Feedback Type"`
	ResolutionStatus      string `json:"Resolution Status"`
	ResolutionDate        string `json:"Resolution Date"`
	Anomaly               string `json:"Anomaly"`
}

// Gender is the normalized customer gender.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// TransactionType is the normalized transaction category.
type TransactionType string

const (
	TxDeposit    TransactionType = "deposit"
	TxWithdrawal TransactionType = "withdrawal"
	TxTransfer   TransactionType = "transfer"
	TxPayment    TransactionType = "payment"
	TxOther      TransactionType = "other"
)

// CleanedTransaction is the typed form of a RawRecord that passed cleaning.
// Optional fields use pgtype values; Valid=false means the source cell was empty
// or unparsable.
type CleanedTransaction struct {
	CustomerID     int64       `json:"customerId"`
	FirstName      pgtype.Text `json:"firstName"`
	LastName       pgtype.Text `json:"lastName"`
	CustomerAge    int         `json:"customerAge"`
	CustomerGender Gender      `json:"customerGender"`
	City           pgtype.Text `json:"city"`
	Email          pgtype.Text `json:"email"`

	AccountType        pgtype.Text `json:"accountType"`
	AccountBalance     float64     `json:"accountBalance"`
	AccountOpeningDate time.Time   `json:"accountOpeningDate"`

	TransactionID       pgtype.Text     `json:"transactionId"`
	TransactionDate     time.Time       `json:"transactionDate"`
	TransactionType     TransactionType `json:"transactionType"`
	TransactionAmount   float64         `json:"transactionAmount"`
	AccountBalanceAfter float64         `json:"accountBalanceAfter"`
	BranchID            pgtype.Text     `json:"branchId"`

	TransactionMonth   string `json:"transactionMonth"`
	AccountAgeInMonths int    `json:"accountAgeInMonths"`

	LoanID     pgtype.Text   `json:"loanId"`
	LoanAmount pgtype.Float8 `json:"loanAmount"`
	LoanType   pgtype.Text   `json:"loanType"`
	LoanStatus pgtype.Text   `json:"loanStatus"`

	CardID            pgtype.Text   `json:"cardId"`
	CardType          pgtype.Text   `json:"cardType"`
	CreditLimit       pgtype.Float8 `json:"creditLimit"`
	CreditCardBalance pgtype.Float8 `json:"creditCardBalance"`
	MinimumPaymentDue pgtype.Float8 `json:"minimumPaymentDue"`
	PaymentDueDate    pgtype.Date   `json:"paymentDueDate"`
	RewardsPoints     pgtype.Float8 `json:"rewardsPoints"`

	FeedbackID       pgtype.Text `json:"feedbackId"`
	FeedbackType     pgtype.Text `json:"feedbackType"`
	ResolutionStatus pgtype.Text `json:"resolutionStatus"`
	Anomaly          pgtype.Text `json:"anomaly"`
}

// ErrorKind is a categorical validation failure. The string value is the
// human-readable label used as the histogram key in ProcessingStats.
type ErrorKind string

const (
	ErrMissingCustomerID        ErrorKind = "Missing Customer ID"
	ErrMissingTransactionDate   ErrorKind = "Missing Transaction Date"
	ErrMissingTransactionAmount ErrorKind = "Missing Transaction Amount"
	ErrInvalidTransactionAmount ErrorKind = "Invalid Transaction Amount"
	ErrNegativeDeposit          ErrorKind = "Deposit amount must be positive"
	ErrInvalidBalanceAfter      ErrorKind = "Invalid Account Balance After Transaction"
	ErrInvalidCustomerAge       ErrorKind = "Invalid Customer Age"
	ErrCleanFailed              ErrorKind = "Failed to clean"
)

// ErrorCategory groups error kinds for reporting.
type ErrorCategory string

const (
	CategoryMissingField   ErrorCategory = "MissingField"
	CategoryInvalidAmount  ErrorCategory = "InvalidAmount"
	CategoryInvalidSign    ErrorCategory = "InvalidSign"
	CategoryInvalidBalance ErrorCategory = "InvalidBalance"
	CategoryInvalidAge     ErrorCategory = "InvalidAge"
	CategoryCleanFailure   ErrorCategory = "CleanFailure"
)

// Category returns the reporting category for the error kind.
func (k ErrorKind) Category() ErrorCategory {
	switch k {
	case ErrMissingCustomerID, ErrMissingTransactionDate, ErrMissingTransactionAmount:
		return CategoryMissingField
	case ErrInvalidTransactionAmount:
		return CategoryInvalidAmount
	case ErrNegativeDeposit:
		return CategoryInvalidSign
	case ErrInvalidBalanceAfter:
		return CategoryInvalidBalance
	case ErrInvalidCustomerAge:
		return CategoryInvalidAge
	default:
		return CategoryCleanFailure
	}
}

// ValidationResult is the outcome of validating one RawRecord.
// Errors are in check order; Warnings is reserved and always empty.
type ValidationResult struct {
	Valid    bool        `json:"valid"`
	Errors   []ErrorKind `json:"errors"`
	Warnings []string    `json:"warnings"`
}

// DatasetSummary is the result of ValidateDataset.
type DatasetSummary struct {
	Total            int `json:"total"`
	Valid            int `json:"valid"`
	Invalid          int `json:"invalid"`
	DuplicateRecords int `json:"duplicateRecords"`
}

// ReconciliationIssue records a post-transaction balance that disagrees with
// the balance implied by the customer's previous transaction.
type ReconciliationIssue struct {
	CustomerID      int64   `json:"customerId"`
	TxIndex         int     `json:"txIndex"`
	ExpectedBalance float64 `json:"expectedBalance"`
	ActualBalance   float64 `json:"actualBalance"`
}

// StageTiming is the duration of one pipeline stage.
type StageTiming struct {
	Stage      string `json:"stage"`
	DurationMs int64  `json:"durationMs"`
}

// ProcessingStats summarizes one pipeline run.
type ProcessingStats struct {
	TotalRecords         int                   `json:"totalRecords"`
	ValidRecords         int                   `json:"validRecords"`
	InvalidRecords       int                   `json:"invalidRecords"`
	DuplicateRecords     int                   `json:"duplicateRecords"`
	ProcessingTimeMs     int64                 `json:"processingTime"`
	ValidationErrors     map[ErrorKind]int     `json:"validationErrors"`
	ReconciliationIssues []ReconciliationIssue `json:"reconciliationIssues"`
	Stages               []StageTiming         `json:"stages,omitempty"`
}

// ProcessResult is everything the orchestrator produces for one batch.
type ProcessResult struct {
	Cleaned      []CleanedTransaction `json:"cleaned"`
	Stats        ProcessingStats      `json:"stats"`
	DuplicateIDs []string             `json:"duplicateIds"`
	Dataset      DatasetSummary       `json:"dataset"`
}

// Clock supplies the current time. Tests inject a fake to get deterministic
// processing times.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
