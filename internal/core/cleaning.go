package core

import "math"

// CleanTransaction converts a raw record into its typed form.
//
// Customer id, age, transaction date (falling back to the last transaction
// date) and account opening date are mandatory; if any of them fails to parse
// the record is rejected and ok is false. Every other field is parsed with the
// lenient Field Parser defaults, and optional product fields are only set when
// their cell is non-empty.
func CleanTransaction(raw RawRecord) (CleanedTransaction, bool) {
	customerID, ok := ParseCustomerID(raw.CustomerID)
	if !ok {
		return CleanedTransaction{}, false
	}
	age, ok := ParseCustomerAge(raw.Age)
	if !ok || age == 0 {
		return CleanedTransaction{}, false
	}
	txDate, ok := ParseDate(raw.TransactionDate)
	if !ok {
		txDate, ok = ParseDate(raw.LastTransactionDate)
		if !ok {
			return CleanedTransaction{}, false
		}
	}
	openingDate, ok := ParseDate(raw.DateOfAccountOpening)
	if !ok {
		return CleanedTransaction{}, false
	}

	ct := CleanedTransaction{
		CustomerID:     customerID,
		FirstName:      parseOptionalText(raw.FirstName),
		LastName:       parseOptionalText(raw.LastName),
		CustomerAge:    age,
		CustomerGender: NormalizeGender(raw.Gender),
		City:           parseOptionalText(raw.City),
		Email:          parseOptionalText(raw.Email),

		AccountType:        parseOptionalText(raw.AccountType),
		AccountBalance:     ParseAmount(raw.AccountBalance),
		AccountOpeningDate: openingDate,

		TransactionID:       parseOptionalText(raw.TransactionID),
		TransactionDate:     txDate,
		TransactionType:     NormalizeTransactionType(raw.TransactionType),
		TransactionAmount:   ParseAmount(raw.TransactionAmount),
		AccountBalanceAfter: ParseAmount(raw.AccountBalanceAfter),
		BranchID:            parseOptionalText(raw.BranchID),

		TransactionMonth:   FormatDateForGrouping(txDate),
		AccountAgeInMonths: max(0, MonthsBetween(openingDate, txDate)),

		LoanID:     parseOptionalText(raw.LoanID),
		LoanAmount: parseOptionalAmount(raw.LoanAmount),
		LoanType:   parseOptionalText(raw.LoanType),
		LoanStatus: parseOptionalText(raw.LoanStatus),

		CardID:            parseOptionalText(raw.CardID),
		CardType:          parseOptionalText(raw.CardType),
		CreditLimit:       parseOptionalAmount(raw.CreditLimit),
		CreditCardBalance: parseOptionalAmount(raw.CreditCardBalance),
		MinimumPaymentDue: parseOptionalAmount(raw.MinimumPaymentDue),
		PaymentDueDate:    parseOptionalDate(raw.PaymentDueDate),
		RewardsPoints:     parseOptionalNumber(raw.RewardsPoints),

		FeedbackID:       parseOptionalText(raw.FeedbackID),
		FeedbackType:     parseOptionalText(raw.FeedbackType),
		ResolutionStatus: parseOptionalText(raw.ResolutionStatus),
		Anomaly:          parseOptionalText(raw.Anomaly),
	}

	// The parser only returns finite values; the check stays so the invariant
	// holds if the amount parsing ever changes.
	if !isFinite(ct.TransactionAmount) || !isFinite(ct.AccountBalanceAfter) {
		return CleanedTransaction{}, false
	}

	return ct, true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
