package core

// error_messages.go maps technical errors to user-facing messages with codes
// support staff can look up.
//
// # Validation (VAL001-VAL099)
//
//	VAL001 - Missing Customer ID
//	VAL002 - Missing Transaction Date
//	VAL003 - Missing Transaction Amount
//	VAL004 - Invalid Transaction Amount
//	VAL005 - Deposit amount must be positive
//	VAL006 - Invalid Account Balance After Transaction
//	VAL007 - Invalid Customer Age
//	VAL008 - Failed to clean (customer id, age or a required date unparsable)
//	VAL009 - Invalid customer id in a request path
//
// # File (FILE001-FILE099)
//
//	FILE001 - File too large (size or row limit)
//	FILE002 - Invalid CSV
//	FILE003 - Encoding error
//	FILE004 - No file provided
//	FILE005 - Empty file
//	FILE006 - Missing required column
//
// # Runs (RUN001-RUN099)
//
//	RUN001 - Run not found (expired or never existed)
//
// # Upload (UPL001-UPL099)
//
//	UPL002 - Too many concurrent batches
//	UPL004 - Request cancelled
//	UPL005 - Request timed out
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//
// # Default (ERR000)
//
//	ERR000 - Unknown error; check the logs for the technical error
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"sort"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// Validation (VAL)
	// =========================================================================
	{
		pattern: strings.ToLower(string(ErrMissingCustomerID)),
		msg: UserMessage{
			Message: "A row is missing its Customer ID",
			Action:  "Fill in the Customer ID column for every row",
			Code:    "VAL001",
		},
	},
	{
		pattern: strings.ToLower(string(ErrMissingTransactionDate)),
		msg: UserMessage{
			Message: "A row has no transaction date",
			Action:  "Provide Transaction Date or Last Transaction Date",
			Code:    "VAL002",
		},
	},
	{
		pattern: strings.ToLower(string(ErrMissingTransactionAmount)),
		msg: UserMessage{
			Message: "A row is missing its transaction amount",
			Action:  "Fill in the Transaction Amount column",
			Code:    "VAL003",
		},
	},
	{
		pattern: strings.ToLower(string(ErrInvalidTransactionAmount)),
		msg: UserMessage{
			Message: "A transaction amount could not be read",
			Action:  "Use plain numbers such as 1234.56; currency symbols are allowed",
			Code:    "VAL004",
		},
	},
	{
		pattern: strings.ToLower(string(ErrNegativeDeposit)),
		msg: UserMessage{
			Message: "A deposit has a negative amount",
			Action:  "Record withdrawals with the Withdrawal type instead",
			Code:    "VAL005",
		},
	},
	{
		pattern: strings.ToLower(string(ErrInvalidBalanceAfter)),
		msg: UserMessage{
			Message: "A post-transaction balance could not be read",
			Action:  "Check the Account Balance After Transaction column",
			Code:    "VAL006",
		},
	},
	{
		pattern: strings.ToLower(string(ErrInvalidCustomerAge)),
		msg: UserMessage{
			Message: "A customer age is missing or outside 18-120",
			Action:  "Use whole-number ages between 18 and 120",
			Code:    "VAL007",
		},
	},
	{
		pattern: strings.ToLower(string(ErrCleanFailed)),
		msg: UserMessage{
			Message: "A row could not be converted",
			Action:  "Check the customer id, age, and date columns",
			Code:    "VAL008",
		},
	},
	{
		pattern: "invalid customer id",
		msg: UserMessage{
			Message: "Customer ID must be a positive number",
			Action:  "Check the customer ID in the request",
			Code:    "VAL009",
		},
	},

	// =========================================================================
	// File (FILE)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size or row limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with consistent columns",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save file as UTF-8 encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a CSV file with data rows",
			Code:    "FILE005",
		},
	},
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "The file has none of the expected banking columns",
			Action:  "Check that the header row matches the export format",
			Code:    "FILE006",
		},
	},

	// =========================================================================
	// Runs (RUN)
	// =========================================================================
	{
		pattern: "run not found",
		msg: UserMessage{
			Message: "Processing run not found",
			Action:  "The run may have expired. Please upload the file again",
			Code:    "RUN001",
		},
	},

	// =========================================================================
	// Upload (UPL)
	// =========================================================================
	{
		pattern: "too many concurrent batches",
		msg: UserMessage{
			Message: "System is busy processing other files",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try uploading a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	// =========================================================================
	// Rate limiting (RATE)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. The first
// matching pattern wins; unmatched errors get ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// MapErrorKind returns the user message for a validation error kind.
func MapErrorKind(kind ErrorKind) UserMessage {
	return MapError(fmt.Errorf("%s", kind))
}

// ErrorSummary is one validation histogram entry with its user message.
type ErrorSummary struct {
	Kind     ErrorKind     `json:"kind"`
	Category ErrorCategory `json:"category"`
	Count    int           `json:"count"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Action   string        `json:"action"`
}

// SummarizeValidationErrors attaches user messages to a validation histogram,
// most frequent first. Ties are ordered by kind.
func SummarizeValidationErrors(counts map[ErrorKind]int) []ErrorSummary {
	out := make([]ErrorSummary, 0, len(counts))
	for kind, n := range counts {
		if n == 0 {
			continue
		}
		msg := MapErrorKind(kind)
		out = append(out, ErrorSummary{
			Kind:     kind,
			Category: kind.Category(),
			Count:    n,
			Code:     msg.Code,
			Message:  msg.Message,
			Action:   msg.Action,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
