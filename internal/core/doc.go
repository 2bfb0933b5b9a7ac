// Package core provides the transaction ingestion and reconciliation pipeline.
//
// This package holds the domain logic independent of any transport. It is
// used by the HTTP service, the CLI and tests without modification.
//
// # Pipeline
//
// A batch flows through these stages, each usable on its own:
//
//   - Mapping: [MapRow] projects a heterogeneous input row onto [RawRecord]
//     by canonical column name; unknown columns are ignored.
//   - Validation: [ValidateTransaction] reports every [ErrorKind] a record
//     violates, in check order.
//   - Cleaning: [CleanTransaction] turns a valid record into a typed
//     [CleanedTransaction] with derived month and account age.
//   - Deduplication: [Deduplicate] keeps the first occurrence of each
//     transaction id.
//   - Reconciliation: [Reconcile] checks each customer's running balance
//     and reports [ReconciliationIssue] values.
//
// [Processor] runs all stages and returns a [ProcessResult]:
//
//	proc := core.NewProcessor(core.WithLogger(logger))
//	result, err := proc.Process(ctx, rows)
//	if err != nil {
//	    return err
//	}
//	logger.Info("batch processed", "valid", result.Stats.ValidRecords)
//
// # Field Parsing
//
// Numbers, dates and text are parsed leniently: currency symbols and
// thousands separators are stripped, several date layouts are accepted, and
// blank or unparsable cells become typed zero values (see [ParseAmount],
// [ParseDate]).
//
// # Error Handling
//
// Technical errors can be mapped to user-facing messages with [MapError],
// which returns a [UserMessage] carrying a stable code such as "VAL001".
package core
