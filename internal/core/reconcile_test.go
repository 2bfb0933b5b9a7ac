package core

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func ledgerTx(customer int64, day int, typ TransactionType, amount, before, after float64) CleanedTransaction {
	return CleanedTransaction{
		CustomerID:          customer,
		TransactionDate:     time.Date(2023, 4, day, 0, 0, 0, 0, time.UTC),
		TransactionType:     typ,
		TransactionAmount:   amount,
		AccountBalance:      before,
		AccountBalanceAfter: after,
	}
}

// consistentLedger is a three-transaction ledger for one customer, given out
// of date order.
func consistentLedger(customer int64) []CleanedTransaction {
	return []CleanedTransaction{
		ledgerTx(customer, 3, TxTransfer, 50, 1000, 1250),
		ledgerTx(customer, 1, TxDeposit, 500, 1000, 1500),
		ledgerTx(customer, 2, TxWithdrawal, 300, 1000, 1200),
	}
}

func TestReconcile_ConsistentLedger(t *testing.T) {
	issues, err := Reconcile(context.Background(), consistentLedger(1), ReconcileOptions{})
	if err != nil {
		t.Fatalf("Reconcile error = %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("issues = %+v, want none", issues)
	}
}

func TestReconcile_SingleMismatch(t *testing.T) {
	txs := consistentLedger(1)
	// The day 3 transfer is last chronologically, so nothing follows it.
	txs[0].AccountBalanceAfter = 1300

	issues, err := Reconcile(context.Background(), txs, ReconcileOptions{})
	if err != nil {
		t.Fatalf("Reconcile error = %v", err)
	}

	want := []ReconciliationIssue{{CustomerID: 1, TxIndex: 2, ExpectedBalance: 1250, ActualBalance: 1300}}
	if !reflect.DeepEqual(issues, want) {
		t.Errorf("issues = %+v, want %+v", issues, want)
	}
}

func TestReconcile_Tolerance(t *testing.T) {
	txs := []CleanedTransaction{ledgerTx(1, 1, TxDeposit, 100, 0, 101)}

	issues, _ := Reconcile(context.Background(), txs, ReconcileOptions{})
	if len(issues) != 0 {
		t.Errorf("difference of exactly 1.0 flagged: %+v", issues)
	}

	txs[0].AccountBalanceAfter = 101.5
	issues, _ = Reconcile(context.Background(), txs, ReconcileOptions{})
	if len(issues) != 1 {
		t.Errorf("difference of 1.5 not flagged")
	}

	issues, _ = Reconcile(context.Background(), txs, ReconcileOptions{Tolerance: 5})
	if len(issues) != 0 {
		t.Errorf("custom tolerance ignored: %+v", issues)
	}
}

func TestReconcile_StableOrderForEqualDates(t *testing.T) {
	txs := []CleanedTransaction{
		ledgerTx(1, 1, TxDeposit, 100, 0, 100),
		ledgerTx(1, 1, TxDeposit, 100, 0, 200),
		ledgerTx(1, 1, TxDeposit, 100, 0, 300),
	}

	issues, err := Reconcile(context.Background(), txs, ReconcileOptions{})
	if err != nil {
		t.Fatalf("Reconcile error = %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("equal dates were reordered: %+v", issues)
	}
}

func TestReconcile_DoesNotCompound(t *testing.T) {
	txs := []CleanedTransaction{
		ledgerTx(1, 1, TxDeposit, 100, 0, 500), // expected 100
		ledgerTx(1, 2, TxDeposit, 100, 0, 600), // consistent with 500
	}

	issues, _ := Reconcile(context.Background(), txs, ReconcileOptions{})
	if len(issues) != 1 || issues[0].TxIndex != 0 {
		t.Errorf("issues = %+v, want one issue at index 0", issues)
	}
}

func TestReconcile_OnlyWithdrawalsSubtract(t *testing.T) {
	for _, typ := range []TransactionType{TxDeposit, TxTransfer, TxPayment, TxOther} {
		txs := []CleanedTransaction{ledgerTx(1, 1, typ, 40, 100, 140)}
		issues, _ := Reconcile(context.Background(), txs, ReconcileOptions{})
		if len(issues) != 0 {
			t.Errorf("%s treated as balance-decreasing", typ)
		}
	}
}

func TestReconcile_ManyCustomersDeterministic(t *testing.T) {
	var txs []CleanedTransaction
	for c := int64(1); c <= 50; c++ {
		ledger := consistentLedger(c)
		ledger[0].AccountBalanceAfter = 0
		txs = append(txs, ledger...)
	}

	issues, err := Reconcile(context.Background(), txs, ReconcileOptions{Workers: 4})
	if err != nil {
		t.Fatalf("Reconcile error = %v", err)
	}
	if len(issues) != 50 {
		t.Fatalf("len(issues) = %d, want 50", len(issues))
	}
	for i, is := range issues {
		if is.CustomerID != int64(i+1) {
			t.Fatalf("issues[%d].CustomerID = %d, want %d", i, is.CustomerID, i+1)
		}
		if is.TxIndex != 2 {
			t.Errorf("issues[%d].TxIndex = %d, want 2", i, is.TxIndex)
		}
	}
}

func TestReconcile_InputNotReordered(t *testing.T) {
	txs := consistentLedger(1)
	before := make([]CleanedTransaction, len(txs))
	copy(before, txs)

	if _, err := Reconcile(context.Background(), txs, ReconcileOptions{}); err != nil {
		t.Fatalf("Reconcile error = %v", err)
	}
	if !reflect.DeepEqual(txs, before) {
		t.Error("Reconcile reordered its input")
	}
}

func TestReconcile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Reconcile(ctx, consistentLedger(1), ReconcileOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestReconcile_Empty(t *testing.T) {
	issues, err := Reconcile(context.Background(), nil, ReconcileOptions{})
	if err != nil {
		t.Fatalf("Reconcile error = %v", err)
	}
	if issues == nil || len(issues) != 0 {
		t.Errorf("issues = %v, want empty non-nil slice", issues)
	}
}
