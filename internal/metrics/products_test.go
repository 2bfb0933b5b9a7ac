package metrics

import (
	"reflect"
	"testing"

	"github.com/JonMunkholm/bankrecon/internal/core"
)

func loan(id, typ, status string, amount float64) core.CleanedTransaction {
	t := core.CleanedTransaction{LoanID: text(id), LoanAmount: num(amount), LoanStatus: text(status)}
	if typ != "" {
		t.LoanType = text(typ)
	}
	return t
}

func TestLoanAggregates(t *testing.T) {
	txs := []core.CleanedTransaction{
		loan("L1", "Mortgage", "Approved", 1000),
		loan("L2", "Auto", "Rejected", 500),
		loan("L3", "Mortgage", "Approved", 3000),
		loan("L4", "", "Pending", 250),
		{},
	}

	if got, want := LoanTypeCounts(txs), map[string]int{"Mortgage": 2, "Auto": 1, UnknownLoanType: 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("LoanTypeCounts = %v, want %v", got, want)
	}
	if got, want := LoanStatusCounts(txs), map[string]int{"Approved": 2, "Rejected": 1, "Pending": 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("LoanStatusCounts = %v, want %v", got, want)
	}
	if got, want := AverageLoanAmountByStatus(txs), map[string]float64{"Approved": 2000, "Rejected": 500, "Pending": 250}; !reflect.DeepEqual(got, want) {
		t.Errorf("AverageLoanAmountByStatus = %v, want %v", got, want)
	}
	if got := TotalLoanAmount(txs); got != 4750 {
		t.Errorf("TotalLoanAmount = %v, want 4750", got)
	}
}

func card(typ string, limit, balance float64) core.CleanedTransaction {
	return core.CleanedTransaction{CardType: text(typ), CreditLimit: num(limit), CreditCardBalance: num(balance)}
}

func TestCardAggregates(t *testing.T) {
	noBalance := card("Gold", 1000, 0)
	noBalance.CreditCardBalance.Valid = false

	txs := []core.CleanedTransaction{
		card("Gold", 1000, 250),
		card("Gold", 1000, 750),
		card("Platinum", 0, 500),
		card("Platinum", 2000, 500),
		noBalance,
	}

	if got, want := CardTypeCounts(txs), map[string]int{"Gold": 3, "Platinum": 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("CardTypeCounts = %v, want %v", got, want)
	}
	if got, want := AverageUtilizationByCardType(txs), map[string]float64{"Gold": 0.5, "Platinum": 0.25}; !reflect.DeepEqual(got, want) {
		t.Errorf("AverageUtilizationByCardType = %v, want %v", got, want)
	}
}

func TestRewardsHistogram(t *testing.T) {
	var txs []core.CleanedTransaction
	for _, pts := range []float64{0, 999, 1000, 2500, 2999.5} {
		txs = append(txs, core.CleanedTransaction{RewardsPoints: num(pts)})
	}
	txs = append(txs, core.CleanedTransaction{})

	got := RewardsHistogram(txs, 0)
	want := []RewardsBin{{0, 2}, {1000, 1}, {2000, 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RewardsHistogram = %v, want %v", got, want)
	}
}

func TestProductMixByBranch(t *testing.T) {
	a := tx(1, core.TxDeposit, 1, "BR-1", "")
	a.LoanID = text("L1")
	b := tx(1, core.TxDeposit, 1, "BR-1", "")
	b.LoanID = text("L2")
	b.CardID = text("C1")
	c := tx(2, core.TxDeposit, 1, "BR-1", "")
	d := tx(3, core.TxDeposit, 1, "", "")
	d.CardID = text("C2")

	got := ProductMixByBranch([]core.CleanedTransaction{a, b, c, d})
	want := []ProductMix{
		{Branch: "BR-1", Accounts: 2, Loans: 1, Cards: 1},
		{Branch: UnknownBranch, Accounts: 1, Loans: 0, Cards: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ProductMixByBranch = %+v, want %+v", got, want)
	}
}
