package calculator

import (
	"math/rand"
	"testing"

	"github.com/mmynk/splitledger/internal/models"
)

const me = "U"

func equalExpense(t *testing.T, id, payer, amount string, participants ...string) *models.Expense {
	t.Helper()
	shares, err := CalculateSplit(d(amount), models.SplitEqual, participants, nil)
	if err != nil {
		t.Fatalf("CalculateSplit: %v", err)
	}
	return &models.Expense{
		ID:           id,
		Amount:       d(amount),
		Date:         "2024-03-10",
		PayerID:      payer,
		SplitMethod:  models.SplitEqual,
		Shares:       shares,
		Participants: models.ExpenseParticipants(payer, shares),
	}
}

func payment(id, from, to, amount string) *models.Payment {
	return &models.Payment{
		ID:           id,
		Amount:       d(amount),
		Date:         "2024-03-12",
		PayerID:      from,
		ReceiverID:   to,
		Participants: []string{from, to},
	}
}

func assertBalance(t *testing.T, b Balance, id, want string) {
	t.Helper()
	if got := b.Get(id); !got.Equal(d(want)) {
		t.Errorf("balance[%s] = %s, want %s", id, got, want)
	}
}

func TestCalculateBalances(t *testing.T) {
	t.Run("empty snapshot", func(t *testing.T) {
		summary, err := CalculateBalances(nil, me)
		if err != nil {
			t.Fatalf("CalculateBalances: %v", err)
		}
		if len(summary.Balance) != 0 {
			t.Errorf("expected empty balance, got %v", summary.Balance)
		}
		if !summary.Totals.OwedToUser.IsZero() || !summary.Totals.UserOwes.IsZero() {
			t.Errorf("expected zero totals, got %+v", summary.Totals)
		}
	})

	t.Run("user pays for everyone", func(t *testing.T) {
		records := []models.Record{equalExpense(t, "e1", me, "60", me, "F1", "F2")}
		summary, err := CalculateBalances(records, me)
		if err != nil {
			t.Fatalf("CalculateBalances: %v", err)
		}
		assertBalance(t, summary.Balance, "F1", "20")
		assertBalance(t, summary.Balance, "F2", "20")
		if _, ok := summary.Balance[me]; ok {
			t.Error("balance must not contain the current user")
		}
		if !summary.Totals.OwedToUser.Equal(d("40")) || !summary.Totals.UserOwes.IsZero() {
			t.Errorf("totals = %+v, want owed 40 owes 0", summary.Totals)
		}
	})

	t.Run("friend pays and user holds a share", func(t *testing.T) {
		records := []models.Record{equalExpense(t, "e2", "F1", "30", me, "F1", "F3")}
		summary, err := CalculateBalances(records, me)
		if err != nil {
			t.Fatalf("CalculateBalances: %v", err)
		}
		assertBalance(t, summary.Balance, "F1", "-10")
		if _, ok := summary.Balance["F3"]; ok {
			t.Error("other share holders of someone else's expense must not appear")
		}
		if !summary.Totals.UserOwes.Equal(d("10")) {
			t.Errorf("UserOwes = %s, want 10", summary.Totals.UserOwes)
		}
	})

	t.Run("expenses combine per counterparty", func(t *testing.T) {
		records := []models.Record{
			equalExpense(t, "e1", me, "60", me, "F1", "F2"),
			equalExpense(t, "e2", "F1", "30", me, "F1", "F3"),
		}
		summary, err := CalculateBalances(records, me)
		if err != nil {
			t.Fatalf("CalculateBalances: %v", err)
		}
		assertBalance(t, summary.Balance, "F1", "10")
		assertBalance(t, summary.Balance, "F2", "20")
		if !summary.Totals.OwedToUser.Equal(d("30")) || !summary.Totals.UserOwes.IsZero() {
			t.Errorf("totals = %+v, want owed 30 owes 0", summary.Totals)
		}
	})

	t.Run("payments share the accumulator", func(t *testing.T) {
		records := []models.Record{
			equalExpense(t, "e1", me, "60", me, "F1", "F2"),
			equalExpense(t, "e2", "F1", "30", me, "F1", "F3"),
			payment("p1", me, "F1", "10"),
		}
		summary, err := CalculateBalances(records, me)
		if err != nil {
			t.Fatalf("CalculateBalances: %v", err)
		}
		assertBalance(t, summary.Balance, "F1", "20")
	})

	t.Run("payment received from a friend", func(t *testing.T) {
		records := []models.Record{
			equalExpense(t, "e1", me, "60", me, "F1", "F2"),
			payment("p2", "F2", me, "20"),
		}
		summary, err := CalculateBalances(records, me)
		if err != nil {
			t.Fatalf("CalculateBalances: %v", err)
		}
		assertBalance(t, summary.Balance, "F2", "0")
		if !summary.Totals.OwedToUser.Equal(d("20")) {
			t.Errorf("OwedToUser = %s, want 20", summary.Totals.OwedToUser)
		}
	})

	t.Run("totals are never netted", func(t *testing.T) {
		records := []models.Record{
			equalExpense(t, "e1", me, "40", me, "F1"),
			equalExpense(t, "e2", "F2", "30", me, "F2"),
		}
		summary, err := CalculateBalances(records, me)
		if err != nil {
			t.Fatalf("CalculateBalances: %v", err)
		}
		if !summary.Totals.OwedToUser.Equal(d("20")) || !summary.Totals.UserOwes.Equal(d("15")) {
			t.Errorf("totals = %+v, want owed 20 owes 15", summary.Totals)
		}
	})

	t.Run("observer records contribute nothing", func(t *testing.T) {
		records := []models.Record{
			equalExpense(t, "e3", "F1", "50", "F1", "F2"),
			payment("p3", "F1", "F2", "5"),
		}
		summary, err := CalculateBalances(records, me)
		if err != nil {
			t.Fatalf("CalculateBalances: %v", err)
		}
		if len(summary.Balance) != 0 {
			t.Errorf("expected no entries, got %v", summary.Balance)
		}
	})

	t.Run("payer fronting money without a share", func(t *testing.T) {
		records := []models.Record{equalExpense(t, "e4", me, "30", "F1", "F2")}
		summary, err := CalculateBalances(records, me)
		if err != nil {
			t.Fatalf("CalculateBalances: %v", err)
		}
		assertBalance(t, summary.Balance, "F1", "15")
		assertBalance(t, summary.Balance, "F2", "15")
	})

	t.Run("near-zero residue is reported", func(t *testing.T) {
		records := []models.Record{
			equalExpense(t, "e5", me, "100", me, "F1", "F2"),
			payment("p4", "F1", me, "33.33"),
		}
		summary, err := CalculateBalances(records, me)
		if err != nil {
			t.Fatalf("CalculateBalances: %v", err)
		}
		residue := summary.Balance.Get("F1")
		if residue.IsZero() || !WithinTolerance(residue, d("0")) {
			t.Errorf("balance[F1] = %s, want a small non-zero residue", residue)
		}
	})
}

func TestCalculateBalances_OrderIndependent(t *testing.T) {
	records := []models.Record{
		equalExpense(t, "e1", me, "100", me, "F1", "F2"),
		equalExpense(t, "e2", "F1", "45.50", me, "F1"),
		equalExpense(t, "e3", "F2", "9.99", me, "F1", "F2"),
		payment("p1", me, "F1", "12.34"),
		payment("p2", "F2", me, "7"),
		equalExpense(t, "e4", me, "1", "F3"),
	}
	want, err := CalculateBalances(records, me)
	if err != nil {
		t.Fatalf("CalculateBalances: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]models.Record(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, err := CalculateBalances(shuffled, me)
		if err != nil {
			t.Fatalf("CalculateBalances: %v", err)
		}
		if len(got.Balance) != len(want.Balance) {
			t.Fatalf("got %d entries, want %d", len(got.Balance), len(want.Balance))
		}
		for id, amount := range want.Balance {
			if !got.Balance[id].Equal(amount) {
				t.Errorf("shuffle %d: balance[%s] = %s, want %s", i, id, got.Balance[id], amount)
			}
		}
		if !got.Totals.OwedToUser.Equal(want.Totals.OwedToUser) || !got.Totals.UserOwes.Equal(want.Totals.UserOwes) {
			t.Errorf("shuffle %d: totals = %+v, want %+v", i, got.Totals, want.Totals)
		}
	}
}

func TestCalculateBalances_Idempotent(t *testing.T) {
	e := equalExpense(t, "e1", me, "60", me, "F1", "F2")
	records := []models.Record{e, payment("p1", "F1", me, "5")}

	first, err := CalculateBalances(records, me)
	if err != nil {
		t.Fatalf("CalculateBalances: %v", err)
	}
	second, err := CalculateBalances(records, me)
	if err != nil {
		t.Fatalf("CalculateBalances: %v", err)
	}
	for id, amount := range first.Balance {
		if !second.Balance[id].Equal(amount) {
			t.Errorf("balance[%s] changed between runs: %s vs %s", id, amount, second.Balance[id])
		}
	}
	if len(e.Shares) != 3 || !e.Shares[1].Amount.Equal(d("20")) {
		t.Errorf("input record was modified: %+v", e.Shares)
	}
}

func TestCalculateBalances_IntegrityErrors(t *testing.T) {
	noShares := &models.Expense{ID: "bad-expense", Amount: d("10"), PayerID: "F1"}
	noReceiver := &models.Payment{ID: "bad-payment", Amount: d("10"), PayerID: me}
	good := equalExpense(t, "e1", me, "60", me, "F1", "F2")
	records := []models.Record{good, noShares, noReceiver}

	summary, err := CalculateBalances(records, me)
	if err == nil {
		t.Fatal("expected an integrity error")
	}
	if summary != nil {
		t.Error("no summary should be returned alongside integrity errors")
	}

	failures := IntegrityErrors(err)
	if len(failures) != 2 {
		t.Fatalf("got %d integrity errors, want 2: %v", len(failures), err)
	}
	ids := map[string]bool{}
	for _, f := range failures {
		ids[f.RecordID] = true
	}
	if !ids["bad-expense"] || !ids["bad-payment"] {
		t.Errorf("integrity errors should name both records, got %v", ids)
	}

	valid, invalid := PartitionRecords(records)
	if len(valid) != 1 || len(invalid) != 2 {
		t.Fatalf("PartitionRecords = %d valid, %d invalid", len(valid), len(invalid))
	}
	summary, err = CalculateBalances(valid, me)
	if err != nil {
		t.Fatalf("CalculateBalances(valid): %v", err)
	}
	assertBalance(t, summary.Balance, "F1", "20")
}

func TestValidateRecord(t *testing.T) {
	var nilExpense *models.Expense
	tests := []struct {
		name   string
		record models.Record
		wantOK bool
	}{
		{"valid payment", payment("p", me, "F1", "1"), true},
		{"nil interface", nil, false},
		{"typed nil expense", nilExpense, false},
		{"expense without id", &models.Expense{PayerID: me, Shares: []models.Share{{ParticipantID: me, Amount: d("1")}}}, false},
		{"expense without payer", &models.Expense{ID: "x", Shares: []models.Share{{ParticipantID: me, Amount: d("1")}}}, false},
		{"payment without payer", &models.Payment{ID: "y", ReceiverID: me}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecord(tt.record)
			if (err == nil) != tt.wantOK {
				t.Errorf("ValidateRecord() = %v, wantOK %v", err, tt.wantOK)
			}
		})
	}
}

func TestFilterByGroup(t *testing.T) {
	a := equalExpense(t, "e1", me, "10", me, "F1")
	a.GroupID = "trip"
	b := equalExpense(t, "e2", me, "10", me, "F1")
	p := payment("p1", "F1", me, "5")
	p.GroupID = "trip"

	got := FilterByGroup([]models.Record{a, b, p}, "trip")
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	summary, err := CalculateBalances(got, me)
	if err != nil {
		t.Fatalf("CalculateBalances: %v", err)
	}
	assertBalance(t, summary.Balance, "F1", "0")
}
