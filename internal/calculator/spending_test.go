package calculator

import (
	"testing"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

func TestMonthKey(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "2024-03-15", want: "2024-03"},
		{raw: "2024-03-31T23:30:00-05:00", want: "2024-03"},
		{raw: "2024-03-31T23:30:00.123Z", want: "2024-03"},
		{raw: "2024-12-01T08:00:00", want: "2024-12"},
		{raw: "2024/07/04", want: "2024-07"},
		{raw: "2024-02", want: "2024-02"},
		{raw: " 2024-01-09 ", want: "2024-01"},
		{raw: "1709251200", want: "2024-03"},
		{raw: "", wantErr: true},
		{raw: "yesterday", wantErr: true},
		{raw: "2024-13-01", wantErr: true},
		{raw: "100000000", want: "1973-03"},
		{raw: "20240115", wantErr: true},
		{raw: "2024", wantErr: true},
		{raw: "-1709251200", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := MonthKey(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MonthKey(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("MonthKey(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSpendingByMonth(t *testing.T) {
	march1 := equalExpense(t, "e1", me, "60", me, "F1")
	march1.Date = "2024-03-02"
	march2 := equalExpense(t, "e2", "F1", "15.50", me, "F1")
	march2.Date = "2024-03-28"
	april := equalExpense(t, "e3", me, "20", me, "F1")
	april.Date = "2024-04-01"
	broken := equalExpense(t, "e4", me, "999", me, "F1")
	broken.Date = "not a date"
	settle := payment("p1", "F1", me, "30")

	spending, err := SpendingByMonth([]models.Record{march1, march2, april, broken, settle})

	failures := IntegrityErrors(err)
	if len(failures) != 1 || failures[0].RecordID != "e4" {
		t.Fatalf("expected one failure for e4, got %v", err)
	}
	if len(spending) != 2 {
		t.Fatalf("got %d months, want 2: %v", len(spending), spending)
	}
	if !spending["2024-03"].Equal(d("75.50")) {
		t.Errorf("2024-03 = %s, want 75.50", spending["2024-03"])
	}
	if !spending["2024-04"].Equal(d("20")) {
		t.Errorf("2024-04 = %s, want 20", spending["2024-04"])
	}

	now := time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC)
	if !spending.Current(now).Equal(d("20")) {
		t.Errorf("Current = %s, want 20", spending.Current(now))
	}
	prev := spending.Previous(now)
	if len(prev) != 1 || prev[0] != "2024-03" {
		t.Errorf("Previous = %v, want [2024-03]", prev)
	}
	if months := spending.Months(); months[0] != "2024-04" {
		t.Errorf("Months = %v, want most recent first", months)
	}
}

func TestSpendingByMonth_Empty(t *testing.T) {
	spending, err := SpendingByMonth(nil)
	if err != nil {
		t.Fatalf("SpendingByMonth: %v", err)
	}
	if len(spending) != 0 {
		t.Errorf("expected no months, got %v", spending)
	}
	if !spending.Current(time.Now()).IsZero() {
		t.Error("Current should be zero for an empty summary")
	}
}
