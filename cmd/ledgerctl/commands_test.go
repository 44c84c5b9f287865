package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

func TestParseValues(t *testing.T) {
	got, err := parseValues("a=60, b = 40 ,")
	if err != nil {
		t.Fatalf("parseValues failed: %v", err)
	}
	if len(got) != 2 || !got["a"].Equal(decimal.NewFromInt(60)) || !got["b"].Equal(decimal.NewFromInt(40)) {
		t.Errorf("unexpected values: %v", got)
	}

	for _, bad := range []string{"a", "=5", "a=five"} {
		if _, err := parseValues(bad); err == nil {
			t.Errorf("parseValues(%q) should fail", bad)
		}
	}
}

func TestCheckRecords(t *testing.T) {
	records := []models.Record{
		&models.Expense{
			ID: "ok", Amount: decimal.NewFromInt(10), Date: "2024-01-02", PayerID: "a",
			Shares: []models.Share{{ParticipantID: "a", Amount: decimal.NewFromInt(10)}},
		},
		&models.Expense{ID: "no-shares", Amount: decimal.NewFromInt(10), Date: "2024-01-02", PayerID: "a"},
		&models.Payment{ID: "no-receiver", Amount: decimal.NewFromInt(5), Date: "2024-01-02", PayerID: "a"},
		&models.Expense{
			ID: "bad-date", Amount: decimal.NewFromInt(10), Date: "someday", PayerID: "a",
			Shares: []models.Share{{ParticipantID: "a", Amount: decimal.NewFromInt(10)}},
		},
	}

	issues := checkRecords(records)
	ids := make(map[string]bool)
	for _, e := range issues {
		ids[e.RecordID] = true
	}
	for _, want := range []string{"no-shares", "no-receiver", "bad-date"} {
		if !ids[want] {
			t.Errorf("expected an issue for %s, got %v", want, issues)
		}
	}
	if ids["ok"] {
		t.Error("valid record reported")
	}
}

func TestPrintBalances(t *testing.T) {
	summary, err := calculator.CalculateBalances([]models.Record{
		&models.Expense{
			ID: "e1", Amount: decimal.NewFromInt(30), Date: "2024-01-02", PayerID: "me",
			Shares: []models.Share{
				{ParticipantID: "me", Amount: decimal.NewFromInt(10)},
				{ParticipantID: "bob", Amount: decimal.NewFromInt(20)},
			},
		},
	}, "me")
	if err != nil {
		t.Fatalf("CalculateBalances failed: %v", err)
	}

	var buf bytes.Buffer
	printBalances(&buf, summary, "USD")
	out := buf.String()
	if !strings.Contains(out, "bob") || !strings.Contains(out, "owes you   $20.00") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "Owed to you: $20.00") {
		t.Errorf("missing totals:\n%s", out)
	}
}

func TestPrintSpending(t *testing.T) {
	spending := calculator.MonthlySpending{
		"2024-03": decimal.RequireFromString("12.5"),
		"2024-01": decimal.NewFromInt(3),
	}
	var buf bytes.Buffer
	printSpending(&buf, spending, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), "USD")

	want := "This month: $12.50\n2024-01    $3.00\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}
