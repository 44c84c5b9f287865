package calculator

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func raw(pairs ...string) map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		m[pairs[i]] = d(pairs[i+1])
	}
	return m
}

func shareMap(shares []models.Share) map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(shares))
	for _, s := range shares {
		m[s.ParticipantID] = s.Amount
	}
	return m
}

func TestCalculateSplit(t *testing.T) {
	tests := []struct {
		name         string
		amount       decimal.Decimal
		method       models.SplitMethod
		participants []string
		rawValues    map[string]decimal.Decimal
		wantReason   Reason
		validateFunc func(t *testing.T, shares []models.Share)
	}{
		{
			name:         "equal split among three",
			amount:       d("60"),
			method:       models.SplitEqual,
			participants: []string{"U", "F1", "F2"},
			validateFunc: func(t *testing.T, shares []models.Share) {
				if len(shares) != 3 {
					t.Fatalf("got %d shares, want 3", len(shares))
				}
				for _, s := range shares {
					if !s.Amount.Equal(d("20")) {
						t.Errorf("%s share = %s, want 20", s.ParticipantID, s.Amount)
					}
				}
			},
		},
		{
			name:         "equal split keeps full precision",
			amount:       d("100"),
			method:       models.SplitEqual,
			participants: []string{"A", "B", "C"},
			validateFunc: func(t *testing.T, shares []models.Share) {
				want := d("100").Div(decimal.NewFromInt(3))
				for _, s := range shares {
					if !s.Amount.Equal(want) {
						t.Errorf("%s share = %s, want %s", s.ParticipantID, s.Amount, want)
					}
				}
				if !WithinTolerance(SumShares(shares), d("100")) {
					t.Errorf("shares sum to %s, want 100 within tolerance", SumShares(shares))
				}
			},
		},
		{
			name:         "equal split ignores raw values",
			amount:       d("10"),
			method:       models.SplitEqual,
			participants: []string{"A", "B"},
			rawValues:    raw("A", "9", "B", "1"),
			validateFunc: func(t *testing.T, shares []models.Share) {
				for _, s := range shares {
					if !s.Amount.Equal(d("5")) {
						t.Errorf("%s share = %s, want 5", s.ParticipantID, s.Amount)
					}
				}
			},
		},
		{
			name:         "exact split that totals the amount",
			amount:       d("100.00"),
			method:       models.SplitExact,
			participants: []string{"A", "B", "C"},
			rawValues:    raw("A", "33.33", "B", "33.33", "C", "33.34"),
			validateFunc: func(t *testing.T, shares []models.Share) {
				got := shareMap(shares)
				if !got["C"].Equal(d("33.34")) {
					t.Errorf("C share = %s, want 33.34", got["C"])
				}
			},
		},
		{
			name:         "exact split short by two cents",
			amount:       d("100.00"),
			method:       models.SplitExact,
			participants: []string{"A", "B", "C"},
			rawValues:    raw("A", "33.33", "B", "33.33", "C", "33.32"),
			wantReason:   ReasonTotalMismatch,
		},
		{
			name:         "exact split exactly one cent off is rejected",
			amount:       d("100"),
			method:       models.SplitExact,
			participants: []string{"A", "B"},
			rawValues:    raw("A", "50", "B", "49.99"),
			wantReason:   ReasonTotalMismatch,
		},
		{
			name:         "exact split under a cent off is accepted",
			amount:       d("100"),
			method:       models.SplitExact,
			participants: []string{"A", "B"},
			rawValues:    raw("A", "50", "B", "49.995"),
		},
		{
			name:         "exact split treats missing values as zero",
			amount:       d("25"),
			method:       models.SplitExact,
			participants: []string{"A", "B"},
			rawValues:    raw("A", "25"),
			validateFunc: func(t *testing.T, shares []models.Share) {
				got := shareMap(shares)
				if !got["B"].IsZero() {
					t.Errorf("B share = %s, want 0", got["B"])
				}
			},
		},
		{
			name:         "exact split ignores values for non-participants",
			amount:       d("30"),
			method:       models.SplitExact,
			participants: []string{"A", "B"},
			rawValues:    raw("A", "10", "B", "20", "Z", "500"),
			validateFunc: func(t *testing.T, shares []models.Share) {
				if len(shares) != 2 {
					t.Errorf("got %d shares, want 2", len(shares))
				}
			},
		},
		{
			name:         "percent split",
			amount:       d("40"),
			method:       models.SplitPercent,
			participants: []string{"A", "B"},
			rawValues:    raw("A", "50", "B", "50"),
			validateFunc: func(t *testing.T, shares []models.Share) {
				got := shareMap(shares)
				for _, p := range []string{"A", "B"} {
					if !got[p].Equal(d("20")) {
						t.Errorf("%s share = %s, want 20", p, got[p])
					}
				}
			},
		},
		{
			name:         "percent split not totalling 100",
			amount:       d("40"),
			method:       models.SplitPercent,
			participants: []string{"A", "B"},
			rawValues:    raw("A", "50", "B", "49.9"),
			wantReason:   ReasonPercentMismatch,
		},
		{
			name:         "shares split by weight",
			amount:       d("100"),
			method:       models.SplitShares,
			participants: []string{"A", "B"},
			rawValues:    raw("A", "1", "B", "3"),
			validateFunc: func(t *testing.T, shares []models.Share) {
				got := shareMap(shares)
				if !got["A"].Equal(d("25")) {
					t.Errorf("A share = %s, want 25", got["A"])
				}
				if !got["B"].Equal(d("75")) {
					t.Errorf("B share = %s, want 75", got["B"])
				}
			},
		},
		{
			name:         "shares split with zero total",
			amount:       d("100"),
			method:       models.SplitShares,
			participants: []string{"A", "B"},
			rawValues:    raw("A", "0", "B", "0"),
			wantReason:   ReasonNonPositiveShares,
		},
		{
			name:         "shares split with no values at all",
			amount:       d("0.5"),
			method:       models.SplitShares,
			participants: []string{"A"},
			wantReason:   ReasonNonPositiveShares,
		},
		{
			name:         "duplicate participants collapse",
			amount:       d("30"),
			method:       models.SplitEqual,
			participants: []string{"A", "B", "A", "C"},
			validateFunc: func(t *testing.T, shares []models.Share) {
				if len(shares) != 3 {
					t.Fatalf("got %d shares, want 3", len(shares))
				}
				if shares[0].ParticipantID != "A" || shares[2].ParticipantID != "C" {
					t.Errorf("unexpected order: %+v", shares)
				}
			},
		},
		{
			name:         "unknown method",
			amount:       d("10"),
			method:       models.SplitMethod("itemized"),
			participants: []string{"A"},
			wantReason:   ReasonUnknownMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := CalculateSplit(tt.amount, tt.method, tt.participants, tt.rawValues)
			if tt.wantReason != "" {
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("CalculateSplit() error = %v, want ValidationError", err)
				}
				if ve.Reason != tt.wantReason {
					t.Errorf("reason = %s, want %s", ve.Reason, tt.wantReason)
				}
				return
			}
			if err != nil {
				t.Fatalf("CalculateSplit() unexpected error: %v", err)
			}
			if !WithinTolerance(SumShares(shares), tt.amount) {
				t.Errorf("shares sum to %s, want %s", SumShares(shares), tt.amount)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, shares)
			}
		})
	}
}

func TestCalculateSplit_RejectsForEveryMethod(t *testing.T) {
	methods := []models.SplitMethod{models.SplitEqual, models.SplitExact, models.SplitPercent, models.SplitShares}
	values := raw("A", "100")

	for _, m := range methods {
		t.Run(string(m)+" without participants", func(t *testing.T) {
			_, err := CalculateSplit(d("100"), m, nil, values)
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Reason != ReasonNoParticipants {
				t.Errorf("error = %v, want %s", err, ReasonNoParticipants)
			}
		})
		for _, amount := range []string{"0", "-5"} {
			t.Run(string(m)+" with amount "+amount, func(t *testing.T) {
				_, err := CalculateSplit(d(amount), m, []string{"A"}, values)
				var ve *ValidationError
				if !errors.As(err, &ve) || ve.Reason != ReasonNonPositiveAmount {
					t.Fatalf("error = %v, want %s", err, ReasonNonPositiveAmount)
				}
				if !ve.Actual.Equal(d(amount)) {
					t.Errorf("Actual = %s, want %s", ve.Actual, amount)
				}
			})
		}
	}
}

func TestValidationError_ReportsBothTotals(t *testing.T) {
	_, err := CalculateSplit(d("100.00"), models.SplitExact, []string{"A", "B"}, raw("A", "49.99", "B", "49.99"))
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if !ve.Expected.Equal(d("100")) || !ve.Actual.Equal(d("99.98")) {
		t.Errorf("Expected/Actual = %s/%s, want 100/99.98", ve.Expected, ve.Actual)
	}
	if !ve.Difference().Equal(d("0.02")) {
		t.Errorf("Difference() = %s, want 0.02", ve.Difference())
	}
	msg := ve.Error()
	if !strings.Contains(msg, "100") || !strings.Contains(msg, "99.98") {
		t.Errorf("message %q should mention both totals", msg)
	}
}

func TestParseSplitMethod(t *testing.T) {
	for _, s := range []string{"equal", "exact", "percent", "shares"} {
		if _, err := ParseSplitMethod(s); err != nil {
			t.Errorf("ParseSplitMethod(%q) error = %v", s, err)
		}
	}
	if _, err := ParseSplitMethod("EQUAL"); err == nil {
		t.Error("ParseSplitMethod(\"EQUAL\") should fail")
	}
}

func TestToExact(t *testing.T) {
	shares, err := CalculateSplit(d("100"), models.SplitEqual, []string{"A", "B", "C"}, nil)
	if err != nil {
		t.Fatalf("CalculateSplit: %v", err)
	}

	values := ToExact(d("100"), shares, "USD")
	if !values["A"].Equal(d("33.33")) || !values["B"].Equal(d("33.33")) {
		t.Errorf("A/B = %s/%s, want 33.33", values["A"], values["B"])
	}
	if !values["C"].Equal(d("33.34")) {
		t.Errorf("C = %s, want 33.34", values["C"])
	}

	if _, err := CalculateSplit(d("100"), models.SplitExact, []string{"A", "B", "C"}, values); err != nil {
		t.Errorf("converted values should validate as exact: %v", err)
	}
}
