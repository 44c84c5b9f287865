package calculator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

const monthLayout = "2006-01"

// minEpochDigits is the shortest digit string read as Unix seconds. Shorter
// numbers such as "2024" or "20240115" are not dates of any supported form.
const minEpochDigits = 9

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	monthLayout,
}

// MonthKey normalizes a record date to its YYYY-MM key. Dates keep their own
// calendar fields: an offset in the value is not converted to UTC. A plain
// integer of at least nine digits is read as Unix seconds.
func MonthKey(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(monthLayout), nil
		}
	}
	if len(s) >= minEpochDigits {
		if secs, err := strconv.ParseUint(s, 10, 63); err == nil {
			return time.Unix(int64(secs), 0).UTC().Format(monthLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", raw)
}

// MonthlySpending maps a YYYY-MM key to the summed expense amounts.
type MonthlySpending map[string]decimal.Decimal

// Months returns the keys, most recent first.
func (m MonthlySpending) Months() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys
}

// Current returns the spending for the month containing now.
func (m MonthlySpending) Current(now time.Time) decimal.Decimal {
	return m[now.Format(monthLayout)]
}

// Previous returns every month other than the one containing now, most recent first.
func (m MonthlySpending) Previous(now time.Time) []string {
	current := now.Format(monthLayout)
	var out []string
	for _, k := range m.Months() {
		if k != current {
			out = append(out, k)
		}
	}
	return out
}

// SpendingByMonth groups expense amounts by calendar month. Payments are not
// spending and are skipped.
//
// An expense whose date cannot be read is left out of every bucket and
// reported in the returned error; the buckets are still correct for the
// remaining expenses, so callers may use both.
func SpendingByMonth(records []models.Record) (MonthlySpending, error) {
	spending := make(MonthlySpending)
	var failed []*DataIntegrityError
	for _, r := range records {
		e, ok := r.(*models.Expense)
		if !ok || e == nil {
			continue
		}
		key, err := MonthKey(e.Date)
		if err != nil {
			failed = append(failed, &DataIntegrityError{RecordID: e.ID, Reason: err.Error()})
			continue
		}
		spending[key] = spending[key].Add(e.Amount)
	}
	return spending, joinIntegrity(failed)
}
