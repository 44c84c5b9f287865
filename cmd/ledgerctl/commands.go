package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

// dbFlags are shared by every command that reads the database.
type dbFlags struct {
	db       string
	currency string
}

func (d *dbFlags) register(f *flag.FlagSet) {
	f.StringVar(&d.db, "db", "./data/ledger.db", "Path to the SQLite database.")
	f.StringVar(&d.currency, "currency", calculator.DefaultCurrency, "ISO currency code used to display amounts.")
}

func (d *dbFlags) open() (*sqlite.SQLiteStore, error) {
	if _, err := os.Stat(d.db); err != nil {
		return nil, fmt.Errorf("database %s: %w", d.db, err)
	}
	return sqlite.New(d.db)
}

// --- balancesCmd ---

type balancesCmd struct {
	dbFlags
	user        string
	skipInvalid bool
}

func (*balancesCmd) Name() string     { return "balances" }
func (*balancesCmd) Synopsis() string { return "prints a participant's balance with everyone" }
func (*balancesCmd) Usage() string {
	return `balances -db <file> -user <participant id> [-skip-invalid]

Recomputes the balances of one participant from every record they take part in.
Positive amounts are owed to the participant, negative amounts are owed by them.
`
}
func (c *balancesCmd) SetFlags(f *flag.FlagSet) {
	c.dbFlags.register(f)
	f.StringVar(&c.user, "user", "", "The participant ID to compute balances for.")
	f.BoolVar(&c.skipInvalid, "skip-invalid", false, "Leave malformed records out instead of failing.")
}

func (c *balancesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "Error: -user is required.")
		return subcommands.ExitUsageError
	}
	store, err := c.open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	records, err := store.ListRecordsForParticipant(ctx, c.user)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading records: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.skipInvalid {
		var bad []*calculator.DataIntegrityError
		records, bad = calculator.PartitionRecords(records)
		for _, e := range bad {
			fmt.Fprintf(os.Stderr, "skipped: %v\n", e)
		}
	}

	summary, err := calculator.CalculateBalances(records, c.user)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printBalances(os.Stdout, summary, c.currency)
	return subcommands.ExitSuccess
}

func printBalances(w io.Writer, summary *calculator.BalanceSummary, currency string) {
	for _, id := range summary.Balance.Counterparties() {
		amount := summary.Balance.Get(id)
		switch amount.Sign() {
		case 1:
			fmt.Fprintf(w, "%-38s owes you   %s\n", id, calculator.FormatAmount(amount, currency))
		case -1:
			fmt.Fprintf(w, "%-38s you owe    %s\n", id, calculator.FormatAmount(amount.Abs(), currency))
		default:
			fmt.Fprintf(w, "%-38s settled up\n", id)
		}
	}
	fmt.Fprintf(w, "\nOwed to you: %s\nYou owe:     %s\n",
		calculator.FormatAmount(summary.Totals.OwedToUser, currency),
		calculator.FormatAmount(summary.Totals.UserOwes, currency))
}

// --- spendingCmd ---

type spendingCmd struct {
	dbFlags
	user string
}

func (*spendingCmd) Name() string     { return "spending" }
func (*spendingCmd) Synopsis() string { return "prints expense totals per month" }
func (*spendingCmd) Usage() string {
	return `spending -db <file> -user <participant id>

Sums the expenses a participant takes part in by calendar month, most recent first.
Payments are not counted. Records with unreadable dates are listed separately.
`
}
func (c *spendingCmd) SetFlags(f *flag.FlagSet) {
	c.dbFlags.register(f)
	f.StringVar(&c.user, "user", "", "The participant ID whose records are summed.")
}

func (c *spendingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "Error: -user is required.")
		return subcommands.ExitUsageError
	}
	store, err := c.open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	records, err := store.ListRecordsForParticipant(ctx, c.user)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading records: %v\n", err)
		return subcommands.ExitFailure
	}

	spending, err := calculator.SpendingByMonth(records)
	printSpending(os.Stdout, spending, time.Now(), c.currency)
	for _, e := range calculator.IntegrityErrors(err) {
		fmt.Fprintf(os.Stderr, "skipped: %v\n", e)
	}
	return subcommands.ExitSuccess
}

func printSpending(w io.Writer, spending calculator.MonthlySpending, now time.Time, currency string) {
	fmt.Fprintf(w, "This month: %s\n", calculator.FormatAmount(spending.Current(now), currency))
	for _, month := range spending.Previous(now) {
		fmt.Fprintf(w, "%s    %s\n", month, calculator.FormatAmount(spending[month], currency))
	}
}

// --- splitCmd ---

type splitCmd struct {
	amount       string
	method       string
	participants string
	values       string
	currency     string
}

func (*splitCmd) Name() string     { return "split" }
func (*splitCmd) Synopsis() string { return "runs the split calculator" }
func (*splitCmd) Usage() string {
	return `split -amount <total> -method equal|exact|percent|shares -participants a,b,c [-values a=1,b=2]

Resolves the shares of an expense and prints them with the equivalent exact amounts.
Exits with status 1 when the inputs do not satisfy the method.
`
}
func (c *splitCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "amount", "", "The expense total.")
	f.StringVar(&c.method, "method", string(models.SplitEqual), "The split method.")
	f.StringVar(&c.participants, "participants", "", "Comma-separated participant IDs.")
	f.StringVar(&c.values, "values", "", "Comma-separated id=value pairs for exact, percent and shares.")
	f.StringVar(&c.currency, "currency", calculator.DefaultCurrency, "ISO currency code used to display amounts.")
}

func (c *splitCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := decimal.NewFromString(c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid -amount %q\n", c.amount)
		return subcommands.ExitUsageError
	}
	values, err := parseValues(c.values)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	method, err := calculator.ParseSplitMethod(c.method)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	shares, err := calculator.CalculateSplit(amount, method, splitList(c.participants), values)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	exact := calculator.ToExact(amount, shares, c.currency)
	for _, s := range shares {
		fmt.Printf("%-20s %-24s %s\n", s.ParticipantID, s.Amount.String(), calculator.FormatAmount(exact[s.ParticipantID], c.currency))
	}
	return subcommands.ExitSuccess
}

// splitList splits a comma-separated list, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseValues reads "a=1,b=2.5" into a map.
func parseValues(s string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	for _, pair := range splitList(s) {
		id, raw, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("invalid value %q, want id=number", pair)
		}
		v, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", id, err)
		}
		out[strings.TrimSpace(id)] = v
	}
	return out, nil
}

// --- checkCmd ---

type checkCmd struct {
	dbFlags
}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "reports malformed records" }
func (*checkCmd) Usage() string {
	return `check -db <file>

Validates every stored record the way balance and spending calculations do and
lists the ones they would reject. Exits with status 1 if any are found.
`
}
func (c *checkCmd) SetFlags(f *flag.FlagSet) { c.dbFlags.register(f) }

func (c *checkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	store, err := c.open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	records, err := store.ListAllRecords(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading records: %v\n", err)
		return subcommands.ExitFailure
	}

	issues := checkRecords(records)
	for _, e := range issues {
		fmt.Println(e)
	}
	fmt.Printf("%d records checked, %d problems\n", len(records), len(issues))
	if len(issues) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// checkRecords returns the structural and date problems of records.
func checkRecords(records []models.Record) []*calculator.DataIntegrityError {
	_, issues := calculator.PartitionRecords(records)
	_, err := calculator.SpendingByMonth(records)
	return append(issues, calculator.IntegrityErrors(err)...)
}
