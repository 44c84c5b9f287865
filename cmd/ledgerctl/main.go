// Command ledgerctl inspects a splitledger database offline and runs the
// split calculator from the command line.
//
//	ledgerctl balances -db ./data/ledger.db -user <id>
//	ledgerctl spending -db ./data/ledger.db -user <id>
//	ledgerctl split -amount 90 -method percent -participants a,b -values a=60,b=40
//	ledgerctl check -db ./data/ledger.db
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&balancesCmd{}, "ledger")
	commander.Register(&spendingCmd{}, "ledger")
	commander.Register(&checkCmd{}, "ledger")
	commander.Register(&splitCmd{}, "calculator")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
