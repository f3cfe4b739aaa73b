package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/finbook/finbook"
)

type importCmd struct {
	file string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "bulk-insert transactions from a JSONL file" }
func (*importCmd) Usage() string {
	return `fbk import -file <path>

  Reads one transaction per line in the export format, validates the batch,
  and inserts it in one bulk operation: one net balance change per affected
  account, regardless of the number of rows.
`
}

func (p *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.file, "file", "", "Input file ('-' for stdin).")
}

func (p *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	in := os.Stdin
	if p.file != "" && p.file != "-" {
		file, err := os.Open(p.file)
		if err != nil {
			return fail(err)
		}
		defer file.Close()
		in = file
	}
	txs, err := finbook.ImportTransactions(in)
	if err != nil {
		return fail(err)
	}

	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	// Imported rows must reference known accounts; a typo here would strand
	// a balance delta on a key nothing owns.
	for _, tx := range txs {
		if _, err := app.Accounts.Get(ctx, tx.AccountID); err != nil {
			return fail(fmt.Errorf("transaction on %s: %w", tx.When(), err))
		}
	}

	added, err := app.Ledger.BulkAdd(ctx, txs)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Imported %d transactions\n", len(added))
	return subcommands.ExitSuccess
}

type exportCmd struct {
	file string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the full ledger as JSONL" }
func (*exportCmd) Usage() string {
	return `fbk export [-file <path>]

  Writes every transaction, one JSON object per line, newest first.
`
}

func (p *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.file, "file", "", "Output file (stdout by default).")
}

func (p *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	page, err := app.Ledger.List(ctx, 0, 0, finbook.Filter{})
	if err != nil {
		return fail(err)
	}

	out := os.Stdout
	if p.file != "" {
		file, err := os.Create(p.file)
		if err != nil {
			return fail(err)
		}
		defer file.Close()
		out = file
	}
	if err := finbook.ExportTransactions(out, page.Items); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
