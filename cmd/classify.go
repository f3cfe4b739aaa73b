package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/finbook/finbook"
	"github.com/finbook/finbook/assist"
)

type classifyCmd struct {
	id    string
	apply bool
}

func (*classifyCmd) Name() string     { return "classify" }
func (*classifyCmd) Synopsis() string { return "suggest categories for uncategorized transactions" }
func (*classifyCmd) Usage() string {
	return `fbk classify [-id <id>] [-apply]

  Asks a Gemini model (GEMINI_API_KEY must be set) to pick a category from
  the known list for the given transaction, or for every uncategorized one.
  With -apply the suggestion is written back.
`
}

func (p *classifyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.id, "id", "", "Classify only this transaction.")
	f.BoolVar(&p.apply, "apply", false, "Write suggestions back to the ledger.")
}

func (p *classifyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer app.Close()

	categories, err := app.Categories.All(ctx)
	if err != nil {
		return fail(err)
	}
	classifier, err := assist.NewClassifier(ctx, app.Config.Model)
	if err != nil {
		return fail(err)
	}

	page, err := app.Ledger.List(ctx, 0, 0, finbook.Filter{})
	if err != nil {
		return fail(err)
	}
	var targets []finbook.Transaction
	for _, tx := range page.Items {
		if p.id != "" {
			if tx.ID == p.id {
				targets = append(targets, tx)
				break
			}
			continue
		}
		if tx.Category == "" && !tx.Recurrent {
			targets = append(targets, tx)
		}
	}
	if p.id != "" && len(targets) == 0 {
		return fail(fmt.Errorf("transaction %s: %w", p.id, finbook.ErrNotFound))
	}

	for _, tx := range targets {
		suggestion, err := classifier.SuggestCategory(ctx, tx, categories)
		if err != nil {
			app.Log.Warn().Err(err).Str("id", tx.ID).Msg("no suggestion")
			continue
		}
		fmt.Printf("%s %s %s -> %s\n", tx.When(), tx.Type, tx.Money(), suggestion)
		if p.apply {
			if _, err := app.Ledger.Update(ctx, tx.ID, finbook.Patch{Category: &suggestion}); err != nil {
				return fail(err)
			}
		}
	}
	return subcommands.ExitSuccess
}
