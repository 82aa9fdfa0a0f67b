package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"kakeibo/internal/core"
	"kakeibo/internal/render"
)

type addCmd struct {
	env   *env
	draft core.Draft
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record an income or expense entry" }
func (*addCmd) Usage() string {
	return `kakeibo-admin add -member <name> -type <income|expense> -category <c> -description <d> -amount <yen> [-date YYYY-MM-DD]

  Validates and stores one entry. The date defaults to today in
  LEDGER_TIMEZONE.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.draft.Date, "date", "", "Entry date (YYYY-MM-DD). Defaults to today.")
	f.StringVar(&c.draft.Member, "member", "", "Household member.")
	f.StringVar(&c.draft.Type, "type", string(core.Expense), "Entry type: income or expense.")
	f.StringVar(&c.draft.Category, "category", "", "Category.")
	f.StringVar(&c.draft.Description, "description", "", "Description.")
	f.StringVar(&c.draft.Amount, "amount", "", "Amount in yen.")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := c.env.open(ctx)
	if err != nil {
		c.env.fail("Error opening ledger: %v", err)
		return subcommands.ExitFailure
	}

	d := c.draft
	if d.Date == "" {
		d.Date = ledger.Today()
	}
	e, err := ledger.Submit(ctx, d)
	switch {
	case errors.Is(err, core.ErrInvalidSubmission):
		c.env.fail("%s (%v)", render.InvalidInputMessage, err)
		return subcommands.ExitUsageError
	case err != nil:
		c.env.fail("Error saving entry: %v", err)
		return subcommands.ExitFailure
	}

	r := render.RowFor(e)
	fmt.Fprintf(c.env.out, "Added entry %s: %s %s %s %s\n", r.Key(), r.Date, r.Label, r.Category, r.Amount)
	return subcommands.ExitSuccess
}
