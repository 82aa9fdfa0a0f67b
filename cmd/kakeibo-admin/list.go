package main

import (
	"context"
	"flag"
	"strings"

	"github.com/google/subcommands"

	"kakeibo/internal/render"
)

type listCmd struct {
	env   *env
	plain bool
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "print the entry table with totals" }
func (*listCmd) Usage() string {
	return `kakeibo-admin list [-plain]

  Prints every stored entry, newest first, followed by the income, expense
  and balance totals.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.plain, "plain", false, "Print raw Markdown instead of styled output.")
}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := c.env.open(ctx)
	if err != nil {
		c.env.fail("Error opening ledger: %v", err)
		return subcommands.ExitFailure
	}
	snap := ledger.Snapshot()

	var b strings.Builder
	if err := render.Markdown(&b, snap.Entries, snap.Summary); err != nil {
		c.env.fail("Error rendering ledger: %v", err)
		return subcommands.ExitFailure
	}
	printMarkdown(c.env.out, b.String(), c.plain)
	return subcommands.ExitSuccess
}
