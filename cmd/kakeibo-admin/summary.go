package main

import (
	"context"
	"flag"
	"strings"

	"github.com/google/subcommands"

	"kakeibo/internal/render"
)

type summaryCmd struct {
	env   *env
	plain bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print income, expense and balance totals" }
func (*summaryCmd) Usage() string {
	return `kakeibo-admin summary [-plain]
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.plain, "plain", false, "Print raw Markdown instead of styled output.")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := c.env.open(ctx)
	if err != nil {
		c.env.fail("Error opening ledger: %v", err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	if err := render.SummaryMarkdown(&b, ledger.Snapshot().Summary); err != nil {
		c.env.fail("Error rendering summary: %v", err)
		return subcommands.ExitFailure
	}
	printMarkdown(c.env.out, b.String(), c.plain)
	return subcommands.ExitSuccess
}
