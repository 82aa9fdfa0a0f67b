package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"kakeibo/internal/core"
	"kakeibo/internal/render"
	"kakeibo/internal/services"
)

type deleteCmd struct {
	env *env
	yes bool
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete an entry after confirmation" }
func (*deleteCmd) Usage() string {
	return `kakeibo-admin delete [-y] <id>

  Shows the entry and asks for confirmation before removing it.
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Delete without asking.")
}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		c.env.fail("Error: exactly one entry id is required.")
		return subcommands.ExitUsageError
	}
	id, err := strconv.ParseInt(f.Arg(0), 10, 64)
	if err != nil {
		c.env.fail("Error: invalid entry id %q.", f.Arg(0))
		return subcommands.ExitUsageError
	}

	ledger, err := c.env.open(ctx)
	if err != nil {
		c.env.fail("Error opening ledger: %v", err)
		return subcommands.ExitFailure
	}

	var confirmer services.Confirmer = promptConfirmer(c.env.in, c.env.out)
	if c.yes {
		confirmer = services.ConfirmFunc(func(context.Context, core.Entry) (bool, error) { return true, nil })
	}

	if _, ok := ledger.PrepareDelete(id); !ok {
		c.env.fail("Error: entry %d not found.", id)
		return subcommands.ExitFailure
	}
	removed, err := ledger.DeleteWithConfirmation(ctx, id, confirmer)
	if err != nil {
		c.env.fail("Error deleting entry: %v", err)
		return subcommands.ExitFailure
	}
	if removed {
		fmt.Fprintf(c.env.out, "Deleted entry %d\n", id)
	} else {
		fmt.Fprintln(c.env.out, "Cancelled")
	}
	return subcommands.ExitSuccess
}

// promptConfirmer asks on out and reads a y/N answer from in. Anything but
// "y" or "yes" cancels, including end of input.
func promptConfirmer(in io.Reader, out io.Writer) services.Confirmer {
	sc := bufio.NewScanner(in)
	return services.ConfirmFunc(func(_ context.Context, e core.Entry) (bool, error) {
		r := render.RowFor(e)
		fmt.Fprintf(out, "%s %s %s %s %s %s\n", r.Date, r.Member, r.Label, r.Category, r.Description, r.Amount)
		fmt.Fprintf(out, "%s [y/N]: ", render.ConfirmDeleteMessage)
		if !sc.Scan() {
			return false, sc.Err()
		}
		switch strings.ToLower(strings.TrimSpace(sc.Text())) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	})
}
