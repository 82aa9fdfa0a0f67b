package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"os"
	"strconv"

	"github.com/google/subcommands"

	"kakeibo/internal/core"
)

var csvHeader = []string{"id", "date", "member", "type", "category", "description", "amount"}

type exportCmd struct {
	env *env
	out string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write all entries as CSV" }
func (*exportCmd) Usage() string {
	return `kakeibo-admin export [-o <file>]

  Writes the entries in display order as CSV to stdout or to a file.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "o", "", "Output file. Defaults to stdout.")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := c.env.open(ctx)
	if err != nil {
		c.env.fail("Error opening ledger: %v", err)
		return subcommands.ExitFailure
	}

	w := c.env.out
	if c.out != "" {
		file, err := os.Create(c.out)
		if err != nil {
			c.env.fail("Error creating output file: %v", err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		w = file
	}

	if err := writeCSV(w, ledger.Snapshot().Entries); err != nil {
		c.env.fail("Error writing CSV: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func writeCSV(w io.Writer, entries []core.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		rec := []string{
			strconv.FormatInt(e.ID, 10),
			e.Date,
			e.Member,
			e.Type.String(),
			e.Category,
			e.Description,
			e.Amount.String(),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
