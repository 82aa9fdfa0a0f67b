package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"

	"kakeibo/internal/backend"
	"kakeibo/internal/cli"
	"kakeibo/internal/config"
	"kakeibo/internal/log"
	"kakeibo/internal/services"
)

// env is shared by every subcommand. The ledger is opened on first use so
// that help and flag listing never touch storage.
type env struct {
	cfg    *config.Config
	logger *log.Logger
	in     io.Reader
	out    io.Writer

	ledger *services.LedgerService
	res    *backend.BackendResult
}

func newEnv(in io.Reader, out io.Writer) *env {
	return &env{in: in, out: out, logger: log.Discard()}
}

func (e *env) open(ctx context.Context) (*services.LedgerService, error) {
	if e.ledger != nil {
		return e.ledger, nil
	}
	if e.cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	ledger, res, err := cli.OpenLedger(ctx, e.cfg, e.logger)
	if err != nil {
		return nil, err
	}
	e.ledger, e.res = ledger, res
	return ledger, nil
}

func (e *env) close() {
	if e.res == nil {
		return
	}
	if err := e.res.Close(); err != nil {
		e.logger.Error("Backend cleanup error", log.FieldError, err)
	}
	e.res = nil
}

func (e *env) fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// printMarkdown renders md for the terminal. Plain output, or a renderer
// failure, writes the Markdown source unchanged.
func printMarkdown(w io.Writer, md string, plain bool) {
	if !plain {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
		if err == nil {
			if out, err := r.Render(md); err == nil {
				fmt.Fprint(w, out)
				return
			}
		}
	}
	fmt.Fprint(w, md)
}
