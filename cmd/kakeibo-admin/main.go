// Command kakeibo-admin inspects and edits a stored ledger from the
// terminal. It reads the same environment as the server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/google/subcommands"

	"kakeibo/internal/backend"
	"kakeibo/internal/cli"
	"kakeibo/internal/log"
)

var (
	backendFlag = flag.String("backend", "", "Override DATA_BACKEND ("+strings.Join(backend.GetBackendTypeStrings(), ", ")+").")
	slotKeyFlag = flag.String("key", "", "Override SLOT_KEY.")
	verboseFlag = flag.Bool("v", false, "Log at debug level.")
)

func main() {
	cli.LoadEnvFile()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	env := newEnv(os.Stdin, os.Stdout)
	commander.Register(&listCmd{env: env}, "entries")
	commander.Register(&addCmd{env: env}, "entries")
	commander.Register(&deleteCmd{env: env}, "entries")
	commander.Register(&summaryCmd{env: env}, "reports")
	commander.Register(&exportCmd{env: env}, "reports")

	flag.Parse()

	level := slog.LevelWarn
	if *verboseFlag {
		level = slog.LevelDebug
	}
	env.logger = cli.SetupLogger(os.Stderr, level, log.ComponentAdmin)

	cfg := cli.LoadAndValidateConfig(env.logger)
	if *backendFlag != "" {
		cfg.DataBackend = *backendFlag
	}
	if *slotKeyFlag != "" {
		cfg.SlotKey = *slotKeyFlag
	}
	env.cfg = cfg

	ctx, stop := cli.SignalContext(context.Background(), env.logger)
	status := commander.Execute(ctx)
	stop()
	env.close()
	os.Exit(int(status))
}
