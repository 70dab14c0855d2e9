package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/kmr-srbh/paper-desktop/apps"
	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/session"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db     *sqlx.DB
	svc    session.Services
	disp   *session.Dispatcher
	logger core.Logger
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	w := cli.out
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  pin create|change                               - set or change the 4 digit PIN")
	_, _ = fmt.Fprintln(w, "  class create|rename -name NAME                  - name the class")
	_, _ = fmt.Fprintln(w, "  class show                                      - show the class and today's attendance")
	_, _ = fmt.Fprintln(w, "  class delete                                    - export the records, then erase the class")
	_, _ = fmt.Fprintln(w, "  student add -name NAME                          - add a student to the roster")
	_, _ = fmt.Fprintln(w, "  student remove -roll N                          - remove a student, keeping past records")
	_, _ = fmt.Fprintln(w, "  student rename -roll N -name NAME               - rename a student everywhere")
	_, _ = fmt.Fprintln(w, "  student list|search -q QUERY                    - list or search the roster")
	_, _ = fmt.Fprintln(w, "  attend [-date D-M-YYYY] NAME...                 - record the named students present, the others absent")
	_, _ = fmt.Fprintln(w, "  edit [-date D-M-YYYY] -roll N -state P|A        - correct a recorded state")
	_, _ = fmt.Fprintln(w, "  report daily [-date D-M-YYYY]|students|chart    - show the reports")
	_, _ = fmt.Fprintln(w, "  settings show|reset                             - show or restore the settings")
	_, _ = fmt.Fprintln(w, "  settings save [-check-present] [-minimum N] [-frequency daily|weekly|monthly]")
	_, _ = fmt.Fprintln(w, "  export [-xlsx] [-open]                          - write the CSV records (and the workbook)")
	_, _ = fmt.Fprintln(w, "  migrate COMMAND [ARGS]                          - run a goose migration command")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()
	cmd, rest := args[1], args[2:]

	if cmd == "migrate" {
		return cli.migrate(ctx, rest)
	}

	res, err := cli.disp.Start(ctx)
	if err != nil {
		return err
	}
	if res.Ran {
		_, _ = fmt.Fprintf(cli.out, "Backed up %d record(s) to %s, next backup on %s\n", len(res.Files), res.Dir, res.NextDate.Label())
	}

	switch cmd {
	case "pin":
		return cli.pin(ctx, rest)
	case "class":
		return cli.class(ctx, rest)
	case "student":
		return cli.student(ctx, rest)
	case "attend":
		return cli.attend(ctx, rest)
	case "edit":
		return cli.edit(ctx, rest)
	case "report":
		return cli.report(ctx, rest)
	case "settings":
		return cli.settings(ctx, rest)
	case "export":
		return cli.export(ctx, rest)
	default:
		cli.printUsage()
		return errHelp
	}
}

// readPIN prompts for a PIN without echoing it.
func (cli *commandLine) readPIN(prompt string) (string, error) {
	_, _ = fmt.Fprint(cli.out, prompt)
	pin, err := readPasswordFunc(int(os.Stdin.Fd()))
	_, _ = fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pin) == 0 {
		return "", apps.NewArgumentError("a PIN is required")
	}
	return string(pin), nil
}

// unlock asks for the PIN and returns a context allowed to change the class.
func (cli *commandLine) unlock(ctx context.Context) (context.Context, error) {
	pin, err := cli.readPIN("Enter PIN:")
	if err != nil {
		return nil, err
	}
	if _, err = cli.disp.Dispatch(ctx, session.Unlock{PIN: pin}); err != nil {
		return nil, err
	}
	return session.WithUnlocked(ctx), nil
}

// action splits "student add -name x" into "add" and its flags.
func (cli *commandLine) action(args []string, actions ...string) (string, []string, error) {
	if len(args) == 0 {
		cli.printUsage()
		return "", nil, errHelp
	}
	for _, a := range actions {
		if args[0] == a {
			return a, args[1:], nil
		}
	}
	cli.printUsage()
	return "", nil, errHelp
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parseDate returns today for an empty value.
func parseDate(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Today(), nil
	}
	return core.ParseDate(s)
}

// printError writes err, one line per invalid field for validation failures.
func printError(w io.Writer, err error) {
	fields, ok := core.FieldErrors(err)
	if !ok || len(fields) == 0 {
		_, _ = fmt.Fprintf(w, "\nerror: %s\n", err)
		return
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(w, "\nerror: %s: %s\n", name, fields[name])
	}
}
