package main

import (
	"context"
	"fmt"

	"github.com/kmr-srbh/paper-desktop/core/attendance"
	"github.com/kmr-srbh/paper-desktop/core/report"
	"github.com/kmr-srbh/paper-desktop/core/session"
)

// attend records the named students present and everyone else absent.
func (cli *commandLine) attend(ctx context.Context, args []string) error {
	fs := cli.flagSet("attend")
	dateStr := fs.String("date", "", "The date to record (D-M-YYYY), today by default.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	date, err := parseDate(*dateStr)
	if err != nil {
		return err
	}

	if ctx, err = cli.unlock(ctx); err != nil {
		return err
	}
	cmds := []session.Command{session.BeginAttendance{Date: date}, session.ClearSheet{}}
	for _, name := range fs.Args() {
		cmds = append(cmds, session.MarkStudent{Name: name, State: attendance.Present})
	}
	cmds = append(cmds, session.SaveAttendance{})

	var ev session.Event
	for _, cmd := range cmds {
		if ev, err = cli.disp.Dispatch(ctx, cmd); err != nil {
			return err
		}
	}
	daily := ev.Data.(report.Daily)
	_, _ = fmt.Fprintf(cli.out, "Recorded %s: %d present, %d absent (%s%%)\n",
		daily.Date.Label(), daily.Present, daily.Absent, daily.Percentage.StringFixed(1))
	return nil
}

func (cli *commandLine) edit(ctx context.Context, args []string) error {
	fs := cli.flagSet("edit")
	dateStr := fs.String("date", "", "The recorded date (D-M-YYYY), today by default.")
	roll := fs.Int("roll", 0, "The roll number within that date's record.")
	stateStr := fs.String("state", "", "The corrected state: P or A.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *roll == 0 || *stateStr == "" {
		fs.Usage()
		return errHelp
	}
	date, err := parseDate(*dateStr)
	if err != nil {
		return err
	}
	st, err := attendance.ParseState(*stateStr)
	if err != nil {
		return err
	}

	if ctx, err = cli.unlock(ctx); err != nil {
		return err
	}
	ev, err := cli.disp.Dispatch(ctx, session.EditAttendance{Date: date, Roll: *roll, State: st})
	if err != nil {
		return err
	}
	res := ev.Data.(session.EditResult)
	_, _ = fmt.Fprintf(cli.out, "%s is now %s on %s (%s%%)\n",
		res.Mark.Name, res.Mark.State, date.Label(), res.Daily.Percentage.StringFixed(1))
	return nil
}
