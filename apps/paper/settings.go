package main

import (
	"context"
	"fmt"

	"github.com/kmr-srbh/paper-desktop/core/session"
	"github.com/kmr-srbh/paper-desktop/core/settings"
)

func (cli *commandLine) settings(ctx context.Context, args []string) error {
	action, rest, err := cli.action(args, "show", "save", "reset")
	if err != nil {
		return err
	}
	current := cli.disp.View().Settings

	var cmd session.Command
	switch action {
	case "show":
		cli.printSettings(current)
		return nil
	case "reset":
		cmd = session.ResetSettings{}
	case "save":
		fs := cli.flagSet("settings save")
		checkPresent := fs.Bool("check-present", current.CheckPresent, "Mark every student present when attendance begins.")
		minimum := fs.Int("minimum", current.MinimumAttendance, "The minimum attendance percentage.")
		freqStr := fs.String("frequency", current.BackupFrequency.String(), "How often to back up: daily, weekly or monthly.")
		if err = fs.Parse(rest); err != nil {
			return err
		}
		freq, err := settings.ParseFrequency(*freqStr)
		if err != nil {
			return err
		}
		cmd = session.SaveSettings{Update: settings.Update{
			CheckPresent:      *checkPresent,
			MinimumAttendance: *minimum,
			BackupFrequency:   freq,
		}}
	}

	if ctx, err = cli.unlock(ctx); err != nil {
		return err
	}
	ev, err := cli.disp.Dispatch(ctx, cmd)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cli.out, "Settings saved")
	cli.printSettings(ev.Data.(settings.Settings))
	return nil
}
