package main

import (
	"context"
	"fmt"

	"github.com/kmr-srbh/paper-desktop/core/session"
)

func (cli *commandLine) pin(ctx context.Context, args []string) error {
	action, _, err := cli.action(args, "create", "change")
	if err != nil {
		return err
	}

	switch action {
	case "create":
		pin, err := cli.readPIN("New PIN:")
		if err != nil {
			return err
		}
		if _, err = cli.disp.Dispatch(ctx, session.CreatePIN{PIN: pin}); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cli.out, "PIN created")
	case "change":
		oldPIN, err := cli.readPIN("Current PIN:")
		if err != nil {
			return err
		}
		newPIN, err := cli.readPIN("New PIN:")
		if err != nil {
			return err
		}
		// ChangePIN checks the current PIN itself
		cmd := session.ChangePIN{OldPIN: oldPIN, NewPIN: newPIN}
		if _, err = cli.disp.Dispatch(session.WithUnlocked(ctx), cmd); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cli.out, "PIN changed")
	}
	return nil
}
