package main

import (
	"context"
	"fmt"

	"github.com/kmr-srbh/paper-desktop/core/session"
)

func (cli *commandLine) class(ctx context.Context, args []string) error {
	action, rest, err := cli.action(args, "create", "rename", "delete", "show")
	if err != nil {
		return err
	}

	if action == "show" {
		cli.printView(cli.disp.View())
		return nil
	}

	fs := cli.flagSet("class " + action)
	name := fs.String("name", "", "The class name, at most 20 characters.")
	if err = fs.Parse(rest); err != nil {
		return err
	}
	if action != "delete" && *name == "" {
		fs.Usage()
		return errHelp
	}

	if action == "delete" {
		pin, err := cli.readPIN("Enter PIN to delete the class:")
		if err != nil {
			return err
		}
		ev, err := cli.disp.Dispatch(session.WithUnlocked(ctx), session.DeleteClass{PIN: pin})
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cli.out, "Class deleted, records archived in %s\n", ev.Data)
		return nil
	}

	if ctx, err = cli.unlock(ctx); err != nil {
		return err
	}
	var cmd session.Command = session.CreateClass{Name: *name}
	if action == "rename" {
		cmd = session.RenameClass{Name: *name}
	}
	if _, err = cli.disp.Dispatch(ctx, cmd); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "Class %q saved\n", cli.disp.View().Class)
	return nil
}
