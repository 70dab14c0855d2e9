package main

import (
	"context"
	"fmt"

	"github.com/kmr-srbh/paper-desktop/core/roster"
	"github.com/kmr-srbh/paper-desktop/core/session"
)

func (cli *commandLine) student(ctx context.Context, args []string) error {
	action, rest, err := cli.action(args, "add", "remove", "rename", "list", "search")
	if err != nil {
		return err
	}

	fs := cli.flagSet("student " + action)
	name := fs.String("name", "", "The student's name, at most 40 characters.")
	roll := fs.Int("roll", 0, "The student's roll number.")
	query := fs.String("q", "", "A roll number or part of a name.")
	if err = fs.Parse(rest); err != nil {
		return err
	}

	switch action {
	case "list":
		cli.printStudents(cli.disp.View().Students)
		return nil
	case "search":
		if *query == "" {
			fs.Usage()
			return errHelp
		}
		found, err := cli.svc.Roster.Search(ctx, *query)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			_, _ = fmt.Fprintln(cli.out, "No student found")
			return nil
		}
		cli.printStudents(found)
		return nil
	}

	var cmd session.Command
	switch action {
	case "add":
		if *name == "" {
			fs.Usage()
			return errHelp
		}
		cmd = session.AddStudent{Name: *name}
	case "remove":
		if *roll == 0 {
			fs.Usage()
			return errHelp
		}
		cmd = session.RemoveStudent{Roll: *roll}
	case "rename":
		if *roll == 0 || *name == "" {
			fs.Usage()
			return errHelp
		}
		cmd = session.RenameStudent{Roll: *roll, Name: *name}
	}

	if ctx, err = cli.unlock(ctx); err != nil {
		return err
	}
	ev, err := cli.disp.Dispatch(ctx, cmd)
	if err != nil {
		return err
	}
	st := ev.Data.(roster.Student)
	switch action {
	case "add":
		_, _ = fmt.Fprintf(cli.out, "Added %s (roll %d)\n", st.Name, st.Roll)
	case "remove":
		_, _ = fmt.Fprintf(cli.out, "Removed %s\n", st.Name)
	case "rename":
		_, _ = fmt.Fprintf(cli.out, "Renamed to %s (roll %d)\n", st.Name, st.Roll)
	}
	return nil
}
