package main

import (
	"context"
	"fmt"

	"github.com/kmr-srbh/paper-desktop/core/session"
)

func (cli *commandLine) export(ctx context.Context, args []string) error {
	fs := cli.flagSet("export")
	workbook := fs.Bool("xlsx", false, "Also write the report workbook.")
	reveal := fs.Bool("open", false, "Open the export folder afterwards.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, err := cli.unlock(ctx)
	if err != nil {
		return err
	}
	ev, err := cli.disp.Dispatch(ctx, session.Export{Workbook: *workbook, Reveal: *reveal})
	if err != nil {
		return err
	}
	res := ev.Data.(session.ExportResult)
	_, _ = fmt.Fprintf(cli.out, "Exported %d record(s) to %s\n", len(res.Files), res.Dir)
	if res.Workbook != "" {
		_, _ = fmt.Fprintf(cli.out, "Report written to %s\n", res.Workbook)
	}
	return nil
}
