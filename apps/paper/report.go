package main

import (
	"context"
)

func (cli *commandLine) report(ctx context.Context, args []string) error {
	action, rest, err := cli.action(args, "daily", "students", "chart")
	if err != nil {
		return err
	}

	switch action {
	case "daily":
		fs := cli.flagSet("report daily")
		dateStr := fs.String("date", "", "The recorded date (D-M-YYYY), today by default.")
		if err = fs.Parse(rest); err != nil {
			return err
		}
		date, err := parseDate(*dateStr)
		if err != nil {
			return err
		}
		detail, err := cli.svc.Report.DailyDetail(ctx, date)
		if err != nil {
			return err
		}
		cli.printDailyDetail(detail)
	case "students":
		cli.printStudentReport(cli.disp.View().Report)
	case "chart":
		cli.printChart(cli.disp.View().Chart)
	}
	return nil
}
