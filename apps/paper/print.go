package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/kmr-srbh/paper-desktop/core/report"
	"github.com/kmr-srbh/paper-desktop/core/roster"
	"github.com/kmr-srbh/paper-desktop/core/session"
	"github.com/kmr-srbh/paper-desktop/core/settings"
)

const chartWidth = 50

func (cli *commandLine) table(header ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(header, "\t"))
	return w
}

func (cli *commandLine) printView(v session.View) {
	if !v.HasPIN {
		_, _ = fmt.Fprintln(cli.out, "No class yet, run: paper pin create")
		return
	}
	name := v.Class
	if name == "" {
		name = "(no class name)"
	}
	_, _ = fmt.Fprintf(cli.out, "%s: %d student(s)\n", name, len(v.Students))
	_, _ = fmt.Fprintf(cli.out, "Today (%s): attendance %s\n", v.Today.Label(), v.PhaseStr)
	if v.Daily != nil {
		_, _ = fmt.Fprintf(cli.out, "  %d present, %d absent (%s%%)\n", v.Daily.Present, v.Daily.Absent, v.Daily.Percentage.StringFixed(1))
	}
	_, _ = fmt.Fprintf(cli.out, "Days recorded: %d\n", len(v.Chart))
}

func (cli *commandLine) printStudents(students []roster.Student) {
	w := cli.table("ROLL", "NAME")
	for _, st := range students {
		_, _ = fmt.Fprintf(w, "%d\t%s\n", st.Roll, st.Name)
	}
	_ = w.Flush()
}

func (cli *commandLine) printDailyDetail(d report.DailyDetail) {
	_, _ = fmt.Fprintf(cli.out, "%s: %d present, %d absent (%s%%)\n", d.Date.Label(), d.Present, d.Absent, d.Percentage.StringFixed(1))
	lists := []struct {
		title string
		lines []report.DetailLine
	}{
		{title: "Present", lines: d.PresentList},
		{title: "Absent", lines: d.AbsentList},
	}
	for _, l := range lists {
		_, _ = fmt.Fprintf(cli.out, "\n%s\n", l.title)
		w := cli.table("NO.", "NAME", "ROLL")
		for _, line := range l.lines {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%d\n", line.No, line.Name, line.Roll)
		}
		_ = w.Flush()
	}
}

func (cli *commandLine) printStudentReport(rows []report.StudentRow) {
	w := cli.table("ROLL", "NAME", "PRESENT", "TOTAL", "PERCENTAGE", "REMARK")
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\t%s\n", r.Roll, r.Name, r.DaysPresent, r.TotalDays, r.Percentage.StringFixed(2), r.Remark)
	}
	_ = w.Flush()
}

func (cli *commandLine) printChart(points []report.ChartPoint) {
	w := cli.table("DAY", "DATE", "%", "")
	for _, p := range points {
		bar := int(p.Percentage.IntPart()) * chartWidth / 100
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.Day, p.Date.Label(), p.Percentage.StringFixed(1), strings.Repeat("#", bar))
	}
	_ = w.Flush()
}

func (cli *commandLine) printSettings(s settings.Settings) {
	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "check present\t%t\n", s.CheckPresent)
	_, _ = fmt.Fprintf(w, "minimum attendance\t%d%%\n", s.MinimumAttendance)
	_, _ = fmt.Fprintf(w, "backup frequency\t%s\n", s.BackupFrequency)
	_, _ = fmt.Fprintf(w, "next backup\t%s\n", s.BackupDate.Label())
	_ = w.Flush()
}
