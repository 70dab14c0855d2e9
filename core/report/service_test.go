package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/report"
	"github.com/kmr-srbh/paper-desktop/tests"
)

var day1 = core.NewDate(2024, time.March, 4)

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "got %s, want %s", got, want)
}

func TestService_RecordScenario(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	env.AddStudents(t, "Alice", "Bob")

	daily := env.Record(t, day1, "Alice")
	assert.Equal(t, 1, daily.Present)
	assert.Equal(t, 1, daily.Absent)
	assertDecimal(t, "50", daily.Percentage)

	stored, err := env.Report.Daily(ctx, day1)
	require.NoError(t, err)
	assert.True(t, stored.Date.Equal(day1))
	assert.Equal(t, 2, stored.Total())
	assertDecimal(t, "50", stored.Percentage)

	alice, err := env.ReportRepo.GetStudentReport(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, report.Student{Name: "Alice", TotalDays: 1, DaysPresent: 1}, alice)
	bob, err := env.ReportRepo.GetStudentReport(ctx, "Bob")
	require.NoError(t, err)
	assert.Equal(t, report.Student{Name: "Bob", TotalDays: 1, DaysPresent: 0}, bob)
}

func TestService_ApplyEdit(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	env.AddStudents(t, "Alice")
	env.Record(t, day1)

	tests := []struct {
		name                string
		wasPresent, present bool
		wantDaysPresent     int
	}{
		{name: "absent to present", wasPresent: false, present: true, wantDaysPresent: 1},
		{name: "present to present", wasPresent: true, present: true, wantDaysPresent: 1},
		{name: "present to absent", wasPresent: true, present: false, wantDaysPresent: 0},
		{name: "absent to absent", wasPresent: false, present: false, wantDaysPresent: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, env.Report.ApplyEdit(ctx, "Alice", tc.wasPresent, tc.present))
			s, err := env.ReportRepo.GetStudentReport(ctx, "Alice")
			require.NoError(t, err)
			assert.Equal(t, tc.wantDaysPresent, s.DaysPresent)
			assert.Equal(t, 1, s.TotalDays)
		})
	}

	t.Run("removed student", func(t *testing.T) {
		assert.NoError(t, env.Report.ApplyEdit(ctx, "Nobody", false, true))
	})
}

func TestService_RecomputeDaily(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	_, err := env.Report.RecomputeDaily(ctx, day1)
	assert.ErrorIs(t, err, report.ErrNotFound)

	env.AddStudents(t, "Alice", "Bob", "Carol")
	env.Record(t, day1, "Alice", "Bob")

	d, err := env.Report.RecomputeDaily(ctx, day1)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Present)
	assert.Equal(t, 1, d.Absent)
	assertDecimal(t, "66.7", d.Percentage)

	dailies, err := env.Report.Dailies(ctx)
	require.NoError(t, err)
	assert.Len(t, dailies, 1, "recomputing must update, not insert")
}

func TestService_Daily_NotFound(t *testing.T) {
	env := testutil.NewEnv(t)
	_, err := env.Report.Daily(context.Background(), day1)
	assert.ErrorIs(t, err, report.ErrNotFound)
	assert.EqualError(t, err, "No data found")
}

func TestService_Chart(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	env.AddStudents(t, "Alice", "Bob", "Carol", "Dan")

	day2, day3 := day1.AddDays(1), day1.AddDays(2)
	env.Record(t, day2, "Alice")
	env.Record(t, day1, "Alice", "Bob", "Carol", "Dan")
	env.Record(t, day3)

	points, err := env.Report.Chart(ctx)
	require.NoError(t, err)
	require.Len(t, points, 3)

	// recording order
	assert.Equal(t, 1, points[0].Day)
	assert.True(t, points[0].Date.Equal(day2))
	assertDecimal(t, "25", points[0].Percentage)
	assert.Equal(t, 2, points[1].Day)
	assert.True(t, points[1].Date.Equal(day1))
	assertDecimal(t, "100", points[1].Percentage)
	assert.Equal(t, 3, points[2].Day)
	assertDecimal(t, "0", points[2].Percentage)
}

func TestService_Students(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	env.AddStudents(t, "Alice", "Bob", "Carol")

	env.Record(t, day1, "Alice", "Bob")
	env.Record(t, day1.AddDays(1), "Alice", "Bob")
	env.Record(t, day1.AddDays(2), "Alice")

	rows, err := env.Report.Students(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	tests := []struct {
		roll        int
		name        string
		daysPresent int
		pct         string
		remark      report.Remark
	}{
		{roll: 1, name: "Alice", daysPresent: 3, pct: "100", remark: report.RemarkExcellent},
		{roll: 2, name: "Bob", daysPresent: 2, pct: "66.67", remark: report.RemarkWarning},
		{roll: 3, name: "Carol", daysPresent: 0, pct: "0", remark: report.RemarkCritical},
	}
	for i, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			row := rows[i]
			assert.Equal(t, tc.roll, row.Roll)
			assert.Equal(t, tc.name, row.Name)
			assert.Equal(t, tc.daysPresent, row.DaysPresent)
			assert.Equal(t, 3, row.TotalDays)
			assertDecimal(t, tc.pct, row.Percentage)
			assert.Equal(t, tc.remark, row.Remark)
		})
	}
}

func TestService_DailyDetail(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	env.AddStudents(t, "Alice", "Bob", "Carol")
	env.Record(t, day1, "Bob")

	detail, err := env.Report.DailyDetail(ctx, day1)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Present)
	assert.Equal(t, []report.DetailLine{{No: 1, Name: "Bob", Roll: 2}}, detail.PresentList)
	assert.Equal(t, []report.DetailLine{{No: 1, Name: "Alice", Roll: 1}, {No: 2, Name: "Carol", Roll: 3}}, detail.AbsentList)

	_, err = env.Report.DailyDetail(ctx, day1.AddDays(1))
	assert.ErrorIs(t, err, report.ErrNotFound)
}
