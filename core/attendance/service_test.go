package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/attendance"
	"github.com/kmr-srbh/paper-desktop/core/report"
	"github.com/kmr-srbh/paper-desktop/core/settings"
	"github.com/kmr-srbh/paper-desktop/tests"
)

var day1 = core.NewDate(2024, time.March, 4)

func TestService_Begin(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	_, err := env.Attendance.Begin(ctx, day1)
	assert.ErrorIs(t, err, attendance.ErrEmptyRoster)

	env.AddStudents(t, "Bob", "Alice")

	sh, err := env.Attendance.Begin(ctx, day1)
	require.NoError(t, err)
	assert.Equal(t, []attendance.Mark{
		{Roll: 1, Name: "Alice", State: attendance.Absent},
		{Roll: 2, Name: "Bob", State: attendance.Absent},
	}, sh.Marks())

	_, err = env.Settings.Save(ctx, settings.Update{CheckPresent: true, MinimumAttendance: 75, BackupFrequency: settings.Monthly})
	require.NoError(t, err)
	sh, err = env.Attendance.Begin(ctx, day1)
	require.NoError(t, err)
	for _, m := range sh.Marks() {
		assert.Equal(t, attendance.Present, m.State)
	}

	env.Record(t, day1)
	_, err = env.Attendance.Begin(ctx, day1)
	assert.ErrorIs(t, err, attendance.ErrAlreadyRecorded)
}

func TestService_Phase(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	env.AddStudents(t, "Alice")

	ph, err := env.Attendance.Phase(ctx, day1)
	require.NoError(t, err)
	assert.Equal(t, attendance.NotRecorded, ph)

	env.Record(t, day1, "Alice")
	ph, err = env.Attendance.Phase(ctx, day1)
	require.NoError(t, err)
	assert.Equal(t, attendance.Recorded, ph)
}

func TestService_Record(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	env.AddStudents(t, "Alice", "Bob")

	sh, err := env.Attendance.Begin(ctx, day1)
	require.NoError(t, err)
	require.NoError(t, sh.MarkName("Alice", attendance.Present))

	daily, err := env.Attendance.Record(ctx, day1, sh.Record())
	require.NoError(t, err)
	assert.Equal(t, 1, daily.Present)
	assert.Equal(t, 1, daily.Absent)
	assert.True(t, decimal.NewFromInt(50).Equal(daily.Percentage))

	t.Run("already recorded", func(t *testing.T) {
		_, err := env.Attendance.Record(ctx, day1, sh.Record())
		assert.ErrorIs(t, err, attendance.ErrAlreadyRecorded)

		s, err := env.ReportRepo.GetStudentReport(ctx, "Alice")
		require.NoError(t, err)
		assert.Equal(t, 1, s.TotalDays, "a second save must not count twice")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := env.Attendance.Record(ctx, day1.AddDays(1), attendance.Record{})
		assert.ErrorIs(t, err, attendance.ErrEmptyRecord)
		ok, err := env.AttendanceRepo.HasRecord(ctx, day1.AddDays(1))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	marks, err := env.Attendance.Get(ctx, day1)
	require.NoError(t, err)
	assert.Equal(t, []attendance.Mark{
		{Roll: 1, Name: "Alice", State: attendance.Present},
		{Roll: 2, Name: "Bob", State: attendance.Absent},
	}, marks)
}

func TestService_Record_rosterNames(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	env.AddStudents(t, "Alice", "Bob")

	t.Run("unknown student", func(t *testing.T) {
		rec := attendance.Record{"Alice": attendance.Present, "Bob": attendance.Absent, "Mallory": attendance.Present}
		_, err := env.Attendance.Record(ctx, day1, rec)
		assert.ErrorIs(t, err, attendance.ErrUnknownStudent)

		ok, err := env.AttendanceRepo.HasRecord(ctx, day1)
		require.NoError(t, err)
		assert.False(t, ok, "a rejected record must not create the date")
		_, err = env.ReportRepo.GetStudentReport(ctx, "Mallory")
		assert.ErrorIs(t, err, report.ErrNotFound)
	})

	t.Run("names are cleaned", func(t *testing.T) {
		daily, err := env.Attendance.Record(ctx, day1, attendance.Record{"Alice": attendance.Present, " bob ": attendance.Absent})
		require.NoError(t, err)
		assert.Equal(t, 1, daily.Present)
		assert.Equal(t, 1, daily.Absent)

		s, err := env.ReportRepo.GetStudentReport(ctx, "Bob")
		require.NoError(t, err)
		assert.Equal(t, report.Student{Name: "Bob", TotalDays: 1, DaysPresent: 0}, s)
	})
}

func TestService_Edit(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	env.AddStudents(t, "Alice", "Bob")
	env.Record(t, day1, "Alice")

	tests := []struct {
		name           string
		roll           int
		state          attendance.State
		wantErr        error
		wantPresent    int
		wantBobPresent int
		wantBobTotal   int
	}{
		{name: "absent to present", roll: 2, state: attendance.Present, wantPresent: 2, wantBobPresent: 1, wantBobTotal: 1},
		{name: "same state again", roll: 2, state: attendance.Present, wantPresent: 2, wantBobPresent: 1, wantBobTotal: 1},
		{name: "present to absent", roll: 2, state: attendance.Absent, wantPresent: 1, wantBobPresent: 0, wantBobTotal: 1},
		{name: "roll out of range", roll: 3, state: attendance.Present, wantErr: attendance.ErrRollNumberNotFound},
		{name: "invalid state", roll: 1, state: "X", wantErr: attendance.ErrInvalidState},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mark, daily, err := env.Attendance.Edit(ctx, day1, tc.roll, tc.state)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, attendance.Mark{Roll: tc.roll, Name: "Bob", State: tc.state}, mark)
			assert.Equal(t, tc.wantPresent, daily.Present)
			assert.Equal(t, 2, daily.Total())
			assert.True(t, report.Percentage(tc.wantPresent, 2, 1).Equal(daily.Percentage))

			bob, err := env.ReportRepo.GetStudentReport(ctx, "Bob")
			require.NoError(t, err)
			assert.Equal(t, tc.wantBobPresent, bob.DaysPresent)
			assert.Equal(t, tc.wantBobTotal, bob.TotalDays)
		})
	}

	t.Run("no record", func(t *testing.T) {
		_, _, err := env.Attendance.Edit(ctx, day1.AddDays(1), 1, attendance.Present)
		assert.ErrorIs(t, err, attendance.ErrNoRecord)
	})
}

func TestService_Edit_AfterRosterChange(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	env.AddStudents(t, "Alice", "Bob", "Carol")
	env.Record(t, day1, "Alice", "Bob", "Carol")
	_, err := env.Roster.Remove(ctx, 2)
	require.NoError(t, err)

	// roll 2 still addresses Bob within the record of day1
	mark, daily, err := env.Attendance.Edit(ctx, day1, 2, attendance.Absent)
	require.NoError(t, err)
	assert.Equal(t, "Bob", mark.Name)
	assert.Equal(t, 2, daily.Present)
	assert.Equal(t, 1, daily.Absent)
	assert.True(t, decimal.RequireFromString("66.7").Equal(daily.Percentage))
}

func TestService_Dates(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	env.AddStudents(t, "Alice")

	day2 := core.NewDate(2024, time.November, 12)
	env.Record(t, day2)
	env.Record(t, day1)

	dates, err := env.Attendance.Dates(ctx)
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.True(t, dates[0].Equal(day1))
	assert.True(t, dates[1].Equal(day2))
}
