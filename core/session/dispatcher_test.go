package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/attendance"
	"github.com/kmr-srbh/paper-desktop/core/class"
	"github.com/kmr-srbh/paper-desktop/core/report"
	"github.com/kmr-srbh/paper-desktop/core/roster"
	"github.com/kmr-srbh/paper-desktop/core/session"
	"github.com/kmr-srbh/paper-desktop/core/settings"
	"github.com/kmr-srbh/paper-desktop/tests"
)

var today = core.NewDate(2024, time.March, 4)

func setup(t *testing.T) (*session.Dispatcher, *testutil.Env) {
	env := testutil.NewEnv(t)
	testutil.FreezeToday(t, today)
	return session.NewDispatcher(env.Services(), env.Logger), env
}

func TestDispatcher_Locked(t *testing.T) {
	d, _ := setup(t)
	ctx := context.Background()

	_, err := d.Dispatch(ctx, session.AddStudent{Name: "Alice"})
	assert.ErrorIs(t, err, session.ErrLocked)

	ev, err := d.Dispatch(ctx, session.CreatePIN{PIN: "1234"})
	require.NoError(t, err)
	assert.Equal(t, session.PINCreated, ev.Kind)
	assert.True(t, d.View().HasPIN)

	_, err = d.Dispatch(ctx, session.Unlock{PIN: "0000"})
	assert.ErrorIs(t, err, class.ErrWrongPIN)
	ev, err = d.Dispatch(ctx, session.Unlock{PIN: "1234"})
	require.NoError(t, err)
	assert.Equal(t, session.Unlocked, ev.Kind)

	_, err = d.Dispatch(session.WithUnlocked(ctx), session.AddStudent{Name: "Alice"})
	assert.NoError(t, err)
}

func TestDispatcher_AttendanceFlow(t *testing.T) {
	d, env := setup(t)
	ctx := session.WithUnlocked(context.Background())

	cmds := []struct {
		cmd  session.Command
		want session.EventKind
	}{
		{cmd: session.CreatePIN{PIN: "1234"}, want: session.PINCreated},
		{cmd: session.CreateClass{Name: "Grade 5"}, want: session.ClassCreated},
		{cmd: session.AddStudent{Name: "alice"}, want: session.StudentAdded},
		{cmd: session.AddStudent{Name: "bob"}, want: session.StudentAdded},
		{cmd: session.AddStudent{Name: "carol"}, want: session.StudentAdded},
		{cmd: session.BeginAttendance{}, want: session.AttendanceBegun},
		{cmd: session.MarkStudent{Roll: 1, State: attendance.Present}, want: session.StudentMarked},
		{cmd: session.MarkStudent{Name: "Bob", State: attendance.Present}, want: session.StudentMarked},
	}
	for _, c := range cmds {
		ev, err := d.Dispatch(ctx, c.cmd)
		require.NoError(t, err, session.Name(c.cmd))
		assert.Equal(t, c.want, ev.Kind)
	}

	v := d.View()
	assert.Equal(t, "Grade 5", v.Class)
	assert.Equal(t, attendance.Recording, v.Phase)
	assert.Equal(t, []attendance.Mark{
		{Roll: 1, Name: "Alice", State: attendance.Present},
		{Roll: 2, Name: "Bob", State: attendance.Present},
		{Roll: 3, Name: "Carol", State: attendance.Absent},
	}, v.Sheet)

	ev, err := d.Dispatch(ctx, session.SaveAttendance{})
	require.NoError(t, err)
	assert.Equal(t, session.AttendanceSaved, ev.Kind)
	daily := ev.Data.(report.Daily)
	assert.Equal(t, 2, daily.Present)

	v = d.View()
	assert.Equal(t, attendance.Recorded, v.Phase)
	assert.Empty(t, v.Sheet)
	require.NotNil(t, v.Daily)
	assert.Equal(t, 1, v.Daily.Absent)
	assert.Len(t, v.Chart, 1)
	assert.Len(t, v.Report, 3)

	_, err = d.Dispatch(ctx, session.SaveAttendance{})
	assert.ErrorIs(t, err, session.ErrNoSheet)
	_, err = d.Dispatch(ctx, session.BeginAttendance{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyRecorded)

	ev, err = d.Dispatch(ctx, session.EditAttendance{Roll: 3, State: attendance.Present})
	require.NoError(t, err)
	res := ev.Data.(session.EditResult)
	assert.Equal(t, "Carol", res.Mark.Name)
	assert.Equal(t, 3, res.Daily.Present)
	assert.Equal(t, 3, d.View().Daily.Present)

	s, err := env.ReportRepo.GetStudentReport(context.Background(), "Carol")
	require.NoError(t, err)
	assert.Equal(t, 1, s.DaysPresent)
}

func TestDispatcher_ClearSheet(t *testing.T) {
	d, env := setup(t)
	ctx := session.WithUnlocked(context.Background())
	env.CreateClass(t)
	env.AddStudents(t, "Alice", "Bob")
	_, err := env.Settings.Save(context.Background(), settings.Update{CheckPresent: true, MinimumAttendance: 75, BackupFrequency: settings.Monthly})
	require.NoError(t, err)

	_, err = d.Dispatch(ctx, session.ClearSheet{})
	assert.ErrorIs(t, err, session.ErrNoSheet)

	ev, err := d.Dispatch(ctx, session.BeginAttendance{})
	require.NoError(t, err)
	for _, m := range ev.Data.([]attendance.Mark) {
		assert.Equal(t, attendance.Present, m.State)
	}

	ev, err = d.Dispatch(ctx, session.ClearSheet{})
	require.NoError(t, err)
	for _, m := range ev.Data.([]attendance.Mark) {
		assert.Equal(t, attendance.Absent, m.State)
	}
}

func TestDispatcher_RosterAndSettings(t *testing.T) {
	d, env := setup(t)
	ctx := session.WithUnlocked(context.Background())
	env.CreateClass(t)

	_, err := d.Dispatch(ctx, session.AddStudent{Name: "Alice"})
	require.NoError(t, err)
	ev, err := d.Dispatch(ctx, session.RenameStudent{Roll: 1, Name: "Alicia"})
	require.NoError(t, err)
	assert.Equal(t, roster.Student{Roll: 1, Name: "Alicia"}, ev.Data)
	assert.Equal(t, []roster.Student{{Roll: 1, Name: "Alicia"}}, d.View().Students)

	_, err = d.Dispatch(ctx, session.RemoveStudent{Roll: 1})
	require.NoError(t, err)
	assert.Empty(t, d.View().Students)

	_, err = d.Dispatch(ctx, session.RemoveStudent{Roll: 1})
	assert.ErrorIs(t, err, roster.ErrRollNumberNotFound)

	ev, err = d.Dispatch(ctx, session.SaveSettings{Update: settings.Update{MinimumAttendance: 60, BackupFrequency: settings.Weekly}})
	require.NoError(t, err)
	assert.Equal(t, session.SettingsSaved, ev.Kind)
	assert.Equal(t, 60, d.View().Settings.MinimumAttendance)
	assert.Equal(t, today.AddDays(7), d.View().Settings.BackupDate)

	_, err = d.Dispatch(ctx, session.ResetSettings{})
	require.NoError(t, err)
	assert.Equal(t, settings.Defaults(today), d.View().Settings)

	_, err = d.Dispatch(ctx, session.RenameClass{Name: "Grade 6"})
	require.NoError(t, err)
	assert.Equal(t, "Grade 6", d.View().Class)
}

func TestDispatcher_ExportAndDelete(t *testing.T) {
	d, env := setup(t)
	ctx := session.WithUnlocked(context.Background())
	env.CreateClass(t)
	env.AddStudents(t, "Alice")
	env.Record(t, today, "Alice")

	ev, err := d.Dispatch(ctx, session.Export{Workbook: true})
	require.NoError(t, err)
	res := ev.Data.(session.ExportResult)
	assert.Len(t, res.Files, 1)
	assert.FileExists(t, res.Workbook)

	_, err = d.Dispatch(ctx, session.DeleteClass{PIN: "0000"})
	assert.ErrorIs(t, err, class.ErrWrongPIN)

	ev, err = d.Dispatch(ctx, session.DeleteClass{PIN: testutil.PIN})
	require.NoError(t, err)
	assert.Equal(t, session.ClassDeleted, ev.Kind)

	v := d.View()
	assert.False(t, v.HasPIN)
	assert.Empty(t, v.Students)
}

func TestDispatcher_Start(t *testing.T) {
	d, env := setup(t)
	env.CreateClass(t)

	res, err := d.Start(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Ran)
	assert.Equal(t, "Grade 5", d.View().Class)
	assert.Equal(t, attendance.NotRecorded, d.View().Phase)
}

func TestEventKind_String(t *testing.T) {
	assert.Equal(t, "attendance.saved", session.AttendanceSaved.String())
	assert.Equal(t, "unknown", session.EventKind(0).String())
}
