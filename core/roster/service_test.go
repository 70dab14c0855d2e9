package roster_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/attendance"
	"github.com/kmr-srbh/paper-desktop/core/report"
	"github.com/kmr-srbh/paper-desktop/core/roster"
	"github.com/kmr-srbh/paper-desktop/tests"
)

var day1 = core.NewDate(2024, time.March, 4)

func names(students []roster.Student) []string {
	nn := make([]string, 0, len(students))
	for _, s := range students {
		nn = append(nn, s.Name)
	}
	return nn
}

func TestService_Add(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		input    string
		wantErr  error
		wantName string
		wantRoll int
	}{
		{name: "cleaned", input: "  bob   MARLEY ", wantName: "Bob Marley", wantRoll: 1},
		{name: "ordered by name", input: "alice", wantName: "Alice", wantRoll: 1},
		{name: "duplicate", input: "ALICE", wantErr: roster.ErrDuplicateStudent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st, err := env.Roster.Add(ctx, roster.NewStudent{Name: tc.input})
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, roster.Student{Roll: tc.wantRoll, Name: tc.wantName}, st)
		})
	}

	t.Run("blank", func(t *testing.T) {
		_, err := env.Roster.Add(ctx, roster.NewStudent{Name: "   "})
		fields, ok := core.FieldErrors(err)
		require.True(t, ok)
		assert.Contains(t, fields, "name")
	})

	list, err := env.Roster.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []roster.Student{{Roll: 1, Name: "Alice"}, {Roll: 2, Name: "Bob Marley"}}, list)
}

func TestService_AddRemove_RestoresRoster(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	env.AddStudents(t, "Alice", "Bob")
	env.Record(t, day1, "Alice", "Bob")

	before, err := env.Roster.Count(ctx)
	require.NoError(t, err)

	st, err := env.Roster.Add(ctx, roster.NewStudent{Name: "Carol"})
	require.NoError(t, err)
	env.Record(t, day1.AddDays(1), "Carol")

	removed, err := env.Roster.Remove(ctx, st.Roll)
	require.NoError(t, err)
	assert.Equal(t, "Carol", removed.Name)

	after, err := env.Roster.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = env.ReportRepo.GetStudentReport(ctx, "Carol")
	assert.ErrorIs(t, err, report.ErrNotFound)

	// history is kept
	marks, err := env.AttendanceRepo.GetRecord(ctx, day1.AddDays(1))
	require.NoError(t, err)
	assert.Contains(t, marks, attendance.Mark{Roll: 3, Name: "Carol", State: attendance.Present})
}

func TestService_Remove_RollNumberNotFound(t *testing.T) {
	env := testutil.NewEnv(t)
	env.AddStudents(t, "Alice")

	for _, roll := range []int{0, 2, -1} {
		_, err := env.Roster.Remove(context.Background(), roll)
		assert.ErrorIs(t, err, roster.ErrRollNumberNotFound)
	}
}

func TestService_Rename(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	env.AddStudents(t, "Alice", "Bob", "Carol")
	env.Record(t, day1, "Alice")
	env.Record(t, day1.AddDays(1), "Alice", "Bob")

	st, err := env.Roster.Rename(ctx, roster.RenameStudent{Roll: 1, Name: "zoe"})
	require.NoError(t, err)
	assert.Equal(t, roster.Student{Roll: 3, Name: "Zoe"}, st)

	list, err := env.Roster.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "Carol", "Zoe"}, names(list))

	s, err := env.ReportRepo.GetStudentReport(ctx, "Zoe")
	require.NoError(t, err)
	assert.Equal(t, report.Student{Name: "Zoe", TotalDays: 2, DaysPresent: 2}, s)
	_, err = env.ReportRepo.GetStudentReport(ctx, "Alice")
	assert.ErrorIs(t, err, report.ErrNotFound)

	for _, date := range []core.Date{day1, day1.AddDays(1)} {
		marks, err := env.AttendanceRepo.GetRecord(ctx, date)
		require.NoError(t, err)
		var found bool
		for _, m := range marks {
			assert.NotEqual(t, "Alice", m.Name)
			if m.Name == "Zoe" {
				found = true
				assert.Equal(t, attendance.Present, m.State)
			}
		}
		assert.True(t, found, "Zoe missing from %s", date)
	}
}

func TestService_Rename_Errors(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	env.AddStudents(t, "Alice", "Bob", "Dan")
	env.Record(t, day1, "Alice", "Dan")
	_, err := env.Roster.Remove(ctx, 3) // Dan stays in the record of day1
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    roster.RenameStudent
		wantErr error
	}{
		{name: "roll out of range", data: roster.RenameStudent{Roll: 3, Name: "Eve"}, wantErr: roster.ErrRollNumberNotFound},
		{name: "taken in roster", data: roster.RenameStudent{Roll: 1, Name: "bob"}, wantErr: roster.ErrDuplicateStudent},
		{name: "taken in a record", data: roster.RenameStudent{Roll: 1, Name: "Dan"}, wantErr: roster.ErrDuplicateStudent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.Roster.Rename(ctx, tc.data)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	// nothing changed
	list, err := env.Roster.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, names(list))
	_, err = env.ReportRepo.GetStudentReport(ctx, "Alice")
	assert.NoError(t, err)

	t.Run("same name", func(t *testing.T) {
		st, err := env.Roster.Rename(ctx, roster.RenameStudent{Roll: 1, Name: " alice "})
		require.NoError(t, err)
		assert.Equal(t, roster.Student{Roll: 1, Name: "Alice"}, st)
	})

	t.Run("blank", func(t *testing.T) {
		_, err := env.Roster.Rename(ctx, roster.RenameStudent{Roll: 1, Name: ""})
		_, ok := core.FieldErrors(err)
		assert.True(t, ok)
	})
}

func TestService_Search(t *testing.T) {
	env := testutil.NewEnv(t)
	env.AddStudents(t, "Alice Smith", "Bob Jones", "Carol Smith", "Robert Brown")

	tests := []struct {
		name string
		q    string
		want []string
	}{
		{name: "empty", q: "", want: []string{"Alice Smith", "Bob Jones", "Carol Smith", "Robert Brown"}},
		{name: "roll", q: "2", want: []string{"Bob Jones"}},
		{name: "roll out of range", q: "9", want: []string{}},
		{name: "substring", q: "SMITH", want: []string{"Alice Smith", "Carol Smith"}},
		{name: "close match", q: "bob jnes", want: []string{"Bob Jones"}},
		{name: "no match", q: "xyz", want: []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := env.Roster.Search(context.Background(), tc.q)
			require.NoError(t, err)
			assert.Equal(t, tc.want, names(got))
		})
	}
}
