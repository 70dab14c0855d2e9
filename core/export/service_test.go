package export_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/export"
	"github.com/kmr-srbh/paper-desktop/tests"
)

var day1 = core.NewDate(2024, time.March, 4)

func TestFileName(t *testing.T) {
	assert.Equal(t, "Attendance Record 4-3-2024.csv", export.FileName(day1))
}

func TestService_CSV_NoRecords(t *testing.T) {
	env := testutil.NewEnv(t)
	dir := filepath.Join(env.Conf.ExportDir, "nested")
	svc := export.NewService(dir, env.AttendanceRepo, env.Report, env.Logger)

	files, err := svc.CSV(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestService_CSV(t *testing.T) {
	env := testutil.NewEnv(t)
	env.AddStudents(t, "Bob", "Alice")
	env.Record(t, day1, "Alice")
	env.Record(t, day1.AddDays(1), "Alice", "Bob")

	files, err := env.Export.CSV(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(env.Conf.ExportDir, "Attendance Record 4-3-2024.csv"),
		filepath.Join(env.Conf.ExportDir, "Attendance Record 5-3-2024.csv"),
	}, files)

	content, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, "Name,State\nAlice,P\nBob,A\n", string(content))
}

func TestService_Archive(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	env.AddStudents(t, "Alice")
	env.Record(t, day1, "Alice")
	kept := filepath.Join(env.Conf.ExportDir, export.FileName(day1))

	t.Run("discard", func(t *testing.T) {
		archived, err := env.Export.Archive(ctx, env.DB)
		require.NoError(t, err)
		assert.Equal(t, 1, archived.Len())
		_, err = os.Stat(kept)
		assert.True(t, os.IsNotExist(err), "staged files must not reach the export directory")

		require.NoError(t, archived.Discard())
		entries, err := os.ReadDir(env.Conf.ExportDir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("keep", func(t *testing.T) {
		archived, err := env.Export.Archive(ctx, env.DB)
		require.NoError(t, err)
		require.NoError(t, archived.Keep())

		entries, err := os.ReadDir(env.Conf.ExportDir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, export.FileName(day1), entries[0].Name())
	})
}

func TestService_Workbook(t *testing.T) {
	env := testutil.NewEnv(t)
	env.AddStudents(t, "Alice", "Bob")
	env.Record(t, day1, "Alice")

	path, err := env.Export.Workbook(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(env.Conf.ExportDir, export.WorkbookName), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Daily", "Students"}, f.GetSheetList())

	daily, err := f.GetRows("Daily")
	require.NoError(t, err)
	require.Len(t, daily, 2)
	assert.Equal(t, []string{"Day", "Date", "Present", "Absent", "Attendance %"}, daily[0])
	assert.Equal(t, []string{"1", "4-3-2024", "1", "1", "50"}, daily[1])

	students, err := f.GetRows("Students")
	require.NoError(t, err)
	require.Len(t, students, 3)
	assert.Equal(t, []string{"1", "Alice", "1", "1", "100", "Excellent"}, students[1])
	assert.Equal(t, []string{"2", "Bob", "0", "1", "0", "Critical"}, students[2])
}
