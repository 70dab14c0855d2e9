package sqlxrepos

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/attendance"
	"github.com/kmr-srbh/paper-desktop/core/report"
	"github.com/kmr-srbh/paper-desktop/core/roster"
	"github.com/kmr-srbh/paper-desktop/storage/database"
)

type (
	attendanceRepository struct {
		repository
	}

	markRow struct {
		Name  string `db:"name"`
		State string `db:"state"`
	}

	countRow struct {
		Present int `db:"present"`
		Absent  int `db:"absent"`
	}
)

var (
	// interface compliance checks
	_ attendance.Repository    = (*attendanceRepository)(nil)
	_ report.AttendanceReader  = (*attendanceRepository)(nil)
	_ roster.AttendanceRecords = (*attendanceRepository)(nil)
)

func NewAttendanceRepository(exec core.DBExecutor) *attendanceRepository {
	return &attendanceRepository{repository{exec: exec}}
}

func recordTable(date core.Date) string {
	return database.Table(database.Attendance, date.TableName())
}

func (repo attendanceRepository) Dates(ctx context.Context, exec ...core.DBExecutor) ([]core.Date, error) {
	tables, err := database.ListTables(ctx, repo.getExec(exec), database.Attendance)
	if err != nil {
		return nil, err
	}
	dates := make([]core.Date, 0, len(tables))
	for _, t := range tables {
		if d, ok := core.ParseTableName(t); ok {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

func (repo attendanceRepository) HasRecord(ctx context.Context, date core.Date, exec ...core.DBExecutor) (bool, error) {
	return database.TableExists(ctx, repo.getExec(exec), database.Attendance, date.TableName())
}

func (repo attendanceRepository) CreateRecord(ctx context.Context, date core.Date, rec attendance.Record, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	table := recordTable(date)

	q := "CREATE TABLE IF NOT EXISTS " + table + " (name varchar(40) PRIMARY KEY, state varchar(1) NOT NULL)"
	if _, err := exe.ExecContext(ctx, q); err != nil {
		return errors.Wrapf(err, "creating record %s", date.TableName())
	}

	names := make([]string, 0, len(rec))
	for name := range rec {
		names = append(names, name)
	}
	sort.Strings(names)

	q = "INSERT INTO " + table + " (name, state) VALUES (?, ?)"
	for _, name := range names {
		if _, err := run(ctx, exe, q, name, string(rec[name])); err != nil {
			return errors.Wrapf(err, "inserting %s into record %s", name, date.TableName())
		}
	}
	return nil
}

func (repo attendanceRepository) marks(ctx context.Context, date core.Date, notFound error, exec core.DBExecutor) ([]markRow, error) {
	ok, err := database.TableExists(ctx, exec, database.Attendance, date.TableName())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound
	}

	rows := make([]markRow, 0)
	q := "SELECT name, state FROM " + recordTable(date) + " ORDER BY name"
	if err = sel(ctx, exec, &rows, q); err != nil {
		return nil, errors.Wrapf(err, "reading record %s", date.TableName())
	}
	return rows, nil
}

func (repo attendanceRepository) GetRecord(ctx context.Context, date core.Date, exec ...core.DBExecutor) ([]attendance.Mark, error) {
	rows, err := repo.marks(ctx, date, attendance.ErrNoRecord, repo.getExec(exec))
	if err != nil {
		return nil, err
	}
	marks := make([]attendance.Mark, 0, len(rows))
	for i, r := range rows {
		marks = append(marks, attendance.Mark{Roll: i + 1, Name: r.Name, State: attendance.State(r.State)})
	}
	return marks, nil
}

func (repo attendanceRepository) SetState(ctx context.Context, date core.Date, name string, st attendance.State, exec ...core.DBExecutor) error {
	q := "UPDATE " + recordTable(date) + " SET state = ? WHERE name = ?"
	n, err := run(ctx, repo.getExec(exec), q, string(st), name)
	if err != nil {
		return errors.Wrapf(err, "updating record %s", date.TableName())
	}
	if n == 0 {
		return attendance.ErrUnknownStudent
	}
	return nil
}

func (repo attendanceRepository) CountStates(ctx context.Context, date core.Date, exec ...core.DBExecutor) (int, int, error) {
	exe := repo.getExec(exec)
	ok, err := database.TableExists(ctx, exe, database.Attendance, date.TableName())
	if err != nil {
		return 0, 0, err
	}
	if !ok {
		return 0, 0, report.ErrNotFound
	}

	var row countRow
	q := "SELECT " +
		"COALESCE(SUM(CASE WHEN state = 'P' THEN 1 ELSE 0 END), 0) AS present, " +
		"COALESCE(SUM(CASE WHEN state = 'A' THEN 1 ELSE 0 END), 0) AS absent " +
		"FROM " + recordTable(date)
	if err = get(ctx, exe, &row, q); err != nil {
		return 0, 0, errors.Wrapf(err, "counting record %s", date.TableName())
	}
	return row.Present, row.Absent, nil
}

func (repo attendanceRepository) Entries(ctx context.Context, date core.Date, exec ...core.DBExecutor) ([]report.Entry, error) {
	rows, err := repo.marks(ctx, date, report.ErrNotFound, repo.getExec(exec))
	if err != nil {
		return nil, err
	}
	entries := make([]report.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, report.Entry{Name: r.Name, Present: attendance.State(r.State).IsPresent()})
	}
	return entries, nil
}

// RenameStudent rewrites oldName in every record. It fails with roster.ErrDuplicateStudent, before
// changing anything, when newName already appears in a record.
func (repo attendanceRepository) RenameStudent(ctx context.Context, oldName, newName string, exec ...core.DBExecutor) (int, error) {
	exe := repo.getExec(exec)
	dates, err := repo.Dates(ctx, exe)
	if err != nil {
		return 0, err
	}

	for _, date := range dates {
		var cnt int
		q := "SELECT count(*) FROM " + recordTable(date) + " WHERE name = ?"
		if err = get(ctx, exe, &cnt, q, newName); err != nil {
			return 0, errors.Wrapf(err, "checking record %s", date.TableName())
		}
		if cnt > 0 {
			return 0, roster.ErrDuplicateStudent
		}
	}

	var changed int
	for _, date := range dates {
		q := "UPDATE " + recordTable(date) + " SET name = ? WHERE name = ?"
		n, err := run(ctx, exe, q, newName, oldName)
		if err != nil {
			return changed, errors.Wrapf(err, "renaming in record %s", date.TableName())
		}
		if n > 0 {
			changed++
		}
	}
	return changed, nil
}
