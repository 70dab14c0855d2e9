package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/report"
	"github.com/kmr-srbh/paper-desktop/core/roster"
	"github.com/kmr-srbh/paper-desktop/storage/database"
)

var (
	studentReportTable = database.Table(database.Reports, database.StudentReportTable)
	dailyReportTable   = database.Table(database.Reports, database.DailyReportTable)
)

type (
	reportRepository struct {
		repository
	}

	studentReportRow struct {
		Name        string `db:"name"`
		TotalDays   int    `db:"total_days"`
		DaysPresent int    `db:"days_present"`
	}

	dailyReportRow struct {
		ID         int             `db:"id"`
		Date       string          `db:"date"`
		Present    int             `db:"present"`
		Absent     int             `db:"absent"`
		Percentage decimal.Decimal `db:"attendance_percentage"`
	}
)

var (
	// interface compliance checks
	_ report.Repository     = (*reportRepository)(nil)
	_ roster.StudentReports = (*reportRepository)(nil)
)

func NewReportRepository(exec core.DBExecutor) *reportRepository {
	return &reportRepository{repository{exec: exec}}
}

func (r studentReportRow) toStudent() report.Student {
	return report.Student{Name: r.Name, TotalDays: r.TotalDays, DaysPresent: r.DaysPresent}
}

func (r dailyReportRow) toDaily() (report.Daily, error) {
	date, ok := core.ParseTableName(r.Date)
	if !ok {
		var err error
		if date, err = core.ParseDate(r.Date); err != nil {
			return report.Daily{}, errors.Wrapf(err, "daily report %d", r.ID)
		}
	}
	return report.Daily{
		Date:       date,
		Present:    r.Present,
		Absent:     r.Absent,
		Percentage: r.Percentage,
	}, nil
}

func (repo reportRepository) GetStudentReport(ctx context.Context, name string, exec ...core.DBExecutor) (report.Student, error) {
	var row studentReportRow
	q := "SELECT name, total_days, days_present FROM " + studentReportTable + " WHERE name = ?"
	if err := get(ctx, repo.getExec(exec), &row, q, name); err != nil {
		return report.Student{}, trapNoRowsErr(err, report.ErrNotFound, "getting student report")
	}
	return row.toStudent(), nil
}

func (repo reportRepository) ListStudentReports(ctx context.Context, exec ...core.DBExecutor) ([]report.Student, error) {
	rows := make([]studentReportRow, 0)
	q := "SELECT name, total_days, days_present FROM " + studentReportTable + " ORDER BY name"
	if err := sel(ctx, repo.getExec(exec), &rows, q); err != nil {
		return nil, errors.Wrap(err, "listing student reports")
	}
	students := make([]report.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.toStudent())
	}
	return students, nil
}

func (repo reportRepository) CreateStudentReport(ctx context.Context, s report.Student, exec ...core.DBExecutor) error {
	q := "INSERT INTO " + studentReportTable + " (name, total_days, days_present) VALUES (?, ?, ?)"
	_, err := run(ctx, repo.getExec(exec), q, s.Name, s.TotalDays, s.DaysPresent)
	return errors.Wrap(err, "inserting student report")
}

func (repo reportRepository) UpdateStudentReport(ctx context.Context, s report.Student, exec ...core.DBExecutor) error {
	q := "UPDATE " + studentReportTable + " SET total_days = ?, days_present = ? WHERE name = ?"
	_, err := run(ctx, repo.getExec(exec), q, s.TotalDays, s.DaysPresent, s.Name)
	return errors.Wrap(err, "updating student report")
}

func (repo reportRepository) DeleteStudentReport(ctx context.Context, name string, exec ...core.DBExecutor) error {
	q := "DELETE FROM " + studentReportTable + " WHERE name = ?"
	_, err := run(ctx, repo.getExec(exec), q, name)
	return errors.Wrap(err, "deleting student report")
}

func (repo reportRepository) RenameStudentReport(ctx context.Context, oldName, newName string, exec ...core.DBExecutor) error {
	q := "UPDATE " + studentReportTable + " SET name = ? WHERE name = ?"
	if _, err := run(ctx, repo.getExec(exec), q, newName, oldName); err != nil {
		if database.IsUniqueViolation(err) {
			return roster.ErrDuplicateStudent
		}
		return errors.Wrap(err, "renaming student report")
	}
	return nil
}

func (repo reportRepository) GetDailyReport(ctx context.Context, date core.Date, exec ...core.DBExecutor) (report.Daily, error) {
	var row dailyReportRow
	q := "SELECT id, date, present, absent, attendance_percentage FROM " + dailyReportTable + " WHERE date = ?"
	if err := get(ctx, repo.getExec(exec), &row, q, date.TableName()); err != nil {
		return report.Daily{}, trapNoRowsErr(err, report.ErrNotFound, "getting daily report")
	}
	return row.toDaily()
}

func (repo reportRepository) ListDailyReports(ctx context.Context, exec ...core.DBExecutor) ([]report.Daily, error) {
	rows := make([]dailyReportRow, 0)
	q := "SELECT id, date, present, absent, attendance_percentage FROM " + dailyReportTable + " ORDER BY id"
	if err := sel(ctx, repo.getExec(exec), &rows, q); err != nil {
		return nil, errors.Wrap(err, "listing daily reports")
	}
	dailies := make([]report.Daily, 0, len(rows))
	for _, r := range rows {
		d, err := r.toDaily()
		if err != nil {
			return nil, err
		}
		dailies = append(dailies, d)
	}
	return dailies, nil
}

func (repo reportRepository) CreateDailyReport(ctx context.Context, d report.Daily, exec ...core.DBExecutor) error {
	q := "INSERT INTO " + dailyReportTable + " (date, present, absent, attendance_percentage) VALUES (?, ?, ?, ?)"
	_, err := run(ctx, repo.getExec(exec), q, d.Date.TableName(), d.Present, d.Absent, d.Percentage)
	return errors.Wrap(err, "inserting daily report")
}

func (repo reportRepository) UpdateDailyReport(ctx context.Context, d report.Daily, exec ...core.DBExecutor) error {
	q := "UPDATE " + dailyReportTable + " SET present = ?, absent = ?, attendance_percentage = ? WHERE date = ?"
	_, err := run(ctx, repo.getExec(exec), q, d.Present, d.Absent, d.Percentage, d.Date.TableName())
	return errors.Wrap(err, "updating daily report")
}
