package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/attendance"
	"github.com/kmr-srbh/paper-desktop/core/class"
	"github.com/kmr-srbh/paper-desktop/core/report"
)

const (
	WorkbookName = "Attendance Report.xlsx"

	dailySheet    = "Daily"
	studentsSheet = "Students"
)

type (
	// Records reads recorded attendance; attendance repositories satisfy it.
	Records interface {
		Dates(ctx context.Context, exec ...core.DBExecutor) ([]core.Date, error)
		GetRecord(ctx context.Context, date core.Date, exec ...core.DBExecutor) ([]attendance.Mark, error)
	}

	Reports interface {
		Dailies(ctx context.Context) ([]report.Daily, error)
		Students(ctx context.Context) ([]report.StudentRow, error)
	}

	Service struct {
		dir     string
		records Records
		reports Reports
		logger  core.Logger
	}
)

func NewService(dir string, records Records, reports Reports, logger core.Logger) *Service {
	return &Service{
		dir:     dir,
		records: records,
		reports: reports,
		logger:  logger,
	}
}

func (svc *Service) Dir() string { return svc.dir }

// FileName is the CSV file name of the record of date.
func FileName(date core.Date) string {
	return fmt.Sprintf("Attendance Record %s.csv", date.Label())
}

// CSV writes one Name,State file per recorded date and returns their paths.
// The directory is created even when nothing has been recorded.
func (svc *Service) CSV(ctx context.Context, exec ...core.DBExecutor) ([]string, error) {
	if err := os.MkdirAll(svc.dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating export directory")
	}
	files, err := svc.writeAll(ctx, svc.dir, exec...)
	if err != nil {
		return files, err
	}
	svc.logger.Debug("attendance exported", map[string]interface{}{"dir": svc.dir, "files": len(files)})
	return files, nil
}

func (svc *Service) writeAll(ctx context.Context, dir string, exec ...core.DBExecutor) ([]string, error) {
	dates, err := svc.records.Dates(ctx, exec...)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(dates))
	for _, date := range dates {
		marks, err := svc.records.GetRecord(ctx, date, exec...)
		if err != nil {
			return files, err
		}
		path := filepath.Join(dir, FileName(date))
		if err = writeCSV(path, marks); err != nil {
			return files, errors.Wrapf(err, "exporting %s", date.Label())
		}
		files = append(files, path)
	}
	return files, nil
}

func writeCSV(path string, marks []attendance.Mark) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := f.Close(); err == nil {
			err = cErr
		}
	}()

	w := csv.NewWriter(f)
	if err = w.Write([]string{"Name", "State"}); err != nil {
		return err
	}
	for _, m := range marks {
		if err = w.Write([]string{m.Name, string(m.State)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Archive stages every record in a hidden directory of the export directory. It implements
// class.Archiver: the files reach the export directory only through Keep.
func (svc *Service) Archive(ctx context.Context, exec core.DBExecutor) (class.Archived, error) {
	if err := os.MkdirAll(svc.dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating export directory")
	}
	staging, err := os.MkdirTemp(svc.dir, ".archive-")
	if err != nil {
		return nil, errors.Wrap(err, "creating archive directory")
	}

	files, err := svc.writeAll(ctx, staging, exec)
	if err != nil {
		_ = os.RemoveAll(staging)
		return nil, err
	}
	return &archive{dir: svc.dir, staging: staging, files: files}, nil
}

type archive struct {
	dir     string
	staging string
	files   []string
}

func (a *archive) Len() int { return len(a.files) }

// Keep moves the staged files into the export directory.
func (a *archive) Keep() error {
	for _, f := range a.files {
		if err := os.Rename(f, filepath.Join(a.dir, filepath.Base(f))); err != nil {
			return errors.Wrapf(err, "keeping archive, files left in %s", a.staging)
		}
	}
	return errors.Wrap(os.RemoveAll(a.staging), "removing archive directory")
}

func (a *archive) Discard() error {
	return errors.Wrap(os.RemoveAll(a.staging), "discarding archive")
}

// Workbook writes the daily and student reports to a single spreadsheet and returns its path.
func (svc *Service) Workbook(ctx context.Context) (path string, err error) {
	dailies, err := svc.reports.Dailies(ctx)
	if err != nil {
		return "", err
	}
	students, err := svc.reports.Students(ctx)
	if err != nil {
		return "", err
	}
	if err = os.MkdirAll(svc.dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating export directory")
	}

	f := excelize.NewFile()
	defer func() {
		if cErr := f.Close(); err == nil && cErr != nil {
			err = errors.Wrap(cErr, "closing workbook")
		}
	}()

	if err = f.SetSheetName("Sheet1", dailySheet); err != nil {
		return "", errors.Wrap(err, "naming sheet")
	}
	rows := [][]interface{}{{"Day", "Date", "Present", "Absent", "Attendance %"}}
	for i, d := range dailies {
		pct, _ := d.Percentage.Float64()
		rows = append(rows, []interface{}{i + 1, d.Date.Label(), d.Present, d.Absent, pct})
	}
	if err = writeRows(f, dailySheet, rows); err != nil {
		return "", err
	}

	if _, err = f.NewSheet(studentsSheet); err != nil {
		return "", errors.Wrap(err, "adding sheet")
	}
	rows = [][]interface{}{{"Roll", "Name", "Days Present", "Total Days", "Attendance %", "Remark"}}
	for _, s := range students {
		pct, _ := s.Percentage.Float64()
		rows = append(rows, []interface{}{s.Roll, s.Name, s.DaysPresent, s.TotalDays, pct, string(s.Remark)})
	}
	if err = writeRows(f, studentsSheet, rows); err != nil {
		return "", err
	}

	path = filepath.Join(svc.dir, WorkbookName)
	if err = f.SaveAs(path); err != nil {
		return "", errors.Wrap(err, "saving workbook")
	}
	return path, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err = f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return errors.Wrapf(err, "writing %s row %s", sheet, strconv.Itoa(i+1))
		}
	}
	return nil
}
