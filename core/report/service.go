package report

import (
	"context"
	"errors"
	"sort"

	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/settings"
)

const (
	dailyPlaces   = 1
	studentPlaces = 2
)

var (
	// errors
	ErrNotFound = errors.New("No data found")
)

type (
	Repository interface {
		// GetStudentReport returns ErrNotFound when the student has no report.
		GetStudentReport(ctx context.Context, name string, exec ...core.DBExecutor) (Student, error)
		// ListStudentReports returns all reports ordered by name.
		ListStudentReports(ctx context.Context, exec ...core.DBExecutor) ([]Student, error)
		CreateStudentReport(ctx context.Context, s Student, exec ...core.DBExecutor) error
		UpdateStudentReport(ctx context.Context, s Student, exec ...core.DBExecutor) error
		DeleteStudentReport(ctx context.Context, name string, exec ...core.DBExecutor) error
		RenameStudentReport(ctx context.Context, oldName, newName string, exec ...core.DBExecutor) error

		// GetDailyReport returns ErrNotFound when the date has no report.
		GetDailyReport(ctx context.Context, date core.Date, exec ...core.DBExecutor) (Daily, error)
		// ListDailyReports returns all daily reports in insertion order.
		ListDailyReports(ctx context.Context, exec ...core.DBExecutor) ([]Daily, error)
		CreateDailyReport(ctx context.Context, d Daily, exec ...core.DBExecutor) error
		UpdateDailyReport(ctx context.Context, d Daily, exec ...core.DBExecutor) error
	}

	// AttendanceReader reads recorded attendance. Both methods return ErrNotFound for a date never recorded.
	AttendanceReader interface {
		CountStates(ctx context.Context, date core.Date, exec ...core.DBExecutor) (present, absent int, err error)
		Entries(ctx context.Context, date core.Date, exec ...core.DBExecutor) ([]Entry, error)
	}

	SettingsReader interface {
		Get(ctx context.Context, exec ...core.DBExecutor) (settings.Settings, error)
	}

	Service struct {
		repo       Repository
		attendance AttendanceReader
		settings   SettingsReader
	}
)

func NewService(repo Repository, attendance AttendanceReader, settings SettingsReader) *Service {
	return &Service{
		repo:       repo,
		attendance: attendance,
		settings:   settings,
	}
}

// ApplyRecord adds one day to every student of a freshly recorded day.
func (svc *Service) ApplyRecord(ctx context.Context, presence Presence, exec ...core.DBExecutor) error {
	names := make([]string, 0, len(presence))
	for name := range presence {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		present := presence[name]
		s, err := svc.repo.GetStudentReport(ctx, name, exec...)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			s = Student{Name: name, TotalDays: 1}
			if present {
				s.DaysPresent = 1
			}
			if err = svc.repo.CreateStudentReport(ctx, s, exec...); err != nil {
				return err
			}
			continue
		}

		s.TotalDays++
		if present {
			s.DaysPresent++
		}
		if err = svc.repo.UpdateStudentReport(ctx, s, exec...); err != nil {
			return err
		}
	}
	return nil
}

// ApplyEdit adjusts days present after a past state was corrected. Students without a report
// (removed since) are left alone.
func (svc *Service) ApplyEdit(ctx context.Context, name string, wasPresent, isPresent bool, exec ...core.DBExecutor) error {
	if wasPresent == isPresent {
		return nil
	}
	s, err := svc.repo.GetStudentReport(ctx, name, exec...)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	if isPresent {
		if s.DaysPresent < s.TotalDays {
			s.DaysPresent++
		}
	} else if s.DaysPresent > 0 {
		s.DaysPresent--
	}
	return svc.repo.UpdateStudentReport(ctx, s, exec...)
}

// RecomputeDaily derives the daily report of date from its attendance table and stores it.
func (svc *Service) RecomputeDaily(ctx context.Context, date core.Date, exec ...core.DBExecutor) (Daily, error) {
	present, absent, err := svc.attendance.CountStates(ctx, date, exec...)
	if err != nil {
		return Daily{}, err
	}
	d := Daily{
		Date:       date,
		Present:    present,
		Absent:     absent,
		Percentage: Percentage(present, present+absent, dailyPlaces),
	}

	if _, err = svc.repo.GetDailyReport(ctx, date, exec...); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return Daily{}, err
		}
		return d, svc.repo.CreateDailyReport(ctx, d, exec...)
	}
	return d, svc.repo.UpdateDailyReport(ctx, d, exec...)
}

func (svc *Service) Daily(ctx context.Context, date core.Date) (Daily, error) {
	return svc.repo.GetDailyReport(ctx, date)
}

// DailyDetail returns the daily report with the present and absent students of that day.
func (svc *Service) DailyDetail(ctx context.Context, date core.Date) (DailyDetail, error) {
	d, err := svc.repo.GetDailyReport(ctx, date)
	if err != nil {
		return DailyDetail{}, err
	}
	entries, err := svc.attendance.Entries(ctx, date)
	if err != nil {
		return DailyDetail{}, err
	}

	detail := DailyDetail{
		Daily:       d,
		PresentList: make([]DetailLine, 0, d.Present),
		AbsentList:  make([]DetailLine, 0, d.Absent),
	}
	for i, e := range entries {
		if e.Present {
			detail.PresentList = append(detail.PresentList, DetailLine{No: len(detail.PresentList) + 1, Name: e.Name, Roll: i + 1})
		} else {
			detail.AbsentList = append(detail.AbsentList, DetailLine{No: len(detail.AbsentList) + 1, Name: e.Name, Roll: i + 1})
		}
	}
	return detail, nil
}

// Dailies returns every daily report in recording order.
func (svc *Service) Dailies(ctx context.Context) ([]Daily, error) {
	return svc.repo.ListDailyReports(ctx)
}

// Chart returns the attendance percentage of every recorded day, in recording order.
func (svc *Service) Chart(ctx context.Context) ([]ChartPoint, error) {
	dailies, err := svc.repo.ListDailyReports(ctx)
	if err != nil {
		return nil, err
	}
	points := make([]ChartPoint, 0, len(dailies))
	for i, d := range dailies {
		points = append(points, ChartPoint{Day: i + 1, Date: d.Date, Percentage: d.Percentage})
	}
	return points, nil
}

// Students returns the report of every student with their remark.
func (svc *Service) Students(ctx context.Context) ([]StudentRow, error) {
	s, err := svc.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	reports, err := svc.repo.ListStudentReports(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]StudentRow, 0, len(reports))
	for i, r := range reports {
		p := Percentage(r.DaysPresent, r.TotalDays, studentPlaces)
		rows = append(rows, StudentRow{
			Roll:        i + 1,
			Name:        r.Name,
			DaysPresent: r.DaysPresent,
			TotalDays:   r.TotalDays,
			Percentage:  p,
			Remark:      RemarkFor(p, s.MinimumAttendance),
		})
	}
	return rows, nil
}
