package attendance

import (
	"context"

	"github.com/pkg/errors"

	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/report"
	"github.com/kmr-srbh/paper-desktop/core/settings"
)

var (
	// errors
	ErrAlreadyRecorded    = errors.New("attendance has already been recorded for this date")
	ErrEmptyRoster        = errors.New("there are no students in the class")
	ErrNoRecord           = errors.New("no attendance was recorded on this date")
	ErrRollNumberNotFound = errors.New("roll number not found")
	ErrEmptyRecord        = errors.New("the attendance record is empty")
	ErrUnknownStudent     = errors.New("student not found")
	ErrDuplicateName      = errors.New("a student appears twice in the record")
)

type (
	Repository interface {
		// Dates returns every recorded date in ascending order.
		Dates(ctx context.Context, exec ...core.DBExecutor) ([]core.Date, error)
		HasRecord(ctx context.Context, date core.Date, exec ...core.DBExecutor) (bool, error)
		// CreateRecord creates the table of date and stores one row per student.
		CreateRecord(ctx context.Context, date core.Date, rec Record, exec ...core.DBExecutor) error
		// GetRecord returns the marks of date ordered by name, or ErrNoRecord.
		GetRecord(ctx context.Context, date core.Date, exec ...core.DBExecutor) ([]Mark, error)
		SetState(ctx context.Context, date core.Date, name string, st State, exec ...core.DBExecutor) error
	}

	Roster interface {
		ListStudents(ctx context.Context, exec ...core.DBExecutor) ([]string, error)
	}

	SettingsReader interface {
		Get(ctx context.Context, exec ...core.DBExecutor) (settings.Settings, error)
	}

	// Aggregator keeps the reports in step with recorded attendance.
	Aggregator interface {
		ApplyRecord(ctx context.Context, presence report.Presence, exec ...core.DBExecutor) error
		ApplyEdit(ctx context.Context, name string, wasPresent, isPresent bool, exec ...core.DBExecutor) error
		RecomputeDaily(ctx context.Context, date core.Date, exec ...core.DBExecutor) (report.Daily, error)
	}

	Service struct {
		db         core.DB
		repo       Repository
		roster     Roster
		settings   SettingsReader
		aggregator Aggregator
		logger     core.Logger
	}
)

func NewService(
	db core.DB,
	repo Repository,
	roster Roster,
	settings SettingsReader,
	aggregator Aggregator,
	logger core.Logger,
) *Service {
	return &Service{
		db:         db,
		repo:       repo,
		roster:     roster,
		settings:   settings,
		aggregator: aggregator,
		logger:     logger,
	}
}

func (svc *Service) Phase(ctx context.Context, date core.Date) (Phase, error) {
	ok, err := svc.repo.HasRecord(ctx, date)
	if err != nil {
		return NotRecorded, err
	}
	if ok {
		return Recorded, nil
	}
	return NotRecorded, nil
}

// Begin opens a sheet with the current roster, all present when the class checks present by default.
func (svc *Service) Begin(ctx context.Context, date core.Date) (*Sheet, error) {
	recorded, err := svc.repo.HasRecord(ctx, date)
	if err != nil {
		return nil, err
	}
	if recorded {
		return nil, ErrAlreadyRecorded
	}

	names, err := svc.roster.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, ErrEmptyRoster
	}
	s, err := svc.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	initial := Absent
	if s.CheckPresent {
		initial = Present
	}
	return newSheet(date, names, initial), nil
}

// Record stores the attendance of date and updates the reports.
func (svc *Service) Record(ctx context.Context, date core.Date, rec Record) (report.Daily, error) {
	rec, err := rec.Clean()
	if err != nil {
		return report.Daily{}, err
	}

	var daily report.Daily
	err = core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		recorded, err := svc.repo.HasRecord(ctx, date, exec)
		if err != nil {
			return err
		}
		if recorded {
			return ErrAlreadyRecorded
		}
		if err = svc.checkRoster(ctx, rec, exec); err != nil {
			return err
		}
		if err = svc.repo.CreateRecord(ctx, date, rec, exec); err != nil {
			return err
		}
		if err = svc.aggregator.ApplyRecord(ctx, rec.Presence(), exec); err != nil {
			return err
		}
		daily, err = svc.aggregator.RecomputeDaily(ctx, date, exec)
		return err
	})
	if err != nil {
		return report.Daily{}, err
	}
	svc.logger.Info("attendance recorded", map[string]interface{}{"date": date.String(), "present": daily.Present, "absent": daily.Absent})
	return daily, nil
}

// checkRoster rejects names that are not on the roster.
func (svc *Service) checkRoster(ctx context.Context, rec Record, exec core.DBExecutor) error {
	names, err := svc.roster.ListStudents(ctx, exec)
	if err != nil {
		return err
	}
	enrolled := make(map[string]bool, len(names))
	for _, name := range names {
		enrolled[name] = true
	}
	for name := range rec {
		if !enrolled[name] {
			return errors.Wrapf(ErrUnknownStudent, "%q", name)
		}
	}
	return nil
}

// Edit corrects the state of the student at roll in the record of date and re-derives its daily report.
func (svc *Service) Edit(ctx context.Context, date core.Date, roll int, st State) (Mark, report.Daily, error) {
	if !st.IsValid() {
		return Mark{}, report.Daily{}, ErrInvalidState
	}

	var (
		mark  Mark
		daily report.Daily
	)
	err := core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		marks, err := svc.repo.GetRecord(ctx, date, exec)
		if err != nil {
			return err
		}
		if roll < 1 || roll > len(marks) {
			return ErrRollNumberNotFound
		}
		mark = marks[roll-1]

		if mark.State != st {
			if err = svc.repo.SetState(ctx, date, mark.Name, st, exec); err != nil {
				return err
			}
			if err = svc.aggregator.ApplyEdit(ctx, mark.Name, mark.State.IsPresent(), st.IsPresent(), exec); err != nil {
				return err
			}
			mark.State = st
		}
		daily, err = svc.aggregator.RecomputeDaily(ctx, date, exec)
		return err
	})
	if err != nil {
		return Mark{}, report.Daily{}, err
	}
	return mark, daily, nil
}

func (svc *Service) Get(ctx context.Context, date core.Date) ([]Mark, error) {
	return svc.repo.GetRecord(ctx, date)
}

func (svc *Service) Dates(ctx context.Context) ([]core.Date, error) {
	return svc.repo.Dates(ctx)
}
