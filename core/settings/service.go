package settings

import (
	"context"
	"errors"

	"github.com/kmr-srbh/paper-desktop/core"
)

var (
	// errors
	ErrNotFound = errors.New("settings not found")
)

type (
	Repository interface {
		// GetSettings returns ErrNotFound while the settings row does not exist.
		GetSettings(ctx context.Context, exec ...core.DBExecutor) (Settings, error)
		CreateSettings(ctx context.Context, s Settings, exec ...core.DBExecutor) error
		UpdateSettings(ctx context.Context, s Settings, exec ...core.DBExecutor) error
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

// get returns the stored settings, creating the defaults on first use.
func (svc *Service) get(ctx context.Context, exec core.DBExecutor) (Settings, error) {
	s, err := svc.repo.GetSettings(ctx, exec)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Settings{}, err
	}
	s = Defaults(core.Today())
	if err = svc.repo.CreateSettings(ctx, s, exec); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Get returns the current settings. exec lets callers read them inside their own transaction.
func (svc *Service) Get(ctx context.Context, exec ...core.DBExecutor) (Settings, error) {
	if len(exec) > 0 {
		return svc.get(ctx, exec[0])
	}
	var s Settings
	err := core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		var err error
		s, err = svc.get(ctx, exec)
		return err
	})
	return s, err
}

// Save stores the update and reschedules the next backup from today.
func (svc *Service) Save(ctx context.Context, data Update) (Settings, error) {
	if err := data.Validate(); err != nil {
		return Settings{}, err
	}
	var s Settings
	err := core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		var err error
		if s, err = svc.get(ctx, exec); err != nil {
			return err
		}
		s.CheckPresent = data.CheckPresent
		s.MinimumAttendance = data.MinimumAttendance
		s.BackupFrequency = data.BackupFrequency
		s.Reschedule(core.Today())
		return svc.repo.UpdateSettings(ctx, s, exec)
	})
	if err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Reset restores the default settings.
func (svc *Service) Reset(ctx context.Context) (Settings, error) {
	return svc.Save(ctx, Defaults(core.Today()).asUpdate())
}

// BackupDue reports whether a backup should run today.
func (svc *Service) BackupDue(ctx context.Context, today core.Date) (bool, error) {
	s, err := svc.Get(ctx)
	if err != nil {
		return false, err
	}
	return s.BackupDue(today), nil
}

// ScheduleNextBackup moves the backup date to today + the backup frequency.
func (svc *Service) ScheduleNextBackup(ctx context.Context, today core.Date) (Settings, error) {
	var s Settings
	err := core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		var err error
		if s, err = svc.get(ctx, exec); err != nil {
			return err
		}
		s.Reschedule(today)
		return svc.repo.UpdateSettings(ctx, s, exec)
	})
	if err != nil {
		return Settings{}, err
	}
	return s, nil
}
