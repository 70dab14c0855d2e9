package class

import (
	"context"
	"errors"

	"github.com/volatiletech/null/v8"

	"github.com/kmr-srbh/paper-desktop/core"
)

var (
	// errors
	ErrNoPIN       = errors.New("no PIN has been set")
	ErrPINExists   = errors.New("a PIN has already been set")
	ErrWrongPIN    = errors.New("incorrect PIN")
	ErrSamePIN     = errors.New("the new PIN must be different from the current PIN")
	ErrNoClass     = errors.New("no class has been created")
	ErrClassExists = errors.New("a class has already been created")
)

type (
	Repository interface {
		// GetProfile returns ErrNoPIN when no profile has been created yet.
		GetProfile(ctx context.Context, exec ...core.DBExecutor) (Profile, error)
		CreateProfile(ctx context.Context, p Profile, exec ...core.DBExecutor) error
		UpdateProfile(ctx context.Context, p Profile, exec ...core.DBExecutor) error
		// Purge drops all attendance tables and empties every other table.
		Purge(ctx context.Context, exec ...core.DBExecutor) error
	}

	// Archiver saves the attendance history before a class is deleted.
	Archiver interface {
		Archive(ctx context.Context, exec core.DBExecutor) (Archived, error)
	}

	// Archived is a staged archive, kept once the deletion commits and discarded otherwise.
	Archived interface {
		Len() int
		Keep() error
		Discard() error
	}

	Service struct {
		db       core.DB
		repo     Repository
		archiver Archiver
		logger   core.Logger
	}
)

func NewService(db core.DB, repo Repository, archiver Archiver, logger core.Logger) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		archiver: archiver,
		logger:   logger,
	}
}

func (svc *Service) Profile(ctx context.Context) (Profile, error) {
	return svc.repo.GetProfile(ctx)
}

func (svc *Service) HasPIN(ctx context.Context) (bool, error) {
	if _, err := svc.repo.GetProfile(ctx); err != nil {
		if errors.Is(err, ErrNoPIN) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (svc *Service) CreatePIN(ctx context.Context, data NewPIN) error {
	if err := data.Validate(); err != nil {
		return err
	}
	return core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		if _, err := svc.repo.GetProfile(ctx, exec); err == nil {
			return ErrPINExists
		} else if !errors.Is(err, ErrNoPIN) {
			return err
		}

		var p Profile
		if err := p.SetPIN(data.PIN); err != nil {
			return err
		}
		return svc.repo.CreateProfile(ctx, p, exec)
	})
}

func (svc *Service) VerifyPIN(ctx context.Context, pin string) error {
	p, err := svc.repo.GetProfile(ctx)
	if err != nil {
		return err
	}
	return p.CheckPIN(core.CleanString(pin))
}

func (svc *Service) ChangePIN(ctx context.Context, data ChangePIN) error {
	if err := data.Validate(); err != nil {
		return err
	}
	return core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		p, err := svc.repo.GetProfile(ctx, exec)
		if err != nil {
			return err
		}
		if err = p.CheckPIN(data.OldPIN); err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "old_pin", Error: err.Error()})
		}
		if err = p.SetPIN(data.NewPIN); err != nil {
			return err
		}
		return svc.repo.UpdateProfile(ctx, p, exec)
	})
}

// Create names the class. A PIN must have been set first.
func (svc *Service) Create(ctx context.Context, data ClassName) (Profile, error) {
	if err := data.Validate(); err != nil {
		return Profile{}, err
	}
	var p Profile
	err := core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		var err error
		if p, err = svc.repo.GetProfile(ctx, exec); err != nil {
			return err
		}
		if p.HasClass() {
			return ErrClassExists
		}
		p.Name = null.StringFrom(data.Name)
		return svc.repo.UpdateProfile(ctx, p, exec)
	})
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (svc *Service) Rename(ctx context.Context, data ClassName) (Profile, error) {
	if err := data.Validate(); err != nil {
		return Profile{}, err
	}
	var p Profile
	err := core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		var err error
		if p, err = svc.repo.GetProfile(ctx, exec); err != nil {
			return err
		}
		if !p.HasClass() {
			return ErrNoClass
		}
		p.Name = null.StringFrom(data.Name)
		return svc.repo.UpdateProfile(ctx, p, exec)
	})
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Delete exports the attendance history, then erases the class, its PIN and all its records.
// The exported files are only kept when the deletion commits.
func (svc *Service) Delete(ctx context.Context, pin string) error {
	var (
		name     string
		archived Archived
	)
	err := core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		p, err := svc.repo.GetProfile(ctx, exec)
		if err != nil {
			return err
		}
		if err = p.CheckPIN(core.CleanString(pin)); err != nil {
			return err
		}
		name = p.Name.String

		if svc.archiver != nil {
			if archived, err = svc.archiver.Archive(ctx, exec); err != nil {
				return err
			}
		}
		return svc.repo.Purge(ctx, exec)
	})
	if err != nil {
		if archived != nil {
			if dErr := archived.Discard(); dErr != nil {
				svc.logger.Warn("discarding class archive", dErr)
			}
		}
		return err
	}

	if archived != nil {
		if err = archived.Keep(); err != nil {
			svc.logger.Error("keeping class archive", err, map[string]interface{}{"class": name})
			return nil
		}
		if archived.Len() > 0 {
			svc.logger.Info("class archived", map[string]interface{}{"class": name, "records": archived.Len()})
		}
	}
	return nil
}
