package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/settings"
	"github.com/kmr-srbh/paper-desktop/storage/database"
)

var settingsTable = database.Table(database.Information, database.SettingsTable)

type (
	settingsRepository struct {
		repository
	}

	settingsRow struct {
		CheckPresent      string    `db:"check_present"`
		MinimumAttendance int       `db:"minimum_attendance"`
		BackupFrequency   int       `db:"backup_frequency"`
		BackupDate        core.Date `db:"backup_date"`
	}
)

var _ settings.Repository = (*settingsRepository)(nil) // interface compliance check

func NewSettingsRepository(exec core.DBExecutor) *settingsRepository {
	return &settingsRepository{repository{exec: exec}}
}

func toFlag(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

func (repo settingsRepository) GetSettings(ctx context.Context, exec ...core.DBExecutor) (settings.Settings, error) {
	var row settingsRow
	q := "SELECT check_present, minimum_attendance, backup_frequency, backup_date FROM " + settingsTable + " LIMIT 1"
	if err := get(ctx, repo.getExec(exec), &row, q); err != nil {
		return settings.Settings{}, trapNoRowsErr(err, settings.ErrNotFound, "getting settings")
	}
	return settings.Settings{
		CheckPresent:      row.CheckPresent == "Y",
		MinimumAttendance: row.MinimumAttendance,
		BackupFrequency:   settings.Frequency(row.BackupFrequency),
		BackupDate:        row.BackupDate,
	}, nil
}

func (repo settingsRepository) CreateSettings(ctx context.Context, s settings.Settings, exec ...core.DBExecutor) error {
	q := "INSERT INTO " + settingsTable +
		" (check_present, minimum_attendance, backup_frequency, backup_date) VALUES (?, ?, ?, ?)"
	_, err := run(ctx, repo.getExec(exec), q, toFlag(s.CheckPresent), s.MinimumAttendance, int(s.BackupFrequency), s.BackupDate)
	return errors.Wrap(err, "inserting settings")
}

func (repo settingsRepository) UpdateSettings(ctx context.Context, s settings.Settings, exec ...core.DBExecutor) error {
	q := "UPDATE " + settingsTable +
		" SET check_present = ?, minimum_attendance = ?, backup_frequency = ?, backup_date = ?"
	_, err := run(ctx, repo.getExec(exec), q, toFlag(s.CheckPresent), s.MinimumAttendance, int(s.BackupFrequency), s.BackupDate)
	return errors.Wrap(err, "updating settings")
}
