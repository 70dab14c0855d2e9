package apps

import (
	"context"
	"io"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/attendance"
	"github.com/kmr-srbh/paper-desktop/core/class"
	"github.com/kmr-srbh/paper-desktop/core/export"
	"github.com/kmr-srbh/paper-desktop/core/report"
	"github.com/kmr-srbh/paper-desktop/core/roster"
	"github.com/kmr-srbh/paper-desktop/core/session"
	"github.com/kmr-srbh/paper-desktop/core/settings"
	"github.com/kmr-srbh/paper-desktop/services/email"
	"github.com/kmr-srbh/paper-desktop/services/logger"
	"github.com/kmr-srbh/paper-desktop/storage/database"
	"github.com/kmr-srbh/paper-desktop/storage/database/sqlx"
)

// NewLogger returns a RollbarLogger writing to w with prefix.
func NewLogger(conf *core.Config, w io.Writer, prefix string) core.Logger {
	stdLogger := log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

// NewEmailService prints messages in debug mode and sends them with SendGrid otherwise.
func NewEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.Email.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

// SetUpDB prepares the store, opens it and applies pending migrations.
func SetUpDB(ctx context.Context, conf *core.Config, logger core.Logger) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "migrating database")
	}
	return db, nil
}

// NewServices wires every domain service over db.
func NewServices(db *sqlx.DB, conf *core.Config, logger core.Logger, mailer core.EmailService) session.Services {
	classRepo := sqlxrepos.NewClassRepository(db)
	rosterRepo := sqlxrepos.NewRosterRepository(db)
	attendanceRepo := sqlxrepos.NewAttendanceRepository(db)
	reportRepo := sqlxrepos.NewReportRepository(db)
	settingsRepo := sqlxrepos.NewSettingsRepository(db)

	settingsSvc := settings.NewService(db, settingsRepo)
	reportSvc := report.NewService(reportRepo, attendanceRepo, settingsSvc)
	exportSvc := export.NewService(conf.ExportDir, attendanceRepo, reportSvc, logger)
	classSvc := class.NewService(db, classRepo, exportSvc, logger)

	return session.Services{
		Class:      classSvc,
		Roster:     roster.NewService(db, rosterRepo, reportRepo, attendanceRepo, logger),
		Attendance: attendance.NewService(db, attendanceRepo, rosterRepo, settingsSvc, reportSvc, logger),
		Report:     reportSvc,
		Settings:   settingsSvc,
		Export:     exportSvc,
		Backup:     export.NewBackup(exportSvc, settingsSvc, classSvc, mailer, conf.Email.BackupRecipient, logger),
	}
}
