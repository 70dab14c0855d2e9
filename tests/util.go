package testutil

import (
	"context"
	"io"
	"log"
	"net/mail"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

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

const (
	PIN       = "1234"
	ClassName = "Grade 5"
	Recipient = "office@example.com"
)

// Config returns an in-memory sqlite test configuration.
func Config() *core.Config {
	return &core.Config{
		AppName:                   "Paper",
		Env:                       "TEST",
		Build:                     "test",
		TestMode:                  true,
		SecretKey:                 "secret",
		JWTExpirationDelta:        time.Hour,
		JWTRefreshExpirationDelta: 24 * time.Hour,
		Database:                  core.DatabaseConfig{Engine: database.EngineSqlite},
		Server:                    core.ServerConfig{Address: "127.0.0.1:0", ShutdownTimeout: time.Second},
		Email: core.EmailConfig{
			From:            mail.Address{Name: "Paper", Address: "noreply@localhost"},
			BackupRecipient: Recipient,
		},
	}
}

// Logger discards everything.
func Logger() core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), Config())
}

// OpenDB opens a migrated in-memory store, closed when the test ends.
func OpenDB(t testing.TB) *sqlx.DB {
	t.Helper()
	db, err := database.Open(Config())
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(context.Background(), db, Logger()); err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	return db
}

// Env wires every repository and service over one test store.
type Env struct {
	DB     *sqlx.DB
	Conf   *core.Config
	Logger core.Logger
	Mailer core.EmailService

	ClassRepo      class.Repository
	RosterRepo     roster.Repository
	AttendanceRepo attendance.Repository
	ReportRepo     report.Repository
	SettingsRepo   settings.Repository

	Class      *class.Service
	Roster     *roster.Service
	Attendance *attendance.Service
	Report     *report.Service
	Settings   *settings.Service
	Export     *export.Service
	Backup     *export.Backup
}

func NewEnv(t testing.TB) *Env {
	t.Helper()
	e := &Env{
		DB:     OpenDB(t),
		Conf:   Config(),
		Logger: Logger(),
	}
	e.Conf.ExportDir = t.TempDir()
	e.Mailer = emailsvc.NewConsoleServiceMock(e.Conf, e.Logger)

	classRepo := sqlxrepos.NewClassRepository(e.DB)
	rosterRepo := sqlxrepos.NewRosterRepository(e.DB)
	attendanceRepo := sqlxrepos.NewAttendanceRepository(e.DB)
	reportRepo := sqlxrepos.NewReportRepository(e.DB)
	settingsRepo := sqlxrepos.NewSettingsRepository(e.DB)
	e.ClassRepo, e.RosterRepo, e.AttendanceRepo, e.ReportRepo, e.SettingsRepo =
		classRepo, rosterRepo, attendanceRepo, reportRepo, settingsRepo

	e.Settings = settings.NewService(e.DB, settingsRepo)
	e.Report = report.NewService(reportRepo, attendanceRepo, e.Settings)
	e.Export = export.NewService(e.Conf.ExportDir, attendanceRepo, e.Report, e.Logger)
	e.Class = class.NewService(e.DB, classRepo, e.Export, e.Logger)
	e.Roster = roster.NewService(e.DB, rosterRepo, reportRepo, attendanceRepo, e.Logger)
	e.Attendance = attendance.NewService(e.DB, attendanceRepo, rosterRepo, e.Settings, e.Report, e.Logger)
	e.Backup = export.NewBackup(e.Export, e.Settings, e.Class, e.Mailer, e.Conf.Email.BackupRecipient, e.Logger)
	return e
}

func (e *Env) Services() session.Services {
	return session.Services{
		Class:      e.Class,
		Roster:     e.Roster,
		Attendance: e.Attendance,
		Report:     e.Report,
		Settings:   e.Settings,
		Export:     e.Export,
		Backup:     e.Backup,
	}
}

// CreateClass sets the test PIN and names the class.
func (e *Env) CreateClass(t testing.TB) {
	t.Helper()
	ctx := context.Background()
	if err := e.Class.CreatePIN(ctx, class.NewPIN{PIN: PIN}); err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	if _, err := e.Class.Create(ctx, class.ClassName{Name: ClassName}); err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
}

func (e *Env) AddStudents(t testing.TB, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := e.Roster.Add(context.Background(), roster.NewStudent{Name: name}); err != nil {
			t.Fatalf("AddStudents(%q) failed: %v", name, err)
		}
	}
}

// Record records date with the given names present and everyone else on the roster absent.
func (e *Env) Record(t testing.TB, date core.Date, present ...string) report.Daily {
	t.Helper()
	ctx := context.Background()
	names, err := e.RosterRepo.ListStudents(ctx)
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	rec := make(attendance.Record, len(names))
	for _, name := range names {
		rec[name] = attendance.Absent
	}
	for _, name := range present {
		rec[name] = attendance.Present
	}
	daily, err := e.Attendance.Record(ctx, date, rec)
	if err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	return daily
}

// FreezeToday makes core.Today return date until the test ends.
func FreezeToday(t testing.TB, date core.Date) {
	t.Helper()
	prev := core.NowFunc
	core.NowFunc = func() time.Time { return date.Time().Add(9 * time.Hour) }
	t.Cleanup(func() { core.NowFunc = prev })
}
