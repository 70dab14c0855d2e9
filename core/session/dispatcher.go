package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/attendance"
	"github.com/kmr-srbh/paper-desktop/core/class"
	"github.com/kmr-srbh/paper-desktop/core/export"
	"github.com/kmr-srbh/paper-desktop/core/report"
	"github.com/kmr-srbh/paper-desktop/core/roster"
	"github.com/kmr-srbh/paper-desktop/core/settings"
)

var (
	// errors
	ErrLocked         = errors.New("the class is locked, enter the PIN first")
	ErrNoSheet        = errors.New("attendance is not being recorded")
	ErrUnknownCommand = errors.New("unknown command")
)

type ctxKey int

const unlockedKey ctxKey = 1

// WithUnlocked returns a context authorised to dispatch any command.
func WithUnlocked(ctx context.Context) context.Context {
	return context.WithValue(ctx, unlockedKey, true)
}

func IsUnlocked(ctx context.Context) bool {
	ok, _ := ctx.Value(unlockedKey).(bool)
	return ok
}

type (
	Services struct {
		Class      *class.Service
		Roster     *roster.Service
		Attendance *attendance.Service
		Report     *report.Service
		Settings   *settings.Service
		Export     *export.Service
		Backup     *export.Backup
	}

	ExportResult struct {
		Dir      string   `json:"dir"`
		Files    []string `json:"files"`
		Workbook string   `json:"workbook,omitempty"`
	}

	EditResult struct {
		Mark  attendance.Mark `json:"mark"`
		Daily report.Daily    `json:"daily"`
	}

	// Dispatcher runs commands one at a time and owns the View they change.
	Dispatcher struct {
		mu     sync.Mutex
		svc    Services
		sheet  *attendance.Sheet
		view   View
		logger core.Logger
	}
)

func NewDispatcher(svc Services, logger core.Logger) *Dispatcher {
	return &Dispatcher{svc: svc, logger: logger}
}

// Start runs the scheduled backup check once, then builds the view.
func (d *Dispatcher) Start(ctx context.Context) (export.BackupResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := d.svc.Backup.Run(ctx, core.Today())
	if err != nil {
		d.logger.Error("backup failed", err)
	}
	if _, rErr := d.rebuild(ctx); rErr != nil {
		return res, rErr
	}
	return res, err
}

// View returns the last built view.
func (d *Dispatcher) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view
}

// Rebuild reconstructs the view from the store.
func (d *Dispatcher) Rebuild(ctx context.Context) (View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rebuild(ctx)
}

// Dispatch runs cmd, passed by value, and rebuilds the view.
// Every command but CreatePIN and Unlock needs an unlocked ctx.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (Event, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch cmd.(type) {
	case CreatePIN, Unlock:
	default:
		if !IsUnlocked(ctx) {
			return Event{}, ErrLocked
		}
	}

	ev, err := d.dispatch(ctx, cmd)
	if err != nil {
		return Event{}, err
	}
	if ev.Kind != Unlocked {
		if _, err = d.rebuild(ctx); err != nil {
			return ev, err
		}
	}
	d.logger.Debug("command dispatched", map[string]interface{}{"command": Name(cmd), "event": ev.Kind.String()})
	return ev, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, cmd Command) (Event, error) {
	switch c := cmd.(type) {
	case CreatePIN:
		err := d.svc.Class.CreatePIN(ctx, class.NewPIN{PIN: c.PIN})
		return Event{Kind: PINCreated}, err

	case Unlock:
		err := d.svc.Class.VerifyPIN(ctx, c.PIN)
		return Event{Kind: Unlocked}, err

	case ChangePIN:
		err := d.svc.Class.ChangePIN(ctx, class.ChangePIN{OldPIN: c.OldPIN, NewPIN: c.NewPIN})
		return Event{Kind: PINChanged}, err

	case CreateClass:
		p, err := d.svc.Class.Create(ctx, class.ClassName{Name: c.Name})
		return Event{Kind: ClassCreated, Data: p}, err

	case RenameClass:
		p, err := d.svc.Class.Rename(ctx, class.ClassName{Name: c.Name})
		return Event{Kind: ClassRenamed, Data: p}, err

	case DeleteClass:
		if err := d.svc.Class.Delete(ctx, c.PIN); err != nil {
			return Event{}, err
		}
		d.sheet = nil
		return Event{Kind: ClassDeleted, Data: d.svc.Export.Dir()}, nil

	case AddStudent:
		st, err := d.svc.Roster.Add(ctx, roster.NewStudent{Name: c.Name})
		return Event{Kind: StudentAdded, Data: st}, err

	case RemoveStudent:
		st, err := d.svc.Roster.Remove(ctx, c.Roll)
		return Event{Kind: StudentRemoved, Data: st}, err

	case RenameStudent:
		st, err := d.svc.Roster.Rename(ctx, roster.RenameStudent{Roll: c.Roll, Name: c.Name})
		return Event{Kind: StudentRenamed, Data: st}, err

	case BeginAttendance:
		date := c.Date
		if date.IsZero() {
			date = core.Today()
		}
		sh, err := d.svc.Attendance.Begin(ctx, date)
		if err != nil {
			return Event{}, err
		}
		d.sheet = sh
		return Event{Kind: AttendanceBegun, Data: sh.Marks()}, nil

	case MarkStudent:
		if d.sheet == nil {
			return Event{}, ErrNoSheet
		}
		var err error
		if c.Roll > 0 {
			err = d.sheet.Mark(c.Roll, c.State)
		} else {
			err = d.sheet.MarkName(c.Name, c.State)
		}
		return Event{Kind: StudentMarked, Data: d.sheet.Marks()}, err

	case ClearSheet:
		if d.sheet == nil {
			return Event{}, ErrNoSheet
		}
		d.sheet.Clear()
		return Event{Kind: SheetCleared, Data: d.sheet.Marks()}, nil

	case SaveAttendance:
		date, rec := c.Date, c.Record
		if rec == nil {
			if d.sheet == nil {
				return Event{}, ErrNoSheet
			}
			date, rec = d.sheet.Date, d.sheet.Record()
		}
		if date.IsZero() {
			date = core.Today()
		}
		daily, err := d.svc.Attendance.Record(ctx, date, rec)
		if err != nil {
			return Event{}, err
		}
		if d.sheet != nil && d.sheet.Date.Equal(date) {
			d.sheet = nil
		}
		return Event{Kind: AttendanceSaved, Data: daily}, nil

	case EditAttendance:
		date := c.Date
		if date.IsZero() {
			date = core.Today()
		}
		mark, daily, err := d.svc.Attendance.Edit(ctx, date, c.Roll, c.State)
		return Event{Kind: AttendanceEdited, Data: EditResult{Mark: mark, Daily: daily}}, err

	case SaveSettings:
		s, err := d.svc.Settings.Save(ctx, c.Update)
		return Event{Kind: SettingsSaved, Data: s}, err

	case ResetSettings:
		s, err := d.svc.Settings.Reset(ctx)
		return Event{Kind: SettingsReset, Data: s}, err

	case Export:
		res := ExportResult{Dir: d.svc.Export.Dir()}
		var err error
		if res.Files, err = d.svc.Export.CSV(ctx); err != nil {
			return Event{}, err
		}
		if c.Workbook {
			if res.Workbook, err = d.svc.Export.Workbook(ctx); err != nil {
				return Event{}, err
			}
		}
		if c.Reveal {
			if err = export.Reveal(res.Dir); err != nil {
				d.logger.Warn("revealing export directory", err)
			}
		}
		return Event{Kind: Exported, Data: res}, nil
	}
	return Event{}, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
}
