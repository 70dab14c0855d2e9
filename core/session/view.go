package session

import (
	"context"
	"errors"

	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/attendance"
	"github.com/kmr-srbh/paper-desktop/core/class"
	"github.com/kmr-srbh/paper-desktop/core/report"
	"github.com/kmr-srbh/paper-desktop/core/roster"
	"github.com/kmr-srbh/paper-desktop/core/settings"
)

// View is everything a front-end displays.
type View struct {
	HasPIN   bool                `json:"has_pin"`
	Class    string              `json:"class"`
	Today    core.Date           `json:"today"`
	Students []roster.Student    `json:"students"`
	Phase    attendance.Phase    `json:"-"`
	PhaseStr string              `json:"phase"`
	Sheet    []attendance.Mark   `json:"sheet,omitempty"`
	Daily    *report.Daily       `json:"daily,omitempty"`
	Chart    []report.ChartPoint `json:"chart"`
	Report   []report.StudentRow `json:"report"`
	Settings settings.Settings   `json:"settings"`
}

func (d *Dispatcher) rebuild(ctx context.Context) (View, error) {
	v := View{Today: core.Today()}

	p, err := d.svc.Class.Profile(ctx)
	switch {
	case err == nil:
		v.HasPIN = true
		v.Class = p.Name.String
	case errors.Is(err, class.ErrNoPIN):
		d.view = v
		return v, nil
	default:
		return View{}, err
	}

	if v.Students, err = d.svc.Roster.List(ctx); err != nil {
		return View{}, err
	}
	if v.Phase, err = d.svc.Attendance.Phase(ctx, v.Today); err != nil {
		return View{}, err
	}
	if v.Phase == attendance.NotRecorded && d.sheet != nil && d.sheet.Date.Equal(v.Today) {
		v.Phase = attendance.Recording
		v.Sheet = d.sheet.Marks()
	}
	v.PhaseStr = v.Phase.String()

	if v.Phase == attendance.Recorded {
		daily, err := d.svc.Report.Daily(ctx, v.Today)
		if err != nil && !errors.Is(err, report.ErrNotFound) {
			return View{}, err
		}
		if err == nil {
			v.Daily = &daily
		}
	}
	if v.Chart, err = d.svc.Report.Chart(ctx); err != nil {
		return View{}, err
	}
	if v.Report, err = d.svc.Report.Students(ctx); err != nil {
		return View{}, err
	}
	if v.Settings, err = d.svc.Settings.Get(ctx); err != nil {
		return View{}, err
	}

	d.view = v
	return v, nil
}
