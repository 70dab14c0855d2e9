package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kmr-srbh/paper-desktop/apps"
	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/attendance"
	"github.com/kmr-srbh/paper-desktop/core/session"
	"github.com/kmr-srbh/paper-desktop/core/settings"
)

type paperApi struct {
	auth *auth
	disp *session.Dispatcher
	svc  session.Services
}

func registerPaperAPI(g *echo.Group, jwt echo.MiddlewareFunc, a *auth, disp *session.Dispatcher, svc session.Services) {
	api := paperApi{auth: a, disp: disp, svc: svc}

	// un-authed endpoints
	g.POST("/pin", api.createPIN)
	g.POST("/unlock", api.unlock)

	// authed endpoints
	ag := g.Group("", jwt, unlockedMiddleware(a))
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("/view", api.view)
	ag.PUT("/pin", api.changePIN)

	ag.POST("/class", api.createClass)
	ag.PUT("/class", api.renameClass)
	ag.DELETE("/class", api.deleteClass)

	ag.GET("/students", api.queryStudents)
	ag.POST("/students", api.addStudent)
	ag.PUT("/students/:roll", api.renameStudent)
	ag.DELETE("/students/:roll", api.removeStudent)

	ag.POST("/attendance/sheet", api.beginAttendance)
	ag.PUT("/attendance/sheet/:roll", api.markStudent)
	ag.DELETE("/attendance/sheet", api.clearSheet)
	ag.GET("/attendance", api.queryDates)
	ag.POST("/attendance", api.saveAttendance)
	ag.GET("/attendance/:date", api.retrieveRecord)
	ag.PUT("/attendance/:date/:roll", api.editAttendance)

	ag.GET("/reports/daily/:date", api.dailyReport)
	ag.GET("/reports/students", api.studentReport)
	ag.GET("/reports/chart", api.chart)

	ag.GET("/settings", api.retrieveSettings)
	ag.PUT("/settings", api.saveSettings)
	ag.DELETE("/settings", api.resetSettings)

	ag.POST("/export", api.export)
}

// dispatch runs cmd and answers with the event data.
func (api *paperApi) dispatch(ctx echo.Context, code int, cmd session.Command) error {
	ev, err := api.disp.Dispatch(ctx.Request().Context(), cmd)
	if err != nil {
		return errors.Wrap(err, session.Name(cmd))
	}
	if ev.Data == nil {
		return ctx.JSON(code, ev)
	}
	return ctx.JSON(code, ev.Data)
}

func rollParam(ctx echo.Context) (int, error) {
	roll, err := strconv.Atoi(ctx.Param("roll"))
	if err != nil || roll < 1 {
		return 0, apps.NewArgumentError("roll must be a positive number")
	}
	return roll, nil
}

func dateParam(ctx echo.Context) (core.Date, error) {
	if ctx.Param("date") == "today" {
		return core.Today(), nil
	}
	return core.ParseDate(ctx.Param("date"))
}

// Handlers

func (api *paperApi) createPIN(ctx echo.Context) error {
	var data PINRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PINRequest")
	}
	ev, err := api.disp.Dispatch(ctx.Request().Context(), session.CreatePIN{PIN: data.PIN})
	if err != nil {
		return errors.Wrap(err, "creating PIN")
	}
	return ctx.JSON(http.StatusCreated, ev)
}

func (api *paperApi) unlock(ctx echo.Context) error {
	var data PINRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PINRequest")
	}
	if _, err := api.disp.Dispatch(ctx.Request().Context(), session.Unlock{PIN: data.PIN}); err != nil {
		return errors.Wrap(err, "unlocking")
	}
	token, err := api.auth.generateToken(api.auth.claims())
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *paperApi) refreshToken(ctx echo.Context) error {
	token, err := api.auth.refreshToken(ctx)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *paperApi) view(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.disp.View())
}

func (api *paperApi) changePIN(ctx echo.Context) error {
	var data ChangePINRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePINRequest")
	}
	return api.dispatch(ctx, http.StatusOK, session.ChangePIN{OldPIN: data.OldPIN, NewPIN: data.NewPIN})
}

func (api *paperApi) createClass(ctx echo.Context) error {
	var data NameRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NameRequest")
	}
	return api.dispatch(ctx, http.StatusCreated, session.CreateClass{Name: data.Name})
}

func (api *paperApi) renameClass(ctx echo.Context) error {
	var data NameRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NameRequest")
	}
	return api.dispatch(ctx, http.StatusOK, session.RenameClass{Name: data.Name})
}

func (api *paperApi) deleteClass(ctx echo.Context) error {
	var data PINRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PINRequest")
	}
	if _, err := api.disp.Dispatch(ctx.Request().Context(), session.DeleteClass{PIN: data.PIN}); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *paperApi) queryStudents(ctx echo.Context) error {
	if q := ctx.QueryParam("q"); q != "" {
		found, err := api.svc.Roster.Search(ctx.Request().Context(), q)
		if err != nil {
			return errors.Wrap(err, "searching students")
		}
		return ctx.JSON(http.StatusOK, found)
	}
	return ctx.JSON(http.StatusOK, api.disp.View().Students)
}

func (api *paperApi) addStudent(ctx echo.Context) error {
	var data NameRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NameRequest")
	}
	return api.dispatch(ctx, http.StatusCreated, session.AddStudent{Name: data.Name})
}

func (api *paperApi) renameStudent(ctx echo.Context) error {
	roll, err := rollParam(ctx)
	if err != nil {
		return err
	}
	var data NameRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NameRequest")
	}
	return api.dispatch(ctx, http.StatusOK, session.RenameStudent{Roll: roll, Name: data.Name})
}

func (api *paperApi) removeStudent(ctx echo.Context) error {
	roll, err := rollParam(ctx)
	if err != nil {
		return err
	}
	return api.dispatch(ctx, http.StatusOK, session.RemoveStudent{Roll: roll})
}

func (api *paperApi) beginAttendance(ctx echo.Context) error {
	var data DateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DateRequest")
	}
	return api.dispatch(ctx, http.StatusCreated, session.BeginAttendance{Date: data.Date})
}

func (api *paperApi) markStudent(ctx echo.Context) error {
	roll, err := rollParam(ctx)
	if err != nil {
		return err
	}
	var data StateRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StateRequest")
	}
	st, err := attendance.ParseState(data.State)
	if err != nil {
		return err
	}
	return api.dispatch(ctx, http.StatusOK, session.MarkStudent{Roll: roll, State: st})
}

func (api *paperApi) clearSheet(ctx echo.Context) error {
	return api.dispatch(ctx, http.StatusOK, session.ClearSheet{})
}

func (api *paperApi) queryDates(ctx echo.Context) error {
	dates, err := api.svc.Attendance.Dates(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing recorded dates")
	}
	return ctx.JSON(http.StatusOK, dates)
}

func (api *paperApi) saveAttendance(ctx echo.Context) error {
	var data RecordRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RecordRequest")
	}
	return api.dispatch(ctx, http.StatusCreated, session.SaveAttendance{Date: data.Date, Record: data.Record})
}

func (api *paperApi) retrieveRecord(ctx echo.Context) error {
	date, err := dateParam(ctx)
	if err != nil {
		return err
	}
	marks, err := api.svc.Attendance.Get(ctx.Request().Context(), date)
	if err != nil {
		return errors.Wrap(err, "getting record")
	}
	return ctx.JSON(http.StatusOK, marks)
}

func (api *paperApi) editAttendance(ctx echo.Context) error {
	date, err := dateParam(ctx)
	if err != nil {
		return err
	}
	roll, err := rollParam(ctx)
	if err != nil {
		return err
	}
	var data StateRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StateRequest")
	}
	st, err := attendance.ParseState(data.State)
	if err != nil {
		return err
	}
	return api.dispatch(ctx, http.StatusOK, session.EditAttendance{Date: date, Roll: roll, State: st})
}

func (api *paperApi) dailyReport(ctx echo.Context) error {
	date, err := dateParam(ctx)
	if err != nil {
		return err
	}
	detail, err := api.svc.Report.DailyDetail(ctx.Request().Context(), date)
	if err != nil {
		return errors.Wrap(err, "getting daily report")
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *paperApi) studentReport(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.disp.View().Report)
}

func (api *paperApi) chart(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.disp.View().Chart)
}

func (api *paperApi) retrieveSettings(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.disp.View().Settings)
}

func (api *paperApi) saveSettings(ctx echo.Context) error {
	var data settings.Update
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to settings.Update")
	}
	return api.dispatch(ctx, http.StatusOK, session.SaveSettings{Update: data})
}

func (api *paperApi) resetSettings(ctx echo.Context) error {
	return api.dispatch(ctx, http.StatusOK, session.ResetSettings{})
}

func (api *paperApi) export(ctx echo.Context) error {
	var data ExportRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ExportRequest")
	}
	return api.dispatch(ctx, http.StatusOK, session.Export{Workbook: data.Workbook, Reveal: data.Reveal})
}

type (
	PINRequest struct {
		PIN string `json:"pin"`
	}

	ChangePINRequest struct {
		OldPIN string `json:"old_pin"`
		NewPIN string `json:"new_pin"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}

	NameRequest struct {
		Name string `json:"name"`
	}

	DateRequest struct {
		Date core.Date `json:"date"`
	}

	StateRequest struct {
		State string `json:"state"`
	}

	RecordRequest struct {
		Date   core.Date         `json:"date"`
		Record attendance.Record `json:"record"`
	}

	ExportRequest struct {
		Workbook bool `json:"workbook"`
		Reveal   bool `json:"reveal"`
	}
)
