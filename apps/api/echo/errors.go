package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/kmr-srbh/paper-desktop/apps"
	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/attendance"
	"github.com/kmr-srbh/paper-desktop/core/class"
	"github.com/kmr-srbh/paper-desktop/core/report"
	"github.com/kmr-srbh/paper-desktop/core/roster"
	"github.com/kmr-srbh/paper-desktop/core/session"
	"github.com/kmr-srbh/paper-desktop/core/settings"
)

var (
	errUnauthorized   = echo.NewHTTPError(http.StatusUnauthorized, "class not unlocked")
	errRefreshExpired = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")

	// domainErrors maps domain errors to their status code, first match wins.
	domainErrors = []struct {
		err  error
		code int
	}{
		{session.ErrLocked, http.StatusUnauthorized},
		{class.ErrWrongPIN, http.StatusUnauthorized},

		{class.ErrNoPIN, http.StatusNotFound},
		{class.ErrNoClass, http.StatusNotFound},
		{roster.ErrRollNumberNotFound, http.StatusNotFound},
		{attendance.ErrRollNumberNotFound, http.StatusNotFound},
		{attendance.ErrNoRecord, http.StatusNotFound},
		{report.ErrNotFound, http.StatusNotFound},

		{class.ErrPINExists, http.StatusConflict},
		{class.ErrClassExists, http.StatusConflict},
		{roster.ErrDuplicateStudent, http.StatusConflict},
		{attendance.ErrAlreadyRecorded, http.StatusConflict},

		{session.ErrNoSheet, http.StatusBadRequest},
		{attendance.ErrEmptyRoster, http.StatusBadRequest},
		{attendance.ErrEmptyRecord, http.StatusBadRequest},
		{attendance.ErrUnknownStudent, http.StatusBadRequest},
		{attendance.ErrDuplicateName, http.StatusBadRequest},
		{attendance.ErrInvalidState, http.StatusBadRequest},
		{settings.ErrInvalidFrequency, http.StatusBadRequest},
		{class.ErrSamePIN, http.StatusBadRequest},
		{core.ErrInvalidDate, http.StatusBadRequest},
	}
)

func domainErrorCode(err error) (int, bool) {
	for _, de := range domainErrors {
		if errors.Is(err, de.err) {
			return de.code, true
		}
	}
	return 0, false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
func newAppHTTPErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		if fields, ok := core.FieldErrors(err); ok {
			code = http.StatusBadRequest
			message = fields
			if len(fields) == 0 {
				message = err.Error()
			}
		} else if dCode, ok := domainErrorCode(err); ok {
			code = dCode
			message = errors.Cause(err).Error()
		} else {
			var argErr *apps.ArgumentError
			var httpErr *echo.HTTPError
			switch {
			case errors.As(err, &argErr):
				code = http.StatusBadRequest
				message = argErr.Error()
			case errors.As(err, &httpErr):
				if httpErr == middleware.ErrJWTMissing {
					code = http.StatusUnauthorized
					message = httpErr.Message
					break
				}
				if httpErr.Internal != nil {
					if herr, ok := httpErr.Internal.(*echo.HTTPError); ok {
						httpErr = herr
					}
				}
				code = httpErr.Code
				message = httpErr.Message
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				logger.Error(msg, errors.Wrap(err, msg), map[string]interface{}{
					"request_id": ctx.Response().Header().Get(echo.HeaderXRequestID),
				})
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
