package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"vlogvalidator/core"
	"vlogvalidator/core/auth"
	"vlogvalidator/core/submission"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "teacher not authenticated")
	errTokenMissing         = echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed jwt")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
	errHttpConflict         = echo.NewHTTPError(http.StatusConflict, "a submission is already being processed")
	errHttpGatewayTimeout   = echo.NewHTTPError(http.StatusGatewayTimeout, submission.ErrWriteTimeout.Error())
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			switch origErr {
			case submission.ErrNotFound:
				code = errHttpNotFound.Code
				message = errHttpNotFound.Message
			case submission.ErrPermissionDenied:
				code = errHttpForbidden.Code
				message = origErr.Error()
			case submission.ErrWriteTimeout:
				code = errHttpGatewayTimeout.Code
				message = errHttpGatewayTimeout.Message
			case submission.ErrIntakeBusy:
				code = errHttpConflict.Code
				message = errHttpConflict.Message
			case auth.ErrInvalidCredentials, auth.ErrInvalidEmail:
				code = errAuthenticationFailed.Code
				message = errAuthenticationFailed.Message
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				// attach the signed-in teacher to the report when known
				var sess auth.Session
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					sess.UID = claims.Subject
					sess.Email = claims.Email
				}
				logger.Error(msg, errors.Wrap(err, msg), sess)
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
