package errors

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ToHTTPStatus converts an error code into an HTTP status code.
func ToHTTPStatus(code string) int {
	httpStatus, _ := GetCodeMapping(code)
	return httpStatus
}

// ToHTTPError converts an error into an Echo HTTP error.
func ToHTTPError(err error) *echo.HTTPError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if As(err, &appErr) {
		httpStatus := ToHTTPStatus(appErr.Code())
		return echo.NewHTTPError(httpStatus, appErr.Error())
	}

	if echoErr, ok := err.(*echo.HTTPError); ok {
		return echoErr
	}

	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

// FromHTTPError converts an Echo HTTP error into an internal error.
func FromHTTPError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if As(err, &appErr) {
		return err
	}

	if echoErr, ok := err.(*echo.HTTPError); ok {
		code := httpStatusToCode(echoErr.Code)
		var msg string
		if m, ok := echoErr.Message.(string); ok {
			msg = m
		} else {
			msg = "HTTP error"
		}
		return NewAppError(code, msg, nil)
	}

	return NewAppError(ErrInternal, err.Error(), err)
}
