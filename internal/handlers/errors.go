package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/pixeltrade/pixeltrade/internal/model"
)

// httpError translates the service error taxonomy into HTTP statuses.
// Every kind keeps its own message so the client can render role- and
// state-specific feedback; anything unrecognized is logged and surfaced
// as an opaque 500.
func httpError(err error) error {
	var validation *model.ValidationError
	if errors.As(err, &validation) {
		return echo.NewHTTPError(http.StatusBadRequest, validation.Message)
	}

	switch {
	case errors.Is(err, model.ErrorNotFound), errors.Is(err, model.ErrorUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, unwrapMessage(err))
	case errors.Is(err, model.ErrorForbidden):
		return echo.NewHTTPError(http.StatusForbidden, model.ErrorForbidden.Error())
	case errors.Is(err, model.ErrorUnauthenticated), errors.Is(err, model.ErrorInvalidUsernameOrPassword):
		return echo.NewHTTPError(http.StatusUnauthorized, unwrapMessage(err))
	case errors.Is(err, model.ErrorExpired):
		return echo.NewHTTPError(http.StatusGone, model.ErrorExpired.Error())
	case errors.Is(err, model.ErrorAlreadyClaimed), errors.Is(err, model.ErrorConflict):
		return echo.NewHTTPError(http.StatusConflict, unwrapMessage(err))
	case errors.Is(err, model.ErrorSelfJoin), errors.Is(err, model.ErrorInvalidState),
		errors.Is(err, model.ErrorDuplicateUsername), errors.Is(err, model.ErrorDuplicateEmail):
		return echo.NewHTTPError(http.StatusBadRequest, unwrapMessage(err))
	}

	log.Errorf("internal error: %+v", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

func unwrapMessage(err error) string {
	for _, sentinel := range []error{
		model.ErrorNotFound, model.ErrorUserNotFound, model.ErrorUnauthenticated,
		model.ErrorInvalidUsernameOrPassword, model.ErrorAlreadyClaimed,
		model.ErrorConflict, model.ErrorSelfJoin, model.ErrorInvalidState,
		model.ErrorDuplicateUsername, model.ErrorDuplicateEmail,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
