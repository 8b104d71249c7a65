package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"docbook/backend/internal/service/auth"
	"docbook/backend/internal/service/booking"
	"docbook/backend/internal/store"
)

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// respondError translates service and store errors into HTTP responses. The
// default arm never leaks internals to the client.
func respondError(c echo.Context, log *slog.Logger, err error) error {
	var authErr *auth.ValidationError
	var bookingErr *booking.ValidationError

	switch {
	case errors.As(err, &authErr):
		log.Warn("invalid request", slog.Any("err", err))
		return c.JSON(http.StatusBadRequest, errorBody(authErr.Error()))
	case errors.As(err, &bookingErr):
		log.Warn("invalid request", slog.Any("err", err))
		return c.JSON(http.StatusBadRequest, errorBody(bookingErr.Error()))
	case errors.Is(err, auth.ErrInvalidCredentials):
		log.Info("sign-in rejected")
		return c.JSON(http.StatusUnauthorized, errorBody("invalid email or password"))
	case errors.Is(err, auth.ErrTokenInvalid):
		log.Info("token rejected")
		return c.JSON(http.StatusUnauthorized, errorBody("invalid or expired token"))
	case errors.Is(err, store.ErrNotFound):
		log.Info("not found")
		return c.JSON(http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, store.ErrEmailTaken):
		log.Info("email conflict")
		return c.JSON(http.StatusConflict, errorBody("That email is already registered. Sign in instead."))
	case errors.Is(err, store.ErrSlotTaken):
		log.Info("slot conflict")
		return c.JSON(http.StatusConflict, errorBody("That time slot was just taken. Pick a different one."))
	case errors.Is(err, booking.ErrCancelWindow):
		log.Info("cancel window closed")
		return c.JSON(http.StatusUnprocessableEntity, errorBody("This appointment can no longer be cancelled."))
	default:
		log.Error("request failed", slog.Any("err", err))
		return c.JSON(http.StatusInternalServerError, errorBody("internal error"))
	}
}
