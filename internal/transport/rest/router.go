package rest

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"docbook/backend/internal/service/auth"
	"docbook/backend/internal/service/booking"
)

func NewRouter(authSvc *auth.Service, bookingSvc *booking.Service, log *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())

	authH := NewAuthHandler(authSvc, log)
	bookH := NewBookingHandler(bookingSvc, log)

	v1 := e.Group("/v1")
	v1.POST("/auth/signup", authH.SignUp)
	v1.POST("/auth/signin", authH.SignIn)
	v1.GET("/doctors", bookH.ListDoctors)
	v1.GET("/doctors/:id", bookH.GetDoctor)
	v1.GET("/doctors/:id/slots", bookH.DoctorSlots)

	authed := v1.Group("", RequireAuth(authSvc))
	authed.POST("/auth/signout", authH.SignOut)
	authed.GET("/profile", authH.GetProfile)
	authed.PATCH("/profile", authH.UpdateProfile)
	authed.POST("/appointments", bookH.Book)
	authed.GET("/appointments", bookH.ListAppointments)
	authed.POST("/appointments/:id/cancel", bookH.Cancel)

	return e
}
