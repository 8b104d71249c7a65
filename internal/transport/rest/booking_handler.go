package rest

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"docbook/backend/internal/service/booking"
)

type BookingHandler struct {
	svc *booking.Service
	log *slog.Logger
}

func NewBookingHandler(svc *booking.Service, log *slog.Logger) *BookingHandler {
	if log == nil {
		log = slog.Default()
	}
	return &BookingHandler{
		svc: svc,
		log: log.With(slog.String("component", "rest.booking")),
	}
}

func (h *BookingHandler) ListDoctors(c echo.Context) error {
	log := h.log.With(slog.String("op", "ListDoctors"))

	doctors, err := h.svc.ListDoctors(c.Request().Context())
	if err != nil {
		return respondError(c, log, err)
	}

	log.Debug("doctors listed", slog.Int("count", len(doctors)))
	return c.JSON(http.StatusOK, doctors)
}

func (h *BookingHandler) GetDoctor(c echo.Context) error {
	log := h.log.With(slog.String("op", "GetDoctor"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_doctor_id"))
		return c.JSON(http.StatusBadRequest, errorBody("doctor id must be a UUID"))
	}

	doctor, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, doctor)
}

// DoctorSlots returns the booked and available slots for one doctor and date.
// The client re-fetches this whenever the selected date changes and must
// submit a booking only for a slot present in the fresh available set.
func (h *BookingHandler) DoctorSlots(c echo.Context) error {
	log := h.log.With(slog.String("op", "DoctorSlots"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_doctor_id"))
		return c.JSON(http.StatusBadRequest, errorBody("doctor id must be a UUID"))
	}
	date := c.QueryParam("date")
	if date == "" {
		log.Warn("invalid request", slog.String("reason", "missing_date"))
		return c.JSON(http.StatusBadRequest, errorBody("date query parameter is required"))
	}

	slots, err := h.svc.AvailableSlots(c.Request().Context(), id, date)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Debug("slots resolved",
		slog.String("doctor_id", id.String()),
		slog.String("date", date),
		slog.Int("available", len(slots.Available)),
	)
	return c.JSON(http.StatusOK, slots)
}

type bookRequest struct {
	DoctorID string `json:"doctor_id"`
	Date     string `json:"appointment_date"`
	Slot     string `json:"appointment_time"`
	Notes    string `json:"notes"`
}

func (h *BookingHandler) Book(c echo.Context) error {
	log := h.log.With(slog.String("op", "Book"))

	var req bookRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_body"))
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_doctor_id"))
		return c.JSON(http.StatusBadRequest, errorBody("doctor_id must be a UUID"))
	}

	appt, err := h.svc.Book(c.Request().Context(), booking.BookInput{
		PatientID: currentUserID(c),
		DoctorID:  doctorID,
		Date:      req.Date,
		Slot:      req.Slot,
		Notes:     req.Notes,
	})
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("appointment booked",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("patient_id", appt.PatientID.String()),
		slog.String("doctor_id", appt.DoctorID.String()),
		slog.String("date", appt.Date),
		slog.String("slot", appt.Slot),
	)
	return c.JSON(http.StatusCreated, appt)
}

func (h *BookingHandler) ListAppointments(c echo.Context) error {
	log := h.log.With(slog.String("op", "ListAppointments"))

	appts, err := h.svc.ListPatientAppointments(c.Request().Context(), currentUserID(c))
	if err != nil {
		return respondError(c, log, err)
	}

	log.Debug("appointments listed",
		slog.String("patient_id", currentUserID(c).String()),
		slog.Int("count", len(appts)),
	)
	return c.JSON(http.StatusOK, appts)
}

func (h *BookingHandler) Cancel(c echo.Context) error {
	log := h.log.With(slog.String("op", "Cancel"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_appointment_id"))
		return c.JSON(http.StatusBadRequest, errorBody("appointment id must be a UUID"))
	}

	appt, err := h.svc.Cancel(c.Request().Context(), currentUserID(c), id)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("appointment cancelled",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("patient_id", appt.PatientID.String()),
	)
	return c.JSON(http.StatusOK, appt)
}
