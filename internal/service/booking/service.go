package booking

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"docbook/backend/internal/domain"
	"docbook/backend/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// ErrCancelWindow means the appointment exists but is past the point where
// the patient may cancel it (non-confirmed, in the past, or within two hours).
var ErrCancelWindow = errors.New("appointment can no longer be cancelled")

type Service struct {
	doctors store.DoctorRepository
	appts   store.AppointmentRepository
}

func NewService(doctors store.DoctorRepository, appts store.AppointmentRepository) *Service {
	return &Service{doctors: doctors, appts: appts}
}

func (s *Service) ListDoctors(ctx context.Context) ([]domain.Doctor, error) {
	return s.doctors.ListApproved(ctx)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (domain.Doctor, error) {
	if id == uuid.Nil {
		return domain.Doctor{}, validationError("doctor_id is required")
	}
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) BookedSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error) {
	if doctorID == uuid.Nil {
		return nil, validationError("doctor_id is required")
	}
	if err := validDate(date); err != nil {
		return nil, err
	}
	return s.appts.BookedSlots(ctx, doctorID, date)
}

// DaySlots is the slot picture for one doctor on one date.
type DaySlots struct {
	Date      string   `json:"date"`
	Booked    []string `json:"booked_slots"`
	Available []string `json:"available_slots"`
}

// AvailableSlots fetches the booked slots for the date and only then resolves
// availability against the doctor's declared weekly schedule.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) (DaySlots, error) {
	doctor, err := s.GetDoctor(ctx, doctorID)
	if err != nil {
		return DaySlots{}, err
	}
	booked, err := s.BookedSlots(ctx, doctorID, date)
	if err != nil {
		return DaySlots{}, err
	}
	return DaySlots{
		Date:      date,
		Booked:    booked,
		Available: domain.AvailableTimeSlots(doctor, date, booked),
	}, nil
}

type BookInput struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Date      string
	Slot      string
	Notes     string
}

// Book creates a confirmed appointment. Availability is re-resolved against
// fresh booked slots right before the insert; the storage layer's unique
// constraint still decides a race that slips past this check, surfacing as
// store.ErrSlotTaken.
func (s *Service) Book(ctx context.Context, in BookInput) (domain.Appointment, error) {
	if in.PatientID == uuid.Nil {
		return domain.Appointment{}, validationError("patient_id is required")
	}
	if in.DoctorID == uuid.Nil {
		return domain.Appointment{}, validationError("doctor_id is required")
	}
	if err := validDate(in.Date); err != nil {
		return domain.Appointment{}, err
	}
	if in.Slot == "" {
		return domain.Appointment{}, validationError("appointment_time is required")
	}

	doctor, err := s.doctors.GetByID(ctx, in.DoctorID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if !domain.IsDoctorAvailableOnDate(doctor, in.Date) {
		return domain.Appointment{}, validationError("doctor is not available on that date")
	}
	if !slices.Contains(doctor.AvailableHours, in.Slot) {
		return domain.Appointment{}, validationError("doctor does not offer that time slot")
	}

	booked, err := s.appts.BookedSlots(ctx, in.DoctorID, in.Date)
	if err != nil {
		return domain.Appointment{}, err
	}
	available := domain.AvailableTimeSlots(doctor, in.Date, booked)
	if !slices.Contains(available, in.Slot) {
		return domain.Appointment{}, store.ErrSlotTaken
	}

	return s.appts.Create(ctx, domain.Appointment{
		PatientID: in.PatientID,
		DoctorID:  in.DoctorID,
		Date:      in.Date,
		Slot:      in.Slot,
		Status:    domain.AppointmentStatusConfirmed,
		Notes:     strings.TrimSpace(in.Notes),
	})
}

func (s *Service) ListPatientAppointments(ctx context.Context, patientID uuid.UUID) ([]domain.Appointment, error) {
	if patientID == uuid.Nil {
		return nil, validationError("patient_id is required")
	}
	return s.appts.ListForPatient(ctx, patientID)
}

// Cancel transitions the patient's own confirmed appointment to cancelled,
// provided the cancellation window is still open.
func (s *Service) Cancel(ctx context.Context, patientID, appointmentID uuid.UUID) (domain.Appointment, error) {
	if patientID == uuid.Nil {
		return domain.Appointment{}, validationError("patient_id is required")
	}
	if appointmentID == uuid.Nil {
		return domain.Appointment{}, validationError("appointment_id is required")
	}

	appt, err := s.appts.GetByID(ctx, appointmentID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if appt.PatientID != patientID {
		// Another patient's appointment looks like no appointment at all.
		return domain.Appointment{}, store.ErrNotFound
	}
	if !domain.CanCancelAppointment(appt.Date, appt.Slot, appt.Status) {
		return domain.Appointment{}, ErrCancelWindow
	}

	return s.appts.UpdateStatus(ctx, appointmentID, domain.AppointmentStatusCancelled)
}

func validDate(date string) error {
	if _, err := time.Parse(domain.DateLayout, date); err != nil || len(date) != len(domain.DateLayout) {
		return validationError("date must be YYYY-MM-DD")
	}
	return nil
}
