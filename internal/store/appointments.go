package store

import (
	"context"

	"github.com/google/uuid"

	"docbook/backend/internal/domain"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]domain.Appointment, error)
	// BookedSlots returns the times of non-cancelled appointments for the
	// doctor on the given date, ascending.
	BookedSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus) (domain.Appointment, error)
}
