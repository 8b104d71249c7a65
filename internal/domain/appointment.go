package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type AppointmentStatus string

const (
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID        uuid.UUID         `bun:"id,pk,type:uuid" json:"id"`
	PatientID uuid.UUID         `bun:"patient_id,notnull,type:uuid" json:"patient_id"`
	DoctorID  uuid.UUID         `bun:"doctor_id,notnull,type:uuid" json:"doctor_id"`
	Date      string            `bun:"appointment_date,notnull" json:"appointment_date"`
	Slot      string            `bun:"appointment_time,notnull" json:"appointment_time"`
	Status    AppointmentStatus `bun:"status,notnull" json:"status"`
	Notes     string            `bun:"notes" json:"notes,omitempty"`
	CreatedAt time.Time         `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time         `bun:"updated_at,notnull" json:"updated_at"`
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}
