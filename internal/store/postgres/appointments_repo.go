package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"docbook/backend/internal/domain"
	"docbook/backend/internal/store"
)

type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

// Create inserts the appointment. The appointments_active_slot partial unique
// index is the arbiter of slot ownership: two bookers racing for the same
// (doctor, date, time) lose deterministically here, whatever the availability
// check said moments earlier.
func (r *AppointmentRepo) Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	m := appt
	_, err := r.db.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "appointments_active_slot" {
			return domain.Appointment{}, store.ErrSlotTaken
		}
		return domain.Appointment{}, err
	}
	return m, nil
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	var a domain.Appointment
	err := r.db.NewSelect().
		Model(&a).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, store.ErrNotFound
		}
		return domain.Appointment{}, err
	}
	return a, nil
}

func (r *AppointmentRepo) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("patient_id = ?", patientID).
		OrderExpr("appointment_date DESC, appointment_time DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) BookedSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error) {
	var slots []string
	err := r.db.NewSelect().
		Model((*domain.Appointment)(nil)).
		Column("appointment_time").
		Where("doctor_id = ?", doctorID).
		Where("appointment_date = ?", date).
		Where("status IN (?)", bun.In([]domain.AppointmentStatus{
			domain.AppointmentStatusConfirmed,
			domain.AppointmentStatusCompleted,
		})).
		OrderExpr("appointment_time ASC").
		Scan(ctx, &slots)
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus) (domain.Appointment, error) {
	res, err := r.db.NewUpdate().
		Model((*domain.Appointment)(nil)).
		Set("status = ?", status).
		Set("updated_at = now()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return domain.Appointment{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Appointment{}, err
	}
	if affected == 0 {
		return domain.Appointment{}, store.ErrNotFound
	}
	return r.GetByID(ctx, id)
}
