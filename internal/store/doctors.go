package store

import (
	"context"

	"github.com/google/uuid"

	"docbook/backend/internal/domain"
)

type DoctorRepository interface {
	ListApproved(ctx context.Context) ([]domain.Doctor, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Doctor, error)
}
