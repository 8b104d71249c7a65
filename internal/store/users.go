package store

import (
	"context"

	"github.com/google/uuid"

	"docbook/backend/internal/domain"
)

type UserRepository interface {
	// CreateWithDoctor inserts the user and, when doctor is non-nil, the
	// doctor profile keyed by the new user's ID. Both writes happen in one
	// transaction: a failed doctor insert leaves no user row behind.
	CreateWithDoctor(ctx context.Context, user domain.User, doctor *domain.Doctor) (domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fullName, phone string) (domain.User, error)
}
