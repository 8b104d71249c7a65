package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"docbook/backend/internal/domain"
	"docbook/backend/internal/store"
)

type DoctorRepo struct {
	db *bun.DB
}

func NewDoctorRepo(db *bun.DB) *DoctorRepo {
	return &DoctorRepo{db: db}
}

func (r *DoctorRepo) ListApproved(ctx context.Context) ([]domain.Doctor, error) {
	var rows []domain.Doctor
	err := r.db.NewSelect().
		Model(&rows).
		Where("is_approved = TRUE").
		OrderExpr("full_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *DoctorRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Doctor, error) {
	var d domain.Doctor
	err := r.db.NewSelect().
		Model(&d).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Doctor{}, store.ErrNotFound
		}
		return domain.Doctor{}, err
	}
	return d, nil
}
