package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Doctor is the professional profile attached to a user with RoleDoctor.
// Its ID is the owning user's ID.
type Doctor struct {
	bun.BaseModel `bun:"table:doctors"`

	ID                  uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	FullName            string    `bun:"full_name,notnull" json:"full_name"`
	Specialization      string    `bun:"specialization,notnull" json:"specialization"`
	Description         string    `bun:"description" json:"description"`
	ImageURL            string    `bun:"image_url" json:"image_url"`
	YearsExperience     int       `bun:"years_experience,notnull" json:"years_experience"`
	Rating              float64   `bun:"rating,notnull" json:"rating"`
	AvailableDays       []string  `bun:"available_days,array,notnull" json:"available_days"`
	AvailableHours      []string  `bun:"available_hours,array,notnull" json:"available_hours"`
	LicenseNumber       string    `bun:"license_number,notnull" json:"license_number"`
	Education           string    `bun:"education" json:"education"`
	HospitalAffiliation string    `bun:"hospital_affiliation" json:"hospital_affiliation,omitempty"`
	ConsultationFee     float64   `bun:"consultation_fee,notnull" json:"consultation_fee"`
	IsApproved          bool      `bun:"is_approved,notnull" json:"is_approved"`
	CreatedAt           time.Time `bun:"created_at,notnull" json:"created_at"`
}

func (d *Doctor) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	return nil
}
