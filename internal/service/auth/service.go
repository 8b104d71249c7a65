package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

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

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenInvalid       = errors.New("invalid or expired token")
)

var weekdayNames = map[string]struct{}{
	"Monday": {}, "Tuesday": {}, "Wednesday": {}, "Thursday": {},
	"Friday": {}, "Saturday": {}, "Sunday": {},
}

type Service struct {
	users    store.UserRepository
	secret   []byte
	tokenTTL time.Duration
	events   *SessionEvents
	revoked  *revocationSet
}

func NewService(users store.UserRepository, secret []byte, tokenTTL time.Duration, events *SessionEvents) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{
		users:    users,
		secret:   secret,
		tokenTTL: tokenTTL,
		events:   events,
		revoked:  newRevocationSet(),
	}
}

type SignUpInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
	Role     domain.Role
	Doctor   *DoctorRegistration
}

type DoctorRegistration struct {
	Specialization      string
	Description         string
	YearsExperience     int
	LicenseNumber       string
	Education           string
	HospitalAffiliation string
	ConsultationFee     float64
	AvailableDays       []string
	AvailableHours      []string
}

// SignUp creates the account and, for doctors, the professional profile. Both
// rows are written in one storage transaction; a failed profile write does not
// leave an orphaned account behind.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	fullName := strings.TrimSpace(in.FullName)
	phone := strings.TrimSpace(in.Phone)

	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, validationError("a valid email is required")
	}
	if len(in.Password) < 6 {
		return domain.User{}, validationError("password must be at least 6 characters")
	}
	if fullName == "" {
		return domain.User{}, validationError("full_name is required")
	}
	if phone == "" {
		return domain.User{}, validationError("phone is required")
	}

	role := in.Role
	if role == "" {
		role = domain.RolePatient
	}
	if role != domain.RolePatient && role != domain.RoleDoctor {
		return domain.User{}, validationError("role must be patient or doctor")
	}

	var doctor *domain.Doctor
	if role == domain.RoleDoctor && in.Doctor != nil {
		d, err := buildDoctorProfile(fullName, *in.Doctor)
		if err != nil {
			return domain.User{}, err
		}
		doctor = &d
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		Email:        email,
		FullName:     fullName,
		Phone:        phone,
		Role:         role,
		PasswordHash: string(hash),
	}

	return s.users.CreateWithDoctor(ctx, user, doctor)
}

func buildDoctorProfile(fullName string, in DoctorRegistration) (domain.Doctor, error) {
	specialization := strings.TrimSpace(in.Specialization)
	licenseNumber := strings.TrimSpace(in.LicenseNumber)

	if specialization == "" {
		return domain.Doctor{}, validationError("specialization is required")
	}
	if licenseNumber == "" {
		return domain.Doctor{}, validationError("license_number is required")
	}
	if in.YearsExperience < 0 {
		return domain.Doctor{}, validationError("years_experience must not be negative")
	}
	if in.ConsultationFee < 0 {
		return domain.Doctor{}, validationError("consultation_fee must not be negative")
	}
	if len(in.AvailableDays) == 0 {
		return domain.Doctor{}, validationError("at least one available day is required")
	}
	for _, day := range in.AvailableDays {
		if _, ok := weekdayNames[day]; !ok {
			return domain.Doctor{}, validationError(fmt.Sprintf("%q is not a weekday name", day))
		}
	}
	if len(in.AvailableHours) == 0 {
		return domain.Doctor{}, validationError("at least one available hour is required")
	}
	for _, hour := range in.AvailableHours {
		if len(hour) != 5 {
			return domain.Doctor{}, validationError(fmt.Sprintf("%q is not an HH:MM time", hour))
		}
		if _, err := time.Parse(domain.SlotLayout, hour); err != nil {
			return domain.Doctor{}, validationError(fmt.Sprintf("%q is not an HH:MM time", hour))
		}
	}

	// New doctors start unrated and approved. Approval has no review step
	// yet; the flag exists so one can be added without a schema change.
	return domain.Doctor{
		FullName:            fullName,
		Specialization:      specialization,
		Description:         strings.TrimSpace(in.Description),
		YearsExperience:     in.YearsExperience,
		Rating:              0,
		AvailableDays:       in.AvailableDays,
		AvailableHours:      in.AvailableHours,
		LicenseNumber:       licenseNumber,
		Education:           strings.TrimSpace(in.Education),
		HospitalAffiliation: strings.TrimSpace(in.HospitalAffiliation),
		ConsultationFee:     in.ConsultationFee,
		IsApproved:          true,
	}, nil
}

type Session struct {
	User      domain.User
	Token     string
	ExpiresAt time.Time
}

type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Session{}, validationError("email and password are required")
	}

	s.publish(SessionState{Phase: PhaseAuthenticating})

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.publish(SessionState{Phase: PhaseUnauthenticated})
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.publish(SessionState{Phase: PhaseUnauthenticated})
		return Session{}, ErrInvalidCredentials
	}

	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)
	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		s.publish(SessionState{Phase: PhaseUnauthenticated})
		return Session{}, err
	}

	s.publish(SessionState{Phase: PhaseAuthenticated, UserID: user.ID})
	return Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// SignOut revokes the token; its ID stays on the revocation set until the
// token would have expired anyway.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.VerifyToken(token)
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	s.revoked.add(claims.ID, expiresAt)

	s.publish(SessionState{Phase: PhaseUnauthenticated})
	return nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, fullName, phone string) (domain.User, error) {
	fullName = strings.TrimSpace(fullName)
	phone = strings.TrimSpace(phone)
	if fullName == "" {
		return domain.User{}, validationError("full_name is required")
	}
	if phone == "" {
		return domain.User{}, validationError("phone is required")
	}
	return s.users.UpdateProfile(ctx, userID, fullName, phone)
}

func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *Service) VerifyToken(token string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return Claims{}, ErrTokenInvalid
	}
	if s.revoked.contains(claims.ID) {
		return Claims{}, ErrTokenInvalid
	}
	return *claims, nil
}

func (s *Service) publish(state SessionState) {
	if s.events != nil {
		s.events.Publish(state)
	}
}
