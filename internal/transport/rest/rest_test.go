package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"docbook/backend/internal/domain"
	"docbook/backend/internal/service/auth"
	"docbook/backend/internal/service/booking"
	"docbook/backend/internal/store"
)

// ── In-memory repositories ──

type memUserRepo struct {
	byID    map[uuid.UUID]domain.User
	byEmail map[string]uuid.UUID
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byID:    make(map[uuid.UUID]domain.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (m *memUserRepo) CreateWithDoctor(_ context.Context, user domain.User, doctor *domain.Doctor) (domain.User, error) {
	if _, ok := m.byEmail[user.Email]; ok {
		return domain.User{}, store.ErrEmailTaken
	}
	user.ID = uuid.New()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.byID[user.ID] = user
	m.byEmail[user.Email] = user.ID
	return user, nil
}

func (m *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.byEmail[email]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return m.byID[id], nil
}

func (m *memUserRepo) UpdateProfile(_ context.Context, id uuid.UUID, fullName, phone string) (domain.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	u.FullName = fullName
	u.Phone = phone
	u.UpdatedAt = time.Now().UTC()
	m.byID[id] = u
	return u, nil
}

type memDoctorRepo struct {
	doctors map[uuid.UUID]domain.Doctor
}

func (m *memDoctorRepo) ListApproved(_ context.Context) ([]domain.Doctor, error) {
	var out []domain.Doctor
	for _, d := range m.doctors {
		if d.IsApproved {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return domain.Doctor{}, store.ErrNotFound
	}
	return d, nil
}

type memAppointmentRepo struct {
	appts map[uuid.UUID]domain.Appointment
}

func newMemAppointmentRepo() *memAppointmentRepo {
	return &memAppointmentRepo{appts: make(map[uuid.UUID]domain.Appointment)}
}

func (m *memAppointmentRepo) Create(_ context.Context, appt domain.Appointment) (domain.Appointment, error) {
	for _, existing := range m.appts {
		if existing.DoctorID == appt.DoctorID &&
			existing.Date == appt.Date &&
			existing.Slot == appt.Slot &&
			existing.Status != domain.AppointmentStatusCancelled {
			return domain.Appointment{}, store.ErrSlotTaken
		}
	}
	appt.ID = uuid.New()
	now := time.Now().UTC()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	m.appts[appt.ID] = appt
	return appt, nil
}

func (m *memAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	return a, nil
}

func (m *memAppointmentRepo) ListForPatient(_ context.Context, patientID uuid.UUID) ([]domain.Appointment, error) {
	var out []domain.Appointment
	for _, a := range m.appts {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAppointmentRepo) BookedSlots(_ context.Context, doctorID uuid.UUID, date string) ([]string, error) {
	var out []string
	for _, a := range m.appts {
		if a.DoctorID == doctorID && a.Date == date && a.Status != domain.AppointmentStatusCancelled {
			out = append(out, a.Slot)
		}
	}
	return out, nil
}

func (m *memAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.AppointmentStatus) (domain.Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	m.appts[id] = a
	return a, nil
}

// ── Harness ──

type testAPI struct {
	e       *echo.Echo
	users   *memUserRepo
	doctors *memDoctorRepo
	appts   *memAppointmentRepo
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	users := newMemUserRepo()
	doctors := &memDoctorRepo{doctors: make(map[uuid.UUID]domain.Doctor)}
	appts := newMemAppointmentRepo()

	events := auth.NewSessionEvents()
	t.Cleanup(events.Close)

	authSvc := auth.NewService(users, []byte("test-secret"), time.Hour, events)
	bookingSvc := booking.NewService(doctors, appts)

	return &testAPI{
		e:       NewRouter(authSvc, bookingSvc, nil),
		users:   users,
		doctors: doctors,
		appts:   appts,
	}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func (a *testAPI) signUpDoctor(t *testing.T) domain.User {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/v1/auth/signup", "", map[string]any{
		"email":     "doc@example.com",
		"password":  "hunter22",
		"full_name": "Dr. Amina Yusuf",
		"phone":     "0700000002",
		"role":      "doctor",
		"doctor": map[string]any{
			"specialization":   "Cardiology",
			"years_experience": 9,
			"license_number":   "LIC-42",
			"education":        "MBBS",
			"consultation_fee": 150,
			"available_days":   []string{"Monday", "Wednesday"},
			"available_hours":  []string{"09:00", "10:00"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("doctor signup: status %d, body %s", rec.Code, rec.Body.String())
	}
	user := decodeJSON[domain.User](t, rec)
	// Mirror what the real store does inside the sign-up transaction.
	a.doctors.doctors[user.ID] = domain.Doctor{
		ID:             user.ID,
		FullName:       user.FullName,
		Specialization: "Cardiology",
		AvailableDays:  []string{"Monday", "Wednesday"},
		AvailableHours: []string{"09:00", "10:00"},
		IsApproved:     true,
	}
	return user
}

func (a *testAPI) signUpAndSignInPatient(t *testing.T, email string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/v1/auth/signup", "", map[string]any{
		"email":     email,
		"password":  "hunter22",
		"full_name": "Pat Doe",
		"phone":     "0700000001",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("patient signup: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = a.do(t, http.MethodPost, "/v1/auth/signin", "", map[string]any{
		"email":    email,
		"password": "hunter22",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("signin: status %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeJSON[map[string]any](t, rec)
	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatalf("signin response has no token: %s", rec.Body.String())
	}
	return token
}

// ── Tests ──

func TestSignUpRoles(t *testing.T) {
	api := newTestAPI(t)

	doctor := api.signUpDoctor(t)
	if doctor.Role != domain.RoleDoctor {
		t.Fatalf("doctor role = %q", doctor.Role)
	}

	rec := api.do(t, http.MethodPost, "/v1/auth/signup", "", map[string]any{
		"email":     "pat@example.com",
		"password":  "hunter22",
		"full_name": "Pat Doe",
		"phone":     "0700000001",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("patient signup: status %d, body %s", rec.Code, rec.Body.String())
	}
	patient := decodeJSON[domain.User](t, rec)
	if patient.Role != domain.RolePatient {
		t.Fatalf("patient role = %q", patient.Role)
	}

	// Duplicate email conflicts.
	rec = api.do(t, http.MethodPost, "/v1/auth/signup", "", map[string]any{
		"email":     "pat@example.com",
		"password":  "hunter22",
		"full_name": "Pat Doe",
		"phone":     "0700000001",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: status %d, want 409", rec.Code)
	}

	// Validation failures are rejected before any write.
	rec = api.do(t, http.MethodPost, "/v1/auth/signup", "", map[string]any{
		"email":     "short@example.com",
		"password":  "abc",
		"full_name": "Shorty",
		"phone":     "0700000003",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("short password: status %d, want 400", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/v1/appointments", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d, want 401", rec.Code)
	}

	rec = api.do(t, http.MethodGet, "/v1/appointments", "garbage-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status %d, want 401", rec.Code)
	}
}

func TestBookingFlow(t *testing.T) {
	api := newTestAPI(t)
	doctor := api.signUpDoctor(t)
	token := api.signUpAndSignInPatient(t, "pat@example.com")

	// 2026-01-07 is a Wednesday.
	slotsPath := fmt.Sprintf("/v1/doctors/%s/slots?date=2026-01-07", doctor.ID)

	rec := api.do(t, http.MethodGet, slotsPath, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("slots: status %d, body %s", rec.Code, rec.Body.String())
	}
	slots := decodeJSON[booking.DaySlots](t, rec)
	if len(slots.Available) != 2 {
		t.Fatalf("available before booking = %v", slots.Available)
	}

	rec = api.do(t, http.MethodPost, "/v1/appointments", token, map[string]any{
		"doctor_id":        doctor.ID.String(),
		"appointment_date": "2026-01-07",
		"appointment_time": "09:00",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("book: status %d, body %s", rec.Code, rec.Body.String())
	}
	appt := decodeJSON[domain.Appointment](t, rec)
	if appt.Status != domain.AppointmentStatusConfirmed {
		t.Fatalf("status = %q, want confirmed", appt.Status)
	}

	// The booked slot disappears from the availability picture.
	rec = api.do(t, http.MethodGet, slotsPath, "", nil)
	slots = decodeJSON[booking.DaySlots](t, rec)
	if len(slots.Available) != 1 || slots.Available[0] != "10:00" {
		t.Fatalf("available after booking = %v, want [10:00]", slots.Available)
	}

	// A second booker loses the same slot.
	other := api.signUpAndSignInPatient(t, "other@example.com")
	rec = api.do(t, http.MethodPost, "/v1/appointments", other, map[string]any{
		"doctor_id":        doctor.ID.String(),
		"appointment_date": "2026-01-07",
		"appointment_time": "09:00",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("double booking: status %d, want 409", rec.Code)
	}

	// A weekday the doctor never works yields no slots at all.
	rec = api.do(t, http.MethodGet, fmt.Sprintf("/v1/doctors/%s/slots?date=2026-01-13", doctor.ID), "", nil)
	slots = decodeJSON[booking.DaySlots](t, rec)
	if len(slots.Available) != 0 {
		t.Fatalf("tuesday available = %v, want empty", slots.Available)
	}

	rec = api.do(t, http.MethodGet, "/v1/appointments", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	appts := decodeJSON[[]domain.Appointment](t, rec)
	if len(appts) != 1 || appts[0].ID != appt.ID {
		t.Fatalf("appointments = %+v", appts)
	}
}

func TestCancelFlow(t *testing.T) {
	api := newTestAPI(t)
	doctor := api.signUpDoctor(t)
	token := api.signUpAndSignInPatient(t, "pat@example.com")

	// Inject an appointment far in the future on the doctor's grid.
	future := time.Now().Add(30 * 24 * time.Hour)
	apptID := uuid.New()
	patient, _ := api.users.GetByEmail(context.Background(), "pat@example.com")
	api.appts.appts[apptID] = domain.Appointment{
		ID:        apptID,
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      future.Format(domain.DateLayout),
		Slot:      "09:00",
		Status:    domain.AppointmentStatusConfirmed,
	}

	rec := api.do(t, http.MethodPost, "/v1/appointments/"+apptID.String()+"/cancel", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: status %d, body %s", rec.Code, rec.Body.String())
	}
	cancelled := decodeJSON[domain.Appointment](t, rec)
	if cancelled.Status != domain.AppointmentStatusCancelled {
		t.Fatalf("status = %q, want cancelled", cancelled.Status)
	}

	// Cancelling again is outside the window: the appointment is no longer confirmed.
	rec = api.do(t, http.MethodPost, "/v1/appointments/"+apptID.String()+"/cancel", token, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("re-cancel: status %d, want 422", rec.Code)
	}
}

func TestProfileAndSignOut(t *testing.T) {
	api := newTestAPI(t)
	token := api.signUpAndSignInPatient(t, "pat@example.com")

	rec := api.do(t, http.MethodPatch, "/v1/profile", token, map[string]any{
		"full_name": "Pat Q. Doe",
		"phone":     "0711111111",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update profile: status %d, body %s", rec.Code, rec.Body.String())
	}
	user := decodeJSON[domain.User](t, rec)
	if user.FullName != "Pat Q. Doe" || user.Phone != "0711111111" {
		t.Fatalf("updated user = %+v", user)
	}

	rec = api.do(t, http.MethodGet, "/v1/profile", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get profile: status %d", rec.Code)
	}

	rec = api.do(t, http.MethodPost, "/v1/auth/signout", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("signout: status %d, body %s", rec.Code, rec.Body.String())
	}

	// The revoked token no longer opens the door.
	rec = api.do(t, http.MethodGet, "/v1/profile", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("profile after signout: status %d, want 401", rec.Code)
	}
}
