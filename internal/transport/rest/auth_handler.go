package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"docbook/backend/internal/domain"
	"docbook/backend/internal/service/auth"
)

type AuthHandler struct {
	svc *auth.Service
	log *slog.Logger
}

func NewAuthHandler(svc *auth.Service, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		svc: svc,
		log: log.With(slog.String("component", "rest.auth")),
	}
}

type doctorPayload struct {
	Specialization      string   `json:"specialization"`
	Description         string   `json:"description"`
	YearsExperience     int      `json:"years_experience"`
	LicenseNumber       string   `json:"license_number"`
	Education           string   `json:"education"`
	HospitalAffiliation string   `json:"hospital_affiliation"`
	ConsultationFee     float64  `json:"consultation_fee"`
	AvailableDays       []string `json:"available_days"`
	AvailableHours      []string `json:"available_hours"`
}

type signUpRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	FullName string         `json:"full_name"`
	Phone    string         `json:"phone"`
	Role     domain.Role    `json:"role"`
	Doctor   *doctorPayload `json:"doctor"`
}

func (h *AuthHandler) SignUp(c echo.Context) error {
	log := h.log.With(slog.String("op", "SignUp"))

	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_body"))
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	in := auth.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
		Role:     req.Role,
	}
	if req.Doctor != nil {
		in.Doctor = &auth.DoctorRegistration{
			Specialization:      req.Doctor.Specialization,
			Description:         req.Doctor.Description,
			YearsExperience:     req.Doctor.YearsExperience,
			LicenseNumber:       req.Doctor.LicenseNumber,
			Education:           req.Doctor.Education,
			HospitalAffiliation: req.Doctor.HospitalAffiliation,
			ConsultationFee:     req.Doctor.ConsultationFee,
			AvailableDays:       req.Doctor.AvailableDays,
			AvailableHours:      req.Doctor.AvailableHours,
		}
	}

	user, err := h.svc.SignUp(c.Request().Context(), in)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("user signed up",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)),
	)
	return c.JSON(http.StatusCreated, user)
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      domain.User `json:"user"`
}

func (h *AuthHandler) SignIn(c echo.Context) error {
	log := h.log.With(slog.String("op", "SignIn"))

	var req signInRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_body"))
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	sess, err := h.svc.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("user signed in", slog.String("user_id", sess.User.ID.String()))
	return c.JSON(http.StatusOK, signInResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      sess.User,
	})
}

func (h *AuthHandler) SignOut(c echo.Context) error {
	log := h.log.With(slog.String("op", "SignOut"))

	if err := h.svc.SignOut(c.Request().Context(), currentToken(c)); err != nil {
		return respondError(c, log, err)
	}

	log.Info("user signed out", slog.String("user_id", currentUserID(c).String()))
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) GetProfile(c echo.Context) error {
	log := h.log.With(slog.String("op", "GetProfile"))

	user, err := h.svc.GetUser(c.Request().Context(), currentUserID(c))
	if err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(http.StatusOK, user)
}

type updateProfileRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	log := h.log.With(slog.String("op", "UpdateProfile"))

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_body"))
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	user, err := h.svc.UpdateProfile(c.Request().Context(), currentUserID(c), req.FullName, req.Phone)
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("profile updated", slog.String("user_id", user.ID.String()))
	return c.JSON(http.StatusOK, user)
}
