package handlers

import (
	"net/http"

	"github.com/minidebet/backend/internal/logger"
	"github.com/minidebet/backend/internal/middleware"
	"github.com/minidebet/backend/internal/models"
	"github.com/minidebet/backend/internal/services"
)

type RegisterRequest struct {
	Email       string  `json:"email" validate:"required,email,max=254"`
	Password    string  `json:"password" validate:"required,min=5,max=72"`
	FirstName   *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName    *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
	CompanyName *string `json:"company_name,omitempty" validate:"omitempty,max=200"`
	TaxID       *string `json:"tax_id,omitempty" validate:"omitempty,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=5,max=72"`
}

type AuthHandler struct {
	service   *services.AuthService
	validator *services.ValidationHelper
	logger    *logger.Logger
}

func NewAuthHandler(service *services.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service:   service,
		validator: services.NewValidationHelper(),
		logger:    log,
	}
}

// Register creates an account
// @Summary Register account
// @Description Create an account with default invoice settings
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration request"
// @Success 201 {object} AccountResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	account, err := h.service.Register(r.Context(), services.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Profile: models.Profile{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			CompanyName: req.CompanyName,
			TaxID:       req.TaxID,
		},
	})
	if err != nil {
		services.WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, newAccountResponse(account))
}

// Login exchanges credentials for a session token
// @Summary Login
// @Description Authenticate with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password, r.RemoteAddr)
	if err != nil {
		services.WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Account:   newAccountResponse(result.Account),
	})
}

// Logout revokes the current token
// @Summary Logout
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Failure 401 {object} services.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Invalid or expired token", http.StatusUnauthorized, nil)
		return
	}

	if err := h.service.Logout(r.Context(), claims); err != nil {
		services.WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me returns the authenticated account
// @Summary Current account
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AccountResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r, h.logger)
	if !ok {
		return
	}

	account, err := h.service.Me(r.Context(), id)
	if err != nil {
		services.WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newAccountResponse(account))
}

// ChangePassword replaces the password of the authenticated account
// @Summary Change password
// @Tags Auth
// @Accept json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Current and new password"
// @Success 204
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /auth/password [put]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r, h.logger)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	if err := h.service.ChangePassword(r.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		services.WriteError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
