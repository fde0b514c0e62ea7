package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minidebet/backend/internal/logger"
	"github.com/minidebet/backend/internal/models"
	"github.com/minidebet/backend/internal/services"
)

type ClientRequest struct {
	Name       string  `json:"name" validate:"required,max=200"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Company    *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Street     *string `json:"street,omitempty" validate:"omitempty,max=200"`
	City       *string `json:"city,omitempty" validate:"omitempty,max=100"`
	PostalCode *string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	Country    string  `json:"country,omitempty" validate:"omitempty,len=2,alpha"`
	VATNumber  *string `json:"vat_number,omitempty" validate:"omitempty,max=50"`
}

func (req ClientRequest) input() services.ClientInput {
	return services.ClientInput{
		Name:       req.Name,
		Email:      req.Email,
		Company:    req.Company,
		Street:     req.Street,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		VATNumber:  req.VATNumber,
	}
}

type ClientHandler struct {
	service   *services.ClientService
	validator *services.ValidationHelper
	logger    *logger.Logger
}

func NewClientHandler(service *services.ClientService, log *logger.Logger) *ClientHandler {
	return &ClientHandler{
		service:   service,
		validator: services.NewValidationHelper(),
		logger:    log,
	}
}

// Create adds a client
// @Summary Create client
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ClientRequest true "Client"
// @Success 201 {object} models.Client
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /clients [post]
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r, h.logger)
	if !ok {
		return
	}

	var req ClientRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	client, err := h.service.Create(r.Context(), id, req.input())
	if err != nil {
		services.WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, client)
}

// List returns all clients of the account
// @Summary List clients
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Client
// @Failure 401 {object} services.ErrorResponse
// @Router /clients [get]
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r, h.logger)
	if !ok {
		return
	}

	clients, err := h.service.List(r.Context(), id)
	if err != nil {
		services.WriteError(w, h.logger, err)
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}

	writeJSON(w, http.StatusOK, clients)
}

// Get returns one client
// @Summary Get client
// @Tags Clients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} models.Client
// @Failure 404 {object} services.ErrorResponse
// @Router /clients/{id} [get]
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r, h.logger)
	if !ok {
		return
	}

	client, err := h.service.Get(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		services.WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, client)
}

// Update replaces the client fields
// @Summary Update client
// @Tags Clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Param request body ClientRequest true "Client"
// @Success 200 {object} models.Client
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /clients/{id} [put]
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r, h.logger)
	if !ok {
		return
	}

	var req ClientRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	client, err := h.service.Update(r.Context(), id, chi.URLParam(r, "id"), req.input())
	if err != nil {
		services.WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, client)
}

// Delete removes a client without invoices
// @Summary Delete client
// @Tags Clients
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 204
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /clients/{id} [delete]
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id, chi.URLParam(r, "id")); err != nil {
		services.WriteError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
