package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/minidebet/backend/internal/logger"
	"github.com/minidebet/backend/internal/models"
	"github.com/minidebet/backend/internal/services"
)

// UpdateSettingsRequest has no field for the invoice sequence, and unknown
// fields are rejected while decoding.
type UpdateSettingsRequest struct {
	DefaultTaxRate   *decimal.Decimal `json:"default_tax_rate,omitempty" validate:"omitempty,gte=0,lte=100" swaggertype:"string"`
	Currency         *string          `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	InvoicePrefix    *string          `json:"invoice_prefix,omitempty" validate:"omitempty,min=1,max=20,alphanum"`
	PaymentTermsDays *int             `json:"payment_terms_days,omitempty" validate:"omitempty,gte=0,lte=365"`
	PaymentIBAN      *string          `json:"payment_iban,omitempty" validate:"omitempty,max=42"`
	PaymentBIC       *string          `json:"payment_bic,omitempty" validate:"omitempty,min=8,max=11,alphanum"`
}

type SettingsHandler struct {
	service   *services.SettingsService
	validator *services.ValidationHelper
	logger    *logger.Logger
}

func NewSettingsHandler(service *services.SettingsService, log *logger.Logger) *SettingsHandler {
	return &SettingsHandler{
		service:   service,
		validator: services.NewValidationHelper(),
		logger:    log,
	}
}

// Get returns the invoice settings
// @Summary Get settings
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SettingsResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /settings [get]
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r, h.logger)
	if !ok {
		return
	}

	settings, err := h.service.Get(r.Context(), id)
	if err != nil {
		services.WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newSettingsResponse(settings))
}

// Update changes the invoice settings
// @Summary Update settings
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateSettingsRequest true "Fields to change"
// @Success 200 {object} SettingsResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /settings [put]
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateSettingsRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	settings, err := h.service.Update(r.Context(), id, models.SettingsUpdate{
		DefaultTaxRate:   req.DefaultTaxRate,
		Currency:         req.Currency,
		InvoicePrefix:    req.InvoicePrefix,
		PaymentTermsDays: req.PaymentTermsDays,
		PaymentIBAN:      req.PaymentIBAN,
		PaymentBIC:       req.PaymentBIC,
	})
	if err != nil {
		services.WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newSettingsResponse(settings))
}
