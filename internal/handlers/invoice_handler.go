package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/minidebet/backend/internal/logger"
	"github.com/minidebet/backend/internal/models"
	"github.com/minidebet/backend/internal/services"
)

// InvoiceItemRequest carries only upper bounds. The lower bounds on quantity
// and price are enforced by the calculator so the error names the offending
// item.
type InvoiceItemRequest struct {
	Description string          `json:"description" validate:"required,max=500"`
	Quantity    int64           `json:"quantity" validate:"lte=1000000"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"lte=1000000000" swaggertype:"string"`
}

// CreateInvoiceRequest omits everything the server computes. A missing
// issue date means today, a missing due date means issue date plus the
// payment terms.
type CreateInvoiceRequest struct {
	ClientID  string               `json:"client_id" validate:"required"`
	IssueDate *models.Date         `json:"issue_date,omitempty" swaggertype:"string" example:"2024-01-15"`
	DueDate   *models.Date         `json:"due_date,omitempty" swaggertype:"string" example:"2024-01-29"`
	Currency  *string              `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	TaxRate   *decimal.Decimal     `json:"tax_rate,omitempty" validate:"omitempty,gte=0,lte=100" swaggertype:"string"`
	Notes     *string              `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Items     []InvoiceItemRequest `json:"items" validate:"required,min=1,max=200,dive"`
}

type UpdateStatusRequest struct {
	Status models.InvoiceStatus `json:"status" validate:"required,oneof=draft sent paid"`
}

type InvoiceHandler struct {
	service   *services.InvoiceService
	qr        *services.QRService
	validator *services.ValidationHelper
	logger    *logger.Logger
}

func NewInvoiceHandler(service *services.InvoiceService, qr *services.QRService, log *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		service:   service,
		qr:        qr,
		validator: services.NewValidationHelper(),
		logger:    log,
	}
}

// Create issues a draft invoice
// @Summary Create invoice
// @Description Computes the totals and assigns the next invoice number of the account
// @Tags Invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateInvoiceRequest true "Invoice"
// @Success 201 {object} InvoiceResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /invoices [post]
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r, h.logger)
	if !ok {
		return
	}

	var req CreateInvoiceRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	in := services.CreateInvoiceInput{
		ClientID: req.ClientID,
		DueDate:  req.DueDate,
		Currency: req.Currency,
		TaxRate:  req.TaxRate,
		Notes:    req.Notes,
		Items: lo.Map(req.Items, func(item InvoiceItemRequest, _ int) services.InvoiceItemInput {
			return services.InvoiceItemInput{
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
			}
		}),
	}
	if req.IssueDate != nil {
		in.IssueDate = *req.IssueDate
	}

	inv, err := h.service.CreateInvoice(r.Context(), id, in)
	if err != nil {
		services.WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, newInvoiceResponse(inv))
}

// List returns the invoices of the account
// @Summary List invoices
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status" Enums(draft, sent, paid)
// @Success 200 {array} InvoiceResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Router /invoices [get]
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r, h.logger)
	if !ok {
		return
	}

	var status *models.InvoiceStatus
	if s := r.URL.Query().Get("status"); s != "" {
		status = lo.ToPtr(models.InvoiceStatus(s))
	}

	invoices, err := h.service.ListInvoices(r.Context(), id, status)
	if err != nil {
		services.WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, lo.Map(invoices, func(inv models.Invoice, _ int) InvoiceResponse {
		return newInvoiceResponse(&inv)
	}))
}

// Get returns one invoice with its items
// @Summary Get invoice
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 200 {object} InvoiceResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r, h.logger)
	if !ok {
		return
	}

	inv, err := h.service.GetInvoice(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		services.WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newInvoiceResponse(inv))
}

// UpdateStatus moves an invoice forward
// @Summary Update invoice status
// @Description draft -> sent -> paid, never backwards
// @Tags Invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Param request body UpdateStatusRequest true "Target status"
// @Success 200 {object} InvoiceResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /invoices/{id}/status [patch]
func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	inv, err := h.service.UpdateStatus(r.Context(), id, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		services.WriteError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newInvoiceResponse(inv))
}

// PaymentQR renders a SEPA credit transfer code for the invoice
// @Summary Payment QR code
// @Description EPC069-12 QR code as PNG. EUR invoices only, needs a payment IBAN in the settings.
// @Tags Invoices
// @Produce png
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 200 {file} binary
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /invoices/{id}/payment-qr [get]
func (h *InvoiceHandler) PaymentQR(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r, h.logger)
	if !ok {
		return
	}

	image, err := h.qr.PaymentQR(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		services.WriteError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=600")
	w.WriteHeader(http.StatusOK)
	w.Write(image)
}
