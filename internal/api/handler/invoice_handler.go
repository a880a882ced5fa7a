package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce-api/internal/api/metrics"
	"github.com/storefront/commerce-api/internal/core/ports"
)

// InvoiceHandler handles HTTP requests for invoices.
type InvoiceHandler struct {
	service ports.InvoiceService
}

func NewInvoiceHandler(service ports.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// Create handles POST /invoices.
//
// @Summary      Issue a manual invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createInvoiceRequest  true  "Invoice details"
// @Success      201   {object}  domain.Invoice
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c echo.Context) error {
	var req createInvoiceRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	inv, err := h.service.CreateInvoice(c.Request().Context(), toCreateInvoiceInput(req))
	if err != nil {
		return err
	}
	metrics.InvoicesIssuedTotal.WithLabelValues("manual").Inc()
	return c.JSON(http.StatusCreated, inv)
}

// List handles GET /invoices.
//
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "Filter by status"
// @Param        order_id  query     string  false  "Filter by order"
// @Param        page      query     int     false  "Page (1-based)"
// @Param        limit     query     int     false  "Page size (max 100)"
// @Success      200       {object}  listResponse[domain.Invoice]
// @Failure      400       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c echo.Context) error {
	page, err := pageFrom(c)
	if err != nil {
		return err
	}
	invoices, total, err := h.service.ListInvoices(c.Request().Context(), ports.ListInvoicesFilter{
		Status:  c.QueryParam("status"),
		OrderID: c.QueryParam("order_id"),
		Page:    page,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newListResponse(invoices, total, page))
}

// Get handles GET /invoices/:id.
//
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  domain.Invoice
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c echo.Context) error {
	inv, err := h.service.GetInvoice(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inv)
}

// GetByOrder handles GET /invoices/order/:orderId.
//
// @Summary      Get the invoice of an order
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        orderId  path      string  true  "Order ID"
// @Success      200      {object}  domain.Invoice
// @Failure      403      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /invoices/order/{orderId} [get]
func (h *InvoiceHandler) GetByOrder(c echo.Context) error {
	inv, err := h.service.GetInvoiceByOrder(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inv)
}

// Update handles PUT /invoices/:id.
//
// @Summary      Edit an open invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Invoice ID"
// @Param        body  body      updateInvoiceRequest  true  "Fields to change"
// @Success      200   {object}  domain.Invoice
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse  "Paid or cancelled"
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c echo.Context) error {
	var req updateInvoiceRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	inv, err := h.service.UpdateInvoice(c.Request().Context(), c.Param("id"), toUpdateInvoiceInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inv)
}

// Delete handles DELETE /invoices/:id.
//
// @Summary      Delete an unpaid manual invoice
// @Tags         invoices
// @Security     BearerAuth
// @Param        id   path  string  true  "Invoice ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse  "Paid or tied to an order"
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteInvoice(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateStatus handles PATCH /invoices/:id/status.
//
// @Summary      Change invoice status
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Invoice ID"
// @Param        body  body      statusRequest  true  "Target status"
// @Success      200   {object}  domain.Invoice
// @Failure      400   {object}  errorResponse  "Invalid transition"
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /invoices/{id}/status [patch]
func (h *InvoiceHandler) UpdateStatus(c echo.Context) error {
	var req statusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	before, err := h.service.GetInvoice(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	inv, err := h.service.TransitionInvoice(c.Request().Context(), before.ID, req.Status)
	if err != nil {
		return err
	}
	metrics.StatusTransitionsTotal.WithLabelValues("invoice", string(before.Status), string(inv.Status)).Inc()
	return c.JSON(http.StatusOK, inv)
}
