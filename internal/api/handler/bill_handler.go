package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce-api/internal/api/metrics"
	"github.com/storefront/commerce-api/internal/core/ports"
)

// BillHandler handles HTTP requests for cashier bills.
type BillHandler struct {
	service ports.BillService
}

func NewBillHandler(service ports.BillService) *BillHandler {
	return &BillHandler{service: service}
}

// Create handles POST /bills.
//
// @Summary      Issue a bill
// @Tags         bills
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createBillRequest  true  "Bill details"
// @Success      201   {object}  domain.Bill
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse  "Unknown order"
// @Router       /bills [post]
func (h *BillHandler) Create(c echo.Context) error {
	me, err := actor(c)
	if err != nil {
		return err
	}
	var req createBillRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	bill, err := h.service.CreateBill(c.Request().Context(), me, toCreateBillInput(req))
	if err != nil {
		return err
	}
	metrics.BillsIssuedTotal.Inc()
	return c.JSON(http.StatusCreated, bill)
}

// List handles GET /bills. Staff see every bill, other accounts their own.
//
// @Summary      List bills
// @Tags         bills
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "Filter by status"
// @Param        order_id  query     string  false  "Filter by order"
// @Param        page      query     int     false  "Page (1-based)"
// @Param        limit     query     int     false  "Page size (max 100)"
// @Success      200       {object}  listResponse[domain.Bill]
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Router       /bills [get]
func (h *BillHandler) List(c echo.Context) error {
	return h.list(c, c.QueryParam("order_id"))
}

// ListByOrder handles GET /bills/order/:orderId.
//
// @Summary      List the bills of an order
// @Tags         bills
// @Produce      json
// @Security     BearerAuth
// @Param        orderId  path      string  true   "Order ID"
// @Param        page     query     int     false  "Page (1-based)"
// @Param        limit    query     int     false  "Page size (max 100)"
// @Success      200      {object}  listResponse[domain.Bill]
// @Failure      401      {object}  errorResponse
// @Router       /bills/order/{orderId} [get]
func (h *BillHandler) ListByOrder(c echo.Context) error {
	return h.list(c, c.Param("orderId"))
}

func (h *BillHandler) list(c echo.Context, orderID string) error {
	me, err := actor(c)
	if err != nil {
		return err
	}
	page, err := pageFrom(c)
	if err != nil {
		return err
	}
	bills, total, err := h.service.ListBills(c.Request().Context(), me, ports.ListBillsFilter{
		OrderID: orderID,
		Status:  c.QueryParam("status"),
		Page:    page,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newListResponse(bills, total, page))
}

// Get handles GET /bills/:id.
//
// @Summary      Get a bill
// @Tags         bills
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Bill ID"
// @Success      200  {object}  domain.Bill
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /bills/{id} [get]
func (h *BillHandler) Get(c echo.Context) error {
	me, err := actor(c)
	if err != nil {
		return err
	}
	bill, err := h.service.GetBill(c.Request().Context(), me, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bill)
}

// Update handles PUT and PATCH /bills/:id.
//
// @Summary      Edit a pending bill
// @Tags         bills
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Bill ID"
// @Param        body  body      updateBillRequest  true  "Fields to change"
// @Success      200   {object}  domain.Bill
// @Failure      400   {object}  errorResponse  "Invalid or already settled"
// @Failure      403   {object}  errorResponse  "Neither creator nor admin"
// @Failure      404   {object}  errorResponse
// @Router       /bills/{id} [put]
func (h *BillHandler) Update(c echo.Context) error {
	me, err := actor(c)
	if err != nil {
		return err
	}
	var req updateBillRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	bill, err := h.service.UpdateBill(c.Request().Context(), me, c.Param("id"), toUpdateBillInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bill)
}

// Delete handles DELETE /bills/:id.
//
// @Summary      Delete an unsettled bill
// @Tags         bills
// @Security     BearerAuth
// @Param        id   path  string  true  "Bill ID"
// @Success      204
// @Failure      400  {object}  errorResponse  "Already settled"
// @Failure      403  {object}  errorResponse  "Neither creator nor admin"
// @Failure      404  {object}  errorResponse
// @Router       /bills/{id} [delete]
func (h *BillHandler) Delete(c echo.Context) error {
	me, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteBill(c.Request().Context(), me, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateStatus handles PATCH and PUT /bills/:id/status. Paying a bill moves
// its pending order to processing.
//
// @Summary      Change bill status
// @Tags         bills
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Bill ID"
// @Param        body  body      billStatusRequest  true  "Target status and optional transaction id"
// @Success      200   {object}  billTransitionResponse
// @Failure      400   {object}  errorResponse  "Invalid transition"
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /bills/{id}/status [patch]
func (h *BillHandler) UpdateStatus(c echo.Context) error {
	var req billStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	tr, err := h.service.TransitionBill(c.Request().Context(), c.Param("id"), req.Status, req.TransactionID)
	if err != nil {
		return err
	}

	metrics.StatusTransitionsTotal.WithLabelValues("bill", string(tr.From), string(tr.Bill.Status)).Inc()
	if tr.OrderAdvanced {
		metrics.CascadesTotal.WithLabelValues("order_processing").Inc()
	}
	return c.JSON(http.StatusOK, billTransitionResponse{
		Bill:           tr.Bill,
		PreviousStatus: string(tr.From),
		OrderAdvanced:  tr.OrderAdvanced,
	})
}
