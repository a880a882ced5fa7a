package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce-api/internal/api/metrics"
	"github.com/storefront/commerce-api/internal/core/ports"
)

const headerIdempotencyKey = "Idempotency-Key"

// OrderHandler handles HTTP requests for checkout and order lifecycle.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// Place handles POST /orders.
//
// @Summary      Place an order
// @Description  Prices the cart against the catalog and creates the order together with its invoice.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string             false  "Replays the first result for a repeated key"
// @Param        body             body      placeOrderRequest  true   "Checkout details"
// @Success      201              {object}  placeOrderResponse
// @Success      200              {object}  placeOrderResponse  "Replayed"
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      404              {object}  errorResponse  "Unknown product"
// @Failure      409              {object}  errorResponse  "Same key still in progress"
// @Router       /orders [post]
func (h *OrderHandler) Place(c echo.Context) error {
	me, err := actor(c)
	if err != nil {
		return err
	}
	var req placeOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	key := c.Request().Header.Get(headerIdempotencyKey)
	placed, err := h.service.PlaceOrder(c.Request().Context(), toPlaceOrderInput(req, me.AccountID, key))
	if err != nil {
		return err
	}

	metrics.OrdersPlacedTotal.
		WithLabelValues(string(placed.Order.ShippingMethod), strconv.FormatBool(placed.Replayed)).
		Inc()
	status := http.StatusCreated
	if placed.Replayed {
		status = http.StatusOK
	} else {
		metrics.InvoicesIssuedTotal.WithLabelValues("checkout").Inc()
	}
	return c.JSON(status, placeOrderResponse{Order: placed.Order, Invoice: placed.Invoice, Replayed: placed.Replayed})
}

// List handles GET /orders. Customers see their own orders, staff see all.
//
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {object}  listResponse[domain.Order]
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Router       /orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	me, err := actor(c)
	if err != nil {
		return err
	}
	page, err := pageFrom(c)
	if err != nil {
		return err
	}
	orders, total, err := h.service.ListOrders(c.Request().Context(), me, ports.ListOrdersFilter{
		Status: c.QueryParam("status"),
		Page:   page,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newListResponse(orders, total, page))
}

// Get handles GET /orders/:id.
//
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  domain.Order
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	me, err := actor(c)
	if err != nil {
		return err
	}
	order, err := h.service.GetOrder(c.Request().Context(), me, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateStatus handles PATCH and PUT /orders/:id/status. Cancelling an order
// also cancels its invoice unless the invoice is already paid.
//
// @Summary      Change order status
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Order ID"
// @Param        body  body      statusRequest  true  "Target status"
// @Success      200   {object}  orderTransitionResponse
// @Failure      400   {object}  errorResponse  "Invalid transition"
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse  "Changed concurrently"
// @Router       /orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req statusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	tr, err := h.service.TransitionOrder(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return err
	}

	metrics.StatusTransitionsTotal.WithLabelValues("order", string(tr.From), string(tr.Order.Status)).Inc()
	if tr.Cascade != ports.CascadeNone {
		metrics.CascadesTotal.WithLabelValues(string(tr.Cascade)).Inc()
	}
	return c.JSON(http.StatusOK, orderTransitionResponse{
		Order:          tr.Order,
		PreviousStatus: string(tr.From),
		Cascade:        string(tr.Cascade),
	})
}
