package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/storefront/commerce-api/internal/api/handler"
	"github.com/storefront/commerce-api/internal/api/middleware"
	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Auth     ports.AuthService
	Orders   ports.OrderService
	Invoices ports.InvoiceService
	Bills    ports.BillService
	// Health lists the dependencies checked by the readiness probe.
	Health map[string]handler.Pinger
	Logger zerolog.Logger
	// Registry receives the HTTP metrics and backs /metrics. Nil means the
	// default Prometheus registry, where the domain counters live.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Logger))

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "commerce_api",
		Registerer: registerer,
	}))

	// --- Ops (no auth required) ---
	health := handler.NewHealthHandler(deps.Health)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authn := middleware.Auth(deps.Auth)
	managerOnly := middleware.RequireRole(domain.RoleManager)
	cashierUp := middleware.RequireRole(domain.RoleCashier)

	// --- Auth ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)
	auth.GET("/verify-email/:token", authHandler.VerifyEmail)

	self := auth.Group("", authn)
	self.GET("/me", authHandler.Me)
	self.PATCH("/profile", authHandler.UpdateProfile)
	self.PATCH("/change-password", authHandler.ChangePassword)
	self.POST("/verification", authHandler.RequestVerification)

	accounts := auth.Group("/accounts", authn, middleware.RBAC(domain.RoleAdmin))
	accounts.GET("", authHandler.ListAccounts)
	accounts.PATCH("/:id/role", authHandler.ChangeRole)
	accounts.PATCH("/:id/active", authHandler.SetActive)

	// --- Orders ---
	orderHandler := handler.NewOrderHandler(deps.Orders)
	orders := e.Group("/orders", authn, middleware.RequireRole(domain.RoleUser))
	orders.POST("", orderHandler.Place)
	orders.GET("", orderHandler.List)
	orders.GET("/:id", orderHandler.Get)
	orders.PATCH("/:id/status", orderHandler.UpdateStatus, managerOnly)
	orders.PUT("/:id/status", orderHandler.UpdateStatus, managerOnly)

	// --- Invoices ---
	invoiceHandler := handler.NewInvoiceHandler(deps.Invoices)
	invoices := e.Group("/invoices", authn, cashierUp)
	invoices.GET("", invoiceHandler.List)
	invoices.GET("/order/:orderId", invoiceHandler.GetByOrder)
	invoices.GET("/:id", invoiceHandler.Get)
	invoices.POST("", invoiceHandler.Create, managerOnly)
	invoices.PUT("/:id", invoiceHandler.Update, managerOnly)
	invoices.DELETE("/:id", invoiceHandler.Delete, managerOnly)
	invoices.PATCH("/:id/status", invoiceHandler.UpdateStatus, managerOnly)

	// --- Bills ---
	billHandler := handler.NewBillHandler(deps.Bills)
	bills := e.Group("/bills", authn, middleware.RequireRole(domain.RoleUser))
	bills.GET("", billHandler.List)
	bills.GET("/order/:orderId", billHandler.ListByOrder)
	bills.GET("/:id", billHandler.Get)
	bills.POST("", billHandler.Create, cashierUp)
	bills.PUT("/:id", billHandler.Update, cashierUp)
	bills.PATCH("/:id", billHandler.Update, cashierUp)
	bills.DELETE("/:id", billHandler.Delete, cashierUp)
	bills.PATCH("/:id/status", billHandler.UpdateStatus, managerOnly)
	bills.PUT("/:id/status", billHandler.UpdateStatus, managerOnly)

	return e
}

// requestLogger writes one access log line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID)
			if identity, ok := middleware.Identity(c); ok {
				ev.Str("account_id", identity.AccountID)
			}
			ev.Msg("request")
			return nil
		},
	})
}
