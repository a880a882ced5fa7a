package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce-api/internal/api/middleware"
	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

// actor returns the caller stored by the Auth middleware. Handlers mounted
// behind Auth always have one; the check guards against a route wired
// without it.
func actor(c echo.Context) (domain.Identity, error) {
	identity, ok := middleware.Identity(c)
	if !ok {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return identity, nil
}

// pageFrom reads the page and limit query parameters.
func pageFrom(c echo.Context) (ports.Page, error) {
	var p ports.Page
	err := echo.QueryParamsBinder(c).
		Int("page", &p.Page).
		Int("limit", &p.Limit).
		BindError()
	if err != nil {
		return ports.Page{}, domain.Invalid("page and limit must be integers")
	}
	return p.Normalize(), nil
}

// bind decodes the request body into req and validates it.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Invalid("invalid payload")
	}
	return c.Validate(req)
}

// listResponse is the envelope of every paginated listing.
type listResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func newListResponse[T any](items []T, total int64, page ports.Page) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Total: total, Page: page.Page, Limit: page.Limit}
}

type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse documents the envelope the API error handler renders.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}
