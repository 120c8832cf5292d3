// Package hello serves the connectivity probe endpoint.
package hello

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const greeting = "Hello ZETA!"

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/hellozeta", h.HelloZeta)
}

func (h *Handler) HelloZeta(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": greeting})
}
