package erezept

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc         *Service
	contextPath string
}

// NewHandler builds the REST handler. contextPath is the normalized
// deployment prefix ("" or "/prefix") used when composing Location headers.
func NewHandler(svc *Service, contextPath string) *Handler {
	return &Handler{svc: svc, contextPath: contextPath}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/erezept", h.ListErezepte)
	api.GET("/erezept/by-prescription/:key", h.GetErezeptByPrescriptionID)
	api.GET("/erezept/:id", h.GetErezept)
	api.POST("/erezept", h.CreateErezept)
	api.PUT("/erezept/:id", h.UpdateErezept)
	api.DELETE("/erezept/:id", h.DeleteErezept)
}

func (h *Handler) ListErezepte(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetErezept(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	e, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) GetErezeptByPrescriptionID(c echo.Context) error {
	e, err := h.svc.GetByPrescriptionID(c.Request().Context(), c.Param("key"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) CreateErezept(c echo.Context) error {
	var e Erezept
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := e.Validate(time.Now()); err != nil {
		return httpError(err)
	}
	created, err := h.svc.Create(c.Request().Context(), &e)
	if err != nil {
		return httpError(err)
	}
	c.Response().Header().Set("Location", h.contextPath+"/api/erezept/"+strconv.FormatInt(created.ID, 10))
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateErezept(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var patch Erezept
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := patch.Validate(time.Now()); err != nil {
		return httpError(err)
	}
	updated, err := h.svc.Update(c.Request().Context(), id, &patch)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteErezept(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	deleted, err := h.svc.DeleteIfExists(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if !deleted {
		return echo.NewHTTPError(http.StatusNotFound, "ERezept with id="+c.Param("id")+" not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

// httpError translates domain errors into echo HTTP errors, carrying field
// details for validation failures.
func httpError(err error) error {
	de := AsError(err)
	if de == nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(de.Details) > 0 {
		return echo.NewHTTPError(de.HTTPStatus(), map[string]interface{}{
			"message": de.Message,
			"details": de.Details,
		})
	}
	return echo.NewHTTPError(de.HTTPStatus(), de.Message)
}
