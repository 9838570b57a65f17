package search

import (
	"log/slog"
	"net/http"

	"circulation/app/echoServer/httperr"
	searchsvc "circulation/service/search"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc searchsvc.Service
	Log *slog.Logger
}

// GET /v1/search?q=
func (h *Controller) Search(c echo.Context) error {
	res, err := h.Svc.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return httperr.JSON(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}
