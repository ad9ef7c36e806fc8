package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ar_furniture/internal/search"
	"github.com/Skotchmaster/ar_furniture/pkg/apperr"
	"github.com/Skotchmaster/ar_furniture/pkg/logging"
)

type Searcher interface {
	Search(ctx context.Context, query string, from, size int) (search.Result, error)
}

type SearchHandler struct {
	Index Searcher
}

func (h *SearchHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "search")

	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return apperr.New(apperr.KindValidation, "query is required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := search.Page(page, size)

	res, err := h.Index.Search(ctx, q, from, size)
	if err != nil {
		l.Error("search_error", "status", 500, "reason", "index query failed", "error", err)
		return apperr.Wrap(apperr.KindStore, "search failed", err)
	}
	return c.JSON(http.StatusOK, searchResponse{Total: res.Total, Products: res.Products})
}
