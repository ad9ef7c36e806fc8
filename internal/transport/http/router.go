package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ar_furniture/internal/handlers"
	"github.com/Skotchmaster/ar_furniture/pkg/metrics"
	authmw "github.com/Skotchmaster/ar_furniture/pkg/middleware/auth"
)

type Deps struct {
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	OrderHandler   *handlers.OrderHandler
	// SearchHandler is optional; the search route exists only when it is set.
	SearchHandler *handlers.SearchHandler
	Guard         *authmw.Guard
	// Ready reports whether the backing stores answer. Nil means always ready.
	Ready func(c echo.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", metrics.Handler())

	api := e.Group("/api")
	api.POST("/signup", d.AuthHandler.Signup)
	api.POST("/login", d.AuthHandler.Login)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	if d.SearchHandler != nil {
		products.GET("/search", d.SearchHandler.Search)
	}

	// guards are per route so unmatched reads fall through to 404
	products.POST("", d.ProductHandler.CreateProduct, d.Guard.RequireAdmin)
	products.PUT("/:id", d.ProductHandler.UpdateProduct, d.Guard.RequireAdmin)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, d.Guard.RequireAdmin)

	api.GET("/orders", d.OrderHandler.ListOrders, d.Guard.RequireAuth)
	api.POST("/orders", d.OrderHandler.PlaceOrder, d.Guard.RequireAuth)
}
