package httpserver

import (
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/ar_furniture/pkg/config"
	"github.com/Skotchmaster/ar_furniture/pkg/metrics"
	loggingmw "github.com/Skotchmaster/ar_furniture/pkg/middleware/logging"
)

// multipart framing and the text fields on top of two full-size assets
const formOverhead = 1 << 20

// New builds the echo instance with the middleware chain and all routes.
func New(cfg config.Config, logger *slog.Logger, d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Secure())
	e.Use(metrics.Middleware())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if cfg.MaxUploadBytes > 0 {
		limitKB := (2*cfg.MaxUploadBytes + formOverhead) >> 10
		e.Use(echomw.BodyLimit(fmt.Sprintf("%dK", limitKB)))
	}

	Register(e, d)
	return e
}
