package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ar_furniture/internal/media"
	"github.com/Skotchmaster/ar_furniture/internal/service"
	"github.com/Skotchmaster/ar_furniture/pkg/apperr"
	"github.com/Skotchmaster/ar_furniture/pkg/logging"
)

type ProductHandler struct {
	Catalog *service.CatalogService
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	items, err := h.Catalog.ListProducts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	assets, closeAll, err := formAssets(c)
	if err != nil {
		return err
	}
	defer closeAll()

	product, err := h.Catalog.CreateProduct(c.Request().Context(), formFields(c), assets)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	assets, closeAll, err := formAssets(c)
	if err != nil {
		return err
	}
	defer closeAll()

	product, err := h.Catalog.UpdateProduct(c.Request().Context(), c.Param("id"), formFields(c), assets)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	if err := h.Catalog.DeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Product deleted"})
}

func formFields(c echo.Context) service.ProductFields {
	return service.ProductFields{
		Name:        c.FormValue("name"),
		Price:       c.FormValue("price"),
		Description: c.FormValue("description"),
		Category:    c.FormValue("category"),
	}
}

// formAssets fills the two asset slots from the first file of the "image"
// and "model" form fields. Other file fields are ignored.
func formAssets(c echo.Context) (media.Assets, func(), error) {
	var (
		assets  media.Assets
		closers []io.Closer
	)
	closeAll := func() {
		for _, cl := range closers {
			_ = cl.Close()
		}
	}

	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return assets, closeAll, nil
		}
		logging.FromContext(c.Request().Context()).With("handler", "product_form").
			Warn("form_error", "status", 400, "reason", "malformed multipart body", "error", err)
		return assets, closeAll, apperr.Wrap(apperr.KindValidation, "malformed multipart body", err)
	}

	open := func(field media.Kind) (*media.File, error) {
		headers := form.File[string(field)]
		if len(headers) == 0 {
			return nil, nil
		}
		fh := headers[0]
		f, err := fh.Open()
		if err != nil {
			return nil, apperr.Wrap(apperr.KindUploadFailed, "cannot read "+string(field)+" upload", err)
		}
		closers = append(closers, f)
		return &media.File{Filename: fh.Filename, Size: fh.Size, Content: f}, nil
	}

	if assets.Image, err = open(media.KindImage); err != nil {
		closeAll()
		return media.Assets{}, func() {}, err
	}
	if assets.Model, err = open(media.KindModel); err != nil {
		closeAll()
		return media.Assets{}, func() {}, err
	}
	return assets, closeAll, nil
}
