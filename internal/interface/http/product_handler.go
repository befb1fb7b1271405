package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dwiyanpr/product-catalog-api/internal/application"
	"github.com/dwiyanpr/product-catalog-api/internal/interface/middleware"
	"github.com/dwiyanpr/product-catalog-api/pkg/response"
	"github.com/dwiyanpr/product-catalog-api/pkg/validation"
)

type ProductHandler struct {
	Svc    *application.ProductService
	Logger *logrus.Logger
}

func NewProductHandler(svc *application.ProductService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{Svc: svc, Logger: logger}
}

// productForm binds both multipart form posts (with banner_file) and plain
// JSON. Pointer fields distinguish "omitted" from "empty" for partial
// updates.
type productForm struct {
	Title       string   `json:"title" form:"title" binding:"required"`
	Description *string  `json:"description" form:"description"`
	Cost        *float64 `json:"cost" form:"cost" binding:"omitempty,gte=0"`
}

// bannerUpload pulls the optional banner_file part out of the request.
// A missing file is not an error.
func bannerUpload(c *gin.Context) (*application.ImageUpload, func(), error) {
	file, err := c.FormFile("banner_file")
	if err != nil {
		return nil, func() {}, nil
	}
	f, err := file.Open()
	if err != nil {
		return nil, func() {}, err
	}
	up := &application.ImageUpload{
		Reader:      f,
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
	}
	return up, func() { _ = f.Close() }, nil
}

func (h *ProductHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrProductNotFound):
		response.Fail(c, http.StatusNotFound, "Product not found", nil)
	case errors.Is(err, application.ErrForbidden):
		response.Fail(c, http.StatusForbidden, "You do not own this product", nil)
	case errors.Is(err, application.ErrTitleRequired):
		response.Fail(c, http.StatusBadRequest, "Validation Error", map[string]string{"title": "is required"})
	default:
		h.Logger.WithError(err).Error("product operation failed")
		response.Fail(c, http.StatusInternalServerError, "Something went wrong", nil)
	}
}

// List GET /api/products. Only the caller's products, banner keys expanded
// to URLs.
func (h *ProductHandler) List(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	products, err := h.Svc.List(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Products retrieved successfully", gin.H{"products": products})
}

// Create POST /api/products (multipart).
func (h *ProductHandler) Create(c *gin.Context) {
	var req productForm
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Validation Error", validation.ToDetails(err))
		return
	}

	img, closeImg, err := bannerUpload(c)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid banner file", nil)
		return
	}
	defer closeImg()

	uid := c.GetString(middleware.CtxUserIDKey)
	_, err = h.Svc.Create(c.Request.Context(), uid, application.CreateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Cost:        req.Cost,
		Image:       img,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	response.OK(c, http.StatusCreated, "Product created successfully", nil)
}

// Show GET /api/products/:id. 403 when the caller is not the owner.
func (h *ProductHandler) Show(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	product, err := h.Svc.Get(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Product data", gin.H{"product": product})
}

// Update PUT/POST /api/products/:id. Omitted description/cost keep their
// previous values.
func (h *ProductHandler) Update(c *gin.Context) {
	var req productForm
	if err := c.ShouldBind(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Validation Error", validation.ToDetails(err))
		return
	}

	img, closeImg, err := bannerUpload(c)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid banner file", nil)
		return
	}
	defer closeImg()

	uid := c.GetString(middleware.CtxUserIDKey)
	product, err := h.Svc.Update(c.Request.Context(), uid, c.Param("id"), application.UpdateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Cost:        req.Cost,
		Image:       img,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	response.OK(c, http.StatusOK, "Product updated successfully", gin.H{"product": product})
}

// Destroy DELETE /api/products/:id.
func (h *ProductHandler) Destroy(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.Destroy(c.Request.Context(), uid, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Product deleted successfully", nil)
}

// Search GET /api/products/search?q=...&size=...
func (h *ProductHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Fail(c, http.StatusBadRequest, "Validation Error", map[string]string{"q": "is required"})
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	uid := c.GetString(middleware.CtxUserIDKey)
	products, err := h.Svc.Search(c.Request.Context(), uid, q, size)
	if err != nil {
		h.Logger.WithError(err).Warn("product search failed")
		response.Fail(c, http.StatusInternalServerError, "Search unavailable", nil)
		return
	}
	response.OK(c, http.StatusOK, "Search results", gin.H{"products": products})
}
