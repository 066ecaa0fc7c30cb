package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rogerio-castellano/product-catalog/internal/service"
)

// failed maps errors returned by the service. Storage error text stays in
// the logs.
func failed(w http.ResponseWriter, r *http.Request, err error, message string) {
	if errors.Is(err, service.ErrConcurrencyConflict) {
		writeError(w, r, http.StatusConflict, "product was modified concurrently, fetch it and retry")
		return
	}
	logger.ErrorContext(r.Context(), message, slog.String("error", err.Error()))
	writeError(w, r, http.StatusInternalServerError, message)
}

// rejected writes the error response for a not-found or invalid outcome.
func rejected[T any](w http.ResponseWriter, r *http.Request, out service.Outcome[T]) bool {
	switch out.Status {
	case service.StatusNotFound:
		writeError(w, r, http.StatusNotFound, "product not found")
		return true
	case service.StatusInvalid:
		writeError(w, r, http.StatusBadRequest, out.Reason)
		return true
	}
	return false
}

// CreateProductHandler godoc
// @Summary Create a new product
// @Description Adds a product to the catalog. Any id in the body is ignored.
// @Tags products
// @Accept json
// @Produce json
// @Param product body ProductRequest true "Product to add"
// @Success 201 {object} ProductResponse
// @Header 201 {string} Location "Path of the created product"
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /products [post]
func CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid input")
		return
	}

	out, err := productService.Create(r.Context(), req.toModel())
	if err != nil {
		failed(w, r, err, "could not create product")
		return
	}

	respond(w, r, http.StatusCreated, toProductResponse(out.Value), http.Header{"Location": {out.Location}})
}

// GetProductsHandler godoc
// @Summary List all products
// @Tags products
// @Produce json
// @Success 200 {array} ProductSummaryResponse
// @Failure 500 {object} ErrorResponse
// @Router /products [get]
func GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	out, err := productService.FetchAll(r.Context())
	if err != nil {
		failed(w, r, err, "could not fetch products")
		return
	}

	respond(w, r, http.StatusOK, toSummaryResponses(out.Value))
}

// GetProductByIDHandler godoc
// @Summary Get product by ID
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} ProductResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /products/{id} [get]
func GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	out, err := productService.FetchOne(r.Context(), id)
	if err != nil {
		failed(w, r, err, "could not fetch product")
		return
	}
	if rejected(w, r, out) {
		return
	}

	respond(w, r, http.StatusOK, toProductResponse(out.Value))
}

// UpdateProductHandler godoc
// @Summary Replace a product
// @Description The body id must equal the path id. Send the version read earlier to guard against lost updates.
// @Tags products
// @Accept json
// @Param id path int true "Product ID"
// @Param product body ProductRequest true "Replacement product"
// @Success 204 "Replaced successfully"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /products/{id} [put]
func UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid input")
		return
	}

	out, err := productService.Replace(r.Context(), id, req.toModel())
	if err != nil {
		failed(w, r, err, "could not update product")
		return
	}
	if rejected(w, r, out) {
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteProductHandler godoc
// @Summary Delete a product
// @Tags products
// @Param id path int true "Product ID"
// @Success 204 "Deleted successfully"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /products/{id} [delete]
func DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	out, err := productService.Delete(r.Context(), id)
	if err != nil {
		failed(w, r, err, "could not delete product")
		return
	}
	if rejected(w, r, out) {
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthHandler godoc
// @Summary Liveness probe
// @Tags health
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /health [get]
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
