package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	handler "github.com/rogerio-castellano/product-catalog/internal/http/handlers"
	rl "github.com/rogerio-castellano/product-catalog/internal/http/rate_limiter"
	"github.com/rogerio-castellano/product-catalog/internal/http/router"
	"github.com/rogerio-castellano/product-catalog/internal/repo"
	"github.com/rogerio-castellano/product-catalog/internal/service"
	"github.com/rogerio-castellano/product-catalog/internal/telemetry"
)

var (
	productRepo *repo.InMemoryProductRepository
	telem       = telemetry.NewNoOp()
)

func init() {
	productRepo = repo.NewInMemoryProductRepository()
	handler.SetLogger(telem.Logger)
	handler.SetProductService(service.NewProductService(productRepo, telem.Tracer(), telem.Meter(), telem.Logger))
}

func newRouter() http.Handler {
	return router.NewRouter(router.Options{Logger: telem.Logger, Telemetry: telem})
}

func newRateLimitedRouter(rps float64, burst int) http.Handler {
	return router.NewRouter(router.Options{Logger: telem.Logger, Telemetry: telem, Limiter: rl.New(rps, burst)})
}

func clearAllProducts() {
	productRepo.Clear()
}

func do(r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, target, nil)
	case string:
		req = httptest.NewRequest(method, target, bytes.NewBufferString(b))
	default:
		payload, _ := json.Marshal(b)
		req = httptest.NewRequest(method, target, bytes.NewReader(payload))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createProduct(r http.Handler, p handler.ProductRequest) *httptest.ResponseRecorder {
	return do(r, http.MethodPost, "/products", p)
}

func createdProduct(r http.Handler, p handler.ProductRequest) (handler.ProductResponse, error) {
	w := createProduct(r, p)
	if w.Code != http.StatusCreated {
		return handler.ProductResponse{}, fmt.Errorf("expected 201 Created, got %d", w.Code)
	}

	var resp handler.ProductResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	return resp, err
}

func productPath(id int) string {
	return fmt.Sprintf("/products/%d", id)
}
