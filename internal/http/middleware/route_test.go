package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	mw "github.com/rogerio-castellano/product-catalog/internal/http/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

func TestRouteLabel_UsesPatternNotPath(t *testing.T) {
	r := chi.NewRouter()
	r.Use(mw.RouteLabel)
	r.Route("/products", func(r chi.Router) {
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {})
	})

	tests := []string{"/products/1", "/products/123"}
	for _, target := range tests {
		labeler := &otelhttp.Labeler{}
		ctx := otelhttp.ContextWithLabeler(context.Background(), labeler)
		req := httptest.NewRequest(http.MethodGet, target, nil).WithContext(ctx)

		r.ServeHTTP(httptest.NewRecorder(), req)

		want := attribute.String("http.route", "/products/{id}")
		attrs := labeler.Get()
		if len(attrs) != 1 || attrs[0] != want {
			t.Errorf("%s: expected labels [%v], got %v", target, want, attrs)
		}
	}
}
