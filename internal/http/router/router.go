package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "github.com/rogerio-castellano/product-catalog/docs"
	"github.com/rogerio-castellano/product-catalog/internal/http/handlers"
	mw "github.com/rogerio-castellano/product-catalog/internal/http/middleware"
	rl "github.com/rogerio-castellano/product-catalog/internal/http/rate_limiter"
	"github.com/rogerio-castellano/product-catalog/internal/telemetry"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Options struct {
	Logger    *slog.Logger
	Telemetry *telemetry.Telemetry
	// Limiter throttles /products per client. Nil disables it.
	Limiter *rl.Limiter
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.RouteLabel)
	r.Use(chimiddleware.RealIP)
	r.Use(mw.StructuredLogger(opts.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.ActiveRequests(opts.Telemetry.Meter()))

	r.Route("/products", func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(mw.RateLimit(opts.Limiter, opts.Logger))
		}
		r.Post("/", handlers.CreateProductHandler)
		r.Get("/", handlers.GetProductsHandler)
		r.Get("/{id}", handlers.GetProductByIDHandler)
		r.Put("/{id}", handlers.UpdateProductHandler)
		r.Delete("/{id}", handlers.DeleteProductHandler)
	})

	r.Get("/health", handlers.HealthHandler)
	r.Handle("/metrics", promhttp.HandlerFor(opts.Telemetry.Registry, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	return otelhttp.NewHandler(r, "http-server",
		otelhttp.WithTracerProvider(opts.Telemetry.TracerProvider),
		otelhttp.WithMeterProvider(opts.Telemetry.MeterProvider),
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return r.Method
		}),
	)
}
