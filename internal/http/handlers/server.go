package handlers

import (
	"log/slog"

	"github.com/rogerio-castellano/product-catalog/internal/service"
)

var (
	productService *service.ProductService
	logger         = slog.Default()
)

func SetProductService(s *service.ProductService) {
	productService = s
}

func SetLogger(l *slog.Logger) {
	logger = l
}
