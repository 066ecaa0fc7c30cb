package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rogerio-castellano/product-catalog/internal/models"
	"github.com/rogerio-castellano/product-catalog/internal/repo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ProductService maps product resource operations onto a ProductRepository.
// It keeps no state between calls.
type ProductService struct {
	repo              repo.ProductRepository
	tracer            trace.Tracer
	logger            *slog.Logger
	productOperations metric.Int64Counter
}

// NewProductService creates a new product service
func NewProductService(
	repo repo.ProductRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *ProductService {
	productOperations, _ := meter.Int64Counter(
		"products.operations",
		metric.WithDescription("Total number of product operations"),
	)

	return &ProductService{
		repo:              repo,
		tracer:            tracer,
		logger:            logger,
		productOperations: productOperations,
	}
}

// ProductLocation is the path of the fetch-one resource for id.
func ProductLocation(id int) string {
	return fmt.Sprintf("/products/%d", id)
}

// Create stores a new product. Any id on the input is ignored.
func (s *ProductService) Create(ctx context.Context, product models.Product) (Outcome[models.Product], error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Create")
	defer span.End()

	span.SetAttributes(attribute.String("product.name", product.Name))

	product.ID = 0
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		s.fail(ctx, span, "create", err)
		return Outcome[models.Product]{}, err
	}

	span.SetAttributes(attribute.Int("product.id", created.ID))
	s.record(ctx, "create", "success")
	s.logger.InfoContext(ctx, "Product created",
		slog.Int("product_id", created.ID),
		slog.String("name", created.Name),
	)

	return Outcome[models.Product]{
		Status:   StatusCreated,
		Value:    created,
		Location: ProductLocation(created.ID),
	}, nil
}

// FetchOne returns the product with the given id.
func (s *ProductService) FetchOne(ctx context.Context, id int) (Outcome[models.Product], error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.FetchOne")
	defer span.End()

	span.SetAttributes(attribute.Int("product.id", id))

	product, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrProductNotFound) {
		s.record(ctx, "read", "not_found")
		return notFound[models.Product](err.Error()), nil
	}
	if err != nil {
		s.fail(ctx, span, "read", err)
		return Outcome[models.Product]{}, err
	}

	s.record(ctx, "read", "success")
	return ok(product), nil
}

// FetchAll returns a summary of every stored product, in storage order.
func (s *ProductService) FetchAll(ctx context.Context) (Outcome[[]models.ProductSummary], error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.FetchAll")
	defer span.End()

	products, err := s.repo.GetAll(ctx)
	if err != nil {
		s.fail(ctx, span, "list", err)
		return Outcome[[]models.ProductSummary]{}, err
	}

	summaries := make([]models.ProductSummary, len(products))
	for i, p := range products {
		summaries[i] = p.Summary()
	}

	span.SetAttributes(attribute.Int("product.count", len(summaries)))
	s.record(ctx, "list", "success")
	return ok(summaries), nil
}

// Replace overwrites the product stored under id with product.
//
// A zero product.Version means the caller did not read the product first;
// the current version is read and used as the expected one. A write that
// loses the race against another writer yields ErrConcurrencyConflict, or a
// not-found outcome if the product was deleted in the meantime.
func (s *ProductService) Replace(ctx context.Context, id int, product models.Product) (Outcome[struct{}], error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Replace")
	defer span.End()

	span.SetAttributes(attribute.Int("product.id", id))

	if product.ID != id {
		s.record(ctx, "replace", "invalid")
		return invalid[struct{}](fmt.Sprintf("body id %d does not match path id %d", product.ID, id)), nil
	}

	if product.Version == 0 {
		current, err := s.repo.GetByID(ctx, id)
		if errors.Is(err, repo.ErrProductNotFound) {
			s.record(ctx, "replace", "not_found")
			return notFound[struct{}](err.Error()), nil
		}
		if err != nil {
			s.fail(ctx, span, "replace", err)
			return Outcome[struct{}]{}, err
		}
		product.Version = current.Version
	}

	res, err := s.repo.UpdateIfMatching(ctx, product)
	if err != nil {
		s.fail(ctx, span, "replace", err)
		return Outcome[struct{}]{}, err
	}

	switch res {
	case repo.UpdateOK:
		s.record(ctx, "replace", "success")
		s.logger.InfoContext(ctx, "Product replaced", slog.Int("product_id", id))
		return noContent[struct{}](), nil
	case repo.UpdateGone:
		s.record(ctx, "replace", "not_found")
		return notFound[struct{}](repo.ErrProductNotFound.Error()), nil
	}

	found, err := s.exists(ctx, id)
	if err != nil {
		s.fail(ctx, span, "replace", err)
		return Outcome[struct{}]{}, err
	}
	if !found {
		s.record(ctx, "replace", "not_found")
		return notFound[struct{}](repo.ErrProductNotFound.Error()), nil
	}

	err = fmt.Errorf("replace product %d at version %d: %w", id, product.Version, ErrConcurrencyConflict)
	s.record(ctx, "replace", "conflict")
	span.RecordError(err)
	span.SetStatus(codes.Error, "Concurrency conflict")
	s.logger.WarnContext(ctx, "Product replace lost a concurrent write",
		slog.Int("product_id", id),
		slog.Int("version", product.Version),
	)
	return Outcome[struct{}]{}, err
}

// Delete removes the product with the given id.
func (s *ProductService) Delete(ctx context.Context, id int) (Outcome[struct{}], error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Delete")
	defer span.End()

	span.SetAttributes(attribute.Int("product.id", id))

	product, err := s.repo.GetByID(ctx, id)
	if err == nil {
		err = s.repo.Remove(ctx, product)
	}
	if errors.Is(err, repo.ErrProductNotFound) {
		s.record(ctx, "delete", "not_found")
		return notFound[struct{}](err.Error()), nil
	}
	if err != nil {
		s.fail(ctx, span, "delete", err)
		return Outcome[struct{}]{}, err
	}

	s.record(ctx, "delete", "success")
	s.logger.InfoContext(ctx, "Product deleted", slog.Int("product_id", id))
	return noContent[struct{}](), nil
}

func (s *ProductService) exists(ctx context.Context, id int) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrProductNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *ProductService) record(ctx context.Context, operation, result string) {
	s.productOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}

func (s *ProductService) fail(ctx context.Context, span trace.Span, operation string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, "Storage failure")
	s.logger.ErrorContext(ctx, "Product storage operation failed",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
	s.record(ctx, operation, "failure")
}
