package handlers

import (
	"github.com/rogerio-castellano/product-catalog/internal/models"
	"github.com/shopspring/decimal"
)

// ProductRequest is the body of POST and PUT /products. ID is ignored on
// create and must match the path on replace. Version is optional.
type ProductRequest struct {
	Id      int             `json:"id,omitempty"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price" swaggertype:"number"`
	Version int             `json:"version,omitempty"`
}

func (p ProductRequest) toModel() models.Product {
	return models.Product{ID: p.Id, Name: p.Name, Price: p.Price, Version: p.Version}
}

type ProductResponse struct {
	Id      int             `json:"id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price" swaggertype:"number"`
	Version int             `json:"version"`
}

func toProductResponse(p models.Product) ProductResponse {
	return ProductResponse{Id: p.ID, Name: p.Name, Price: p.Price, Version: p.Version}
}

type ProductSummaryResponse struct {
	Id    int             `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price" swaggertype:"number"`
}

func toSummaryResponses(summaries []models.ProductSummary) []ProductSummaryResponse {
	resp := make([]ProductSummaryResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = ProductSummaryResponse{Id: s.ID, Name: s.Name, Price: s.Price}
	}
	return resp
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
