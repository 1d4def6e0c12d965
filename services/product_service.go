package services

import (
	"context"
	"errors"

	"github.com/quickbasket/storefront/models"
	"github.com/quickbasket/storefront/repository"
)

// ProductService exposes the read-only catalog to the HTTP layer.
type ProductService struct {
	products repository.ProductRepository
}

func NewProductService(products repository.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

func (s *ProductService) GetProducts(ctx context.Context, category string, page, limit int64) ([]models.Product, int64, error) {
	return s.products.FindAll(ctx, category, page, limit)
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}
