package service

import (
	"context"
	"database/sql"
	"errors"
	"go-shop-api/common"
	"go-shop-api/logger"
	"go-shop-api/model"
	"go-shop-api/repository"
	"strings"

	"github.com/sirupsen/logrus"
)

const newCollectionSize = 10

var ErrProductNotFound = errors.New("product not found")

// ProductService manages the storefront catalog.
type ProductService struct {
	repo         repository.IProductRepository
	imageBaseURL string
}

// NewProductService creates a ProductService. Image names that are not
// absolute URLs are resolved against imageBaseURL.
func NewProductService(repo repository.IProductRepository, imageBaseURL string) *ProductService {
	return &ProductService{repo: repo, imageBaseURL: imageBaseURL}
}

// AddProduct validates req and stores it under the next free id.
// Negative prices are stored as 0.
func (s *ProductService) AddProduct(ctx context.Context, req model.AddProductRequest) (*model.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Image = strings.TrimSpace(req.Image)
	req.Category = strings.ToLower(strings.TrimSpace(req.Category))
	if err := common.Validate(&req); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:     req.Name,
		Image:    s.imageURL(req.Image),
		Category: model.Category(req.Category),
		NewPrice: max(0, *req.NewPrice),
		OldPrice: max(0, *req.OldPrice),
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, storeError(err)
	}

	logger.Log.WithFields(logrus.Fields{
		"product_id": product.ID,
		"category":   product.Category,
	}).Info("Product added")
	return product, nil
}

// RemoveProduct deletes a product and returns what was removed.
func (s *ProductService) RemoveProduct(ctx context.Context, id int) (*model.Product, error) {
	if id <= 0 {
		return nil, ErrProductNotFound
	}
	product, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, storeError(err)
	}
	logger.Log.WithField("product_id", id).Info("Product removed")
	return product, nil
}

// AllProducts returns one page of available products, newest first.
func (s *ProductService) AllProducts(ctx context.Context, page, limit int) ([]*model.Product, error) {
	page, limit = normalizePage(page, limit)
	return s.list(ctx, model.ProductQuery{Limit: limit, Offset: pageOffset(page, limit)})
}

// NewCollections returns the newest available products.
func (s *ProductService) NewCollections(ctx context.Context) ([]*model.Product, error) {
	return s.list(ctx, model.ProductQuery{Limit: newCollectionSize})
}

// PopularInWomen returns every available product in the women category.
func (s *ProductService) PopularInWomen(ctx context.Context) ([]*model.Product, error) {
	return s.list(ctx, model.ProductQuery{Category: model.CategoryWomen})
}

func (s *ProductService) list(ctx context.Context, q model.ProductQuery) ([]*model.Product, error) {
	products, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, storeError(err)
	}
	return products, nil
}

func (s *ProductService) imageURL(image string) string {
	if strings.HasPrefix(image, "http") {
		return image
	}
	return strings.TrimSuffix(s.imageBaseURL, "/") + "/" + strings.TrimPrefix(image, "/")
}
