package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/simplexsales/backend/apperr"
	"github.com/simplexsales/backend/dto"
	"github.com/simplexsales/backend/models"
	"github.com/simplexsales/backend/repository"
	"github.com/simplexsales/backend/utils"
)

type ProductService struct {
	products repository.ProductRepository
}

func NewProductService(products repository.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

func (s *ProductService) Create(ctx context.Context, body dto.CreateProductDTO) (*models.Product, error) {
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return nil, apperr.BadRequest("Product name is required")
	}

	images := make([]models.ProductImage, 0, len(body.Images))
	for _, img := range body.Images {
		images = append(images, models.ProductImage{URL: img.URL, Alt: img.Alt})
	}

	now := time.Now().UTC()
	product := &models.Product{
		PublicID:    utils.GeneratePublicID("P"),
		Name:        name,
		Slug:        utils.GenerateSlug(name),
		Images:      images,
		Description: strings.TrimSpace(body.Description),
		Price:       body.Price,
		SKU:         body.SKU,
		Stock:       body.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.Insert(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("Product already exists")
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Get(ctx context.Context, productRef string) (*models.Product, error) {
	product, err := s.products.FindByRef(ctx, repository.ParseProductRef(productRef))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Product not found")
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) List(ctx context.Context, nameQuery string, page, limit int) ([]models.Product, int64, error) {
	return s.products.List(ctx, nameQuery, page, limit)
}

// Update applies a partial field set; nil pointers leave fields untouched.
func (s *ProductService) Update(ctx context.Context, productRef string, body dto.UpdateProductDTO) (*models.Product, error) {
	product, err := s.Get(ctx, productRef)
	if err != nil {
		return nil, err
	}

	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			return nil, apperr.BadRequest("Product name cannot be empty")
		}
		product.Name = name
		product.Slug = utils.GenerateSlug(name)
	}
	if body.Description != nil {
		product.Description = strings.TrimSpace(*body.Description)
	}
	if body.Price != nil {
		if *body.Price < 0 {
			return nil, apperr.BadRequest("Price cannot be negative")
		}
		product.Price = *body.Price
	}
	if body.SKU != nil {
		product.SKU = *body.SKU
	}
	if body.Stock != nil {
		if *body.Stock < 0 {
			return nil, apperr.BadRequest("Stock cannot be negative")
		}
		product.Stock = *body.Stock
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, productRef string) error {
	if err := s.products.Delete(ctx, repository.ParseProductRef(productRef)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Product not found")
		}
		return err
	}
	return nil
}

// AppendImages attaches already-uploaded image URLs to the product.
func (s *ProductService) AppendImages(ctx context.Context, productRef string, urls []string) (*models.Product, error) {
	product, err := s.Get(ctx, productRef)
	if err != nil {
		return nil, err
	}

	for _, u := range urls {
		product.Images = append(product.Images, models.ProductImage{URL: u})
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}
