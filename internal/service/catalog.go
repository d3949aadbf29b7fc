package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"sagesilk/internal/models"
	"sagesilk/internal/repository"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrUnknownCategory = errors.New("unknown category")
)

// Categories are the storefront departments, keyed by their URL slug.
var Categories = map[string]string{
	"men":         "Men",
	"women":       "Women",
	"kids":        "Kids",
	"accessories": "Accessories",
}

type CatalogService struct {
	products repository.Products
}

func NewCatalogService(products repository.Products) *CatalogService {
	return &CatalogService{products: products}
}

func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	return s.products.List(ctx)
}

// ListByCategory accepts a category slug or display name.
func (s *CatalogService) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	name, ok := categoryName(category)
	if !ok {
		return nil, ErrUnknownCategory
	}
	return s.products.ListByCategory(ctx, name)
}

// ListBySubcategory accepts a slug such as "dresses-and-gowns" for the subcategory.
func (s *CatalogService) ListBySubcategory(ctx context.Context, category, subcategory string) ([]models.Product, error) {
	name, ok := categoryName(category)
	if !ok {
		return nil, ErrUnknownCategory
	}
	return s.products.ListBySubcategory(ctx, name, SubcategoryName(subcategory))
}

func (s *CatalogService) Get(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// Create validates p and stores it together with its images.
func (s *CatalogService) Create(ctx context.Context, p models.NewProduct) (int64, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	if msgs := validateProduct(p); len(msgs) > 0 {
		return 0, &Error{Kind: KindValidation, Messages: msgs}
	}

	id, err := s.products.Create(ctx, p)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownSubcategory) {
			return 0, &Error{Kind: KindValidation, Messages: []string{fmt.Sprintf("subcategory_id: %d does not exist", p.SubcategoryID)}, Err: err}
		}
		return 0, internalError("Failed to add product", err)
	}
	return id, nil
}

func validateProduct(p models.NewProduct) []string {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Description, validation.Length(0, 2000)),
		validation.Field(&p.Price, validation.Required, validation.Min(0.01)),
		validation.Field(&p.Stock, validation.Min(0)),
		validation.Field(&p.SubcategoryID, validation.Required, validation.Min(int64(1))),
		validation.Field(&p.Images, validation.By(nonBlankStrings)),
	)
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	keys := make([]string, 0, len(fieldErrs))
	for k := range fieldErrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, k+": "+fieldErrs[k].Error())
	}
	return msgs
}

func nonBlankStrings(value interface{}) error {
	list, _ := value.([]string)
	for _, s := range list {
		if strings.TrimSpace(s) == "" {
			return errors.New("must not contain blank entries")
		}
	}
	return nil
}

func categoryName(s string) (string, bool) {
	name, ok := Categories[strings.ToLower(strings.TrimSpace(s))]
	return name, ok
}

// SubcategoryName turns a URL slug into the stored name: "dresses-and-gowns"
// becomes "dresses and gowns". Lookups are case-insensitive.
func SubcategoryName(slug string) string {
	return strings.ReplaceAll(strings.TrimSpace(slug), "-", " ")
}
