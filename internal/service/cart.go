package service

import (
	"context"
	"errors"
	"math"

	"sagesilk/internal/models"
	"sagesilk/internal/repository"
)

const (
	// TaxRate is applied to the cart subtotal.
	TaxRate = 0.08
	// MaxLineQuantity caps the units of one product in a cart.
	MaxLineQuantity = 99
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrQuantityTooLarge = errors.New("quantity exceeds the per-product limit")
)

func quantityTooLarge() *Error {
	return &Error{Kind: KindValidation, Messages: []string{"You can add at most 99 of one product."}, Err: ErrQuantityTooLarge}
}

type CartService struct {
	products repository.Products
}

func NewCartService(products repository.Products) *CartService {
	return &CartService{products: products}
}

// Add returns a new item list with quantity units of productID added. An
// existing line for the product has its quantity increased.
func (s *CartService) Add(ctx context.Context, items []models.CartItem, productID int64, quantity int) ([]models.CartItem, error) {
	if quantity < 1 {
		return nil, &Error{Kind: KindValidation, Messages: []string{"Quantity must be at least 1."}, Err: ErrInvalidQuantity}
	}
	if quantity > MaxLineQuantity {
		return nil, quantityTooLarge()
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}

	out := make([]models.CartItem, 0, len(items)+1)
	found := false
	for _, it := range items {
		if it.ProductID == productID {
			if it.Quantity > MaxLineQuantity-quantity {
				return nil, quantityTooLarge()
			}
			it.Quantity += quantity
			found = true
		}
		out = append(out, it)
	}
	if !found {
		out = append(out, models.CartItem{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: quantity})
	}
	return out, nil
}

func (s *CartService) Remove(items []models.CartItem, productID int64) []models.CartItem {
	out := make([]models.CartItem, 0, len(items))
	for _, it := range items {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	return out
}

// Summarize computes subtotal, tax and total rounded to cents.
func (s *CartService) Summarize(items []models.CartItem) models.CartSummary {
	var subtotal float64
	for _, it := range items {
		subtotal += it.Price * float64(it.Quantity)
	}
	subtotal = roundCents(subtotal)
	tax := roundCents(subtotal * TaxRate)
	if items == nil {
		items = []models.CartItem{}
	}
	return models.CartSummary{
		Items:    items,
		Subtotal: subtotal,
		Tax:      tax,
		Total:    roundCents(subtotal + tax),
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
