package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"sagesilk/internal/models"
)

func newTestCart() *CartService {
	return NewCartService(&fakeProducts{byID: map[int64]models.Product{
		1: {ID: 1, Name: "Linen Shirt", Price: 19.99},
		2: {ID: 2, Name: "Silk Scarf", Price: 5.25},
	}})
}

func TestCartService_Add(t *testing.T) {
	svc := newTestCart()
	ctx := context.Background()

	items, err := svc.Add(ctx, nil, 1, 2)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	items, err = svc.Add(ctx, items, 2, 1)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	before := items
	items, err = svc.Add(ctx, items, 1, 3)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 lines, got %+v", items)
	}
	if items[0].ProductID != 1 || items[0].Quantity != 5 || items[0].Name != "Linen Shirt" {
		t.Fatalf("unexpected first line %+v", items[0])
	}
	if before[0].Quantity != 2 {
		t.Fatal("Add must not mutate the input slice")
	}
}

func TestCartService_Add_Errors(t *testing.T) {
	svc := newTestCart()
	ctx := context.Background()

	if _, err := svc.Add(ctx, nil, 1, 0); KindOf(err) != KindValidation || !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected quantity validation error, got %v", err)
	}
	if _, err := svc.Add(ctx, nil, 99, 1); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCartService_Add_QuantityLimit(t *testing.T) {
	svc := newTestCart()
	ctx := context.Background()

	if _, err := svc.Add(ctx, nil, 1, MaxLineQuantity+1); KindOf(err) != KindValidation || !errors.Is(err, ErrQuantityTooLarge) {
		t.Fatalf("expected limit error, got %v", err)
	}
	if _, err := svc.Add(ctx, nil, 1, math.MaxInt); !errors.Is(err, ErrQuantityTooLarge) {
		t.Fatalf("expected limit error for MaxInt, got %v", err)
	}

	items, err := svc.Add(ctx, nil, 1, MaxLineQuantity)
	if err != nil {
		t.Fatalf("Add up to the limit: %v", err)
	}
	if _, err := svc.Add(ctx, items, 1, 1); !errors.Is(err, ErrQuantityTooLarge) {
		t.Fatalf("merging past the limit should fail, got %v", err)
	}

	// A line carried in from an old session past the limit cannot grow or wrap.
	huge := []models.CartItem{{ProductID: 1, Name: "Linen Shirt", Price: 10, Quantity: math.MaxInt - 1}}
	if _, err := svc.Add(ctx, huge, 1, 5); !errors.Is(err, ErrQuantityTooLarge) {
		t.Fatalf("expected limit error on overflow-prone merge, got %v", err)
	}
}

func TestCartService_Remove(t *testing.T) {
	svc := newTestCart()
	items := []models.CartItem{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 4}}

	out := svc.Remove(items, 1)
	if len(out) != 1 || out[0].ProductID != 2 {
		t.Fatalf("unexpected items %+v", out)
	}
	if out := svc.Remove(items, 42); len(out) != 2 {
		t.Fatalf("removing a missing product should keep all lines, got %+v", out)
	}
}

func TestCartService_Summarize(t *testing.T) {
	svc := newTestCart()

	sum := svc.Summarize([]models.CartItem{
		{ProductID: 1, Price: 19.99, Quantity: 3},
		{ProductID: 2, Price: 5.25, Quantity: 2},
	})
	// 59.97 + 10.50 = 70.47; tax 5.6376 -> 5.64; total 76.11
	if sum.Subtotal != 70.47 || sum.Tax != 5.64 || sum.Total != 76.11 {
		t.Fatalf("unexpected summary %+v", sum)
	}

	empty := svc.Summarize(nil)
	if empty.Items == nil || empty.Total != 0 {
		t.Fatalf("unexpected empty summary %+v", empty)
	}
}
