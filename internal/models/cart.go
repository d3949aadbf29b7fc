package models

// CartItem is one product line held in the visitor's session.
type CartItem struct {
	ProductID int64   `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// CartSummary is what the cart page renders.
type CartSummary struct {
	Items    []CartItem `json:"items"`
	Subtotal float64    `json:"subtotal"`
	Tax      float64    `json:"tax"`
	Total    float64    `json:"total"`
}
