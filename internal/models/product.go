package models

// Product is a catalog row joined with its subcategory and category names.
type Product struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Price           float64  `json:"price"`
	Stock           int      `json:"stock"`
	SubcategoryID   int64    `json:"subcategory_id"`
	SubcategoryName string   `json:"subcategory_name"`
	CategoryName    string   `json:"category_name"`
	Images          []string `json:"images"`
}

// NewProduct is the input for inserting a product with its images.
type NewProduct struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	Stock         int      `json:"stock"`
	SubcategoryID int64    `json:"subcategory_id"`
	Images        []string `json:"images"`
}
