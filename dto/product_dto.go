package dto

type ProductImageDTO struct {
	URL string `json:"url" binding:"required"`
	Alt string `json:"alt"`
}

type CreateProductDTO struct {
	Name        string            `json:"name" binding:"required"`
	Description string            `json:"description"`
	Price       float64           `json:"price" binding:"omitempty,gte=0"`
	SKU         string            `json:"sku"`
	Stock       int               `json:"stock" binding:"omitempty,gte=0"`
	Images      []ProductImageDTO `json:"images"`
}

// UpdateProductDTO — all fields are optional pointers
type UpdateProductDTO struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	SKU         *string  `json:"sku,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
}
