package categories

import "time"

// Category groups products for navigation and reporting.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateCategoryRequest describes a new category.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}
