package models

// Category represents a post category
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CategoryCreateRequest represents a category creation request
type CategoryCreateRequest struct {
	Name string `json:"name"`
}
