package models

// Tag represents a post tag
type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TagCreateRequest represents a tag creation request
type TagCreateRequest struct {
	Name string `json:"name"`
}
