package models

import "time"

// Post represents a blog post row
type Post struct {
	ID         int
	Title      string
	Summary    string
	Content    string
	AuthorID   int
	CategoryID int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PostInfo is the safe projection of a Post returned to clients. Author and
// category are rendered by name; either may be empty if the referenced row
// was deleted after the post was created.
type PostInfo struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	Author    string   `json:"author"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// PostListResult is a single page of posts together with the total count
type PostListResult struct {
	Total   int        `json:"total"`
	Posts   []PostInfo `json:"posts"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
}

// PostCreateRequest represents a post creation request. Tags are referenced
// by name and must already exist.
type PostCreateRequest struct {
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Content    string   `json:"content"`
	CategoryID int      `json:"category_id"`
	Tags       []string `json:"tags"`
}

// PostUpdateRequest is a partial update of a post. A nil Tags pointer leaves
// the tag set alone; a present one replaces it wholesale.
type PostUpdateRequest struct {
	Title      *string   `json:"title"`
	Summary    *string   `json:"summary"`
	Content    *string   `json:"content"`
	CategoryID *int      `json:"category_id"`
	Tags       *[]string `json:"tags"`
}

// Empty reports whether the update would change nothing
func (r *PostUpdateRequest) Empty() bool {
	return r.Title == nil && r.Summary == nil && r.Content == nil &&
		r.CategoryID == nil && r.Tags == nil
}
