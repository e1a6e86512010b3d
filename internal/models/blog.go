package models

import "time"

const PostStatusPublished = "published"

type BlogPost struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	AuthorID    int        `json:"author_id"`
	AuthorName  string     `json:"author_name"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Stats       *BlogStats `json:"stats,omitempty"`
}

type BlogStats struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Views    int `json:"views"`
}

type Comment struct {
	ID          int       `json:"id"`
	BlogID      int       `json:"blog_id"`
	UserID      int       `json:"user_id"`
	AuthorName  string    `json:"author_name,omitempty"`
	CommentText string    `json:"comment_text"`
	CreatedAt   time.Time `json:"created_at"`
}

type BlogFilter struct {
	Category string
	AuthorID int
	Limit    int
	Offset   int
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalPosts  int  `json:"totalPosts"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}
