package dto

import "encoding/json"

type CreatePostRequest struct {
	Content string   `json:"content"`
	GameID  *string  `json:"game_id"`
	Images  []string `json:"images"`
}

type UpdatePostRequest struct {
	Content *string `json:"content"`
	GameID  *string `json:"game_id"`
}

type CreateArticleRequest struct {
	Title         string          `json:"title"`
	Excerpt       string          `json:"excerpt"`
	CoverImageURL string          `json:"cover_image_url"`
	Content       json.RawMessage `json:"content"`
	Genres        []string        `json:"genres"`
	GameIDs       []string        `json:"game_ids"`
	Published     bool            `json:"published"`
}

// UpdateArticleRequest is a patch; nil fields are left unchanged.
type UpdateArticleRequest struct {
	Title         *string         `json:"title"`
	Excerpt       *string         `json:"excerpt"`
	CoverImageURL *string         `json:"cover_image_url"`
	Content       json.RawMessage `json:"content"`
	Genres        *[]string       `json:"genres"`
	GameIDs       *[]string       `json:"game_ids"`
}

type CreateReviewRequest struct {
	GameID           string          `json:"game_id"`
	Title            string          `json:"title"`
	Content          json.RawMessage `json:"content"`
	Rating           int             `json:"rating"`
	ContainsSpoilers bool            `json:"contains_spoilers"`
	Genres           []string        `json:"genres"`
	Published        bool            `json:"published"`
}

type UpdateReviewRequest struct {
	Title            *string         `json:"title"`
	Content          json.RawMessage `json:"content"`
	Rating           *int            `json:"rating"`
	ContainsSpoilers *bool           `json:"contains_spoilers"`
	Genres           *[]string       `json:"genres"`
}

type PublishRequest struct {
	Published bool `json:"published"`
}
