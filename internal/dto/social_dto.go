package dto

type CreateCommentRequest struct {
	TargetType string  `json:"target_type"`
	TargetID   string  `json:"target_id"`
	ParentID   *string `json:"parent_id"`
	Content    string  `json:"content"`
}

type UpdateCommentRequest struct {
	Content string `json:"content"`
}

type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

type FollowCountsResponse struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}
