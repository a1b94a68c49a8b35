package dto

type QuestLogRequest struct {
	GameID           string `json:"game_id"`
	Status           string `json:"status"`
	QuickRating      *int   `json:"quick_rating"`
	Notes            string `json:"notes"`
	DisplayOnProfile bool   `json:"display_on_profile"`
	DisplayOrder     int    `json:"display_order"`
}

// QuestStatusRequest changes an entry's status. With Share set, a post
// announcing the change is published too.
type QuestStatusRequest struct {
	Status      string `json:"status"`
	QuickRating *int   `json:"quick_rating"`
	Share       bool   `json:"share"`
}

type CollectionRequest struct {
	GameID    string `json:"game_id"`
	Ownership string `json:"ownership"`
	Status    string `json:"status"`
	Notes     string `json:"notes"`
}

type UpdateCollectionRequest struct {
	Ownership *string `json:"ownership"`
	Status    *string `json:"status"`
	Notes     *string `json:"notes"`
}
