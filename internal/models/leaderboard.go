package models

type LeaderboardItem struct {
	UserId      int64   `json:"user_id"`
	Score       float64 `json:"score"`
	Rank        int     `json:"rank"`
	Username    string  `json:"username,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
}

type LeaderboardResponse struct {
	Items        []*LeaderboardItem `json:"items"`
	Me           *LeaderboardItem   `json:"me"`
	Participants int64              `json:"participants"`
}
