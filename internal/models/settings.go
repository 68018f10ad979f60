package models

import (
	"time"

	"github.com/uptrace/bun"
)

type NotificationSettings struct {
	Quests     bool `json:"quests"`
	Gacha      bool `json:"gacha"`
	Marketing  bool `json:"marketing"`
	DailyBonus bool `json:"daily_bonus"`
}

type PrivacySettings struct {
	ShowOnLeaderboard bool `json:"show_on_leaderboard"`
	PublicProfile     bool `json:"public_profile"`
}

// UserSettings replaces the old client-local settings blob; it is the
// server-side mirror so preferences survive a cleared browser.
type UserSettings struct {
	bun.BaseModel `bun:"table:user_settings"`
	UserID        int64                `bun:"user_id,pk" json:"user_id"`
	Theme         string               `bun:"theme" json:"theme"`
	Notifications NotificationSettings `bun:"notifications,type:jsonb" json:"notifications"`
	Privacy       PrivacySettings      `bun:"privacy,type:jsonb" json:"privacy"`
	UpdatedAt     time.Time            `bun:"updated_at" json:"updated_at"`
}

func DefaultUserSettings(userID int64) *UserSettings {
	return &UserSettings{
		UserID: userID,
		Theme:  "forest",
		Notifications: NotificationSettings{
			Quests:     true,
			Gacha:      true,
			DailyBonus: true,
		},
		Privacy: PrivacySettings{
			ShowOnLeaderboard: true,
			PublicProfile:     true,
		},
	}
}
