package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:user"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Username      string    `bun:"username" json:"username"`
	DisplayName   string    `bun:"display_name" json:"display_name"`
	AvatarURL     string    `bun:"avatar_url" json:"avatar_url"`
	Points        int64     `bun:"points" json:"points"`
	LoginStreak   int       `bun:"login_streak" json:"login_streak"`
	LastBonusDay  *string   `bun:"last_bonus_day" json:"-"`
	IsAdmin       bool      `bun:"is_admin" json:"-"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at" json:"updated_at"`

	IsNewUser bool `bun:"-" json:"is_new_user"`
}

// UserFromAuth only use in middleware
type UserFromAuth struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}
