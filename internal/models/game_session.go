package models

import (
	"time"

	"github.com/uptrace/bun"
)

type GameSession struct {
	bun.BaseModel `bun:"table:game_session"`
	ID            int64                  `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64                  `bun:"user_id" json:"user_id"`
	GameSlug      string                 `bun:"game_slug" json:"game_slug"`
	Bet           int64                  `bun:"bet" json:"bet"`
	Payout        int64                  `bun:"payout" json:"payout"`
	Outcome       map[string]interface{} `bun:"outcome,type:jsonb" json:"outcome"`
	CreatedAt     time.Time              `bun:"created_at,default:current_timestamp" json:"created_at"`
}
