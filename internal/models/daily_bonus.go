package models

import (
	"time"

	"github.com/uptrace/bun"
)

// DailyBonus is one login-bonus claim; (user_id, day) is unique so a day can
// only ever be claimed once regardless of concurrent requests.
type DailyBonus struct {
	bun.BaseModel `bun:"table:daily_bonus"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64     `bun:"user_id" json:"user_id"`
	Day           string    `bun:"day" json:"day"`
	Streak        int       `bun:"streak" json:"streak"`
	Amount        int64     `bun:"amount" json:"amount"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

type DailyBonusStatus struct {
	ClaimedToday bool  `json:"claimed_today"`
	Streak       int   `json:"streak"`
	NextAmount   int64 `json:"next_amount"`
}

type DailyBonusResult struct {
	Streak  int   `json:"streak"`
	Amount  int64 `json:"amount"`
	Balance int64 `json:"balance"`
}
