package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	SOURCE_GACHA_PULL    = "gacha:pull"
	SOURCE_ROULETTE_WIN  = "game:roulette:win"
	SOURCE_SLOT_BET      = "game:slots:bet"
	SOURCE_SLOT_PAYOUT   = "game:slots:payout"
	SOURCE_DAILY_BONUS   = "daily-bonus"
	SOURCE_QUEST_REWARD  = "quest:reward"
	SOURCE_SHOP_PURCHASE = "shop:purchase"
	SOURCE_ADMIN_ADJUST  = "admin:adjust"
)

// PointTransaction is the audit ledger. Every balance change writes one row
// in the same transaction as the balance update; amount is signed.
type PointTransaction struct {
	bun.BaseModel `bun:"table:point_transaction"`
	ID            int64                  `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64                  `bun:"user_id" json:"user_id"`
	Amount        int64                  `bun:"amount" json:"amount"`
	BalanceAfter  int64                  `bun:"balance_after" json:"balance_after"`
	Source        string                 `bun:"source" json:"source"`
	Metadata      map[string]interface{} `bun:"metadata,type:jsonb" json:"metadata"`
	CreatedAt     time.Time              `bun:"created_at,default:current_timestamp" json:"created_at"`
}

// PointFlow is the aggregate shape shared by the dashboard query and its
// in-memory fallback fold.
type PointFlow struct {
	PointsIssued     int64 `json:"points_issued"`
	PointsSpent      int64 `json:"points_spent"`
	TransactionCount int64 `json:"transaction_count"`
}
