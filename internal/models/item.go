package models

import (
	"time"

	"github.com/uptrace/bun"
)

// UserItem is one cosmetic item in a user's inventory, earned from a gacha
// pull or bought in the shop.
type UserItem struct {
	bun.BaseModel `bun:"table:user_item"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64     `bun:"user_id" json:"user_id"`
	Name          string    `bun:"name" json:"name"`
	Rarity        string    `bun:"rarity" json:"rarity"`
	Source        string    `bun:"source" json:"source"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

type ShopItem struct {
	bun.BaseModel `bun:"table:shop_item"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Slug          string    `bun:"slug,unique" json:"slug"`
	Name          string    `bun:"name" json:"name"`
	Rarity        string    `bun:"rarity" json:"rarity"`
	Price         int64     `bun:"price" json:"price"`
	Active        bool      `bun:"active" json:"active"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}
