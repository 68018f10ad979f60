package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	RARITY_COMMON    = "common"
	RARITY_UNCOMMON  = "uncommon"
	RARITY_RARE      = "rare"
	RARITY_EPIC      = "epic"
	RARITY_LEGENDARY = "legendary"
	RARITY_MYTHICAL  = "mythical"
)

var rarityRank = map[string]int{
	RARITY_COMMON:    0,
	RARITY_UNCOMMON:  1,
	RARITY_RARE:      2,
	RARITY_EPIC:      3,
	RARITY_LEGENDARY: 4,
	RARITY_MYTHICAL:  5,
}

// RarityAtLeast reports whether rarity is the same tier as floor or above.
// Unknown rarities rank below common.
func RarityAtLeast(rarity, floor string) bool {
	r, ok := rarityRank[rarity]
	if !ok {
		return false
	}
	f, ok := rarityRank[floor]
	if !ok {
		return false
	}
	return r >= f
}

type GachaMachine struct {
	bun.BaseModel `bun:"table:gacha_machine"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	Slug          string     `bun:"slug,unique" json:"slug"`
	Name          string     `bun:"name" json:"name"`
	Description   string     `bun:"description" json:"description"`
	Cost          int64      `bun:"cost" json:"cost"`
	DailyLimit    int        `bun:"daily_limit" json:"daily_limit"`
	PityThreshold int        `bun:"pity_threshold" json:"pity_threshold"`
	PityRarity    string     `bun:"pity_rarity" json:"pity_rarity"`
	Active        bool       `bun:"active" json:"active"`
	StartTime     *time.Time `bun:"start_time" json:"start_time"`
	EndTime       *time.Time `bun:"end_time" json:"end_time"`
	CreatedAt     time.Time  `bun:"created_at,default:current_timestamp" json:"created_at"`

	Items []*GachaItem `bun:"-" json:"items,omitempty"`
}

func (m *GachaMachine) Started(now time.Time) bool {
	return m.StartTime == nil || !now.Before(*m.StartTime)
}

func (m *GachaMachine) Ended(now time.Time) bool {
	return m.EndTime != nil && now.After(*m.EndTime)
}

type GachaItem struct {
	bun.BaseModel `bun:"table:gacha_item"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	MachineSlug   string `bun:"machine_slug" json:"machine_slug"`
	Name          string `bun:"name" json:"name"`
	Rarity        string `bun:"rarity" json:"rarity"`
	Weight        int    `bun:"weight" json:"weight"`
	Value         int64  `bun:"value" json:"value"`
}

// PulledItem is the denormalized shape stored on a pull record and streamed
// by the reveal endpoint.
type PulledItem struct {
	ItemID int64  `json:"item_id" msgpack:"item_id"`
	Name   string `json:"name" msgpack:"name"`
	Rarity string `json:"rarity" msgpack:"rarity"`
	Value  int64  `json:"value" msgpack:"value"`
}

type GachaPull struct {
	bun.BaseModel `bun:"table:gacha_pull"`
	ID            string       `bun:"id,pk" json:"id"`
	UserID        int64        `bun:"user_id" json:"user_id"`
	MachineSlug   string       `bun:"machine_slug" json:"machine_slug"`
	Count         int          `bun:"count" json:"count"`
	CostPaid      int64        `bun:"cost_paid" json:"cost_paid"`
	TotalValue    int64        `bun:"total_value" json:"total_value"`
	Items         []PulledItem `bun:"items,type:jsonb" json:"items"`
	CreatedAt     time.Time    `bun:"created_at,default:current_timestamp" json:"created_at"`
}

type GachaPity struct {
	bun.BaseModel `bun:"table:gacha_pity"`
	ID            int64     `bun:"id,pk,autoincrement" json:"-"`
	UserID        int64     `bun:"user_id" json:"user_id"`
	MachineSlug   string    `bun:"machine_slug" json:"machine_slug"`
	Count         int       `bun:"count" json:"count"`
	UpdatedAt     time.Time `bun:"updated_at" json:"updated_at"`
}

type GachaPullResult struct {
	PullID     string       `json:"pull_id"`
	Items      []PulledItem `json:"items"`
	TotalValue int64        `json:"total_value"`
	CostPaid   int64        `json:"cost_paid"`
	Balance    int64        `json:"balance"`
	PullsToday int          `json:"pulls_today"`
	PullsLimit int          `json:"pulls_limit"`
}
