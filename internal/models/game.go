package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	GAME_KIND_ROULETTE = "roulette"
	GAME_KIND_SLOTS    = "slots"

	GAME_SLUG_ROULETTE = "roulette"
	GAME_SLUG_SLOTS    = "slots"
)

type Game struct {
	bun.BaseModel `bun:"table:game"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	Slug          string     `bun:"slug,unique" json:"slug"`
	Name          string     `bun:"name" json:"name"`
	Kind          string     `bun:"kind" json:"kind"`
	DailyLimit    int        `bun:"daily_limit" json:"daily_limit"`
	MinBet        int64      `bun:"min_bet" json:"min_bet"`
	MaxBet        int64      `bun:"max_bet" json:"max_bet"`
	Active        bool       `bun:"active" json:"active"`
	StartTime     *time.Time `bun:"start_time" json:"start_time"`
	EndTime       *time.Time `bun:"end_time" json:"end_time"`
	CreatedAt     time.Time  `bun:"created_at,default:current_timestamp" json:"created_at"`
}

// Started reports whether the game window has opened.
func (g *Game) Started(now time.Time) bool {
	return g.StartTime == nil || !now.Before(*g.StartTime)
}

// Ended reports whether the game window has closed.
func (g *Game) Ended(now time.Time) bool {
	return g.EndTime != nil && now.After(*g.EndTime)
}

type RouletteSpin struct {
	Tier       string `json:"tier"`
	Prize      int64  `json:"prize"`
	Balance    int64  `json:"balance"`
	PlaysToday int    `json:"plays_today"`
	PlaysLimit int    `json:"plays_limit"`
}

type SlotSpin struct {
	Reels      []string `json:"reels"`
	Multiplier int64    `json:"multiplier"`
	Bet        int64    `json:"bet"`
	Payout     int64    `json:"payout"`
	Balance    int64    `json:"balance"`
	PlaysToday int      `json:"plays_today"`
	PlaysLimit int      `json:"plays_limit"`
}
