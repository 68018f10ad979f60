package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	QUEST_TYPE_PLAY_COUNT    = "play_count"
	QUEST_TYPE_POINTS_EARNED = "points_earned"
	QUEST_TYPE_LOGIN_STREAK  = "login_streak"
)

type Quest struct {
	bun.BaseModel `bun:"table:quest"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Slug          string    `bun:"slug,unique" json:"slug"`
	Title         string    `bun:"title" json:"title"`
	Type          string    `bun:"type" json:"type"`
	Target        int64     `bun:"target" json:"target"`
	Reward        int64     `bun:"reward" json:"reward"`
	Active        bool      `bun:"active" json:"active"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

type UserQuest struct {
	bun.BaseModel `bun:"table:user_quest"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64      `bun:"user_id" json:"user_id"`
	QuestSlug     string     `bun:"quest_slug" json:"quest_slug"`
	Claimed       bool       `bun:"claimed" json:"claimed"`
	ClaimedAt     *time.Time `bun:"claimed_at" json:"claimed_at"`
}

// QuestStatus is a quest joined with the caller's live progress.
type QuestStatus struct {
	Quest     *Quest `json:"quest"`
	Progress  int64  `json:"progress"`
	Completed bool   `json:"completed"`
	Claimed   bool   `json:"claimed"`
}
