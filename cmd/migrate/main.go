package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"pointsforest/internal/datastore"
	"pointsforest/internal/models"
	"pointsforest/internal/services"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandConfigMigration(),
			commandSeedGames(),
			commandSeedGacha(),
			commandSeedQuests(),
			commandSeedShop(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name: "migrate",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableUser(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTablePointTransaction(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableGame(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableGameSession(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableGacha(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableItems(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableQuest(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableDailyBonus(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableUserSettings(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			err = datastore.CreateTableConfig(ctx, db)
			if err != nil {
				log.Fatal(err)
			}

			fmt.Println("Migration success")

			return nil
		},
	}
}

// insert default configs to db
func commandConfigMigration() *cli.Command {
	return &cli.Command{
		Name:        "migrate-config",
		Description: "Insert default configs to db",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			configs := []models.Config{
				{Key: services.CONFIG_SERVER_MODE, Value: "production"},
				{Key: services.CONFIG_OVERALL_LEADERBOARD_LIMIT, Value: "20"},
				{Key: services.CONFIG_WEEKLY_LEADERBOARD_LIMIT, Value: "20"},
				{Key: services.CONFIG_DAILY_BONUS_BASE, Value: "50"},
				{Key: services.CONFIG_DAILY_BONUS_STREAK_CAP, Value: "7"},
				{Key: services.CONFIG_STARTING_POINTS, Value: "100"},
				{Key: services.CONFIG_REVEAL_TTL_IN_MINUTES, Value: "30"},
				{Key: "CRONJOB_TIME_LEADERBOARD", Value: "0 0 * * 1"},
			}

			for _, config := range configs {
				_, err = db.NewInsert().Model(&config).On("conflict (key) DO NOTHING").Exec(ctx)
				if err != nil {
					log.Println(err)
				}
			}

			fmt.Println("Migration success")

			return nil
		},
	}
}

func commandSeedGames() *cli.Command {
	return &cli.Command{
		Name: "seed-games",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			games := []*models.Game{
				{
					Slug:       models.GAME_SLUG_ROULETTE,
					Name:       "Forest Wheel",
					Kind:       models.GAME_KIND_ROULETTE,
					DailyLimit: 5,
					Active:     true,
				},
				{
					Slug:       models.GAME_SLUG_SLOTS,
					Name:       "Lucky Grove Slots",
					Kind:       models.GAME_KIND_SLOTS,
					DailyLimit: 50,
					MinBet:     10,
					MaxBet:     1000,
					Active:     true,
				},
			}

			for _, game := range games {
				if err := datastore.UpsertGame(ctx, db, game); err != nil {
					log.Println(err)
				}
			}

			fmt.Println("Seed success")

			return nil
		},
	}
}

func commandSeedGacha() *cli.Command {
	return &cli.Command{
		Name: "seed-gacha",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			machine := &models.GachaMachine{
				Slug:          "forest-eggs",
				Name:          "Forest Eggs",
				Description:   "Crack an egg, meet a critter.",
				Cost:          100,
				DailyLimit:    50,
				PityThreshold: 10,
				PityRarity:    models.RARITY_RARE,
				Active:        true,
			}
			if err := datastore.UpsertGachaMachine(ctx, db, machine); err != nil {
				log.Fatal(err)
			}

			items := []*models.GachaItem{
				{MachineSlug: machine.Slug, Name: "Pebble Snail", Rarity: models.RARITY_COMMON, Weight: 4000, Value: 20},
				{MachineSlug: machine.Slug, Name: "Moss Beetle", Rarity: models.RARITY_COMMON, Weight: 3000, Value: 30},
				{MachineSlug: machine.Slug, Name: "Fern Fox", Rarity: models.RARITY_UNCOMMON, Weight: 1500, Value: 80},
				{MachineSlug: machine.Slug, Name: "River Otter", Rarity: models.RARITY_UNCOMMON, Weight: 800, Value: 120},
				{MachineSlug: machine.Slug, Name: "Amber Owl", Rarity: models.RARITY_RARE, Weight: 450, Value: 400},
				{MachineSlug: machine.Slug, Name: "Thorn Stag", Rarity: models.RARITY_EPIC, Weight: 180, Value: 1200},
				{MachineSlug: machine.Slug, Name: "Aurora Wolf", Rarity: models.RARITY_LEGENDARY, Weight: 60, Value: 5000},
				{MachineSlug: machine.Slug, Name: "Elder Treant", Rarity: models.RARITY_MYTHICAL, Weight: 10, Value: 20000},
			}
			if err := datastore.InsertGachaItems(ctx, db, items); err != nil {
				log.Fatal(err)
			}

			fmt.Println("Seed success")

			return nil
		},
	}
}

func commandSeedQuests() *cli.Command {
	return &cli.Command{
		Name: "seed-quests",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			quests := []*models.Quest{
				{Slug: "first-steps", Title: "Play 5 games", Type: models.QUEST_TYPE_PLAY_COUNT, Target: 5, Reward: 200, Active: true},
				{Slug: "regular", Title: "Play 50 games", Type: models.QUEST_TYPE_PLAY_COUNT, Target: 50, Reward: 1000, Active: true},
				{Slug: "collector", Title: "Earn 10,000 points", Type: models.QUEST_TYPE_POINTS_EARNED, Target: 10000, Reward: 500, Active: true},
				{Slug: "devoted", Title: "Reach a 7-day streak", Type: models.QUEST_TYPE_LOGIN_STREAK, Target: 7, Reward: 700, Active: true},
			}

			for _, quest := range quests {
				if err := datastore.UpsertQuest(ctx, db, quest); err != nil {
					log.Println(err)
				}
			}

			fmt.Println("Seed success")

			return nil
		},
	}
}

func commandSeedShop() *cli.Command {
	return &cli.Command{
		Name: "seed-shop",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				log.Fatal(err)
			}

			items := []*models.ShopItem{
				{Slug: "acorn-hat", Name: "Acorn Hat", Rarity: models.RARITY_COMMON, Price: 250, Active: true},
				{Slug: "firefly-lantern", Name: "Firefly Lantern", Rarity: models.RARITY_UNCOMMON, Price: 800, Active: true},
				{Slug: "willow-cloak", Name: "Willow Cloak", Rarity: models.RARITY_RARE, Price: 2500, Active: true},
				{Slug: "crown-of-seasons", Name: "Crown of Seasons", Rarity: models.RARITY_LEGENDARY, Price: 20000, Active: true},
			}

			for _, item := range items {
				if err := datastore.UpsertShopItem(ctx, db, item); err != nil {
					log.Println(err)
				}
			}

			fmt.Println("Seed success")

			return nil
		},
	}
}

func getDb() (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	db := bun.NewDB(sqldb, pgdialect.New())
	return db, nil
}
