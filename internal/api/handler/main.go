package handler

import (
	"net/http"

	"pointsforest/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "🌲")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		authentication, err := do.Invoke[*services.Authentication](cfg.Container)
		if err != nil {
			return nil, err
		}
		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)

		u := groupUser{cfg.Container}
		routesAPIv1.POST("/auth/login", u.Login)

		routesAPIv1.Use(Authn(authentication)) // Authn will NOT terminate unauthenticated requests.
		routesAPIv1.GET("", Hello)

		routesAPIv1User := routesAPIv1.Group("/user")
		{
			routesAPIv1User.GET("/me", u.Me)
			routesAPIv1User.GET("/transactions", u.Transactions)
			routesAPIv1User.GET("/inventory", u.Inventory)
			routesAPIv1User.GET("/settings", u.GetSettings)
			routesAPIv1User.PUT("/settings", u.UpdateSettings)
		}

		g := groupGame{cfg.Container}
		routesAPIv1.GET("/games", g.GetGames)
		routesAPIv1.GET("/game/:game", g.Show)
		routesAPIv1.POST("/game/:game/roulette/spin", g.SpinRoulette)
		routesAPIv1.POST("/game/:game/slots/spin", g.SpinSlot)

		ga := groupGacha{cfg.Container}
		routesAPIv1.GET("/gacha/machines", ga.GetMachines)
		routesAPIv1.GET("/gacha/machine/:machine", ga.Show)
		routesAPIv1.POST("/gacha/machine/:machine/pull", ga.Pull)
		routesAPIv1.GET("/gacha/pull/:pull/reveal", ga.Reveal)

		d := groupDaily{cfg.Container}
		routesAPIv1.GET("/daily-bonus", d.Status)
		routesAPIv1.POST("/daily-bonus/claim", d.Claim)

		q := groupQuest{cfg.Container}
		routesAPIv1.GET("/quests", q.GetQuests)
		routesAPIv1.POST("/quest/:quest/claim", q.Claim)

		l := groupLeaderboard{cfg.Container}
		routesAPIv1.GET("/leaderboard/overall", l.GetOverallLeaderboard)
		routesAPIv1.GET("/leaderboard/overall_weekly", l.GetWeeklyLeaderboard)

		s := groupShop{cfg.Container}
		routesAPIv1.GET("/shop/items", s.GetItems)
		routesAPIv1.POST("/shop/item/:item/purchase", s.Purchase)

		routesAPIv1Admin := routesAPIv1.Group("/admin")
		{
			a := groupAdmin{cfg.Container}
			routesAPIv1Admin.GET("/stats", a.Stats)
			routesAPIv1Admin.POST("/user/:id/points", a.AdjustPoints)
		}
	}

	return r, nil
}

func Hello(c echo.Context) error {
	return httpx.RestAbort(c, "hello forest", nil)
}
