package handler

import (
	"pointsforest/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupLeaderboard struct {
	container *do.Injector
}

func (gr *groupLeaderboard) getLeaderboard(c echo.Context, name string) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceLeaderboard, err := do.Invoke[*services.ServiceLeaderboard](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	leaderboard, err := serviceLeaderboard.GetLeaderboard(ctx, user, name)
	return httpx.RestAbort(c, leaderboard, err)
}

func (gr *groupLeaderboard) GetOverallLeaderboard(c echo.Context) error {
	return gr.getLeaderboard(c, services.LEADERBOARD_OVERALL)
}

func (gr *groupLeaderboard) GetWeeklyLeaderboard(c echo.Context) error {
	return gr.getLeaderboard(c, services.LEADERBOARD_WEEKLY)
}
