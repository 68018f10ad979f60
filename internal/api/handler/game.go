package handler

import (
	"pointsforest/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupGame struct {
	container *do.Injector
}

func (gr *groupGame) GetGames(c echo.Context) error {
	ctx := c.Request().Context()

	serviceGame, err := do.Invoke[*services.ServiceGame](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	games, err := serviceGame.GetGames(ctx)
	return httpx.RestAbort(c, games, err)
}

func (gr *groupGame) Show(c echo.Context) error {
	ctx := c.Request().Context()

	serviceGame, err := do.Invoke[*services.ServiceGame](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	game, err := serviceGame.GetGame(ctx, c.Param("game"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	resp := map[string]interface{}{"game": game}
	if user, err := ResolveValidUser(ctx, gr.container); err == nil {
		if plays, err := serviceGame.UserPlaysToday(ctx, user.ID, game.Slug); err == nil {
			resp["plays_today"] = plays
			resp["plays_limit"] = game.DailyLimit
		}
	}

	return httpx.RestAbort(c, resp, nil)
}

func (gr *groupGame) SpinRoulette(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceGame, err := do.Invoke[*services.ServiceGame](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	spin, err := serviceGame.SpinRoulette(ctx, user, c.Param("game"))
	return httpx.RestAbort(c, spin, err)
}

type slotSpinRequest struct {
	Bet int64 `json:"bet"`
}

func (gr *groupGame) SpinSlot(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var req slotSpinRequest
	if err := c.Bind(&req); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceGame, err := do.Invoke[*services.ServiceGame](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	spin, err := serviceGame.SpinSlot(ctx, user, c.Param("game"), req.Bet)
	return httpx.RestAbort(c, spin, err)
}
