package handler

import (
	"pointsforest/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupShop struct {
	container *do.Injector
}

func (gr *groupShop) GetItems(c echo.Context) error {
	ctx := c.Request().Context()

	serviceShop, err := do.Invoke[*services.ServiceShop](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	items, err := serviceShop.GetItems(ctx)
	return httpx.RestAbort(c, items, err)
}

func (gr *groupShop) Purchase(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceShop, err := do.Invoke[*services.ServiceShop](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	item, balance, err := serviceShop.Purchase(ctx, user, c.Param("item"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]interface{}{
		"item":    item,
		"balance": balance,
	}, nil)
}
