package handler

import (
	"strconv"

	"pointsforest/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupAdmin struct {
	container *do.Injector
}

func (gr *groupAdmin) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveAdminUser(ctx, gr.container); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceStats, err := do.Invoke[*services.ServiceStats](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	stats, err := serviceStats.GetDashboardStats(ctx)
	return httpx.RestAbort(c, stats, err)
}

type adjustPointsRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

func (gr *groupAdmin) AdjustPoints(c echo.Context) error {
	ctx := c.Request().Context()

	admin, err := ResolveAdminUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	var req adjustPointsRequest
	if err := c.Bind(&req); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	balance, err := serviceUser.AdminAdjustPoints(ctx, admin.ID, userID, req.Amount, req.Reason)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, map[string]interface{}{"balance": balance}, nil)
}
