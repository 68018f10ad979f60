package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"pointsforest/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupGacha struct {
	container *do.Injector
}

func (gr *groupGacha) GetMachines(c echo.Context) error {
	ctx := c.Request().Context()

	serviceMachine, err := do.Invoke[*services.ServiceMachine](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	machines, err := serviceMachine.GetMachines(ctx)
	return httpx.RestAbort(c, machines, err)
}

func (gr *groupGacha) Show(c echo.Context) error {
	ctx := c.Request().Context()

	serviceMachine, err := do.Invoke[*services.ServiceMachine](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	machine, err := serviceMachine.GetMachine(ctx, c.Param("machine"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	resp := map[string]interface{}{"machine": machine}
	if user, err := ResolveValidUser(ctx, gr.container); err == nil {
		if pulls, err := serviceMachine.UserPullsToday(ctx, user.ID, machine.Slug); err == nil {
			resp["pulls_today"] = pulls
			resp["pulls_limit"] = machine.DailyLimit
		}
	}

	return httpx.RestAbort(c, resp, nil)
}

type pullRequest struct {
	Count int `json:"count"`
}

func (gr *groupGacha) Pull(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var req pullRequest
	if err := c.Bind(&req); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}
	if req.Count == 0 {
		req.Count = 1
	}

	serviceMachine, err := do.Invoke[*services.ServiceMachine](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	result, err := serviceMachine.ExecuteGachaPull(ctx, user, c.Param("machine"), req.Count)
	return httpx.RestAbort(c, result, err)
}

// Reveal streams the pull's animation timeline as server-sent events. A
// closed connection cancels the sequence; the pull itself was already
// settled by ExecuteGachaPull.
func (gr *groupGacha) Reveal(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceMachine, err := do.Invoke[*services.ServiceMachine](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	pull, err := serviceMachine.GetPull(ctx, user.ID, c.Param("pull"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	sequencer := services.NewRevealSequencer()
	for event := range sequencer.Run(ctx, pull) {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Phase, payload); err != nil {
			return err
		}
		w.Flush()
	}

	return nil
}
