package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/platform"
)

type syncApi struct {
	svc *platform.Service
}

// registerSyncAPI mounts the catalog reconciler triggers: an admin endpoint
// and a scheduler endpoint guarded by a shared secret.
func registerSyncAPI(g *echo.Group, svc *platform.Service, conf *core.Config) {
	api := syncApi{svc: svc}

	g.POST("/sync", api.run, adminMiddleware()) // session gate enforces admin on /api/sync too
	g.GET("/sync/logs", api.queryLogs, adminMiddleware())
	g.GET("/cron/sync", api.run, cronAuthMiddleware(conf))
}

func (api *syncApi) run(ctx echo.Context) error {
	res, err := api.svc.Run(ctx.Request().Context())
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "sync failed",
			"details": err.Error(),
		})
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *syncApi) queryLogs(ctx echo.Context) error {
	limit, err := strconv.Atoi(ctx.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	logs, err := api.svc.QueryLogs(ctx.Request().Context(), limit)
	if err != nil {
		return errors.Wrap(err, "querying sync logs")
	}
	if logs == nil {
		logs = []platform.SyncLog{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"logs": logs})
}
