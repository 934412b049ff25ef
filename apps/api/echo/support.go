package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/support"
)

type supportApi struct {
	svc *support.Service
}

func registerSupportAPI(g *echo.Group, svc *support.Service) {
	api := supportApi{svc: svc}

	sg := g.Group("/support")
	sg.GET("/faq", api.queryFAQs)
	sg.GET("/videos", api.queryVideos)
	sg.GET("/requests", api.queryRequests)
	sg.POST("/requests", api.createRequest)
}

func (api *supportApi) queryFAQs(ctx echo.Context) error {
	faqs, err := api.svc.PublicFAQs(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying FAQs")
	}
	if faqs == nil {
		faqs = []support.FAQ{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"faqs": faqs})
}

func (api *supportApi) queryVideos(ctx echo.Context) error {
	videos, err := api.svc.PublicVideos(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying support videos")
	}
	if videos == nil {
		videos = []support.Video{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"videos": videos})
}

func (api *supportApi) queryRequests(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	reqs, err := api.svc.RequestsForUser(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying support requests")
	}
	if reqs == nil {
		reqs = []support.Request{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"requests": reqs})
}

func (api *supportApi) createRequest(ctx echo.Context) error {
	var data support.NewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	req, err := api.svc.CreateRequest(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating support request")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"request": req})
}

type adminSupportApi struct {
	svc *support.Service
}

func registerAdminSupportAPI(g *echo.Group, svc *support.Service) {
	api := adminSupportApi{svc: svc}

	fg := g.Group("/faq")
	fg.GET("", api.queryFAQs)
	fg.POST("", api.createFAQ)
	fg.PUT("/:id", api.updateFAQ)
	fg.DELETE("/:id", api.deleteFAQ)

	vg := g.Group("/support-videos")
	vg.GET("", api.queryVideos)
	vg.POST("", api.createVideo)
	vg.PUT("/:id", api.updateVideo)
	vg.DELETE("/:id", api.deleteVideo)

	rg := g.Group("/requests")
	rg.GET("", api.queryRequests)
	rg.POST("/:id/respond", api.respondRequest)
}

func (api *adminSupportApi) queryFAQs(ctx echo.Context) error {
	faqs, err := api.svc.AllFAQs(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying FAQs")
	}
	if faqs == nil {
		faqs = []support.FAQ{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"faqs": faqs})
}

func (api *adminSupportApi) createFAQ(ctx echo.Context) error {
	var data support.NewFAQ
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFAQ")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	faq, err := api.svc.CreateFAQ(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating FAQ")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"faq": faq})
}

func (api *adminSupportApi) updateFAQ(ctx echo.Context) error {
	var data support.NewFAQ
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFAQ")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	faq, err := api.svc.UpdateFAQ(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == support.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating FAQ")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"faq": faq})
}

func (api *adminSupportApi) deleteFAQ(ctx echo.Context) error {
	if err := api.svc.DeleteFAQ(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == support.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting FAQ")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminSupportApi) queryVideos(ctx echo.Context) error {
	videos, err := api.svc.AllVideos(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying support videos")
	}
	if videos == nil {
		videos = []support.Video{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"videos": videos})
}

func (api *adminSupportApi) createVideo(ctx echo.Context) error {
	var data support.NewVideo
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewVideo")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	vid, err := api.svc.CreateVideo(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating support video")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"video": vid})
}

func (api *adminSupportApi) updateVideo(ctx echo.Context) error {
	var data support.NewVideo
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewVideo")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	vid, err := api.svc.UpdateVideo(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == support.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating support video")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"video": vid})
}

func (api *adminSupportApi) deleteVideo(ctx echo.Context) error {
	if err := api.svc.DeleteVideo(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == support.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting support video")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminSupportApi) queryRequests(ctx echo.Context) error {
	var filter support.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	reqs, err := api.svc.FilterRequests(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying support requests")
	}
	if reqs == nil {
		reqs = []support.Request{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"requests": reqs})
}

func (api *adminSupportApi) respondRequest(ctx echo.Context) error {
	var data support.RespondRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RespondRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	req, err := api.svc.Respond(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == support.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "responding to support request")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"request": req})
}
