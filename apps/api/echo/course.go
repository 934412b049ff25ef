package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/course"
)

type courseApi struct {
	svc *course.Service
}

func registerCourseAPI(g *echo.Group, svc *course.Service) {
	api := courseApi{svc: svc}

	g.GET("/courses", api.query)
	g.GET("/courses/:id", api.get)
	g.PUT("/lessons/:id/progress", api.saveProgress)
}

// query returns the courses the authenticated user is enrolled in.
// Admins see the whole catalog.
func (api *courseApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var courses []course.Course
	if claims.IsAdmin() {
		courses, err = api.svc.QueryAll(ctx.Request().Context())
	} else {
		courses, err = api.svc.CoursesForUser(ctx.Request().Context(), claims.Subject)
	}
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"courses": courses})
}

func (api *courseApi) get(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	crs, progress, err := api.svc.GetForUser(ctx.Request().Context(), claims.Subject, ctx.Param("id"), claims.IsAdmin())
	if err != nil {
		switch errors.Cause(err) {
		case course.ErrNotFound:
			return errHttpNotFound
		case course.ErrNotEnrolled:
			return errHttpForbidden
		}
		return errors.Wrap(err, "getting course")
	}
	if progress == nil {
		progress = []course.LessonProgress{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"course": crs, "progress": progress})
}

func (api *courseApi) saveProgress(ctx echo.Context) error {
	var data course.UpdateProgress
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProgress")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	prog, err := api.svc.SaveProgress(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data)
	if err != nil {
		switch errors.Cause(err) {
		case course.ErrLessonNotFound:
			return errHttpNotFound
		case course.ErrNotEnrolled:
			return errHttpForbidden
		}
		return errors.Wrap(err, "saving lesson progress")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"progress": prog})
}

type adminCourseApi struct {
	svc *course.Service
}

func registerAdminCourseAPI(g *echo.Group, svc *course.Service) {
	api := adminCourseApi{svc: svc}

	g.GET("/courses", api.query)
}

// query lists the whole catalog with module and lesson counts.
func (api *adminCourseApi) query(ctx echo.Context) error {
	courses, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}

	resp := make([]AdminCourseResponse, 0, len(courses))
	for _, crs := range courses {
		var lessonCount int
		for _, mod := range crs.Modules {
			lessonCount += len(mod.Lessons)
		}
		resp = append(resp, AdminCourseResponse{
			Course:      crs,
			ModuleCount: len(crs.Modules),
			LessonCount: lessonCount,
		})
	}
	return ctx.JSON(http.StatusOK, echo.Map{"courses": resp})
}

type AdminCourseResponse struct {
	course.Course
	ModuleCount int `json:"module_count"`
	LessonCount int `json:"lesson_count"`
}
