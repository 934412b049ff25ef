package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

type authApi struct {
	svc  *user.Service
	conf *core.Config
}

func registerAuthAPI(g *echo.Group, svc *user.Service, conf *core.Config) {
	api := authApi{svc: svc, conf: conf}

	ag := g.Group("/auth", rateLimitMiddleware(rate.Every(time.Second), 10))
	ag.POST("/login", api.login)
	ag.POST("/logout", api.logout)
	ag.POST("/password-reset", api.resetPassword)
	ag.POST("/password-reset-confirm", api.confirmPasswordReset)
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := authenticate(ctx.Request().Context(), data.Email, data.Password, api.svc)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}

	token, err := GenerateToken(GetUserClaims(usr, api.conf), api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	setSessionCookie(ctx, token, api.conf)
	return ctx.JSON(http.StatusOK, echo.Map{"user": usr})
}

func (api *authApi) logout(ctx echo.Context) error {
	clearSessionCookie(ctx, api.conf)
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Logged out."})
}

func (api *authApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); !(err == nil || errors.Cause(err) == user.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *authApi) confirmPasswordReset(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

type adminUserApi struct {
	svc       *user.Service
	courseSvc *course.Service
	logger    core.Logger
}

func registerAdminUserAPI(g *echo.Group, svc *user.Service, courseSvc *course.Service, logger core.Logger) {
	api := adminUserApi{svc: svc, courseSvc: courseSvc, logger: logger}

	ug := g.Group("/users")
	ug.GET("", api.query)
	ug.POST("", api.create)
	ug.DELETE("/:id", api.destroy)
	ug.POST("/:id/enroll", api.enroll)
}

func (api *adminUserApi) query(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, echo.Map{"users": []user.User{}})
	}
	filter.Clean()

	var users []user.User
	var err error
	if filter.IsEmpty() {
		users, err = api.svc.QueryAll(ctx.Request().Context())
	} else {
		users, err = api.svc.Filter(ctx.Request().Context(), *filter)
	}
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"users": users})
}

func (api *adminUserApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	usr, err := api.svc.Create(reqCtx, data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}

	// optional immediate enrollment; failure must not fail the create
	var courseTitles []string
	if data.CourseID != "" {
		if crs, err := api.courseSvc.GetByID(reqCtx, data.CourseID); err == nil {
			if _, err = api.courseSvc.Enroll(reqCtx, usr.ID, crs.ID); err == nil || errors.Cause(err) == course.ErrAlreadyEnrolled {
				courseTitles = append(courseTitles, crs.Title)
			} else {
				api.logger.Error("enrolling new user "+usr.Email, err)
			}
		} else {
			api.logger.Error("enrolling new user "+usr.Email, err)
		}
	}
	api.svc.SendWelcomeEmail(usr, data.Password, courseTitles)

	return ctx.JSON(http.StatusCreated, echo.Map{"user": usr})
}

func (api *adminUserApi) destroy(ctx echo.Context) error {
	id := ctx.Param("id")

	// Say No to Suicide! ctxUser cannot delete themselves
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if id == claims.Subject {
		return errHttpForbidden
	}

	if _, err = api.svc.GetByID(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding user by ID")
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminUserApi) enroll(ctx echo.Context) error {
	var data EnrollRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	usr, err := api.svc.GetByID(reqCtx, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding user by ID")
	}

	enr, err := api.courseSvc.Enroll(reqCtx, usr.ID, data.CourseID)
	if err != nil {
		switch errors.Cause(err) {
		case course.ErrAlreadyEnrolled:
			return core.NewValidationError(nil, core.FieldError{Field: "course_id", Error: "already enrolled"})
		case course.ErrNotFound:
			return errHttpNotFound
		}
		return errors.Wrap(err, "enrolling user")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"enrollment": enr})
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	EnrollRequest struct {
		CourseID string `json:"course_id" validate:"required,uuid4"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return core.Validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate() error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return core.Validate.Struct(pr)
}

func (er *EnrollRequest) Validate() error {
	er.CourseID = core.CleanString(er.CourseID, true /* lower */)
	return core.Validate.Struct(er)
}
