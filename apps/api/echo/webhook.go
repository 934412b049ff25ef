package echoapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/billing"
)

type webhookApi struct {
	svc *billing.Service
}

// registerWebhookAPI mounts the payment provider callbacks. These are
// unauthenticated; each handler verifies the provider's own signature.
func registerWebhookAPI(g *echo.Group, svc *billing.Service) {
	api := webhookApi{svc: svc}

	wg := g.Group("/webhooks")
	wg.POST("/stripe", api.stripe)
	wg.POST("/paypal", api.paypal)
}

func (api *webhookApi) stripe(ctx echo.Context) error {
	payload, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return errors.Wrap(err, "reading webhook body")
	}

	err = api.svc.HandleStripeWebhook(ctx.Request().Context(), payload, ctx.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		switch errors.Cause(err) {
		case billing.ErrInvalidSignature, billing.ErrInvalidPayload:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return errors.Wrap(err, "handling stripe webhook")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"received": true})
}

func (api *webhookApi) paypal(ctx echo.Context) error {
	payload, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return errors.Wrap(err, "reading webhook body")
	}

	if err = api.svc.HandlePayPalWebhook(ctx.Request().Context(), payload); err != nil {
		if errors.Cause(err) == billing.ErrInvalidPayload {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return errors.Wrap(err, "handling paypal webhook")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"received": true})
}
