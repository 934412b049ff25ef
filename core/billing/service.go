package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrInvalidPayload   = errors.New("invalid webhook payload")
	ErrLogNotFound      = errors.New("webhook log not found")
)

type Repository interface {
	CreatePayment(ctx context.Context, pmt Payment) (Payment, error)
	QueryPaymentsForUser(ctx context.Context, userID string) ([]Payment, error)

	CreateWebhookLog(ctx context.Context, log WebhookLog) (WebhookLog, error)
	MarkWebhookLogProcessed(ctx context.Context, id string, procErr string) error
}

type Service struct {
	repo      Repository
	courseSvc *course.Service
	conf      core.StripeConfig
	logger    core.Logger
}

func NewService(repo Repository, courseSvc *course.Service, conf core.StripeConfig, logger core.Logger) *Service {
	return &Service{
		repo:      repo,
		courseSvc: courseSvc,
		conf:      conf,
		logger:    logger,
	}
}

// HandleStripeWebhook verifies and processes a Stripe event. Every
// delivery is logged; checkout.session.completed grants enrollment and
// records the payment.
func (svc *Service) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, svc.conf.WebhookSecret)
	if err != nil {
		return errors.Wrap(ErrInvalidSignature, err.Error())
	}

	log, err := svc.repo.CreateWebhookLog(ctx, WebhookLog{
		Provider:  ProviderStripe,
		Event:     string(event.Type),
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if event.Type != "checkout.session.completed" {
		return svc.repo.MarkWebhookLogProcessed(ctx, log.ID, "")
	}

	var session stripe.CheckoutSession
	if err = json.Unmarshal(event.Data.Raw, &session); err != nil {
		err = errors.Wrap(ErrInvalidPayload, err.Error())
		svc.markFailed(ctx, log.ID, err)
		return err
	}
	userID := session.Metadata["userID"]
	courseID := session.Metadata["courseID"]
	if userID == "" || courseID == "" {
		err = errors.Wrap(ErrInvalidPayload, "missing userID/courseID metadata")
		svc.markFailed(ctx, log.ID, err)
		return err
	}

	pmt := Payment{
		UserID:            userID,
		CourseID:          courseID,
		Amount:            float64(session.AmountTotal) / 100,
		Currency:          strings.ToUpper(string(session.Currency)),
		Provider:          ProviderStripe,
		ProviderPaymentID: session.ID,
		Status:            PaymentStatusCompleted,
		CreatedAt:         time.Now().UTC(),
	}
	if err = svc.grant(ctx, pmt); err != nil {
		svc.markFailed(ctx, log.ID, err)
		return err
	}
	return svc.repo.MarkWebhookLogProcessed(ctx, log.ID, "")
}

// paypalEvent is the subset of PayPal's webhook body we act on.
type paypalEvent struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		ID       string `json:"id"`
		CustomID string `json:"custom_id"` // "userID:courseID"
		Amount   struct {
			Value        string `json:"value"`
			CurrencyCode string `json:"currency_code"`
		} `json:"amount"`
	} `json:"resource"`
}

// HandlePayPalWebhook processes a PayPal event. PAYMENT.CAPTURE.COMPLETED
// grants enrollment and records the payment.
// TODO: verify transmission signature once PayPal credentials are provisioned.
func (svc *Service) HandlePayPalWebhook(ctx context.Context, payload []byte) error {
	var event paypalEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return errors.Wrap(ErrInvalidPayload, err.Error())
	}

	log, err := svc.repo.CreateWebhookLog(ctx, WebhookLog{
		Provider:  ProviderPayPal,
		Event:     event.EventType,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if event.EventType != "PAYMENT.CAPTURE.COMPLETED" {
		return svc.repo.MarkWebhookLogProcessed(ctx, log.ID, "")
	}

	parts := strings.SplitN(event.Resource.CustomID, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		err = errors.Wrapf(ErrInvalidPayload, "malformed custom_id %q", event.Resource.CustomID)
		svc.markFailed(ctx, log.ID, err)
		return err
	}

	amount, _ := strconv.ParseFloat(event.Resource.Amount.Value, 64)

	pmt := Payment{
		UserID:            parts[0],
		CourseID:          parts[1],
		Amount:            amount,
		Currency:          event.Resource.Amount.CurrencyCode,
		Provider:          ProviderPayPal,
		ProviderPaymentID: event.Resource.ID,
		Status:            PaymentStatusCompleted,
		CreatedAt:         time.Now().UTC(),
	}
	if err = svc.grant(ctx, pmt); err != nil {
		svc.markFailed(ctx, log.ID, err)
		return err
	}
	return svc.repo.MarkWebhookLogProcessed(ctx, log.ID, "")
}

// PaymentsForUser lists a user's payments, newest first.
func (svc *Service) PaymentsForUser(ctx context.Context, userID string) ([]Payment, error) {
	return svc.repo.QueryPaymentsForUser(ctx, userID)
}

// grant enrolls the payer and records the payment. A replayed event that
// hits an existing enrollment is not an error.
func (svc *Service) grant(ctx context.Context, pmt Payment) error {
	if _, err := svc.courseSvc.Enroll(ctx, pmt.UserID, pmt.CourseID); err != nil {
		if errors.Cause(err) != course.ErrAlreadyEnrolled {
			return err
		}
		svc.logger.Warn(fmt.Sprintf("webhook replay: user %s already enrolled in course %s", pmt.UserID, pmt.CourseID))
	}
	_, err := svc.repo.CreatePayment(ctx, pmt)
	return err
}

func (svc *Service) markFailed(ctx context.Context, logID string, procErr error) {
	if err := svc.repo.MarkWebhookLogProcessed(ctx, logID, procErr.Error()); err != nil {
		svc.logger.Error(fmt.Sprintf("marking webhook log %s: %v", logID, err))
	}
}
