package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/billing"
)

type billingRepository struct {
	db *sqlx.DB
}

var _ billing.Repository = (*billingRepository)(nil) // interface compliance check

func NewBillingRepository(db *sqlx.DB) billing.Repository {
	return &billingRepository{db: db}
}

func (repo *billingRepository) CreatePayment(ctx context.Context, pmt billing.Payment) (billing.Payment, error) {
	pmt.ID = uuid.NewString()
	q := `
INSERT INTO payment (id, user_id, course_id, amount, currency, provider, provider_payment_id, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, q,
		pmt.ID, pmt.UserID, pmt.CourseID, pmt.Amount, pmt.Currency, pmt.Provider, pmt.ProviderPaymentID, pmt.Status, pmt.CreatedAt)
	if err != nil {
		return billing.Payment{}, errors.Wrap(err, "creating payment")
	}
	return pmt, nil
}

func (repo *billingRepository) QueryPaymentsForUser(ctx context.Context, userID string) ([]billing.Payment, error) {
	var pmts []billing.Payment
	q := `SELECT * FROM payment WHERE user_id = $1 ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &pmts, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	return pmts, nil
}

func (repo *billingRepository) CreateWebhookLog(ctx context.Context, log billing.WebhookLog) (billing.WebhookLog, error) {
	log.ID = uuid.NewString()
	q := `
INSERT INTO webhook_log (id, provider, event, payload, processed, error, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, q,
		log.ID, log.Provider, log.Event, log.Payload, log.Processed, log.Error, log.CreatedAt)
	if err != nil {
		return billing.WebhookLog{}, errors.Wrap(err, "creating webhook log")
	}
	return log, nil
}

func (repo *billingRepository) MarkWebhookLogProcessed(ctx context.Context, id string, procErr string) error {
	q := `UPDATE webhook_log SET processed = $1, error = $2 WHERE id = $3`
	res, err := repo.db.ExecContext(ctx, q, procErr == "", procErr, id)
	if err != nil {
		return errors.Wrap(err, "marking webhook log")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return billing.ErrLogNotFound
	}
	return nil
}
