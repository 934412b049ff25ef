package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/billing"
)

type billingRepository struct {
	db *billingTable
}

var _ billing.Repository = (*billingRepository)(nil) // interface compliance check

func NewBillingRepository(db *DB) billing.Repository {
	return &billingRepository{db: db.billing}
}

func (repo *billingRepository) CreatePayment(ctx context.Context, pmt billing.Payment) (billing.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	pmt.ID = uuid.NewString()
	repo.db.payments[pmt.ID] = &pmt
	return pmt, nil
}

func (repo *billingRepository) QueryPaymentsForUser(ctx context.Context, userID string) ([]billing.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var pmts []billing.Payment
	for _, pmt := range repo.db.payments {
		if pmt.UserID == userID {
			pmts = append(pmts, *pmt)
		}
	}
	sort.Slice(pmts, func(i, j int) bool { return pmts[i].CreatedAt.After(pmts[j].CreatedAt) })
	return pmts, nil
}

func (repo *billingRepository) CreateWebhookLog(ctx context.Context, log billing.WebhookLog) (billing.WebhookLog, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	log.ID = uuid.NewString()
	repo.db.webhookLogs[log.ID] = &log
	return log, nil
}

func (repo *billingRepository) MarkWebhookLogProcessed(ctx context.Context, id string, procErr string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	log, ok := repo.db.webhookLogs[id]
	if !ok {
		return billing.ErrLogNotFound
	}
	log.Processed = procErr == ""
	log.Error = procErr
	return nil
}
