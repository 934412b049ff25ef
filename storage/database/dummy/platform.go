package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/platform"
)

type syncLogRepository struct {
	db *syncLogTable
}

var _ platform.Repository = (*syncLogRepository)(nil) // interface compliance check

func NewSyncLogRepository(db *DB) platform.Repository {
	return &syncLogRepository{db: db.syncLog}
}

func (repo *syncLogRepository) CreateSyncLog(ctx context.Context, log platform.SyncLog) (platform.SyncLog, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	log.ID = uuid.NewString()
	repo.db.table = append(repo.db.table, log)
	return log, nil
}

func (repo *syncLogRepository) QuerySyncLogs(ctx context.Context, limit int) ([]platform.SyncLog, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	// newest first
	logs := make([]platform.SyncLog, 0, len(repo.db.table))
	for i := len(repo.db.table) - 1; i >= 0; i-- {
		logs = append(logs, repo.db.table[i])
		if limit > 0 && len(logs) == limit {
			break
		}
	}
	return logs, nil
}
