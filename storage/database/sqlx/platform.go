package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/platform"
)

type syncLogRepository struct {
	db *sqlx.DB
}

var _ platform.Repository = (*syncLogRepository)(nil) // interface compliance check

func NewSyncLogRepository(db *sqlx.DB) platform.Repository {
	return &syncLogRepository{db: db}
}

func (repo *syncLogRepository) CreateSyncLog(ctx context.Context, log platform.SyncLog) (platform.SyncLog, error) {
	log.ID = uuid.NewString()
	q := `
INSERT INTO sync_log (id, status, courses_synced, lessons_synced, error, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, q,
		log.ID, log.Status, log.CoursesSynced, log.LessonsSynced, log.Error, log.CreatedAt)
	if err != nil {
		return platform.SyncLog{}, errors.Wrap(err, "creating sync log")
	}
	return log, nil
}

func (repo *syncLogRepository) QuerySyncLogs(ctx context.Context, limit int) ([]platform.SyncLog, error) {
	q := `SELECT * FROM sync_log ORDER BY created_at DESC`
	var args []interface{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}

	var logs []platform.SyncLog
	if err := repo.db.SelectContext(ctx, &logs, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying sync logs")
	}
	return logs, nil
}
