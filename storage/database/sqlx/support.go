package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/support"
)

type supportRepository struct {
	db *sqlx.DB
}

var _ support.Repository = (*supportRepository)(nil) // interface compliance check

func NewSupportRepository(db *sqlx.DB) support.Repository {
	return &supportRepository{db: db}
}

func (repo *supportRepository) QueryFAQs(ctx context.Context, activeOnly bool) ([]support.FAQ, error) {
	q := `SELECT * FROM faq`
	if activeOnly {
		q += ` WHERE is_active`
	}
	q += ` ORDER BY "order", created_at DESC`

	var faqs []support.FAQ
	if err := repo.db.SelectContext(ctx, &faqs, q); err != nil {
		return nil, errors.Wrap(err, "querying faqs")
	}
	return faqs, nil
}

func (repo *supportRepository) GetFAQByID(ctx context.Context, id string) (support.FAQ, error) {
	var faq support.FAQ
	q := `SELECT * FROM faq WHERE id = $1`
	if err := repo.db.GetContext(ctx, &faq, q, id); err != nil {
		if err == sql.ErrNoRows {
			return support.FAQ{}, support.ErrNotFound
		}
		return support.FAQ{}, errors.Wrap(err, "getting faq")
	}
	return faq, nil
}

func (repo *supportRepository) CreateFAQ(ctx context.Context, faq support.FAQ) (support.FAQ, error) {
	faq.ID = uuid.NewString()
	q := `
INSERT INTO faq (id, question, answer, "order", is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, q,
		faq.ID, faq.Question, faq.Answer, faq.Order, faq.IsActive, faq.CreatedAt, faq.UpdatedAt)
	if err != nil {
		return support.FAQ{}, errors.Wrap(err, "creating faq")
	}
	return faq, nil
}

func (repo *supportRepository) UpdateFAQ(ctx context.Context, faq support.FAQ) error {
	q := `
UPDATE faq
SET question = $1, answer = $2, "order" = $3, is_active = $4, updated_at = $5
WHERE id = $6`
	res, err := repo.db.ExecContext(ctx, q,
		faq.Question, faq.Answer, faq.Order, faq.IsActive, faq.UpdatedAt, faq.ID)
	if err != nil {
		return errors.Wrap(err, "updating faq")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return support.ErrNotFound
	}
	return nil
}

func (repo *supportRepository) DeleteFAQsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q := `DELETE FROM faq WHERE id = ANY($1)`
	if _, err := repo.db.ExecContext(ctx, q, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting faqs")
	}
	return nil
}

func (repo *supportRepository) QueryVideos(ctx context.Context, activeOnly bool) ([]support.Video, error) {
	q := `SELECT * FROM support_video`
	if activeOnly {
		q += ` WHERE is_active`
	}
	q += ` ORDER BY "order", created_at DESC`

	var vids []support.Video
	if err := repo.db.SelectContext(ctx, &vids, q); err != nil {
		return nil, errors.Wrap(err, "querying support videos")
	}
	return vids, nil
}

func (repo *supportRepository) GetVideoByID(ctx context.Context, id string) (support.Video, error) {
	var vid support.Video
	q := `SELECT * FROM support_video WHERE id = $1`
	if err := repo.db.GetContext(ctx, &vid, q, id); err != nil {
		if err == sql.ErrNoRows {
			return support.Video{}, support.ErrNotFound
		}
		return support.Video{}, errors.Wrap(err, "getting support video")
	}
	return vid, nil
}

func (repo *supportRepository) CreateVideo(ctx context.Context, vid support.Video) (support.Video, error) {
	vid.ID = uuid.NewString()
	q := `
INSERT INTO support_video (id, title, description, video_url, youtube_id, "order", is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, q,
		vid.ID, vid.Title, vid.Description, vid.VideoURL, vid.YouTubeID, vid.Order, vid.IsActive, vid.CreatedAt, vid.UpdatedAt)
	if err != nil {
		return support.Video{}, errors.Wrap(err, "creating support video")
	}
	return vid, nil
}

func (repo *supportRepository) UpdateVideo(ctx context.Context, vid support.Video) error {
	q := `
UPDATE support_video
SET title = $1, description = $2, video_url = $3, youtube_id = $4, "order" = $5, is_active = $6, updated_at = $7
WHERE id = $8`
	res, err := repo.db.ExecContext(ctx, q,
		vid.Title, vid.Description, vid.VideoURL, vid.YouTubeID, vid.Order, vid.IsActive, vid.UpdatedAt, vid.ID)
	if err != nil {
		return errors.Wrap(err, "updating support video")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return support.ErrNotFound
	}
	return nil
}

func (repo *supportRepository) DeleteVideosByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q := `DELETE FROM support_video WHERE id = ANY($1)`
	if _, err := repo.db.ExecContext(ctx, q, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting support videos")
	}
	return nil
}

func (repo *supportRepository) QueryRequests(ctx context.Context, filter support.QueryFilter) ([]support.Request, error) {
	q := `SELECT * FROM support_request WHERE 1=1`
	var args []interface{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		q += ` AND status = $1`
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		if len(args) == 1 {
			q += ` AND type = $1`
		} else {
			q += ` AND type = $2`
		}
	}
	q += ` ORDER BY created_at DESC`

	var reqs []support.Request
	if err := repo.db.SelectContext(ctx, &reqs, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying support requests")
	}
	return reqs, nil
}

func (repo *supportRepository) QueryRequestsForUser(ctx context.Context, userID string) ([]support.Request, error) {
	var reqs []support.Request
	q := `SELECT * FROM support_request WHERE user_id = $1 ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &reqs, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying user support requests")
	}
	return reqs, nil
}

func (repo *supportRepository) GetRequestByID(ctx context.Context, id string) (support.Request, error) {
	var req support.Request
	q := `SELECT * FROM support_request WHERE id = $1`
	if err := repo.db.GetContext(ctx, &req, q, id); err != nil {
		if err == sql.ErrNoRows {
			return support.Request{}, support.ErrNotFound
		}
		return support.Request{}, errors.Wrap(err, "getting support request")
	}
	return req, nil
}

func (repo *supportRepository) CreateRequest(ctx context.Context, req support.Request) (support.Request, error) {
	req.ID = uuid.NewString()
	q := `
INSERT INTO support_request (id, user_id, type, title, content, status, admin_response, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, q,
		req.ID, req.UserID, req.Type, req.Title, req.Content, req.Status, req.AdminResponse, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		return support.Request{}, errors.Wrap(err, "creating support request")
	}
	return req, nil
}

func (repo *supportRepository) UpdateRequest(ctx context.Context, req support.Request) error {
	q := `
UPDATE support_request
SET status = $1, admin_response = $2, updated_at = $3
WHERE id = $4`
	res, err := repo.db.ExecContext(ctx, q, req.Status, req.AdminResponse, req.UpdatedAt, req.ID)
	if err != nil {
		return errors.Wrap(err, "updating support request")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return support.ErrNotFound
	}
	return nil
}
