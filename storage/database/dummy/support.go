package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/support"
)

type supportRepository struct {
	db *supportTable
}

var _ support.Repository = (*supportRepository)(nil) // interface compliance check

func NewSupportRepository(db *DB) support.Repository {
	return &supportRepository{db: db.support}
}

func (repo *supportRepository) QueryFAQs(ctx context.Context, activeOnly bool) ([]support.FAQ, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var faqs []support.FAQ
	for _, faq := range repo.db.faqs {
		if activeOnly && !faq.IsActive {
			continue
		}
		faqs = append(faqs, *faq)
	}
	sort.Slice(faqs, func(i, j int) bool {
		if faqs[i].Order != faqs[j].Order {
			return faqs[i].Order < faqs[j].Order
		}
		return faqs[i].CreatedAt.After(faqs[j].CreatedAt)
	})
	return faqs, nil
}

func (repo *supportRepository) GetFAQByID(ctx context.Context, id string) (support.FAQ, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if faq, ok := repo.db.faqs[id]; ok {
		return *faq, nil
	}
	return support.FAQ{}, support.ErrNotFound
}

func (repo *supportRepository) CreateFAQ(ctx context.Context, faq support.FAQ) (support.FAQ, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	faq.ID = uuid.NewString()
	repo.db.faqs[faq.ID] = &faq
	return faq, nil
}

func (repo *supportRepository) UpdateFAQ(ctx context.Context, faq support.FAQ) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.faqs[faq.ID]; !ok {
		return support.ErrNotFound
	}
	repo.db.faqs[faq.ID] = &faq
	return nil
}

func (repo *supportRepository) DeleteFAQsByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.faqs, id)
	}
	return nil
}

func (repo *supportRepository) QueryVideos(ctx context.Context, activeOnly bool) ([]support.Video, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var vids []support.Video
	for _, vid := range repo.db.videos {
		if activeOnly && !vid.IsActive {
			continue
		}
		vids = append(vids, *vid)
	}
	sort.Slice(vids, func(i, j int) bool {
		if vids[i].Order != vids[j].Order {
			return vids[i].Order < vids[j].Order
		}
		return vids[i].CreatedAt.After(vids[j].CreatedAt)
	})
	return vids, nil
}

func (repo *supportRepository) GetVideoByID(ctx context.Context, id string) (support.Video, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if vid, ok := repo.db.videos[id]; ok {
		return *vid, nil
	}
	return support.Video{}, support.ErrNotFound
}

func (repo *supportRepository) CreateVideo(ctx context.Context, vid support.Video) (support.Video, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	vid.ID = uuid.NewString()
	repo.db.videos[vid.ID] = &vid
	return vid, nil
}

func (repo *supportRepository) UpdateVideo(ctx context.Context, vid support.Video) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.videos[vid.ID]; !ok {
		return support.ErrNotFound
	}
	repo.db.videos[vid.ID] = &vid
	return nil
}

func (repo *supportRepository) DeleteVideosByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.videos, id)
	}
	return nil
}

func (repo *supportRepository) QueryRequests(ctx context.Context, filter support.QueryFilter) ([]support.Request, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var reqs []support.Request
	for _, req := range repo.db.requests {
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.Type != "" && req.Type != filter.Type {
			continue
		}
		reqs = append(reqs, *req)
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].CreatedAt.After(reqs[j].CreatedAt) })
	return reqs, nil
}

func (repo *supportRepository) QueryRequestsForUser(ctx context.Context, userID string) ([]support.Request, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var reqs []support.Request
	for _, req := range repo.db.requests {
		if req.UserID == userID {
			reqs = append(reqs, *req)
		}
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].CreatedAt.After(reqs[j].CreatedAt) })
	return reqs, nil
}

func (repo *supportRepository) GetRequestByID(ctx context.Context, id string) (support.Request, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if req, ok := repo.db.requests[id]; ok {
		return *req, nil
	}
	return support.Request{}, support.ErrNotFound
}

func (repo *supportRepository) CreateRequest(ctx context.Context, req support.Request) (support.Request, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	req.ID = uuid.NewString()
	repo.db.requests[req.ID] = &req
	return req, nil
}

func (repo *supportRepository) UpdateRequest(ctx context.Context, req support.Request) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.requests[req.ID]; !ok {
		return support.ErrNotFound
	}
	repo.db.requests[req.ID] = &req
	return nil
}
