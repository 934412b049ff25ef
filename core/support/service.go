package support

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/course"
)

var ErrNotFound = errors.New("not found")

type Repository interface {
	QueryFAQs(ctx context.Context, activeOnly bool) ([]FAQ, error)
	GetFAQByID(ctx context.Context, id string) (FAQ, error)
	CreateFAQ(ctx context.Context, faq FAQ) (FAQ, error)
	UpdateFAQ(ctx context.Context, faq FAQ) error
	DeleteFAQsByID(ctx context.Context, ids ...string) error

	QueryVideos(ctx context.Context, activeOnly bool) ([]Video, error)
	GetVideoByID(ctx context.Context, id string) (Video, error)
	CreateVideo(ctx context.Context, vid Video) (Video, error)
	UpdateVideo(ctx context.Context, vid Video) error
	DeleteVideosByID(ctx context.Context, ids ...string) error

	QueryRequests(ctx context.Context, filter QueryFilter) ([]Request, error)
	QueryRequestsForUser(ctx context.Context, userID string) ([]Request, error)
	GetRequestByID(ctx context.Context, id string) (Request, error)
	CreateRequest(ctx context.Context, req Request) (Request, error)
	UpdateRequest(ctx context.Context, req Request) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// PublicFAQs returns active FAQs ordered for display.
func (svc *Service) PublicFAQs(ctx context.Context) ([]FAQ, error) {
	return svc.repo.QueryFAQs(ctx, true)
}

func (svc *Service) AllFAQs(ctx context.Context) ([]FAQ, error) {
	return svc.repo.QueryFAQs(ctx, false)
}

func (svc *Service) CreateFAQ(ctx context.Context, nf NewFAQ) (FAQ, error) {
	if err := nf.Validate(); err != nil {
		return FAQ{}, err
	}
	now := time.Now().UTC()
	faq := FAQ{
		Question:  nf.Question,
		Answer:    nf.Answer,
		Order:     nf.Order,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if nf.IsActive != nil {
		faq.IsActive = *nf.IsActive
	}
	return svc.repo.CreateFAQ(ctx, faq)
}

func (svc *Service) UpdateFAQ(ctx context.Context, id string, nf NewFAQ) (FAQ, error) {
	if err := nf.Validate(); err != nil {
		return FAQ{}, err
	}
	faq, err := svc.repo.GetFAQByID(ctx, id)
	if err != nil {
		return FAQ{}, err
	}
	faq.Question = nf.Question
	faq.Answer = nf.Answer
	faq.Order = nf.Order
	if nf.IsActive != nil {
		faq.IsActive = *nf.IsActive
	}
	faq.UpdatedAt = time.Now().UTC()
	return faq, svc.repo.UpdateFAQ(ctx, faq)
}

func (svc *Service) DeleteFAQ(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if _, err := svc.repo.GetFAQByID(ctx, id); err != nil {
			return err
		}
	}
	return svc.repo.DeleteFAQsByID(ctx, ids...)
}

// PublicVideos returns active support videos ordered for display.
func (svc *Service) PublicVideos(ctx context.Context) ([]Video, error) {
	return svc.repo.QueryVideos(ctx, true)
}

func (svc *Service) AllVideos(ctx context.Context) ([]Video, error) {
	return svc.repo.QueryVideos(ctx, false)
}

func (svc *Service) CreateVideo(ctx context.Context, nv NewVideo) (Video, error) {
	if err := nv.Validate(); err != nil {
		return Video{}, err
	}
	now := time.Now().UTC()
	vid := Video{
		Title:       nv.Title,
		Description: nv.Description,
		VideoURL:    nv.VideoURL,
		YouTubeID:   course.ExtractYouTubeID(nv.VideoURL),
		Order:       nv.Order,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if nv.IsActive != nil {
		vid.IsActive = *nv.IsActive
	}
	return svc.repo.CreateVideo(ctx, vid)
}

func (svc *Service) UpdateVideo(ctx context.Context, id string, nv NewVideo) (Video, error) {
	if err := nv.Validate(); err != nil {
		return Video{}, err
	}
	vid, err := svc.repo.GetVideoByID(ctx, id)
	if err != nil {
		return Video{}, err
	}
	vid.Title = nv.Title
	vid.Description = nv.Description
	vid.VideoURL = nv.VideoURL
	vid.YouTubeID = course.ExtractYouTubeID(nv.VideoURL)
	vid.Order = nv.Order
	if nv.IsActive != nil {
		vid.IsActive = *nv.IsActive
	}
	vid.UpdatedAt = time.Now().UTC()
	return vid, svc.repo.UpdateVideo(ctx, vid)
}

func (svc *Service) DeleteVideo(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if _, err := svc.repo.GetVideoByID(ctx, id); err != nil {
			return err
		}
	}
	return svc.repo.DeleteVideosByID(ctx, ids...)
}

// CreateRequest opens a support request on behalf of a user.
func (svc *Service) CreateRequest(ctx context.Context, userID string, nr NewRequest) (Request, error) {
	if err := nr.Validate(); err != nil {
		return Request{}, err
	}
	now := time.Now().UTC()
	req := Request{
		UserID:    userID,
		Type:      nr.Type,
		Title:     nr.Title,
		Content:   nr.Content,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateRequest(ctx, req)
}

// RequestsForUser lists the user's own support requests, newest first.
func (svc *Service) RequestsForUser(ctx context.Context, userID string) ([]Request, error) {
	return svc.repo.QueryRequestsForUser(ctx, userID)
}

// FilterRequests lists support requests for the admin surface.
func (svc *Service) FilterRequests(ctx context.Context, filter QueryFilter) ([]Request, error) {
	return svc.repo.QueryRequests(ctx, filter)
}

// Respond records an admin's answer and moves the request out of PENDING.
func (svc *Service) Respond(ctx context.Context, id string, rr RespondRequest) (Request, error) {
	if err := rr.Validate(); err != nil {
		return Request{}, err
	}
	req, err := svc.repo.GetRequestByID(ctx, id)
	if err != nil {
		return Request{}, err
	}
	req.Status = rr.Status
	if rr.AdminResponse != "" {
		req.AdminResponse = rr.AdminResponse
	}
	req.UpdatedAt = time.Now().UTC()
	return req, svc.repo.UpdateRequest(ctx, req)
}
