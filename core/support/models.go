package support

import (
	"time"

	"github.com/trezcool/darasa/core"
)

const (
	RequestTypeRequest = "REQUEST"
	RequestTypeDebate  = "DEBATE"

	StatusPending  = "PENDING"
	StatusAnswered = "ANSWERED"
	StatusClosed   = "CLOSED"
)

type FAQ struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Order     int       `json:"order"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type Video struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	VideoURL    string    `json:"video_url"`
	YouTubeID   string    `json:"youtube_id,omitempty" db:"youtube_id"`
	Order       int       `json:"order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type Request struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Status        string    `json:"status"`
	AdminResponse string    `json:"admin_response,omitempty"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

type NewFAQ struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
	Order    int    `json:"order"`
	IsActive *bool  `json:"is_active"`
}

func (f *NewFAQ) Validate() error {
	f.Question = core.CleanString(f.Question)
	f.Answer = core.CleanString(f.Answer)
	return core.Validate.Struct(f)
}

type NewVideo struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url" validate:"required,url"`
	Order       int    `json:"order"`
	IsActive    *bool  `json:"is_active"`
}

func (v *NewVideo) Validate() error {
	v.Title = core.CleanString(v.Title)
	v.VideoURL = core.CleanString(v.VideoURL)
	return core.Validate.Struct(v)
}

type NewRequest struct {
	Type    string `json:"type" validate:"required,oneof=REQUEST DEBATE"`
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

func (r *NewRequest) Validate() error {
	r.Type = core.CleanString(r.Type)
	r.Title = core.CleanString(r.Title)
	r.Content = core.CleanString(r.Content)
	return core.Validate.Struct(r)
}

// RespondRequest is an admin's answer to a support request.
type RespondRequest struct {
	Status        string `json:"status" validate:"required,oneof=ANSWERED CLOSED"`
	AdminResponse string `json:"admin_response" validate:"required_if=Status ANSWERED"`
}

func (r *RespondRequest) Validate() error {
	r.Status = core.CleanString(r.Status)
	r.AdminResponse = core.CleanString(r.AdminResponse)
	return core.Validate.Struct(r)
}

// QueryFilter narrows admin support request listings.
type QueryFilter struct {
	Status string `query:"status"`
	Type   string `query:"type"`
}

func (f QueryFilter) IsEmpty() bool { return f == QueryFilter{} }
