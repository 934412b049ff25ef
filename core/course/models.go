package course

import (
	"time"

	"github.com/trezcool/darasa/core"
)

type Course struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC

	Modules []Module `json:"modules,omitempty"`
}

type Module struct {
	ID          string `json:"id"`
	CourseID    string `json:"course_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`

	Lessons []Lesson `json:"lessons,omitempty"`
}

type Lesson struct {
	ID          string `json:"id"`
	ModuleID    string `json:"module_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	VideoURL    string `json:"video_url"`
	YouTubeID   string `json:"youtube_id,omitempty" db:"youtube_id"`
	Duration    int    `json:"duration,omitempty"` // seconds
	Order       int    `json:"order"`
}

type Enrollment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CourseID  string    `json:"course_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type LessonProgress struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	LessonID    string    `json:"lesson_id"`
	Progress    int       `json:"progress"` // 0 - 100
	Completed   bool      `json:"completed"`
	Notes       string    `json:"notes,omitempty"`
	LastWatched time.Time `json:"last_watched"` // UTC
}

// UpdateProgress defines the partial progress update a student may submit.
// nil fields are left untouched.
type UpdateProgress struct {
	Progress  *int    `json:"progress" validate:"omitempty,min=0,max=100"`
	Completed *bool   `json:"completed"`
	Notes     *string `json:"notes"`
}

func (up UpdateProgress) Validate() error { return core.Validate.Struct(up) }
