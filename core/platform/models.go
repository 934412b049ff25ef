package platform

import "time"

// External DTOs mirror the course platform's wire format.

type ExternalCourse struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Thumbnail   string           `json:"thumbnail"`
	Price       float64          `json:"price"`
	Modules     []ExternalModule `json:"modules"`
}

type ExternalModule struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Order       int              `json:"order"`
	Lessons     []ExternalLesson `json:"lessons"`
}

type ExternalLesson struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"video_url"`
	YouTubeID   string `json:"youtube_id"`
	Duration    int    `json:"duration"`
	Order       int    `json:"order"`
}

const (
	SyncStatusSuccess = "success"
	SyncStatusPartial = "partial"
	SyncStatusFailed  = "failed"
)

// SyncLog records one reconciliation run. Append-only.
type SyncLog struct {
	ID            string    `json:"id"`
	Status        string    `json:"status"`
	CoursesSynced int       `json:"courses_synced"`
	LessonsSynced int       `json:"lessons_synced"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"` // UTC
}

// Result is what a sync run reports back to its trigger.
type Result struct {
	Success       bool     `json:"success"`
	CoursesSynced int      `json:"coursesSynced"`
	LessonsSynced int      `json:"lessonsSynced"`
	Errors        []string `json:"errors,omitempty"`
}
