package course

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrNotFound        = errors.New("course not found")
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrNotEnrolled     = errors.New("not enrolled in course")
	ErrAlreadyEnrolled = errors.New("already enrolled in course")
)

// Repository persists courses, enrollments and lesson progress.
// Courses are keyed by slug, modules by (course, order) and lessons by
// (module, order) so that repeated catalog syncs update rows in place.
type Repository interface {
	QueryAllCourses(ctx context.Context) ([]Course, error)
	QueryCoursesForUser(ctx context.Context, userID string) ([]Course, error)
	GetCourseByID(ctx context.Context, id string) (Course, error)
	GetCourseBySlug(ctx context.Context, slug string) (Course, error)
	UpsertCourseBySlug(ctx context.Context, crs Course) (Course, error)
	DeleteCoursesByID(ctx context.Context, ids ...string) error

	GetModuleByOrder(ctx context.Context, courseID string, order int) (Module, error)
	CreateModule(ctx context.Context, mod Module) (Module, error)
	UpdateModule(ctx context.Context, mod Module) error

	GetLessonByID(ctx context.Context, id string) (Lesson, error)
	GetCourseIDForLesson(ctx context.Context, lessonID string) (string, error)
	GetLessonByOrder(ctx context.Context, moduleID string, order int) (Lesson, error)
	CreateLesson(ctx context.Context, lsn Lesson) (Lesson, error)
	UpdateLesson(ctx context.Context, lsn Lesson) error

	CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
	GetEnrollment(ctx context.Context, userID, courseID string) (Enrollment, error)
	QueryEnrollmentsForUser(ctx context.Context, userID string) ([]Enrollment, error)

	UpsertLessonProgress(ctx context.Context, prog LessonProgress) (LessonProgress, error)
	QueryLessonProgress(ctx context.Context, userID, courseID string) ([]LessonProgress, error)
	GetLessonProgress(ctx context.Context, userID, lessonID string) (LessonProgress, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// QueryAll returns the full catalog. Used by the admin surface.
func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

// CoursesForUser returns the courses the user is enrolled in.
func (svc *Service) CoursesForUser(ctx context.Context, userID string) ([]Course, error) {
	return svc.repo.QueryCoursesForUser(ctx, userID)
}

// GetByID returns a course with its modules and lessons, without any
// enrollment check. Used by the admin surface and the reconciler.
func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

// GetForUser returns a course with the user's per-lesson progress.
// Non-admin users must be enrolled.
func (svc *Service) GetForUser(ctx context.Context, userID, courseID string, isAdmin bool) (Course, []LessonProgress, error) {
	crs, err := svc.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		return Course{}, nil, err
	}
	if !isAdmin {
		if _, err = svc.repo.GetEnrollment(ctx, userID, courseID); err != nil {
			if errors.Cause(err) == ErrNotFound {
				return Course{}, nil, ErrNotEnrolled
			}
			return Course{}, nil, err
		}
	}
	prog, err := svc.repo.QueryLessonProgress(ctx, userID, courseID)
	if err != nil {
		return Course{}, nil, err
	}
	return crs, prog, nil
}

// Enroll grants the user access to a course. A duplicate enrollment
// returns the existing one with ErrAlreadyEnrolled; callers handling
// replayed payment events swallow that error.
func (svc *Service) Enroll(ctx context.Context, userID, courseID string) (Enrollment, error) {
	if enr, err := svc.repo.GetEnrollment(ctx, userID, courseID); err == nil {
		return enr, ErrAlreadyEnrolled
	} else if errors.Cause(err) != ErrNotFound {
		return Enrollment{}, err
	}
	if _, err := svc.repo.GetCourseByID(ctx, courseID); err != nil {
		return Enrollment{}, err
	}
	enr := Enrollment{
		UserID:    userID,
		CourseID:  courseID,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateEnrollment(ctx, enr)
}

// SaveProgress upserts the user's progress on a lesson. The user must be
// enrolled in the lesson's course.
func (svc *Service) SaveProgress(ctx context.Context, userID, lessonID string, up UpdateProgress) (LessonProgress, error) {
	if err := up.Validate(); err != nil {
		return LessonProgress{}, err
	}
	if _, err := svc.repo.GetLessonByID(ctx, lessonID); err != nil {
		return LessonProgress{}, err
	}
	courseID, err := svc.repo.GetCourseIDForLesson(ctx, lessonID)
	if err != nil {
		return LessonProgress{}, err
	}
	if _, err = svc.repo.GetEnrollment(ctx, userID, courseID); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return LessonProgress{}, ErrNotEnrolled
		}
		return LessonProgress{}, err
	}

	prog, err := svc.repo.GetLessonProgress(ctx, userID, lessonID)
	if err != nil && errors.Cause(err) != ErrNotFound {
		return LessonProgress{}, err
	}
	prog.UserID = userID
	prog.LessonID = lessonID
	if up.Progress != nil {
		prog.Progress = *up.Progress
	}
	if up.Completed != nil {
		prog.Completed = *up.Completed
	}
	if up.Notes != nil {
		prog.Notes = *up.Notes
	}
	prog.LastWatched = time.Now().UTC()
	return svc.repo.UpsertLessonProgress(ctx, prog)
}
