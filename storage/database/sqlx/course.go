package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/course"
)

// unique_violation; raised when natural keys collide on concurrent writes
const pqUniqueViolation = "23505"

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

// attachTrees loads ordered modules and lessons for the given courses.
func (repo *courseRepository) attachTrees(ctx context.Context, courses []course.Course) error {
	if len(courses) == 0 {
		return nil
	}
	ids := make([]string, 0, len(courses))
	byID := make(map[string]*course.Course, len(courses))
	for i := range courses {
		ids = append(ids, courses[i].ID)
		byID[courses[i].ID] = &courses[i]
	}

	var mods []course.Module
	q := `SELECT * FROM module WHERE course_id = ANY($1) ORDER BY "order"`
	if err := repo.db.SelectContext(ctx, &mods, q, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "querying modules")
	}
	if len(mods) == 0 {
		return nil
	}

	modIDs := make([]string, 0, len(mods))
	modByID := make(map[string]*course.Module, len(mods))
	for i := range mods {
		modIDs = append(modIDs, mods[i].ID)
		modByID[mods[i].ID] = &mods[i]
	}

	var lessons []course.Lesson
	q = `SELECT * FROM lesson WHERE module_id = ANY($1) ORDER BY "order"`
	if err := repo.db.SelectContext(ctx, &lessons, q, pq.Array(modIDs)); err != nil {
		return errors.Wrap(err, "querying lessons")
	}
	for _, lsn := range lessons {
		if mod, ok := modByID[lsn.ModuleID]; ok {
			mod.Lessons = append(mod.Lessons, lsn)
		}
	}
	for i := range mods {
		if crs, ok := byID[mods[i].CourseID]; ok {
			crs.Modules = append(crs.Modules, mods[i])
		}
	}
	return nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	var courses []course.Course
	q := `SELECT * FROM course ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &courses, q); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	if err := repo.attachTrees(ctx, courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (repo *courseRepository) QueryCoursesForUser(ctx context.Context, userID string) ([]course.Course, error) {
	var courses []course.Course
	q := `
SELECT c.* FROM course c
JOIN enrollment e ON e.course_id = c.id
WHERE e.user_id = $1
ORDER BY c.created_at`
	if err := repo.db.SelectContext(ctx, &courses, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying user courses")
	}
	if err := repo.attachTrees(ctx, courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var crs course.Course
	q := `SELECT * FROM course WHERE id = $1`
	if err := repo.db.GetContext(ctx, &crs, q, id); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	courses := []course.Course{crs}
	if err := repo.attachTrees(ctx, courses); err != nil {
		return course.Course{}, err
	}
	return courses[0], nil
}

func (repo *courseRepository) GetCourseBySlug(ctx context.Context, slug string) (course.Course, error) {
	var crs course.Course
	q := `SELECT * FROM course WHERE slug = $1`
	if err := repo.db.GetContext(ctx, &crs, q, slug); err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course by slug")
	}
	courses := []course.Course{crs}
	if err := repo.attachTrees(ctx, courses); err != nil {
		return course.Course{}, err
	}
	return courses[0], nil
}

func (repo *courseRepository) UpsertCourseBySlug(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.NewString()
	q := `
INSERT INTO course (id, slug, title, description, thumbnail, price, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (slug) DO UPDATE
SET title = EXCLUDED.title, description = EXCLUDED.description,
    thumbnail = EXCLUDED.thumbnail, price = EXCLUDED.price, updated_at = EXCLUDED.updated_at
RETURNING id, created_at`
	err := repo.db.QueryRowxContext(ctx, q,
		crs.ID, crs.Slug, crs.Title, crs.Description, crs.Thumbnail, crs.Price, crs.CreatedAt, crs.UpdatedAt,
	).Scan(&crs.ID, &crs.CreatedAt)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "upserting course")
	}
	return crs, nil
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q := `DELETE FROM course WHERE id = ANY($1)`
	if _, err := repo.db.ExecContext(ctx, q, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return nil
}

func (repo *courseRepository) GetModuleByOrder(ctx context.Context, courseID string, order int) (course.Module, error) {
	var mod course.Module
	q := `SELECT * FROM module WHERE course_id = $1 AND "order" = $2`
	if err := repo.db.GetContext(ctx, &mod, q, courseID, order); err != nil {
		if err == sql.ErrNoRows {
			return course.Module{}, course.ErrNotFound
		}
		return course.Module{}, errors.Wrap(err, "getting module")
	}
	return mod, nil
}

func (repo *courseRepository) CreateModule(ctx context.Context, mod course.Module) (course.Module, error) {
	mod.ID = uuid.NewString()
	q := `
INSERT INTO module (id, course_id, title, description, "order")
VALUES ($1, $2, $3, $4, $5)`
	_, err := repo.db.ExecContext(ctx, q, mod.ID, mod.CourseID, mod.Title, mod.Description, mod.Order)
	if err != nil {
		return course.Module{}, errors.Wrap(err, "creating module")
	}
	return mod, nil
}

func (repo *courseRepository) UpdateModule(ctx context.Context, mod course.Module) error {
	q := `UPDATE module SET title = $1, description = $2 WHERE id = $3`
	res, err := repo.db.ExecContext(ctx, q, mod.Title, mod.Description, mod.ID)
	if err != nil {
		return errors.Wrap(err, "updating module")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.ErrNotFound
	}
	return nil
}

func (repo *courseRepository) GetLessonByID(ctx context.Context, id string) (course.Lesson, error) {
	var lsn course.Lesson
	q := `SELECT * FROM lesson WHERE id = $1`
	if err := repo.db.GetContext(ctx, &lsn, q, id); err != nil {
		if err == sql.ErrNoRows {
			return course.Lesson{}, course.ErrLessonNotFound
		}
		return course.Lesson{}, errors.Wrap(err, "getting lesson")
	}
	return lsn, nil
}

func (repo *courseRepository) GetCourseIDForLesson(ctx context.Context, lessonID string) (string, error) {
	var courseID string
	q := `
SELECT m.course_id FROM lesson l
JOIN module m ON m.id = l.module_id
WHERE l.id = $1`
	if err := repo.db.GetContext(ctx, &courseID, q, lessonID); err != nil {
		if err == sql.ErrNoRows {
			return "", course.ErrLessonNotFound
		}
		return "", errors.Wrap(err, "getting lesson course")
	}
	return courseID, nil
}

func (repo *courseRepository) GetLessonByOrder(ctx context.Context, moduleID string, order int) (course.Lesson, error) {
	var lsn course.Lesson
	q := `SELECT * FROM lesson WHERE module_id = $1 AND "order" = $2`
	if err := repo.db.GetContext(ctx, &lsn, q, moduleID, order); err != nil {
		if err == sql.ErrNoRows {
			return course.Lesson{}, course.ErrLessonNotFound
		}
		return course.Lesson{}, errors.Wrap(err, "getting lesson by order")
	}
	return lsn, nil
}

func (repo *courseRepository) CreateLesson(ctx context.Context, lsn course.Lesson) (course.Lesson, error) {
	lsn.ID = uuid.NewString()
	q := `
INSERT INTO lesson (id, module_id, title, description, video_url, youtube_id, duration, "order")
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.ExecContext(ctx, q,
		lsn.ID, lsn.ModuleID, lsn.Title, lsn.Description, lsn.VideoURL, lsn.YouTubeID, lsn.Duration, lsn.Order)
	if err != nil {
		return course.Lesson{}, errors.Wrap(err, "creating lesson")
	}
	return lsn, nil
}

func (repo *courseRepository) UpdateLesson(ctx context.Context, lsn course.Lesson) error {
	q := `
UPDATE lesson
SET title = $1, description = $2, video_url = $3, youtube_id = $4, duration = $5
WHERE id = $6`
	res, err := repo.db.ExecContext(ctx, q,
		lsn.Title, lsn.Description, lsn.VideoURL, lsn.YouTubeID, lsn.Duration, lsn.ID)
	if err != nil {
		return errors.Wrap(err, "updating lesson")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return course.ErrLessonNotFound
	}
	return nil
}

func (repo *courseRepository) CreateEnrollment(ctx context.Context, enr course.Enrollment) (course.Enrollment, error) {
	enr.ID = uuid.NewString()
	q := `
INSERT INTO enrollment (id, user_id, course_id, created_at)
VALUES ($1, $2, $3, $4)`
	_, err := repo.db.ExecContext(ctx, q, enr.ID, enr.UserID, enr.CourseID, enr.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return repo.GetEnrollment(ctx, enr.UserID, enr.CourseID)
		}
		return course.Enrollment{}, errors.Wrap(err, "creating enrollment")
	}
	return enr, nil
}

func (repo *courseRepository) GetEnrollment(ctx context.Context, userID, courseID string) (course.Enrollment, error) {
	var enr course.Enrollment
	q := `SELECT * FROM enrollment WHERE user_id = $1 AND course_id = $2`
	if err := repo.db.GetContext(ctx, &enr, q, userID, courseID); err != nil {
		if err == sql.ErrNoRows {
			return course.Enrollment{}, course.ErrNotFound
		}
		return course.Enrollment{}, errors.Wrap(err, "getting enrollment")
	}
	return enr, nil
}

func (repo *courseRepository) QueryEnrollmentsForUser(ctx context.Context, userID string) ([]course.Enrollment, error) {
	var enrs []course.Enrollment
	q := `SELECT * FROM enrollment WHERE user_id = $1 ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &enrs, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	return enrs, nil
}

func (repo *courseRepository) UpsertLessonProgress(ctx context.Context, prog course.LessonProgress) (course.LessonProgress, error) {
	prog.ID = uuid.NewString()
	q := `
INSERT INTO lesson_progress (id, user_id, lesson_id, progress, completed, notes, last_watched)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (user_id, lesson_id) DO UPDATE
SET progress = EXCLUDED.progress, completed = EXCLUDED.completed,
    notes = EXCLUDED.notes, last_watched = EXCLUDED.last_watched
RETURNING id`
	err := repo.db.QueryRowxContext(ctx, q,
		prog.ID, prog.UserID, prog.LessonID, prog.Progress, prog.Completed, prog.Notes, prog.LastWatched,
	).Scan(&prog.ID)
	if err != nil {
		return course.LessonProgress{}, errors.Wrap(err, "upserting lesson progress")
	}
	return prog, nil
}

func (repo *courseRepository) QueryLessonProgress(ctx context.Context, userID, courseID string) ([]course.LessonProgress, error) {
	var progs []course.LessonProgress
	q := `
SELECT p.* FROM lesson_progress p
JOIN lesson l ON l.id = p.lesson_id
JOIN module m ON m.id = l.module_id
WHERE p.user_id = $1 AND m.course_id = $2`
	if err := repo.db.SelectContext(ctx, &progs, q, userID, courseID); err != nil {
		return nil, errors.Wrap(err, "querying lesson progress")
	}
	return progs, nil
}

func (repo *courseRepository) GetLessonProgress(ctx context.Context, userID, lessonID string) (course.LessonProgress, error) {
	var prog course.LessonProgress
	q := `SELECT * FROM lesson_progress WHERE user_id = $1 AND lesson_id = $2`
	if err := repo.db.GetContext(ctx, &prog, q, userID, lessonID); err != nil {
		if err == sql.ErrNoRows {
			return course.LessonProgress{}, course.ErrNotFound
		}
		return course.LessonProgress{}, errors.Wrap(err, "getting lesson progress")
	}
	return prog, nil
}
