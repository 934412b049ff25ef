package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

// withTree attaches a course's ordered modules and lessons.
// callers must hold at least a read lock.
func (repo *courseRepository) withTree(crs course.Course) course.Course {
	var mods []course.Module
	for _, mod := range repo.db.modules {
		if mod.CourseID != crs.ID {
			continue
		}
		m := *mod
		var lessons []course.Lesson
		for _, lsn := range repo.db.lessons {
			if lsn.ModuleID == m.ID {
				lessons = append(lessons, *lsn)
			}
		}
		sort.Slice(lessons, func(i, j int) bool { return lessons[i].Order < lessons[j].Order })
		m.Lessons = lessons
		mods = append(mods, m)
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].Order < mods[j].Order })
	crs.Modules = mods
	return crs
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		courses = append(courses, repo.withTree(*crs))
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.Before(courses[j].CreatedAt) })
	return courses, nil
}

func (repo *courseRepository) QueryCoursesForUser(ctx context.Context, userID string) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var courses []course.Course
	for _, enr := range repo.db.enrollments {
		if enr.UserID != userID {
			continue
		}
		if crs, ok := repo.db.courses[enr.CourseID]; ok {
			courses = append(courses, repo.withTree(*crs))
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.Before(courses[j].CreatedAt) })
	return courses, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return repo.withTree(*crs), nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) GetCourseBySlug(ctx context.Context, slug string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, crs := range repo.db.courses {
		if crs.Slug == slug {
			return repo.withTree(*crs), nil
		}
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) UpsertCourseBySlug(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.courses {
		if existing.Slug == crs.Slug {
			existing.Title = crs.Title
			existing.Description = crs.Description
			existing.Thumbnail = crs.Thumbnail
			existing.Price = crs.Price
			existing.UpdatedAt = crs.UpdatedAt
			return *existing, nil
		}
	}
	crs.ID = uuid.NewString()
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.courses, id)
	}
	return nil
}

func (repo *courseRepository) GetModuleByOrder(ctx context.Context, courseID string, order int) (course.Module, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, mod := range repo.db.modules {
		if mod.CourseID == courseID && mod.Order == order {
			return *mod, nil
		}
	}
	return course.Module{}, course.ErrNotFound
}

func (repo *courseRepository) CreateModule(ctx context.Context, mod course.Module) (course.Module, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	mod.ID = uuid.NewString()
	repo.db.modules[mod.ID] = &mod
	return mod, nil
}

func (repo *courseRepository) UpdateModule(ctx context.Context, mod course.Module) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.modules[mod.ID]
	if !ok {
		return course.ErrNotFound
	}
	orig.Title = mod.Title
	orig.Description = mod.Description
	return nil
}

func (repo *courseRepository) GetLessonByID(ctx context.Context, id string) (course.Lesson, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if lsn, ok := repo.db.lessons[id]; ok {
		return *lsn, nil
	}
	return course.Lesson{}, course.ErrLessonNotFound
}

func (repo *courseRepository) GetCourseIDForLesson(ctx context.Context, lessonID string) (string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	lsn, ok := repo.db.lessons[lessonID]
	if !ok {
		return "", course.ErrLessonNotFound
	}
	mod, ok := repo.db.modules[lsn.ModuleID]
	if !ok {
		return "", course.ErrNotFound
	}
	return mod.CourseID, nil
}

func (repo *courseRepository) GetLessonByOrder(ctx context.Context, moduleID string, order int) (course.Lesson, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, lsn := range repo.db.lessons {
		if lsn.ModuleID == moduleID && lsn.Order == order {
			return *lsn, nil
		}
	}
	return course.Lesson{}, course.ErrLessonNotFound
}

func (repo *courseRepository) CreateLesson(ctx context.Context, lsn course.Lesson) (course.Lesson, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	lsn.ID = uuid.NewString()
	repo.db.lessons[lsn.ID] = &lsn
	return lsn, nil
}

func (repo *courseRepository) UpdateLesson(ctx context.Context, lsn course.Lesson) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.lessons[lsn.ID]
	if !ok {
		return course.ErrLessonNotFound
	}
	orig.Title = lsn.Title
	orig.Description = lsn.Description
	orig.VideoURL = lsn.VideoURL
	orig.YouTubeID = lsn.YouTubeID
	orig.Duration = lsn.Duration
	return nil
}

func (repo *courseRepository) CreateEnrollment(ctx context.Context, enr course.Enrollment) (course.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.enrollments {
		if existing.UserID == enr.UserID && existing.CourseID == enr.CourseID {
			return *existing, course.ErrAlreadyEnrolled
		}
	}
	enr.ID = uuid.NewString()
	repo.db.enrollments[enr.ID] = &enr
	return enr, nil
}

func (repo *courseRepository) GetEnrollment(ctx context.Context, userID, courseID string) (course.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, enr := range repo.db.enrollments {
		if enr.UserID == userID && enr.CourseID == courseID {
			return *enr, nil
		}
	}
	return course.Enrollment{}, course.ErrNotFound
}

func (repo *courseRepository) QueryEnrollmentsForUser(ctx context.Context, userID string) ([]course.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var enrs []course.Enrollment
	for _, enr := range repo.db.enrollments {
		if enr.UserID == userID {
			enrs = append(enrs, *enr)
		}
	}
	sort.Slice(enrs, func(i, j int) bool { return enrs[i].CreatedAt.Before(enrs[j].CreatedAt) })
	return enrs, nil
}

func (repo *courseRepository) UpsertLessonProgress(ctx context.Context, prog course.LessonProgress) (course.LessonProgress, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.progress {
		if existing.UserID == prog.UserID && existing.LessonID == prog.LessonID {
			existing.Progress = prog.Progress
			existing.Completed = prog.Completed
			existing.Notes = prog.Notes
			existing.LastWatched = prog.LastWatched
			return *existing, nil
		}
	}
	prog.ID = uuid.NewString()
	repo.db.progress[prog.ID] = &prog
	return prog, nil
}

func (repo *courseRepository) QueryLessonProgress(ctx context.Context, userID, courseID string) ([]course.LessonProgress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	lessonIDs := make(map[string]bool)
	for _, mod := range repo.db.modules {
		if mod.CourseID != courseID {
			continue
		}
		for _, lsn := range repo.db.lessons {
			if lsn.ModuleID == mod.ID {
				lessonIDs[lsn.ID] = true
			}
		}
	}

	var progs []course.LessonProgress
	for _, prog := range repo.db.progress {
		if prog.UserID == userID && lessonIDs[prog.LessonID] {
			progs = append(progs, *prog)
		}
	}
	return progs, nil
}

func (repo *courseRepository) GetLessonProgress(ctx context.Context, userID, lessonID string) (course.LessonProgress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, prog := range repo.db.progress {
		if prog.UserID == userID && prog.LessonID == lessonID {
			return *prog, nil
		}
	}
	return course.LessonProgress{}, course.ErrNotFound
}
