package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateCourse persists a course with a single module holding the given lessons.
func CreateCourse(t *testing.T, repo course.Repository, title string, lessonTitles ...string) course.Course {
	t.Helper()
	ctx := context.Background()

	crs, err := repo.UpsertCourseBySlug(ctx, course.Course{
		Slug:  course.Slugify(title),
		Title: title,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}

	if len(lessonTitles) > 0 {
		mod, err := repo.CreateModule(ctx, course.Module{CourseID: crs.ID, Title: title + " basics", Order: 1})
		if err != nil {
			t.Fatalf("CreateCourse() failed: %v", err)
		}
		for i, lt := range lessonTitles {
			if _, err = repo.CreateLesson(ctx, course.Lesson{ModuleID: mod.ID, Title: lt, Order: i + 1}); err != nil {
				t.Fatalf("CreateCourse() failed: %v", err)
			}
		}
	}

	refreshed, err := repo.GetCourseByID(ctx, crs.ID)
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return refreshed
}

// Enroll enrolls the user into the course, failing the test on error.
func Enroll(t *testing.T, repo course.Repository, userID, courseID string) course.Enrollment {
	t.Helper()

	enr, err := repo.CreateEnrollment(context.Background(), course.Enrollment{UserID: userID, CourseID: courseID})
	if err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	return enr
}
