package platform_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/platform"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

type fakeClient struct {
	catalog []platform.ExternalCourse
	err     error
}

func (c *fakeClient) Catalog(ctx context.Context) ([]platform.ExternalCourse, error) {
	return c.catalog, c.err
}

// failingCourseRepo fails course upserts for one slug.
type failingCourseRepo struct {
	course.Repository
	failSlug string
}

func (repo *failingCourseRepo) UpsertCourseBySlug(ctx context.Context, crs course.Course) (course.Course, error) {
	if crs.Slug == repo.failSlug {
		return course.Course{}, errors.New("db down")
	}
	return repo.Repository.UpsertCourseBySlug(ctx, crs)
}

func testCatalog() []platform.ExternalCourse {
	return []platform.ExternalCourse{
		{
			ID: "ext-1", Title: "Intro to Go", Description: "basics", Price: 49.99,
			Modules: []platform.ExternalModule{
				{
					ID: "ext-m1", Title: "Getting Started", Order: 1,
					Lessons: []platform.ExternalLesson{
						{ID: "ext-l1", Title: "Hello", VideoURL: "https://youtu.be/abc123XYZ_-", Duration: 300, Order: 1},
						{ID: "ext-l2", Title: "Types", VideoURL: "https://youtube.com/watch?v=def456UVW_-", Duration: 600, Order: 2},
					},
				},
			},
		},
		{
			ID: "ext-2", Title: "Advanced Go", Description: "deep dive", Price: 99.99,
			Modules: []platform.ExternalModule{
				{
					ID: "ext-m2", Title: "Concurrency", Order: 1,
					Lessons: []platform.ExternalLesson{
						{ID: "ext-l3", Title: "Goroutines", VideoURL: "https://youtube.com/embed/ghi789RST_-", Duration: 900, Order: 1},
					},
				},
			},
		},
	}
}

func newTestService(t *testing.T, client platform.Client, courseRepo course.Repository) (*platform.Service, course.Repository, platform.Repository) {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)
	if courseRepo == nil {
		courseRepo = dummydb.NewCourseRepository(db)
	}
	syncRepo := dummydb.NewSyncLogRepository(db)
	svc := platform.NewService(client, courseRepo, syncRepo, nopLogger{}, nil)
	return svc, courseRepo, syncRepo
}

func TestServiceRun(t *testing.T) {
	ctx := context.Background()

	t.Run("syncs full catalog", func(t *testing.T) {
		svc, courseRepo, syncRepo := newTestService(t, &fakeClient{catalog: testCatalog()}, nil)

		res, err := svc.Run(ctx)
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, 2, res.CoursesSynced)
		assert.Equal(t, 3, res.LessonsSynced)
		assert.Empty(t, res.Errors)

		courses, err := courseRepo.QueryAllCourses(ctx)
		require.NoError(t, err)
		require.Len(t, courses, 2)

		crs, err := courseRepo.GetCourseBySlug(ctx, "intro-to-go")
		require.NoError(t, err)
		require.Len(t, crs.Modules, 1)
		require.Len(t, crs.Modules[0].Lessons, 2)
		assert.Equal(t, "abc123XYZ_-", crs.Modules[0].Lessons[0].YouTubeID)
		assert.Equal(t, "def456UVW_-", crs.Modules[0].Lessons[1].YouTubeID)

		logs, err := syncRepo.QuerySyncLogs(ctx, 0)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, platform.SyncStatusSuccess, logs[0].Status)
		assert.Equal(t, 2, logs[0].CoursesSynced)
		assert.Equal(t, 3, logs[0].LessonsSynced)
		assert.Empty(t, logs[0].Error)
	})

	t.Run("is idempotent across runs", func(t *testing.T) {
		svc, courseRepo, syncRepo := newTestService(t, &fakeClient{catalog: testCatalog()}, nil)

		res1, err := svc.Run(ctx)
		require.NoError(t, err)
		res2, err := svc.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, res1.CoursesSynced, res2.CoursesSynced)
		assert.Equal(t, res1.LessonsSynced, res2.LessonsSynced)

		// no duplicate rows; IDs stable across runs
		courses, err := courseRepo.QueryAllCourses(ctx)
		require.NoError(t, err)
		require.Len(t, courses, 2)
		crs1, err := courseRepo.GetCourseBySlug(ctx, "intro-to-go")
		require.NoError(t, err)

		_, err = svc.Run(ctx)
		require.NoError(t, err)
		crs2, err := courseRepo.GetCourseBySlug(ctx, "intro-to-go")
		require.NoError(t, err)
		assert.Equal(t, crs1.ID, crs2.ID)
		assert.Equal(t, crs1.Modules[0].ID, crs2.Modules[0].ID)
		assert.Equal(t, crs1.Modules[0].Lessons[0].ID, crs2.Modules[0].Lessons[0].ID)

		// one log row per run
		logs, err := syncRepo.QuerySyncLogs(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, logs, 3)
	})

	t.Run("contains per-course failures", func(t *testing.T) {
		catalog := testCatalog()
		catalog = append(catalog, platform.ExternalCourse{ID: "ext-3", Title: "Go Web Services", Price: 79.99})
		db, err := dummydb.Open()
		require.NoError(t, err)
		repo := &failingCourseRepo{
			Repository: dummydb.NewCourseRepository(db),
			failSlug:   "advanced-go",
		}
		svc, _, syncRepo := newTestService(t, &fakeClient{catalog: catalog}, repo)

		res, err := svc.Run(ctx)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, 2, res.CoursesSynced)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "Error syncing course Advanced Go")

		// courses 1 and 3 still persisted
		_, err = repo.GetCourseBySlug(ctx, "intro-to-go")
		assert.NoError(t, err)
		_, err = repo.GetCourseBySlug(ctx, "go-web-services")
		assert.NoError(t, err)
		_, err = repo.GetCourseBySlug(ctx, "advanced-go")
		assert.Equal(t, course.ErrNotFound, errors.Cause(err))

		logs, err := syncRepo.QuerySyncLogs(ctx, 0)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, platform.SyncStatusPartial, logs[0].Status)
		assert.Contains(t, logs[0].Error, "Advanced Go")
	})

	t.Run("rename updates course in place", func(t *testing.T) {
		catalog := testCatalog()
		svc, courseRepo, _ := newTestService(t, &fakeClient{catalog: catalog}, nil)
		_, err := svc.Run(ctx)
		require.NoError(t, err)

		orig, err := courseRepo.GetCourseBySlug(ctx, "intro-to-go")
		require.NoError(t, err)

		// description change keeps the slug, so the row updates in place
		catalog[0].Description = "updated basics"
		_, err = svc.Run(ctx)
		require.NoError(t, err)

		updated, err := courseRepo.GetCourseBySlug(ctx, "intro-to-go")
		require.NoError(t, err)
		assert.Equal(t, orig.ID, updated.ID)
		assert.Equal(t, "updated basics", updated.Description)
	})

	t.Run("title change that changes the slug creates a new course row", func(t *testing.T) {
		catalog := testCatalog()
		svc, courseRepo, _ := newTestService(t, &fakeClient{catalog: catalog}, nil)
		_, err := svc.Run(ctx)
		require.NoError(t, err)

		catalog[0].Title = "Intro to Golang"
		_, err = svc.Run(ctx)
		require.NoError(t, err)

		// old row remains, new row created under the new slug
		courses, err := courseRepo.QueryAllCourses(ctx)
		require.NoError(t, err)
		assert.Len(t, courses, 3)
		_, err = courseRepo.GetCourseBySlug(ctx, "intro-to-go")
		assert.NoError(t, err)
		_, err = courseRepo.GetCourseBySlug(ctx, "intro-to-golang")
		assert.NoError(t, err)
	})

	t.Run("fetch failure writes failed log and returns error", func(t *testing.T) {
		svc, _, syncRepo := newTestService(t, &fakeClient{err: errors.New("connection refused")}, nil)

		_, err := svc.Run(ctx)
		require.Error(t, err)

		logs, err := syncRepo.QuerySyncLogs(ctx, 0)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, platform.SyncStatusFailed, logs[0].Status)
		assert.Contains(t, logs[0].Error, "connection refused")
		assert.Zero(t, logs[0].CoursesSynced)
	})

	t.Run("empty catalog succeeds with zero counts", func(t *testing.T) {
		svc, _, syncRepo := newTestService(t, &fakeClient{}, nil)

		res, err := svc.Run(ctx)
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Zero(t, res.CoursesSynced)

		logs, err := syncRepo.QuerySyncLogs(ctx, 0)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, platform.SyncStatusSuccess, logs[0].Status)
	})
}
