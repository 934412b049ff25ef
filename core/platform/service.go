package platform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
)

// Repository persists sync run records.
type Repository interface {
	CreateSyncLog(ctx context.Context, log SyncLog) (SyncLog, error)
	QuerySyncLogs(ctx context.Context, limit int) ([]SyncLog, error)
}

// Service reconciles the local catalog against the external platform.
type Service struct {
	client     Client
	courseRepo course.Repository
	repo       Repository
	logger     core.Logger
	metrics    *Metrics
}

func NewService(client Client, courseRepo course.Repository, repo Repository, logger core.Logger, metrics *Metrics) *Service {
	return &Service{
		client:     client,
		courseRepo: courseRepo,
		repo:       repo,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run performs one reconciliation pass and records exactly one SyncLog row.
// A fetch failure aborts the run. A single course failing is contained: the
// error is recorded and the remaining courses still sync.
func (svc *Service) Run(ctx context.Context) (Result, error) {
	var res Result

	start := time.Now()
	catalog, err := svc.client.Catalog(ctx)
	svc.metrics.observeFetch(time.Since(start).Seconds())
	if err != nil {
		svc.record(ctx, SyncStatusFailed, res, err.Error())
		return res, err
	}

	var errs []string
	for _, ext := range catalog {
		if err = ctx.Err(); err != nil {
			svc.record(ctx, SyncStatusFailed, res, err.Error())
			return res, err
		}
		if err = svc.syncCourse(ctx, ext, &res); err != nil {
			msg := fmt.Sprintf("Error syncing course %s: %v", ext.Title, err)
			svc.logger.Error(msg)
			errs = append(errs, msg)
			continue
		}
		res.CoursesSynced++
	}

	status := SyncStatusSuccess
	if len(errs) > 0 {
		status = SyncStatusPartial
	}
	res.Success = len(errs) == 0
	res.Errors = errs
	svc.record(ctx, status, res, strings.Join(errs, "; "))
	svc.logger.Info(fmt.Sprintf("sync %s: %d courses, %d lessons", status, res.CoursesSynced, res.LessonsSynced))
	return res, nil
}

// QueryLogs returns the most recent sync runs, newest first.
func (svc *Service) QueryLogs(ctx context.Context, limit int) ([]SyncLog, error) {
	return svc.repo.QuerySyncLogs(ctx, limit)
}

func (svc *Service) syncCourse(ctx context.Context, ext ExternalCourse, res *Result) error {
	now := time.Now().UTC()
	crs, err := svc.courseRepo.UpsertCourseBySlug(ctx, course.Course{
		Slug:        course.Slugify(ext.Title),
		Title:       ext.Title,
		Description: ext.Description,
		Thumbnail:   ext.Thumbnail,
		Price:       ext.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return err
	}

	for _, extMod := range ext.Modules {
		mod, err := svc.syncModule(ctx, crs.ID, extMod)
		if err != nil {
			return err
		}
		for _, extLsn := range extMod.Lessons {
			if err = svc.syncLesson(ctx, mod.ID, extLsn); err != nil {
				return err
			}
			res.LessonsSynced++
		}
	}
	return nil
}

func (svc *Service) syncModule(ctx context.Context, courseID string, ext ExternalModule) (course.Module, error) {
	mod, err := svc.courseRepo.GetModuleByOrder(ctx, courseID, ext.Order)
	switch errors.Cause(err) {
	case nil:
		mod.Title = ext.Title
		mod.Description = ext.Description
		return mod, svc.courseRepo.UpdateModule(ctx, mod)
	case course.ErrNotFound:
		return svc.courseRepo.CreateModule(ctx, course.Module{
			CourseID:    courseID,
			Title:       ext.Title,
			Description: ext.Description,
			Order:       ext.Order,
		})
	default:
		return course.Module{}, err
	}
}

func (svc *Service) syncLesson(ctx context.Context, moduleID string, ext ExternalLesson) error {
	ytID := ext.YouTubeID
	if ytID == "" {
		ytID = course.ExtractYouTubeID(ext.VideoURL)
	}

	lsn, err := svc.courseRepo.GetLessonByOrder(ctx, moduleID, ext.Order)
	switch errors.Cause(err) {
	case nil:
		lsn.Title = ext.Title
		lsn.Description = ext.Description
		lsn.VideoURL = ext.VideoURL
		lsn.YouTubeID = ytID
		lsn.Duration = ext.Duration
		return svc.courseRepo.UpdateLesson(ctx, lsn)
	case course.ErrLessonNotFound:
		_, err = svc.courseRepo.CreateLesson(ctx, course.Lesson{
			ModuleID:    moduleID,
			Title:       ext.Title,
			Description: ext.Description,
			VideoURL:    ext.VideoURL,
			YouTubeID:   ytID,
			Duration:    ext.Duration,
			Order:       ext.Order,
		})
		return err
	default:
		return err
	}
}

// record writes the run's SyncLog row. Failing to record a run is logged
// but never fails the run itself.
func (svc *Service) record(ctx context.Context, status string, res Result, errMsg string) {
	svc.metrics.observeRun(status, res.CoursesSynced, res.LessonsSynced)
	_, err := svc.repo.CreateSyncLog(ctx, SyncLog{
		Status:        status,
		CoursesSynced: res.CoursesSynced,
		LessonsSynced: res.LessonsSynced,
		Error:         errMsg,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		svc.logger.Error(fmt.Sprintf("recording sync log: %v", err))
	}
}
