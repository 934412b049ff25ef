package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/platform"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func externalCatalog() []platform.ExternalCourse {
	return []platform.ExternalCourse{
		{
			ID:    "ext-101",
			Title: "Synced Kubernetes",
			Price: 99,
			Modules: []platform.ExternalModule{
				{
					ID: "ext-m1", Title: "Pods", Order: 1,
					Lessons: []platform.ExternalLesson{
						{ID: "ext-l1", Title: "What is a Pod", VideoURL: "https://youtu.be/abc123def45", Order: 1},
						{ID: "ext-l2", Title: "Deployments", YouTubeID: "xyz789abc12", Order: 2},
					},
				},
			},
		},
	}
}

func Test_syncApi(t *testing.T) {
	admin := testutil.CreateUser(t, usrRepo, "Sync Admin", "sync.admin@test.cd", "", user.RoleAdmin, true)
	student := testutil.CreateUser(t, usrRepo, "Sync Student", "sync.student@test.cd", "", user.RoleStudent, true)

	catalog.courses = externalCatalog()
	catalog.err = nil

	t.Run("student cannot trigger a sync", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/sync", getToken(t, student))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("admin sync run", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/sync", getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		var res platform.Result
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if !res.Success {
			t.Error("Success = false; want true")
		}
		if res.CoursesSynced != 1 || res.LessonsSynced != 2 {
			t.Errorf("synced %d/%d; want 1/2", res.CoursesSynced, res.LessonsSynced)
		}
	})

	t.Run("cron without secret", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/cron/sync")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("cron with wrong secret", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/cron/sync")
		req.Header.Set("Authorization", "Bearer lol")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("cron run", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/cron/sync")
		req.Header.Set("Authorization", "Bearer "+conf.CronSecret)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
	})

	t.Run("fetch failure reports details", func(t *testing.T) {
		catalog.err = errors.New("upstream exploded")
		defer func() { catalog.err = nil }()

		req, rec := newAuthRequest(http.MethodPost, "/api/sync", getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusInternalServerError)
		}
		var resp struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if resp.Details == "" {
			t.Error("Details missing")
		}
	})

	t.Run("sync logs", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/sync/logs?limit=5", getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp struct {
			Logs []platform.SyncLog `json:"logs"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if len(resp.Logs) == 0 {
			t.Fatal("no sync logs recorded")
		}
		if latest := resp.Logs[0]; latest.Status != platform.SyncStatusFailed {
			t.Errorf("latest Status = %s; want %s", latest.Status, platform.SyncStatusFailed)
		}
	})
}
