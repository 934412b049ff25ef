package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/darasa/core/support"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_supportApi_faq(t *testing.T) {
	admin := testutil.CreateUser(t, usrRepo, "FAQ Admin", "faq.admin@test.cd", "", user.RoleAdmin, true)
	token := getToken(t, admin)

	var created support.FAQ
	t.Run("admin creates", func(t *testing.T) {
		body := []byte(`{"question":"How do I enroll?","answer":"Ask an admin.","order":1}`)
		req, rec := newAuthRequest(http.MethodPost, "/api/admin/faq", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var resp struct {
			FAQ support.FAQ `json:"faq"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		created = resp.FAQ
		if !created.IsActive {
			t.Error("new FAQ should default to active")
		}
	})

	t.Run("validation", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/admin/faq", token, []byte(`{"question":"  "}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("public listing hides inactive entries", func(t *testing.T) {
		inactive := false
		body := marchallObj(t, support.NewFAQ{Question: "Hidden?", Answer: "Yes.", IsActive: &inactive})
		req, rec := newAuthRequest(http.MethodPost, "/api/admin/faq", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusCreated)
		}

		req, rec = newRequest(http.MethodGet, "/api/support/faq")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
		}
		var resp struct {
			FAQs []support.FAQ `json:"faqs"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		for _, f := range resp.FAQs {
			if f.Question == "Hidden?" {
				t.Error("inactive FAQ leaked into the public listing")
			}
		}
	})

	t.Run("admin updates and deletes", func(t *testing.T) {
		body := []byte(`{"question":"How do I enroll?","answer":"Via the admin screen.","order":1}`)
		req, rec := newAuthRequest(http.MethodPut, "/api/admin/faq/"+created.ID, token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodDelete, "/api/admin/faq/"+created.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusNoContent)
		}

		req, rec = newAuthRequest(http.MethodDelete, "/api/admin/faq/"+created.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
		}
	})
}

func Test_supportApi_videos(t *testing.T) {
	admin := testutil.CreateUser(t, usrRepo, "Video Admin", "video.admin@test.cd", "", user.RoleAdmin, true)
	token := getToken(t, admin)

	t.Run("create extracts the YouTube ID", func(t *testing.T) {
		body := []byte(`{"title":"Getting Started","video_url":"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}`)
		req, rec := newAuthRequest(http.MethodPost, "/api/admin/support-videos", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var resp struct {
			Video support.Video `json:"video"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if resp.Video.YouTubeID != "dQw4w9WgXcQ" {
			t.Errorf("YouTubeID = %q; want dQw4w9WgXcQ", resp.Video.YouTubeID)
		}
	})

	t.Run("rejects a non-URL", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/admin/support-videos", token, []byte(`{"title":"Bad","video_url":"not a url"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("public listing", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/support/videos")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusOK)
		}
	})
}

func Test_supportApi_requests(t *testing.T) {
	student := testutil.CreateUser(t, usrRepo, "Req Student", "req.student@test.cd", "", user.RoleStudent, true)
	other := testutil.CreateUser(t, usrRepo, "Req Other", "req.other@test.cd", "", user.RoleStudent, true)
	admin := testutil.CreateUser(t, usrRepo, "Req Admin", "req.admin@test.cd", "", user.RoleAdmin, true)

	studentToken := getToken(t, student)
	adminToken := getToken(t, admin)

	var created support.Request
	t.Run("student files a request", func(t *testing.T) {
		body := []byte(`{"type":"REQUEST","title":"More Go content","content":"Please add a generics course."}`)
		req, rec := newAuthRequest(http.MethodPost, "/api/support/requests", studentToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var resp struct {
			Request support.Request `json:"request"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		created = resp.Request
		if created.Status != support.StatusPending {
			t.Errorf("Status = %s; want %s", created.Status, support.StatusPending)
		}
		if created.UserID != student.ID {
			t.Errorf("UserID = %s; want %s", created.UserID, student.ID)
		}
	})

	t.Run("bad type is rejected", func(t *testing.T) {
		body := []byte(`{"type":"RANT","title":"Hmm","content":"..."}`)
		req, rec := newAuthRequest(http.MethodPost, "/api/support/requests", studentToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("users only see their own requests", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/support/requests", getToken(t, other))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
		}
		var resp struct {
			Requests []support.Request `json:"requests"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if len(resp.Requests) != 0 {
			t.Errorf("len(requests) = %d; want 0", len(resp.Requests))
		}
	})

	t.Run("admin filters by status", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/admin/requests?status=PENDING", adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
		}
		var resp struct {
			Requests []support.Request `json:"requests"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		var found bool
		for _, r := range resp.Requests {
			if r.ID == created.ID {
				found = true
			}
			if r.Status != support.StatusPending {
				t.Errorf("Status = %s; want %s", r.Status, support.StatusPending)
			}
		}
		if !found {
			t.Error("created request missing from the pending listing")
		}
	})

	t.Run("answer requires a response text", func(t *testing.T) {
		body := []byte(`{"status":"ANSWERED"}`)
		req, rec := newAuthRequest(http.MethodPost, "/api/admin/requests/"+created.ID+"/respond", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("admin answers", func(t *testing.T) {
		body := []byte(`{"status":"ANSWERED","admin_response":"A generics course is coming."}`)
		req, rec := newAuthRequest(http.MethodPost, "/api/admin/requests/"+created.ID+"/respond", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp struct {
			Request support.Request `json:"request"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if resp.Request.Status != support.StatusAnswered {
			t.Errorf("Status = %s; want %s", resp.Request.Status, support.StatusAnswered)
		}
		if resp.Request.AdminResponse == "" {
			t.Error("AdminResponse not saved")
		}
	})
}
