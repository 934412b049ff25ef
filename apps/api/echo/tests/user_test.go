package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_adminUserApi_query(t *testing.T) {
	admin := testutil.CreateUser(t, usrRepo, "Query Admin", "query.admin@test.cd", "", user.RoleAdmin, true)
	testutil.CreateUser(t, usrRepo, "Findme Jones", "findme@test.cd", "", user.RoleStudent, true)

	req, rec := newAuthRequest(http.MethodGet, "/api/admin/users?search=findme", getToken(t, admin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Users []user.User `json:"users"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if len(resp.Users) != 1 {
		t.Fatalf("len(users) = %d; want 1", len(resp.Users))
	}
	if resp.Users[0].Email != "findme@test.cd" {
		t.Errorf("Email = %s; want findme@test.cd", resp.Users[0].Email)
	}
}

func Test_adminUserApi_create(t *testing.T) {
	admin := testutil.CreateUser(t, usrRepo, "Create Admin", "create.admin@test.cd", "", user.RoleAdmin, true)
	crs := testutil.CreateCourse(t, courseRepo, "Welcome Course", "First Steps")
	token := getToken(t, admin)

	tests := []httpTest{
		{
			name:     "missing fields",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "short password",
			body:     []byte(`{"name":"New Kid","email":"new.kid@test.cd","password":"short"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "created",
			body:     []byte(`{"name":"New Kid","email":"new.kid@test.cd","password":"s3cret!!"}`),
			wantCode: http.StatusCreated,
		},
		{
			name:     "duplicate email",
			body:     []byte(`{"name":"New Kid","email":"new.kid@test.cd","password":"s3cret!!"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "a user with this email already exists"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/admin/users", token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("created with course enrollment and welcome email", func(t *testing.T) {
		body := []byte(`{"name":"Scholar","email":"scholar@test.cd","password":"s3cret!!","course_id":"` + crs.ID + `"}`)
		req, rec := newAuthRequest(http.MethodPost, "/api/admin/users", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}

		var resp struct {
			User user.User `json:"user"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}

		if _, err := courseRepo.GetEnrollment(context.Background(), resp.User.ID, crs.ID); err != nil {
			t.Errorf("GetEnrollment() failed: %v", err)
		}

		var welcome bool
		for _, msg := range emailsvc.SentMessages {
			for _, to := range msg.To {
				if to.Address == "scholar@test.cd" && strings.Contains(msg.TextContent, crs.Title) {
					welcome = true
				}
			}
		}
		if !welcome {
			t.Error("welcome email naming the course was not sent")
		}
	})
}

func Test_adminUserApi_destroy(t *testing.T) {
	admin := testutil.CreateUser(t, usrRepo, "Destroy Admin", "destroy.admin@test.cd", "", user.RoleAdmin, true)
	victim := testutil.CreateUser(t, usrRepo, "Victim", "victim@test.cd", "", user.RoleStudent, true)
	token := getToken(t, admin)

	tests := []httpTest{
		{
			name: "no self delete", path: "/api/admin/users/" + admin.ID,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied),
		},
		{
			name: "unknown user", path: "/api/admin/users/b0a0a0a0-0000-4000-8000-000000000000",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "deleted", path: "/api/admin/users/" + victim.ID, wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodDelete, tt.path, token)
			app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("code = %v; wantCode %v", rec.Code, tt.wantCode)
			}
		})
	}

	if _, err := usrRepo.GetUserByID(context.Background(), victim.ID); err == nil {
		t.Error("victim still exists")
	}
}

func Test_adminUserApi_enroll(t *testing.T) {
	admin := testutil.CreateUser(t, usrRepo, "Enroll Admin", "enroll.admin@test.cd", "", user.RoleAdmin, true)
	student := testutil.CreateUser(t, usrRepo, "Enrollee", "enrollee@test.cd", "", user.RoleStudent, true)
	crs := testutil.CreateCourse(t, courseRepo, "Enrollment Course", "Only Lesson")
	token := getToken(t, admin)

	path := "/api/admin/users/" + student.ID + "/enroll"
	body := marchallObj(t, map[string]string{"course_id": crs.ID})

	tests := []httpTest{
		{name: "enrolled", path: path, body: body, wantCode: http.StatusCreated},
		{
			name: "already enrolled", path: path, body: body,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"course_id": "already enrolled"}),
		},
		{
			name: "unknown user", path: "/api/admin/users/b0a0a0a0-0000-4000-8000-000000000000/enroll", body: body,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tt.path, token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	enrollments, err := courseSvc.CoursesForUser(context.Background(), student.ID)
	if err != nil {
		t.Fatalf("CoursesForUser() failed: %v", err)
	}
	if len(enrollments) != 1 {
		t.Errorf("len(enrollments) = %d; want 1", len(enrollments))
	}
}
