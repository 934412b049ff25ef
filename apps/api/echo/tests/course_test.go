package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_courseApi_query(t *testing.T) {
	student := testutil.CreateUser(t, usrRepo, "Course Student", "course.student@test.cd", "", user.RoleStudent, true)
	admin := testutil.CreateUser(t, usrRepo, "Course Admin", "course.admin@test.cd", "", user.RoleAdmin, true)

	goCrs := testutil.CreateCourse(t, courseRepo, "Intro to Go", "Hello World", "Packages")
	testutil.CreateCourse(t, courseRepo, "Advanced SQL", "Joins")
	testutil.Enroll(t, courseRepo, student.ID, goCrs.ID)

	t.Run("student sees only enrolled courses", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/courses", getToken(t, student))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
		}

		var resp struct {
			Courses []course.Course `json:"courses"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if len(resp.Courses) != 1 {
			t.Fatalf("len(courses) = %d; want 1", len(resp.Courses))
		}
		if resp.Courses[0].ID != goCrs.ID {
			t.Errorf("course ID = %s; want %s", resp.Courses[0].ID, goCrs.ID)
		}
	})

	t.Run("admin sees the whole catalog", func(t *testing.T) {
		all, err := courseRepo.QueryAllCourses(context.Background())
		if err != nil {
			t.Fatalf("QueryAllCourses() failed: %v", err)
		}

		req, rec := newAuthRequest(http.MethodGet, "/api/courses", getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v", rec.Code, http.StatusOK)
		}

		var resp struct {
			Courses []course.Course `json:"courses"`
		}
		if err = json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if len(resp.Courses) != len(all) {
			t.Errorf("len(courses) = %d; want %d", len(resp.Courses), len(all))
		}
	})
}

func Test_courseApi_get(t *testing.T) {
	student := testutil.CreateUser(t, usrRepo, "Get Student", "get.student@test.cd", "", user.RoleStudent, true)
	outsider := testutil.CreateUser(t, usrRepo, "Outsider", "outsider@test.cd", "", user.RoleStudent, true)
	admin := testutil.CreateUser(t, usrRepo, "Get Admin", "get.admin@test.cd", "", user.RoleAdmin, true)

	crs := testutil.CreateCourse(t, courseRepo, "Course Details", "Lesson One")
	testutil.Enroll(t, courseRepo, student.ID, crs.ID)

	tests := []httpTest{
		{
			name: "enrolled student", path: "/api/courses/" + crs.ID, token: getToken(t, student),
			wantCode: http.StatusOK,
		},
		{
			name: "admin needs no enrollment", path: "/api/courses/" + crs.ID, token: getToken(t, admin),
			wantCode: http.StatusOK,
		},
		{
			name: "not enrolled", path: "/api/courses/" + crs.ID, token: getToken(t, outsider),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied),
		},
		{
			name: "unknown course", path: "/api/courses/b0a0a0a0-0000-4000-8000-000000000000", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_courseApi_saveProgress(t *testing.T) {
	student := testutil.CreateUser(t, usrRepo, "Prog Student", "prog.student@test.cd", "", user.RoleStudent, true)
	outsider := testutil.CreateUser(t, usrRepo, "Prog Outsider", "prog.outsider@test.cd", "", user.RoleStudent, true)

	crs := testutil.CreateCourse(t, courseRepo, "Progress Course", "Tracked Lesson")
	testutil.Enroll(t, courseRepo, student.ID, crs.ID)
	lesson := crs.Modules[0].Lessons[0]

	token := getToken(t, student)
	path := fmt.Sprintf("/api/lessons/%s/progress", lesson.ID)

	tests := []httpTest{
		{
			name: "progress out of range", body: []byte(`{"progress":101}`), token: token,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "not enrolled", body: []byte(`{"progress":10}`), token: getToken(t, outsider),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied),
		},
		{
			name: "unknown lesson", path: "/api/lessons/b0a0a0a0-0000-4000-8000-000000000000/progress",
			body: []byte(`{"progress":10}`), token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "save", body: []byte(`{"progress":40,"notes":"half way-ish"}`), token: token, wantCode: http.StatusOK},
		{name: "complete", body: []byte(`{"progress":100,"completed":true}`), token: token, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.path
			if p == "" {
				p = path
			}
			req, rec := newAuthRequest(http.MethodPut, p, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// partial updates merge: the completed flag must not wipe the notes
	prog, err := courseRepo.GetLessonProgress(context.Background(), student.ID, lesson.ID)
	if err != nil {
		t.Fatalf("GetLessonProgress() failed: %v", err)
	}
	if prog.Progress != 100 || !prog.Completed {
		t.Errorf("progress = %d/%v; want 100/true", prog.Progress, prog.Completed)
	}
	if prog.Notes != "half way-ish" {
		t.Errorf("Notes = %q; want %q", prog.Notes, "half way-ish")
	}
	if prog.LastWatched.IsZero() {
		t.Error("LastWatched not set")
	}
}

func Test_adminCourseApi_query(t *testing.T) {
	admin := testutil.CreateUser(t, usrRepo, "Counts Admin", "counts.admin@test.cd", "", user.RoleAdmin, true)
	crs := testutil.CreateCourse(t, courseRepo, "Counted Course", "One", "Two", "Three")

	req, rec := newAuthRequest(http.MethodGet, "/api/admin/courses", getToken(t, admin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Courses []struct {
			course.Course
			ModuleCount int `json:"module_count"`
			LessonCount int `json:"lesson_count"`
		} `json:"courses"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}

	var found bool
	for _, c := range resp.Courses {
		if c.ID == crs.ID {
			found = true
			if c.ModuleCount != 1 {
				t.Errorf("ModuleCount = %d; want 1", c.ModuleCount)
			}
			if c.LessonCount != 3 {
				t.Errorf("LessonCount = %d; want 3", c.LessonCount)
			}
		}
	}
	if !found {
		t.Errorf("course %s missing from the admin listing", crs.ID)
	}
}
