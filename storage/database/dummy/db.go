package dummydb

import (
	"sync"

	"github.com/trezcool/darasa/core/billing"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/platform"
	"github.com/trezcool/darasa/core/support"
	"github.com/trezcool/darasa/core/user"
)

// DB is an in-memory store used in tests and local development.
type DB struct {
	user    *userTable
	course  *courseTable
	support *supportTable
	billing *billingTable
	syncLog *syncLogTable
}

type userTable struct {
	sync.RWMutex
	table map[string]*user.User
}

type courseTable struct {
	sync.RWMutex
	courses     map[string]*course.Course
	modules     map[string]*course.Module
	lessons     map[string]*course.Lesson
	enrollments map[string]*course.Enrollment
	progress    map[string]*course.LessonProgress
}

type supportTable struct {
	sync.RWMutex
	faqs     map[string]*support.FAQ
	videos   map[string]*support.Video
	requests map[string]*support.Request
}

type billingTable struct {
	sync.RWMutex
	payments    map[string]*billing.Payment
	webhookLogs map[string]*billing.WebhookLog
}

type syncLogTable struct {
	sync.RWMutex
	table []platform.SyncLog
}

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		course: &courseTable{
			courses:     make(map[string]*course.Course),
			modules:     make(map[string]*course.Module),
			lessons:     make(map[string]*course.Lesson),
			enrollments: make(map[string]*course.Enrollment),
			progress:    make(map[string]*course.LessonProgress),
		},
		support: &supportTable{
			faqs:     make(map[string]*support.FAQ),
			videos:   make(map[string]*support.Video),
			requests: make(map[string]*support.Request),
		},
		billing: &billingTable{
			payments:    make(map[string]*billing.Payment),
			webhookLogs: make(map[string]*billing.WebhookLog),
		},
		syncLog: &syncLogTable{},
	}
	return db, nil
}
