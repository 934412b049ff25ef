package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/billing"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/platform"
	"github.com/trezcool/darasa/core/support"
	"github.com/trezcool/darasa/core/user"
)

type (
	ServerDeps struct {
		Conf        *core.Config
		Logger      core.Logger
		UserSvc     *user.Service
		CourseSvc   *course.Service
		SupportSvc  *support.Service
		BillingSvc  *billing.Service
		PlatformSvc *platform.Service
		Registry    *prometheus.Registry
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		SignalShutdown()
	}

	server struct {
		deps       ServerDeps
		app        *echo.Echo
		errCh      chan error
		shutdownCh chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:       deps,
		app:        echo.New(),
		errCh:      make(chan error, 1),
		shutdownCh: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.Use(sessionGate(conf))

	s.app.GET("/", home)
	if s.deps.Registry != nil {
		s.app.GET("/metrics", echo.WrapHandler(
			promhttp.HandlerFor(s.deps.Registry, promhttp.HandlerOpts{})))
	}

	api := s.app.Group("/api")
	registerAuthAPI(api, s.deps.UserSvc, conf)
	registerCourseAPI(api, s.deps.CourseSvc)
	registerSupportAPI(api, s.deps.SupportSvc)
	registerWebhookAPI(api, s.deps.BillingSvc)
	registerSyncAPI(api, s.deps.PlatformSvc, conf)

	// the session gate already rejects non-admins on /api/admin; the
	// middleware here keeps these routes safe on their own
	admin := api.Group("/admin", adminMiddleware())
	registerAdminUserAPI(admin, s.deps.UserSvc, s.deps.CourseSvc, s.deps.Logger)
	registerAdminCourseAPI(admin, s.deps.CourseSvc)
	registerAdminSupportAPI(admin, s.deps.SupportSvc)
}

func (s *server) Start() {
	s.errCh <- s.app.Start(s.deps.Conf.Server.Addr)
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errCh
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdownCh
}

// SignalShutdown triggers a graceful shutdown from within the app,
// used when an unrecoverable storage error is caught.
func (s *server) SignalShutdown() {
	s.shutdownCh <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Darasa API!")
}
