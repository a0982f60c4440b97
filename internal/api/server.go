package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/seatplan"
	"github.com/arloliu/seatplan/backend"
	"github.com/arloliu/seatplan/internal/blobstore"
	"github.com/arloliu/seatplan/internal/logger"
	"github.com/arloliu/seatplan/internal/metrics"
	"github.com/arloliu/seatplan/types"
)

// sessionSweepInterval is how often idle sessions are looked for.
const sessionSweepInterval = time.Minute

// session is one editing session.
type session struct {
	id      string
	editor  *seatplan.Editor
	created time.Time

	// lastAccess is the unix nano time of the latest request
	lastAccess atomic.Int64
}

func (s *session) touch(now time.Time) {
	s.lastAccess.Store(now.UnixNano())
}

func (s *session) idleSince(cutoff time.Time) bool {
	return s.lastAccess.Load() < cutoff.UnixNano()
}

// Server hosts editor sessions over HTTP.
//
// Thread Safety:
//   - Sessions are kept in a concurrent map; each Editor serializes its own operations
//   - Handlers never hold a lock across two sessions
type Server struct {
	cfg      ServerConfig
	echo     *echo.Echo
	sessions *xsync.Map[string, *session]
	createMu sync.Mutex
	blobs    blobstore.Store
	links    *linkSigner
	solver   *backend.HTTP
	metrics  *metrics.PrometheusCollector
	registry *prometheus.Registry
	logger   types.Logger
	now      func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger, also handed to every session.
func WithLogger(l types.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source used for session timestamps and link expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// NewServer builds the HTTP service.
//
// Parameters:
//   - cfg: Service configuration
//   - blobs: Artifact store
//   - opts: Optional logger and clock
//
// Returns:
//   - *Server: Server with every route registered
//   - error: Invalid configuration or solver URL
func NewServer(cfg ServerConfig, blobs blobstore.Store, opts ...Option) (*Server, error) {
	SetServerDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if blobs == nil {
		return nil, errors.New("blob store is required")
	}

	s := &Server{
		cfg:      cfg,
		sessions: xsync.NewMap[string, *session](),
		blobs:    blobs,
		logger:   logger.NewNop(),
		now:      time.Now,
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registry.MustRegister(collectors.NewGoCollector())
	s.metrics = metrics.NewPrometheus(s.registry, "seatplan")

	if cfg.SolverURL != "" {
		client, err := backend.NewHTTP(cfg.SolverURL,
			backend.WithTimeout(cfg.Editor.Solve.RequestTimeout),
			backend.WithLogger(s.logger),
		)
		if err != nil {
			return nil, err
		}
		s.solver = client
	}

	links, err := newLinkSigner(cfg.TokenSecret, s.now)
	if err != nil {
		return nil, err
	}
	if cfg.TokenSecret == "" {
		s.logger.Warn("no token secret configured, download links will not survive a restart")
	}
	s.links = links

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.handleError
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.routes()

	return s, nil
}

// Handler returns the HTTP handler of the service.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until ctx is done, then shuts down gracefully. Idle sessions
// are closed in the background while serving.
func (s *Server) Start(ctx context.Context) error {
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sweepLoop(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Addr, "solver", s.cfg.SolverURL != "")
		errCh <- s.echo.Start(s.cfg.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.sessions.Range(func(_ string, sess *session) bool {
		sess.editor.CancelSolve()
		return true
	})

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")

	return nil
}

// SessionCount returns the number of open sessions.
func (s *Server) SessionCount() int {
	return s.sessions.Size()
}

// SweepSessions closes every session idle for longer than the configured
// idle TTL. Running solve jobs of closed sessions are canceled.
//
// Returns:
//   - int: Number of sessions closed
func (s *Server) SweepSessions() int {
	cutoff := s.now().Add(-s.cfg.SessionIdleTTL)

	var idle []string
	s.sessions.Range(func(id string, sess *session) bool {
		if sess.idleSince(cutoff) {
			idle = append(idle, id)
		}
		return true
	})

	removed := 0
	for _, id := range idle {
		// recheck under the entry lock, a request may have touched it meanwhile
		s.sessions.Compute(id, func(sess *session, loaded bool) (*session, xsync.ComputeOp) {
			if !loaded || !sess.idleSince(cutoff) {
				return sess, xsync.CancelOp
			}
			sess.editor.CancelSolve()
			removed++
			s.logger.Info("idle session closed", "session_id", id, "age", s.now().Sub(sess.created).String())

			return sess, xsync.DeleteOp
		})
	}

	return removed
}

func (s *Server) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.SweepSessions(); n > 0 {
				s.logger.Debug("idle sessions swept", "removed", n, "remaining", s.SessionCount())
			}
		}
	}
}

func (s *Server) routes() {
	e := s.echo

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	e.POST("/v1/sessions", s.createSession)
	e.GET("/v1/artifacts/:link/:format", s.downloadArtifact)

	g := e.Group("/v1/sessions/:id")
	g.GET("", s.getSession)
	g.DELETE("", s.deleteSession)

	g.PUT("/roster", s.setRoster)
	g.PUT("/class-name", s.setClassName)
	g.PUT("/name-view", s.setNameView)
	g.PUT("/options", s.setOptions)

	g.PUT("/schema", s.setSchema)
	g.POST("/schema/uniform", s.buildUniform)
	g.POST("/schema/rows", s.addRow)
	g.DELETE("/schema/rows/:y", s.deleteRow)
	g.DELETE("/schema", s.clearSchema)

	g.POST("/selection/student/:student", s.selectStudent)
	g.DELETE("/selection", s.clearSelection)
	g.POST("/seats/:seat/click", s.seatClick)
	g.POST("/selection/unassign", s.unassignSelected)
	g.POST("/selection/ban", s.toggleSeatBan)
	g.POST("/plan/reset", s.resetPlan)
	g.POST("/plan/autofill", s.autoFill)

	g.POST("/constraints", s.addConstraint)
	g.DELETE("/constraints", s.deleteConstraint)
	g.PUT("/batches/:batch", s.editBatch)
	g.DELETE("/batches/:batch", s.deleteBatch)
	g.POST("/batches/:batch/edit", s.beginEditBatch)
	g.DELETE("/batches/edit", s.endEditBatch)

	g.POST("/tables/:table/select", s.selectTable)
	g.POST("/tables/nudge", s.nudge)
	g.POST("/tables/commit", s.commitNudge)
	g.POST("/tables/cancel", s.cancelNudge)
	g.DELETE("/tables/selection", s.deselectTable)
	g.DELETE("/tables/offsets", s.resetTables)

	g.POST("/solve", s.startSolve)
	g.GET("/solve", s.solveStatus)
	g.DELETE("/solve", s.cancelSolve)
	g.POST("/export", s.export)

	g.GET("/plan.svg", s.renderSVG)
	g.GET("/plan.pdf", s.renderPDF)
	g.GET("/document", s.exportDocument)
	g.PUT("/document", s.importDocument)
	g.POST("/artifacts", s.createArtifacts)
}

// newEditor builds the editor of a new session.
func (s *Server) newEditor() (*seatplan.Editor, error) {
	cfg := s.cfg.Editor
	opts := []seatplan.Option{
		seatplan.WithLogger(s.logger),
		seatplan.WithMetrics(s.metrics),
	}
	if s.solver != nil {
		opts = append(opts,
			seatplan.WithSolverBackend(s.solver),
			seatplan.WithExportBackend(s.solver),
		)
	}

	return seatplan.NewEditor(&cfg, opts...)
}

// session returns the session named by the :id path parameter.
func (s *Server) session(c echo.Context) (*session, error) {
	id := c.Param("id")
	sess, ok := s.sessions.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errSessionNotFound, id)
	}
	sess.touch(s.now())

	return sess, nil
}

func (s *Server) createSession(c echo.Context) error {
	ed, err := s.newEditor()
	if err != nil {
		return err
	}

	sess := &session{id: uuid.NewString(), editor: ed, created: s.now()}
	sess.touch(sess.created)

	s.createMu.Lock()
	if s.sessions.Size() >= s.cfg.MaxSessions {
		s.createMu.Unlock()
		return fmt.Errorf("%w: limit is %d", errTooManySessions, s.cfg.MaxSessions)
	}
	s.sessions.Store(sess.id, sess)
	s.createMu.Unlock()
	s.logger.Info("session created", "session_id", sess.id, "open", s.SessionCount())

	c.Response().Header().Set(echo.HeaderLocation, "/v1/sessions/"+sess.id)

	return c.JSON(http.StatusCreated, echo.Map{"id": sess.id, "view": ed.View()})
}

func (s *Server) deleteSession(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}

	sess.editor.CancelSolve()
	s.sessions.Delete(sess.id)
	s.logger.Info("session closed", "session_id", sess.id, "age", s.now().Sub(sess.created).String())

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) getSession(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}

	v, etag, err := taggedView(sess.editor)
	if err != nil {
		return err
	}
	if match := c.Request().Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
		return c.NoContent(http.StatusNotModified)
	}
	c.Response().Header().Set("ETag", etag)

	return c.JSON(http.StatusOK, v)
}

// view answers a mutation with the new state.
func view(c echo.Context, ed *seatplan.Editor, extra echo.Map) error {
	v, etag, err := taggedView(ed)
	if err != nil {
		return err
	}
	c.Response().Header().Set("ETag", etag)

	if extra == nil {
		return c.JSON(http.StatusOK, v)
	}
	extra["view"] = v

	return c.JSON(http.StatusOK, extra)
}

// taggedView reads the state and its entity tag together.
func taggedView(ed *seatplan.Editor) (seatplan.View, string, error) {
	v, fp, err := ed.FingerprintedView()
	if err != nil {
		return seatplan.View{}, "", err
	}

	// the fingerprint ignores the selection and drafts; the version does not
	return v, etagFor(fp, v.Version), nil
}

func etagFor(fp string, version uint64) string {
	return fmt.Sprintf(`"%s.%d"`, fp, version)
}
