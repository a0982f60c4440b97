package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/seatplan"
	"github.com/arloliu/seatplan/internal/blobstore"
	"github.com/arloliu/seatplan/internal/logger"
	"github.com/arloliu/seatplan/strategy"
	seatplantest "github.com/arloliu/seatplan/testing"
	"github.com/arloliu/seatplan/types"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type testServer struct {
	t     *testing.T
	srv   *Server
	clock *testClock
}

func newTestServer(t *testing.T, mutate ...func(*ServerConfig)) *testServer {
	t.Helper()

	cfg := DefaultServerConfig()
	cfg.Editor = seatplan.TestConfig()
	cfg.TokenSecret = "test-secret"
	for _, m := range mutate {
		m(&cfg)
	}

	clock := &testClock{now: time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)}
	srv, err := NewServer(cfg, blobstore.NewMemory(clock.Now), WithLogger(logger.NewTest(t)), WithClock(clock.Now))
	require.NoError(t, err)

	return &testServer{t: t, srv: srv, clock: clock}
}

// do sends a request and decodes a JSON answer into out when out is not nil.
func (ts *testServer) do(method, path string, body any, out any) *httptest.ResponseRecorder {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 {
		require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}

	return rec
}

// newSession creates a session with a 2x2 room and two students.
func (ts *testServer) newSession() string {
	ts.t.Helper()

	var created struct {
		ID string `json:"id"`
	}
	rec := ts.do(http.MethodPost, "/v1/sessions", nil, &created)
	require.Equal(ts.t, http.StatusCreated, rec.Code)
	require.NotEmpty(ts.t, created.ID)

	base := "/v1/sessions/" + created.ID
	rec = ts.do(http.MethodPut, base+"/roster", rosterRequest{Students: []seatplan.Student{
		{ID: 1, First: "Alice", Last: "Martin", Gender: types.GenderFemale},
		{ID: 2, First: "Bruno", Last: "Petit", Gender: types.GenderMale},
	}}, nil)
	require.Equal(ts.t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(http.MethodPost, base+"/schema/uniform", uniformRequest{Rows: 2, Caps: []int{2, 2}}, nil)
	require.Equal(ts.t, http.StatusOK, rec.Code, rec.Body.String())

	return base
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestServer_SessionLifecycle(t *testing.T) {
	ts := newTestServer(t)
	base := ts.newSession()
	require.Equal(t, 1, ts.srv.SessionCount())

	rec := ts.do(http.MethodPost, base+"/selection/student/1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var click struct {
		Result string        `json:"result"`
		View   seatplan.View `json:"view"`
	}
	rec = ts.do(http.MethodPost, base+"/seats/0,0,0/click", nil, &click)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, seatplan.ClickPlaced.String(), click.Result)
	require.Equal(t, 1, click.View.Placements[types.SeatKey{}])

	var v seatplan.View
	rec = ts.do(http.MethodGet, base, nil, &v)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, v.Students, 2)
	require.Equal(t, []int{2}, v.Unplaced)

	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	req := httptest.NewRequest(http.MethodGet, base, nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(cached, req)
	require.Equal(t, http.StatusNotModified, cached.Code)

	rec = ts.do(http.MethodDelete, base, nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Zero(t, ts.srv.SessionCount())

	rec = ts.do(http.MethodGet, base, nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_SweepIdleSessions(t *testing.T) {
	fs := seatplantest.NewFakeSolver(t)
	fs.Script(types.StatusReport{Status: types.SolverStarted})

	ts := newTestServer(t, func(cfg *ServerConfig) {
		cfg.SolverURL = fs.URL()
		cfg.SessionIdleTTL = 2 * time.Hour
	})
	stale := ts.newSession()
	fresh := ts.newSession()

	require.Equal(t, http.StatusOK, ts.do(http.MethodPut, stale+"/options",
		map[string]any{"time_budget_ms": 60000}, nil).Code)
	require.Equal(t, http.StatusAccepted, ts.do(http.MethodPost, stale+"/solve", nil, nil).Code)
	sess, ok := ts.srv.sessions.Load(strings.TrimPrefix(stale, "/v1/sessions/"))
	require.True(t, ok)
	require.True(t, sess.editor.SolveInFlight())

	ts.clock.Advance(90 * time.Minute)
	require.Zero(t, ts.srv.SweepSessions(), "nothing idle yet")
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, fresh, nil, nil).Code)

	ts.clock.Advance(45 * time.Minute)
	require.Equal(t, 1, ts.srv.SweepSessions())
	require.Equal(t, 1, ts.srv.SessionCount())
	require.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, stale, nil, nil).Code)
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, fresh, nil, nil).Code)

	require.Eventually(t, func() bool {
		return !sess.editor.SolveInFlight()
	}, 2*time.Second, 5*time.Millisecond, "solve of the closed session is canceled")
}

func TestServer_SessionCap(t *testing.T) {
	ts := newTestServer(t, func(cfg *ServerConfig) {
		cfg.MaxSessions = 2
	})
	first := ts.newSession()
	ts.newSession()

	rec := ts.do(http.MethodPost, "/v1/sessions", nil, nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), errTooManySessions.Error())
	require.Equal(t, 2, ts.srv.SessionCount())

	require.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, first, nil, nil).Code)
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/v1/sessions", nil, nil).Code)
}

func TestServer_ErrorMapping(t *testing.T) {
	ts := newTestServer(t)
	base := ts.newSession()

	// forbid seat 1,0,0 to provoke a conflict below
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, base+"/seats/1,0,0/click", nil, nil).Code)
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, base+"/selection/ban", nil, nil).Code)
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, base+"/selection/student/2", nil, nil).Code)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown session", http.MethodGet, "/v1/sessions/nope", nil, http.StatusNotFound},
		{"zero capacity", http.MethodPut, base + "/schema", schemaRequest{Schema: seatplan.Schema{{2, 0}}}, http.StatusBadRequest},
		{"malformed seat", http.MethodPost, base + "/seats/a,b/click", nil, http.StatusBadRequest},
		{"forbidden seat", http.MethodPost, base + "/seats/1,0,0/click", nil, http.StatusConflict},
		{"unknown student", http.MethodPost, base + "/selection/student/42", nil, http.StatusBadRequest},
		{"bad student id", http.MethodPost, base + "/selection/student/x", nil, http.StatusBadRequest},
		{"unknown batch", http.MethodDelete, base + "/batches/missing", nil, http.StatusNotFound},
		{"not enough students", http.MethodPost, base + "/constraints",
			constraintRequest{Kind: seatplan.KindSameTable, Students: []int{1}}, http.StatusBadRequest},
		{"unknown direction", http.MethodPost, base + "/tables/nudge", nudgeRequest{Direction: "north"}, http.StatusBadRequest},
		{"no solver", http.MethodPost, base + "/solve", nil, http.StatusServiceUnavailable},
		{"row out of range", http.MethodDelete, base + "/schema/rows/9", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(tt.method, tt.path, tt.body, nil)
			require.Equal(t, tt.want, rec.Code, rec.Body.String())

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.NotEmpty(t, body["error"])
		})
	}
}

func TestServer_AutoFillFullRoom(t *testing.T) {
	ts := newTestServer(t)
	base := ts.newSession()

	// one seat for two students
	rec := ts.do(http.MethodPut, base+"/schema", schemaRequest{Schema: seatplan.Schema{{1}}}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var filled struct {
		Placed int `json:"placed"`
	}
	rec = ts.do(http.MethodPost, base+"/plan/autofill", nil, &filled)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, 1, filled.Placed)

	rec = ts.do(http.MethodPost, base+"/plan/autofill", nil, nil)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body["error"], strategy.ErrNoFreeSeats.Error())
}

func TestStatusOf_DomainErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no free seats", fmt.Errorf("auto fill: %w", strategy.ErrNoFreeSeats), http.StatusConflict},
		{"invalid assignment", fmt.Errorf("apply: %w", types.ErrInvalidAssignment), http.StatusConflict},
		{"seat occupied", types.ErrSeatOccupied, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, statusOf(tt.err))
		})
	}
}

func TestServer_Constraints(t *testing.T) {
	ts := newTestServer(t)
	base := ts.newSession()

	var added struct {
		BatchID string        `json:"batch_id"`
		View    seatplan.View `json:"view"`
	}
	rec := ts.do(http.MethodPost, base+"/constraints",
		constraintRequest{Kind: seatplan.KindFarApart, Students: []int{1, 2}, Param: 5}, &added)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotEmpty(t, added.BatchID)
	require.Len(t, added.View.Constraints, 1)
	require.Equal(t, 2, added.View.Constraints[0].D, "clamped to the room's largest distance")

	rec = ts.do(http.MethodPut, base+"/batches/"+added.BatchID,
		constraintRequest{Kind: seatplan.KindFrontRows, Students: []int{1, 2}, Param: 1}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var deleted struct {
		Removed int `json:"removed"`
	}
	rec = ts.do(http.MethodDelete, base+"/batches/"+added.BatchID, nil, &deleted)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, deleted.Removed)
}

func TestServer_TableNudge(t *testing.T) {
	ts := newTestServer(t)
	base := ts.newSession()

	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, base+"/tables/1,1/select", nil, nil).Code)

	var nudged struct {
		Draft types.Draft `json:"draft"`
	}
	rec := ts.do(http.MethodPost, base+"/tables/nudge", nudgeRequest{Direction: "ArrowDown"}, &nudged)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, 10.0, nudged.Draft.DY)

	var committed struct {
		Moved bool          `json:"moved"`
		View  seatplan.View `json:"view"`
	}
	rec = ts.do(http.MethodPost, base+"/tables/commit", nil, &committed)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, committed.Moved)
	require.Equal(t, types.Offset{DY: 10}, committed.View.Offsets[types.TableKey{X: 1, Y: 1}])

	var v seatplan.View
	rec = ts.do(http.MethodDelete, base+"/tables/offsets", nil, &v)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, v.Offsets)
}

func TestServer_DocumentRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	src := ts.newSession()
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, src+"/selection/student/2", nil, nil).Code)
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, src+"/seats/1,1,1/click", nil, nil).Code)

	rec := ts.do(http.MethodGet, src+"/document", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := rec.Body.Bytes()

	var created struct {
		ID string `json:"id"`
	}
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/v1/sessions", nil, &created).Code)

	req := httptest.NewRequest(http.MethodPut, "/v1/sessions/"+created.ID+"/document", bytes.NewReader(doc))
	out := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(out, req)
	require.Equal(t, http.StatusOK, out.Code, out.Body.String())

	var v seatplan.View
	require.NoError(t, json.Unmarshal(out.Body.Bytes(), &v))
	require.Equal(t, 2, v.Placements[types.SeatKey{X: 1, Y: 1, S: 1}])

	req = httptest.NewRequest(http.MethodPut, "/v1/sessions/"+created.ID+"/document", strings.NewReader(`{"format":"x"}`))
	out = httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(out, req)
	require.Equal(t, http.StatusBadRequest, out.Code)
}

func TestServer_Render(t *testing.T) {
	ts := newTestServer(t)
	base := ts.newSession()

	rec := ts.do(http.MethodGet, base+"/plan.svg?view=teacher", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	require.True(t, strings.HasPrefix(rec.Body.String(), "<svg"))

	rec = ts.do(http.MethodGet, base+"/plan.pdf?qr=hello", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestServer_Artifacts(t *testing.T) {
	ts := newTestServer(t, func(cfg *ServerConfig) {
		cfg.PublicURL = "https://plans.example.org"
		cfg.ArtifactTTL = time.Hour
	})
	base := ts.newSession()

	rec := ts.do(http.MethodPost, base+"/artifacts", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code, "class name is required")

	require.Equal(t, http.StatusOK, ts.do(http.MethodPut, base+"/class-name", classNameRequest{ClassName: "Seconde 4"}, nil).Code)
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, base+"/constraints",
		constraintRequest{Kind: seatplan.KindSoloTable, Students: []int{1}}, nil).Code)

	var art artifactResponse
	rec = ts.do(http.MethodPost, base+"/artifacts", nil, &art)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, art.Download, 4)
	require.True(t, ts.clock.Now().Add(time.Hour).Equal(art.ExpiresAt))

	rec = ts.do(http.MethodGet, art.Download["json"], nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "plandeclasse-export")
	require.Equal(t, `attachment; filename="plan_seconde-4_2r22_01-09.json"`, rec.Header().Get("Content-Disposition"))

	rec = ts.do(http.MethodGet, art.Download["txt"], nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, strings.TrimSpace(rec.Body.String()))

	rec = ts.do(http.MethodGet, art.Download["pdf"], nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	t.Run("unknown format", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/v1/artifacts/"+art.Link+"/png", nil, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("tampered link", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/v1/artifacts/"+art.Link+"x/json", nil, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("expired link", func(t *testing.T) {
		ts.clock.Advance(time.Hour + time.Minute)
		rec := ts.do(http.MethodGet, art.Download["json"], nil, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// failingStore stores the first limit blobs and refuses the rest.
type failingStore struct {
	*blobstore.Memory

	mu    sync.Mutex
	limit int
}

func (f *failingStore) Put(ctx context.Context, token, format string, blob blobstore.Blob, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.limit == 0 {
		return errors.New("store full")
	}
	f.limit--

	return f.Memory.Put(ctx, token, format, blob, ttl)
}

func TestServer_ArtifactsPartialStore(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Editor = seatplan.TestConfig()
	cfg.TokenSecret = "test-secret"
	mem := blobstore.NewMemory(nil)
	store := &failingStore{Memory: mem, limit: 2}

	srv, err := NewServer(cfg, store, WithLogger(logger.NewTest(t)))
	require.NoError(t, err)
	ts := &testServer{t: t, srv: srv, clock: &testClock{now: time.Now()}}

	base := ts.newSession()
	require.Equal(t, http.StatusOK, ts.do(http.MethodPut, base+"/class-name", classNameRequest{ClassName: "Seconde 4"}, nil).Code)

	rec := ts.do(http.MethodPost, base+"/artifacts", nil, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code, rec.Body.String())
	require.Zero(t, mem.Len(), "stored formats are discarded")
}

func TestServer_ETagMatchesBody(t *testing.T) {
	ts := newTestServer(t)
	base := ts.newSession()

	var v seatplan.View
	rec := ts.do(http.MethodPost, base+"/selection/student/1", nil, &v)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.True(t, strings.HasSuffix(etag, fmt.Sprintf(`.%d"`, v.Version)), etag)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 100 {
			path := base + "/selection/student/" + []string{"2", "1"}[i%2]
			rec := httptest.NewRecorder()
			ts.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		}
	}()

	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}

		var got seatplan.View
		rec := ts.do(http.MethodGet, base, nil, &got)
		require.Equal(t, http.StatusOK, rec.Code)
		etag := rec.Header().Get("ETag")
		require.True(t, strings.HasSuffix(etag, fmt.Sprintf(`.%d"`, got.Version)), "%s for version %d", etag, got.Version)
	}
}

func TestServer_SolveAndExport(t *testing.T) {
	fs := seatplantest.NewFakeSolver(t)
	fs.Script(types.StatusReport{Status: types.SolverStarted})

	ts := newTestServer(t, func(cfg *ServerConfig) {
		cfg.SolverURL = fs.URL()
	})
	base := ts.newSession()
	require.Equal(t, http.StatusOK, ts.do(http.MethodPut, base+"/options",
		map[string]any{"time_budget_ms": 60000}, nil).Code)

	var job struct {
		ID string `json:"id"`
	}
	rec := ts.do(http.MethodPost, base+"/solve", nil, &job)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	require.NotEmpty(t, job.ID)

	rec = ts.do(http.MethodPost, base+"/solve", nil, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	var status struct {
		InFlight bool `json:"in_flight"`
		Job      struct {
			ID string `json:"id"`
		} `json:"job"`
	}
	ts.do(http.MethodGet, base+"/solve", nil, &status)
	require.True(t, status.InFlight)
	require.Equal(t, job.ID, status.Job.ID)

	sess, ok := ts.srv.sessions.Load(strings.TrimPrefix(base, "/v1/sessions/"))
	require.True(t, ok)
	handle, ok := sess.editor.CurrentSolve()
	require.True(t, ok)

	var canceled struct {
		Canceled bool `json:"canceled"`
	}
	rec = ts.do(http.MethodDelete, base+"/solve", nil, &canceled)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, canceled.Canceled)

	select {
	case out := <-handle.Done():
		require.ErrorIs(t, out.Err, seatplan.ErrSolveCanceled)
	case <-time.After(5 * time.Second):
		t.Fatal("solve job did not finish")
	}

	require.Equal(t, http.StatusOK, ts.do(http.MethodPut, base+"/class-name", classNameRequest{ClassName: "5B"}, nil).Code)
	var exported struct {
		Download types.ExportLinks `json:"download"`
	}
	rec = ts.do(http.MethodPost, base+"/export", nil, &exported)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "/files/student.pdf", exported.Download.Student.PDF)

	fs.FailExport(http.StatusInternalServerError)
	rec = ts.do(http.MethodPost, base+"/export", nil, nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestServer_Metrics(t *testing.T) {
	ts := newTestServer(t)
	base := ts.newSession()
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, base+"/seats/0,0,0/click", nil, nil).Code)

	rec := ts.do(http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "seat_clicks_total")
	require.Contains(t, rec.Body.String(), "go_goroutines")
}
