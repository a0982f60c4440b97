package backend

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	seatplantest "github.com/arloliu/seatplan/testing"
	"github.com/arloliu/seatplan/types"
)

func TestNewHTTP_ValidatesBaseURL(t *testing.T) {
	for _, bad := range []string{"", "solver:8000", "ftp://solver", "http://"} {
		_, err := NewHTTP(bad)
		require.ErrorIs(t, err, ErrInvalidBaseURL, bad)
	}

	be, err := NewHTTP("http://solver:8000/api/", WithTimeout(time.Second))
	require.NoError(t, err)
	require.Equal(t, "http://solver:8000/api/solve/start", be.base.JoinPath("solve/start").String())
	require.Equal(t, time.Second, be.client.Timeout)
}

func TestHTTP_SubmitAndPoll(t *testing.T) {
	fs := seatplantest.NewFakeSolver(t)
	want := map[types.SeatKey]int{{X: 0, Y: 0, S: 1}: 7}
	fs.Script(
		types.StatusReport{Status: types.SolverStarted},
		types.StatusReport{Status: types.SolverSuccess, Assignment: want},
	)

	be, err := NewHTTP(fs.URL(), WithLogger(seatplantest.NewTestLogger(t)))
	require.NoError(t, err)

	payload := types.SolvePayload{
		Schema:      types.Schema{{2}},
		Students:    []types.Student{{ID: 7, First: "Ada"}},
		Constraints: []types.Constraint{{Kind: types.KindExactSeat, A: 7, Seat: types.SeatKey{S: 1}}},
		Forbidden:   []types.SeatKey{{S: 0}},
		Placements:  map[types.SeatKey]int{},
	}
	taskID, err := be.Submit(context.Background(), payload)
	require.NoError(t, err)
	require.Equal(t, "task-1", taskID)

	got := fs.Submissions()
	require.Len(t, got, 1)
	require.Equal(t, payload.Constraints, got[0].Constraints)
	require.Equal(t, payload.Forbidden, got[0].Forbidden)

	report, err := be.Status(context.Background(), taskID)
	require.NoError(t, err)
	require.Equal(t, types.SolverStarted, report.Status)

	report, err = be.Status(context.Background(), taskID)
	require.NoError(t, err)
	require.Equal(t, types.SolverSuccess, report.Status)
	require.Equal(t, want, report.Assignment)
	require.Equal(t, 2, fs.Polls(taskID))
}

func TestHTTP_UnexpectedStatus(t *testing.T) {
	fs := seatplantest.NewFakeSolver(t)
	fs.FailSubmit(http.StatusServiceUnavailable)

	log := seatplantest.NewTestLogger(t)
	be, err := NewHTTP(fs.URL(), WithLogger(log))
	require.NoError(t, err)

	_, err = be.Submit(context.Background(), types.SolvePayload{})
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	require.Contains(t, err.Error(), "503")
	require.Empty(t, fs.Submissions())
	require.True(t, log.Has("debug", "backend request failed"))
}

func TestHTTP_CanceledContext(t *testing.T) {
	fs := seatplantest.NewFakeSolver(t)
	be, err := NewHTTP(fs.URL())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = be.Status(ctx, "task-1")
	require.ErrorIs(t, err, context.Canceled)
}

func TestHTTP_ExportShapes(t *testing.T) {
	fs := seatplantest.NewFakeSolver(t)
	be, err := NewHTTP(fs.URL())
	require.NoError(t, err)

	req := types.ExportRequest{ClassName: "5B", SVGMarkup: "<svg/>", NameView: types.NameViewFirst}

	t.Run("nested", func(t *testing.T) {
		links, err := be.Export(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, "/files/student.pdf", links.Student.PDF)
		require.Equal(t, "/files/teacher.pdf", links.Teacher.PDF)
		require.Equal(t, "/files/plan.zip", links.ZIP)
	})

	t.Run("flat inside download", func(t *testing.T) {
		fs.SetExportResponse(map[string]any{"download": map[string]string{"png": "/a.png", "zip": "/a.zip"}})
		links, err := be.Export(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, "/a.png", links.Student.PNG)
		require.True(t, links.Teacher.Empty())
		require.Equal(t, "/a.zip", links.ZIP)
	})

	t.Run("bare flat", func(t *testing.T) {
		fs.SetExportResponse(map[string]string{"pdf": "/b.pdf"})
		links, err := be.Export(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, "/b.pdf", links.Student.PDF)
		require.Empty(t, links.JSON)
	})

	exports := fs.Exports()
	require.Len(t, exports, 3)
	require.Equal(t, "5B", exports[0].ClassName)
	require.Equal(t, types.NameViewFirst, exports[0].NameView)
}
