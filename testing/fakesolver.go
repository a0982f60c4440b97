package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"

	"github.com/arloliu/seatplan/types"
)

// FakeSolver is an in-process solver and export service.
//
// Status polls are answered from a script: the i-th poll of a task gets the
// i-th scripted report and the last report repeats. Without a script every
// poll reports SUCCESS with an empty assignment.
//
// Benefits over a real solver:
//   - No Python service or network access required
//   - Deterministic answers, including failures and stalled jobs
//   - Records every submission and export request for assertions
type FakeSolver struct {
	server *httptest.Server

	mu          sync.Mutex
	script      []types.StatusReport
	submitFail  int
	exportFail  int
	exportBody  any
	submissions []types.SolvePayload
	exports     []types.ExportRequest
	polls       map[string]int
	nextTask    int
}

// NewFakeSolver starts a fake solver that is closed when the test ends.
//
// Parameters:
//   - t: Testing context for cleanup
//
// Returns:
//   - *FakeSolver: Running fake service
//
// Example:
//
//	fs := seatplantest.NewFakeSolver(t)
//	fs.Script(
//	    types.StatusReport{Status: types.SolverStarted},
//	    types.StatusReport{Status: types.SolverSuccess, Assignment: want},
//	)
func NewFakeSolver(t testing.TB) *FakeSolver {
	t.Helper()

	fs := &FakeSolver{polls: make(map[string]int)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /solve/start", fs.handleStart)
	mux.HandleFunc("GET /solve/status/{task}", fs.handleStatus)
	mux.HandleFunc("POST /export", fs.handleExport)

	fs.server = httptest.NewServer(mux)
	t.Cleanup(fs.server.Close)

	return fs
}

// URL returns the base URL of the service.
func (fs *FakeSolver) URL() string {
	return fs.server.URL
}

// Script sets the status reports returned to successive polls of each task.
func (fs *FakeSolver) Script(reports ...types.StatusReport) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.script = slices.Clone(reports)
}

// FailSubmit makes submissions answer with the given HTTP status; 0 restores success.
func (fs *FakeSolver) FailSubmit(status int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.submitFail = status
}

// FailExport makes exports answer with the given HTTP status; 0 restores success.
func (fs *FakeSolver) FailExport(status int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.exportFail = status
}

// SetExportResponse sets the JSON body returned by the export endpoint.
func (fs *FakeSolver) SetExportResponse(body any) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.exportBody = body
}

// Submissions returns every payload received, in order.
func (fs *FakeSolver) Submissions() []types.SolvePayload {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return slices.Clone(fs.submissions)
}

// Exports returns every export request received, in order.
func (fs *FakeSolver) Exports() []types.ExportRequest {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return slices.Clone(fs.exports)
}

// Polls returns the number of status polls received for a task.
func (fs *FakeSolver) Polls(taskID string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.polls[taskID]
}

func (fs *FakeSolver) handleStart(w http.ResponseWriter, r *http.Request) {
	var payload types.SolvePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fs.mu.Lock()
	fail := fs.submitFail
	if fail == 0 {
		fs.submissions = append(fs.submissions, payload)
		fs.nextTask++
	}
	taskID := fmt.Sprintf("task-%d", fs.nextTask)
	fs.mu.Unlock()

	if fail != 0 {
		http.Error(w, "submission refused", fail)
		return
	}

	writeJSON(w, map[string]string{"task_id": taskID})
}

func (fs *FakeSolver) handleStatus(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("task")

	fs.mu.Lock()
	fs.polls[taskID]++
	n := fs.polls[taskID]
	report := types.StatusReport{Status: types.SolverSuccess, Assignment: map[types.SeatKey]int{}}
	if len(fs.script) > 0 {
		report = fs.script[min(n, len(fs.script))-1]
	}
	fs.mu.Unlock()

	writeJSON(w, report)
}

func (fs *FakeSolver) handleExport(w http.ResponseWriter, r *http.Request) {
	var req types.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fs.mu.Lock()
	fail := fs.exportFail
	fs.exports = append(fs.exports, req)
	body := fs.exportBody
	fs.mu.Unlock()

	if fail != 0 {
		http.Error(w, "export refused", fail)
		return
	}
	if body == nil {
		body = map[string]any{"download": types.ExportLinks{
			Student: types.ViewLinks{PDF: "/files/student.pdf"},
			Teacher: types.ViewLinks{PDF: "/files/teacher.pdf"},
			ZIP:     "/files/plan.zip",
		}}
	}

	writeJSON(w, body)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
