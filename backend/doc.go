// Package backend implements the solver and export backends over HTTP.
//
// The solver protocol is:
//
//	POST {base}/solve/start          body: SolvePayload      -> {"task_id": "..."}
//	GET  {base}/solve/status/{task}                          -> StatusReport
//	POST {base}/export               body: ExportRequest     -> {"download": {...}}
//
// Example:
//
//	be, err := backend.NewHTTP("http://solver:8000", backend.WithTimeout(10*time.Second))
//	if err != nil {
//	    return err
//	}
//	ed, err := seatplan.NewEditor(&cfg, be, seatplan.WithExportBackend(be))
package backend
