package seatplan

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/arloliu/seatplan/interchange"
	"github.com/arloliu/seatplan/internal/hash"
	"github.com/arloliu/seatplan/internal/render"
	"github.com/arloliu/seatplan/internal/room"
	"github.com/arloliu/seatplan/internal/store"
	"github.com/arloliu/seatplan/types"
)

// Soft objectives described on rendered exports.
var (
	objectiveAlone  = types.Objective{Key: "prefer_alone", Human: "Prefer students sitting alone at a table"}
	objectiveMixage = types.Objective{Key: "prefer_mixage", Human: "Prefer mixed-gender tables"}
)

// Export renders the current plan through the export backend.
//
// The request carries the front-facing and mirrored SVG drawings, the room,
// the roster, options, rules with their batch markers and the active soft
// objectives, forbidden seats, placements and the name view.
//
// Parameters:
//   - ctx: Context for the backend call
//
// Returns:
//   - ExportLinks: Download links; unavailable artifacts are empty
//   - error: ErrExportBackendRequired, ErrClassNameRequired (no network call) or ErrExportFailed
func (e *Editor) Export(ctx context.Context) (ExportLinks, error) {
	if e.exporter == nil {
		return ExportLinks{}, ErrExportBackendRequired
	}

	req, err := e.ExportRequest()
	if err != nil {
		return ExportLinks{}, err
	}

	links, err := e.exporter.Export(ctx, req)
	if err != nil {
		e.logError("export failed", "class_name", req.ClassName, "error", err)
		return ExportLinks{}, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	e.logger.Info("plan exported", "class_name", req.ClassName, "student_pdf", links.Student.PDF != "")

	return links, nil
}

// ExportRequest builds the body of an export call without sending it.
//
// Returns:
//   - types.ExportRequest: Export body
//   - error: ErrClassNameRequired
func (e *Editor) ExportRequest() (types.ExportRequest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.exportRequest()
}

// exportRequest builds the export body. Caller holds e.mu.
func (e *Editor) exportRequest() (types.ExportRequest, error) {
	if e.st.ClassName == "" {
		return types.ExportRequest{}, ErrClassNameRequired
	}

	plan := e.renderPlan()
	constraints := make([]any, 0, len(e.st.Constraints)+len(e.st.Markers)+2)
	for _, c := range e.st.Constraints {
		constraints = append(constraints, c)
	}
	for _, m := range e.st.Markers {
		constraints = append(constraints, m)
	}
	if e.st.Options.PreferAlone {
		constraints = append(constraints, objectiveAlone)
	}
	if e.st.Options.PreferMixage {
		constraints = append(constraints, objectiveMixage)
	}

	return types.ExportRequest{
		ClassName:        e.st.ClassName,
		SVGMarkup:        render.SVG(plan, e.geo, false),
		SVGMarkupTeacher: render.SVG(plan, e.geo, true),
		Schema:           e.st.Schema.Clone(),
		Students:         nonNil(e.st.Students()),
		Options:          e.st.Options,
		Constraints:      constraints,
		Forbidden:        nonNil(e.st.ForbiddenList()),
		Placements:       e.st.Index.Placements(),
		NameView:         e.st.NameView,
	}, nil
}

// RenderSVG draws the current plan as a standalone SVG document.
//
// Parameters:
//   - mirrored: Draw the teacher's view instead of the front-facing one
func (e *Editor) RenderSVG(mirrored bool) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return render.SVG(e.renderPlan(), e.geo, mirrored)
}

// RenderPDF draws the current plan on one printable page.
//
// Parameters:
//   - mirrored: Draw the teacher's view
//   - qrText: Optional text encoded as a QR code, typically a link to a saved snapshot
//
// Returns:
//   - []byte: PDF document
//   - error: Rendering error
func (e *Editor) RenderPDF(mirrored bool, qrText string) ([]byte, error) {
	e.mu.Lock()
	plan := e.renderPlan()
	e.mu.Unlock()

	return render.PDF(plan, e.geo, render.PDFOptions{Mirrored: mirrored, QRText: qrText})
}

// renderPlan snapshots what the renderers need. Caller holds e.mu.
func (e *Editor) renderPlan() render.Plan {
	placements := e.st.Index.Placements()
	names := make(map[int]string, len(placements))
	for _, id := range placements {
		if s, ok := e.st.Student(id); ok {
			names[id] = s.DisplayName(e.st.NameView)
		}
	}

	return render.Plan{
		Title:      e.st.ClassName,
		Schema:     e.st.Schema.Clone(),
		Rects:      e.nudger.Rects(),
		Placements: placements,
		Forbidden:  maps.Clone(e.st.Forbidden),
		Names:      names,
	}
}

// ExportJSON encodes the whole plan as an interchange document.
func (e *Editor) ExportJSON() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return interchange.Encode(e.document())
}

// Fingerprint returns a short hash of the plan's interchange encoding. Equal
// plans have equal fingerprints.
func (e *Editor) Fingerprint() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.fingerprint()
}

// fingerprint hashes the current document. Caller holds e.mu.
func (e *Editor) fingerprint() (string, error) {
	data, err := interchange.Encode(e.document())
	if err != nil {
		return "", err
	}

	return hash.FingerprintHex(data), nil
}

// FingerprintedView returns the view and the fingerprint of the same state.
//
// Returns:
//   - View: State copy; its Version matches the fingerprint
//   - string: Plan fingerprint
//   - error: Encoding error
func (e *Editor) FingerprintedView() (View, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	fp, err := e.fingerprint()
	if err != nil {
		return View{}, "", err
	}

	return e.view(), fp, nil
}

// Artifacts is one consistent rendering of the plan.
type Artifacts struct {
	// Request is the export body; it carries the SVG drawings and rule list.
	Request types.ExportRequest
	// Document is the interchange encoding.
	Document []byte
	// PDF is the printable front-facing page.
	PDF []byte
}

// RenderArtifacts renders every downloadable form of the plan from a single
// snapshot, so the document, drawings and PDF always agree.
//
// Parameters:
//   - qrText: Optional text encoded as a QR code on the PDF
//
// Returns:
//   - Artifacts: Rendered forms
//   - error: ErrClassNameRequired, encoding or rendering error
func (e *Editor) RenderArtifacts(qrText string) (Artifacts, error) {
	e.mu.Lock()
	req, err := e.exportRequest()
	if err != nil {
		e.mu.Unlock()
		return Artifacts{}, err
	}
	doc, err := interchange.Encode(e.document())
	plan := e.renderPlan()
	e.mu.Unlock()
	if err != nil {
		return Artifacts{}, err
	}

	pdf, err := render.PDF(plan, e.geo, render.PDFOptions{QRText: qrText})
	if err != nil {
		return Artifacts{}, err
	}

	return Artifacts{Request: req, Document: doc, PDF: pdf}, nil
}

// document snapshots the state as an interchange document. Caller holds e.mu.
func (e *Editor) document() interchange.Document {
	return interchange.Document{
		ClassName:   e.st.ClassName,
		NameView:    e.st.NameView,
		RoomCode:    room.ConfigCode(e.st.Schema),
		Schema:      e.st.Schema.Clone(),
		Students:    e.st.Students(),
		Constraints: slices.Clone(e.st.Constraints),
		Markers:     cloneMarkers(e.st.Markers),
		Forbidden:   e.st.ForbiddenList(),
		Placements:  e.st.Index.Placements(),
		Offsets:     maps.Clone(e.st.Offsets),
		Options:     e.st.Options,
	}
}

// ImportJSON replaces the whole session with a saved plan.
//
// The document is decoded and checked before anything changes; a rejected
// document leaves the session untouched. The imported state is reconciled
// against its own schema: placements of unknown students, invalid seats and
// stale rules are dropped, and batch markers are rebuilt.
//
// Returns:
//   - error: ErrInvalidDocument or ErrSolveInFlight
func (e *Editor) ImportJSON(data []byte) error {
	doc, err := interchange.Decode(data)
	if err != nil {
		return err
	}
	if err := room.Validate(doc.Schema); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if e.SolveInFlight() {
		return ErrSolveInFlight
	}

	next := store.New()
	next.Schema = doc.Schema
	if err := next.Index.Replace(doc.Placements); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	for _, key := range doc.Forbidden {
		next.Forbidden[key] = struct{}{}
	}
	next.Constraints = doc.Constraints
	next.Markers = doc.Markers
	if err := next.SetRoster(doc.Students); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	rep := next.Reconcile()
	for key, off := range doc.Offsets {
		if room.IsValidTable(next.Schema, key) && !off.IsZero() {
			next.Offsets[key] = off
		}
	}
	next.Options = doc.Options
	next.NameView = doc.NameView
	next.ClassName = doc.ClassName

	return e.mutate(ChangeImport, func() (bool, error) {
		if e.SolveInFlight() {
			return false, ErrSolveInFlight
		}
		e.nudger.Disarm()
		*e.st = *next
		e.metrics.RecordPlacementCount(e.st.Index.Len())
		if rep.Changed() {
			e.metrics.RecordReconcileDropped(rep.Placements, rep.Forbidden, rep.Constraints)
		}
		e.logger.Info("plan imported",
			"class_name", doc.ClassName,
			"students", len(doc.Students),
			"placed", e.st.Index.Len(),
			"dropped_placements", rep.Placements,
		)

		return true, nil
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}
