package interchange

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/arloliu/seatplan/internal/constraint"
	"github.com/arloliu/seatplan/types"
)

const (
	// Format is the format tag of every document.
	Format = "plandeclasse-export"

	// Version is the document version written by Encode.
	Version = 1
)

// Document is a saved seating plan.
type Document struct {
	ClassName   string
	NameView    types.NameView
	RoomCode    string
	Schema      types.Schema
	Students    []types.Student
	Constraints []types.Constraint
	Markers     []types.BatchMarker
	Forbidden   []types.SeatKey
	Placements  map[types.SeatKey]int
	Offsets     map[types.TableKey]types.Offset
	Options     types.SolveOptions
}

type wireDocument struct {
	Format      string                          `json:"format"`
	Version     int                             `json:"version,omitempty"`
	ClassName   string                          `json:"class_name"`
	NameView    types.NameView                  `json:"name_view,omitempty"`
	RoomCode    string                          `json:"room_code,omitempty"`
	Schema      *types.Schema                   `json:"schema"`
	Students    *[]types.Student                `json:"students"`
	Constraints []json.RawMessage               `json:"constraints"`
	Forbidden   []types.SeatKey                 `json:"forbidden"`
	Placements  map[types.SeatKey]int           `json:"placements"`
	Offsets     map[types.TableKey]types.Offset `json:"table_offsets,omitempty"`
	Options     *types.SolveOptions             `json:"options,omitempty"`
}

// Encode writes the document. Map keys are sorted by encoding/json, so equal
// documents encode to equal bytes.
func Encode(doc Document) ([]byte, error) {
	constraints := make([]json.RawMessage, 0, len(doc.Constraints)+len(doc.Markers))
	for _, c := range doc.Constraints {
		raw, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("encode constraint: %w", err)
		}
		constraints = append(constraints, raw)
	}
	for _, m := range doc.Markers {
		raw, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("encode batch marker: %w", err)
		}
		constraints = append(constraints, raw)
	}

	schema := doc.Schema
	if schema == nil {
		schema = types.Schema{}
	}
	students := doc.Students
	if students == nil {
		students = []types.Student{}
	}
	forbidden := doc.Forbidden
	if forbidden == nil {
		forbidden = []types.SeatKey{}
	}
	placements := doc.Placements
	if placements == nil {
		placements = map[types.SeatKey]int{}
	}

	return json.Marshal(wireDocument{
		Format:      Format,
		Version:     Version,
		ClassName:   doc.ClassName,
		NameView:    doc.NameView,
		RoomCode:    doc.RoomCode,
		Schema:      &schema,
		Students:    &students,
		Constraints: constraints,
		Forbidden:   forbidden,
		Placements:  placements,
		Offsets:     doc.Offsets,
		Options:     &doc.Options,
	})
}

// Decode reads and checks a document.
//
// A wrong format tag, a missing schema or students array, duplicate student
// ids, a student placed twice or an unknown constraint type rejects the whole
// document. Batch markers are rebuilt so every batch id present among the
// entries has exactly one marker with a matching count; a marker found in the
// document keeps its description.
//
// Returns:
//   - Document: Decoded document
//   - error: ErrInvalidDocument wrapping the cause
func Decode(data []byte) (Document, error) {
	var w wireDocument
	if err := json.Unmarshal(data, &w); err != nil {
		return Document{}, fmt.Errorf("%w: %w", types.ErrInvalidDocument, err)
	}
	if w.Format != Format {
		return Document{}, fmt.Errorf("%w: format %q, want %q", types.ErrInvalidDocument, w.Format, Format)
	}
	if w.Schema == nil {
		return Document{}, fmt.Errorf("%w: missing schema", types.ErrInvalidDocument)
	}
	if w.Students == nil {
		return Document{}, fmt.Errorf("%w: missing students", types.ErrInvalidDocument)
	}

	doc := Document{
		ClassName: w.ClassName,
		NameView:  w.NameView,
		RoomCode:  w.RoomCode,
		Schema:    *w.Schema,
		Students:  *w.Students,
		Forbidden: w.Forbidden,
		Offsets:   w.Offsets,
	}
	if !doc.NameView.Valid() {
		doc.NameView = types.NameViewBoth
	}
	if w.Options != nil {
		doc.Options = *w.Options
	}

	seen := make(map[int]struct{}, len(doc.Students))
	for _, st := range doc.Students {
		if _, dup := seen[st.ID]; dup {
			return Document{}, fmt.Errorf("%w: %w: %d", types.ErrInvalidDocument, types.ErrDuplicateStudent, st.ID)
		}
		seen[st.ID] = struct{}{}
	}

	doc.Placements = make(map[types.SeatKey]int, len(w.Placements))
	placed := make(map[int]types.SeatKey, len(w.Placements))
	for key, id := range w.Placements {
		if other, dup := placed[id]; dup {
			return Document{}, fmt.Errorf("%w: student %d placed at %s and %s", types.ErrInvalidDocument, id, other, key)
		}
		placed[id] = key
		doc.Placements[key] = id
	}

	markers, err := decodeConstraints(w.Constraints, &doc)
	if err != nil {
		return Document{}, err
	}
	doc.Markers = rebuildMarkers(doc.Constraints, markers)

	return doc, nil
}

func decodeConstraints(raw []json.RawMessage, doc *Document) (map[string]types.BatchMarker, error) {
	markers := make(map[string]types.BatchMarker)

	for i, r := range raw {
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(r, &head); err != nil {
			return nil, fmt.Errorf("%w: constraint %d: %w", types.ErrInvalidDocument, i, err)
		}

		switch head.Type {
		case types.ObjectiveTag:
			continue
		case types.BatchMarkerTag:
			var m types.BatchMarker
			if err := json.Unmarshal(r, &m); err != nil {
				return nil, fmt.Errorf("%w: marker %d: %w", types.ErrInvalidDocument, i, err)
			}
			markers[m.BatchID] = m
		default:
			var c types.Constraint
			if err := json.Unmarshal(r, &c); err != nil {
				return nil, fmt.Errorf("%w: constraint %d: %w", types.ErrInvalidDocument, i, err)
			}
			doc.Constraints = append(doc.Constraints, c)
		}
	}

	return markers, nil
}

// rebuildMarkers returns one marker per batch id, in order of first appearance.
func rebuildMarkers(entries []types.Constraint, found map[string]types.BatchMarker) []types.BatchMarker {
	var order []string
	byBatch := make(map[string][]types.Constraint)
	for _, c := range entries {
		if c.BatchID == "" {
			continue
		}
		if _, ok := byBatch[c.BatchID]; !ok {
			order = append(order, c.BatchID)
		}
		byBatch[c.BatchID] = append(byBatch[c.BatchID], c)
	}

	out := make([]types.BatchMarker, 0, len(order))
	for _, id := range order {
		rebuilt := constraint.MarkerFor(id, byBatch[id])
		if m, ok := found[id]; ok && m.Human != "" && m.Count == rebuilt.Count {
			rebuilt.Human = m.Human
		}
		if m, ok := found[id]; ok && len(m.StudentIDs) > 0 {
			rebuilt.StudentIDs = slices.Clone(m.StudentIDs)
		}
		out = append(out, rebuilt)
	}

	return out
}
