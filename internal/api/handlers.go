package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/arloliu/seatplan"
	"github.com/arloliu/seatplan/types"
)

type rosterRequest struct {
	Students []seatplan.Student `json:"students"`
}

type classNameRequest struct {
	ClassName string `json:"class_name"`
}

type nameViewRequest struct {
	NameView seatplan.NameView `json:"name_view"`
}

type schemaRequest struct {
	Schema seatplan.Schema `json:"schema"`
}

type uniformRequest struct {
	Rows int   `json:"rows"`
	Caps []int `json:"caps"`
}

type rowRequest struct {
	Caps []int `json:"caps"`
}

type constraintRequest struct {
	Kind     seatplan.Kind `json:"kind"`
	Students []int         `json:"students"`
	Param    int           `json:"param"`
}

type nudgeRequest struct {
	Direction string `json:"direction"`
}

// bind decodes the request body, mapping decode errors to 400.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}

	return nil
}

// withEditor resolves the session and runs fn on its editor.
func (s *Server) withEditor(c echo.Context, fn func(ed *seatplan.Editor) error) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}

	return fn(sess.editor)
}

func intParam(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s must be an integer", name))
	}

	return v, nil
}

// ============================================================================
// Roster and settings
// ============================================================================

func (s *Server) setRoster(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		var req rosterRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		if err := ed.SetRoster(req.Students); err != nil {
			return err
		}

		return view(c, ed, nil)
	})
}

func (s *Server) setClassName(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		var req classNameRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		ed.SetClassName(req.ClassName)

		return view(c, ed, nil)
	})
}

func (s *Server) setNameView(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		var req nameViewRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		if err := ed.SetNameView(req.NameView); err != nil {
			return err
		}

		return view(c, ed, nil)
	})
}

func (s *Server) setOptions(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		opts := ed.Options()
		if err := bind(c, &opts); err != nil {
			return err
		}
		if opts.TimeBudgetMs < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "time_budget_ms must not be negative")
		}
		ed.SetOptions(opts)

		return view(c, ed, nil)
	})
}

// ============================================================================
// Room schema
// ============================================================================

func (s *Server) setSchema(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		var req schemaRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		if err := ed.SetSchema(req.Schema); err != nil {
			return err
		}

		return view(c, ed, nil)
	})
}

func (s *Server) buildUniform(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		var req uniformRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		if err := ed.BuildUniform(req.Rows, req.Caps); err != nil {
			return err
		}

		return view(c, ed, nil)
	})
}

func (s *Server) addRow(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		var req rowRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		if err := ed.AddRow(req.Caps); err != nil {
			return err
		}

		return view(c, ed, nil)
	})
}

func (s *Server) deleteRow(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		y, err := intParam(c, "y")
		if err != nil {
			return err
		}
		if err := ed.DeleteRow(y); err != nil {
			return err
		}

		return view(c, ed, nil)
	})
}

func (s *Server) clearSchema(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		ed.ClearSchema()
		return view(c, ed, nil)
	})
}

// ============================================================================
// Selection and placements
// ============================================================================

func (s *Server) selectStudent(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		id, err := intParam(c, "student")
		if err != nil {
			return err
		}
		if err := ed.SelectStudent(id); err != nil {
			return err
		}

		return view(c, ed, nil)
	})
}

func (s *Server) clearSelection(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		ed.ClearSelection()
		return view(c, ed, nil)
	})
}

func (s *Server) seatClick(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		key, err := types.ParseSeatKey(c.Param("seat"))
		if err != nil {
			return err
		}
		result, err := ed.SeatClick(key)
		if err != nil {
			return err
		}

		return view(c, ed, echo.Map{"result": result})
	})
}

func (s *Server) unassignSelected(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		removed, err := ed.UnassignSelected()
		if err != nil {
			return err
		}

		return view(c, ed, echo.Map{"removed": removed})
	})
}

func (s *Server) toggleSeatBan(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		banned, err := ed.ToggleSelectedSeatBan()
		if err != nil {
			return err
		}

		return view(c, ed, echo.Map{"forbidden": banned})
	})
}

func (s *Server) resetPlan(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		restored := ed.ResetPlanKeepRoom()
		return view(c, ed, echo.Map{"restored": restored})
	})
}

func (s *Server) autoFill(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		placed, err := ed.AutoFill()
		if err != nil {
			return err
		}

		return view(c, ed, echo.Map{"placed": placed})
	})
}

// ============================================================================
// Constraints
// ============================================================================

func (s *Server) addConstraint(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		var req constraintRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		batchID, err := ed.AddConstraint(req.Kind, req.Students, req.Param)
		if err != nil {
			return err
		}

		return view(c, ed, echo.Map{"batch_id": batchID})
	})
}

func (s *Server) deleteConstraint(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		var con seatplan.Constraint
		if err := bind(c, &con); err != nil {
			return err
		}
		if err := ed.DeleteConstraint(con); err != nil {
			return err
		}

		return view(c, ed, nil)
	})
}

func (s *Server) editBatch(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		var req constraintRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		if err := ed.EditBatch(c.Param("batch"), req.Kind, req.Students, req.Param); err != nil {
			return err
		}

		return view(c, ed, nil)
	})
}

func (s *Server) deleteBatch(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		n, err := ed.DeleteBatch(c.Param("batch"))
		if err != nil {
			return err
		}

		return view(c, ed, echo.Map{"removed": n})
	})
}

func (s *Server) beginEditBatch(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		marker, err := ed.BeginEditBatch(c.Param("batch"))
		if err != nil {
			return err
		}

		return view(c, ed, echo.Map{"marker": marker})
	})
}

func (s *Server) endEditBatch(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		ed.EndEditBatch()
		return view(c, ed, nil)
	})
}

// ============================================================================
// Table layout
// ============================================================================

func (s *Server) selectTable(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		key, err := types.ParseTableKey(c.Param("table"))
		if err != nil {
			return err
		}
		if err := ed.SelectTable(key); err != nil {
			return err
		}

		return view(c, ed, nil)
	})
}

func (s *Server) nudge(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		var req nudgeRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		dir, ok := types.ParseDirection(req.Direction)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown direction %q", req.Direction))
		}
		draft, err := ed.Nudge(dir)
		if err != nil {
			return err
		}

		return view(c, ed, echo.Map{"draft": draft})
	})
}

func (s *Server) commitNudge(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		moved, err := ed.CommitNudge()
		if err != nil {
			return err
		}

		return view(c, ed, echo.Map{"moved": moved})
	})
}

func (s *Server) cancelNudge(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		ed.CancelNudge()
		return view(c, ed, nil)
	})
}

func (s *Server) deselectTable(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		ed.DeselectTable()
		return view(c, ed, nil)
	})
}

func (s *Server) resetTables(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		ed.ResetTablePositions()
		return view(c, ed, nil)
	})
}

// ============================================================================
// Solve and export
// ============================================================================

func (s *Server) startSolve(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		job, err := ed.StartSolve(c.Request().Context())
		if err != nil {
			return err
		}

		return c.JSON(http.StatusAccepted, job.Info())
	})
}

func (s *Server) solveStatus(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		job, ok := ed.CurrentSolve()
		if !ok {
			return c.JSON(http.StatusOK, echo.Map{"in_flight": false})
		}

		return c.JSON(http.StatusOK, echo.Map{"in_flight": true, "job": job.Info()})
	})
}

func (s *Server) cancelSolve(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		return c.JSON(http.StatusOK, echo.Map{"canceled": ed.CancelSolve()})
	})
}

func (s *Server) export(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		links, err := ed.Export(c.Request().Context())
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, echo.Map{"status": "OK", "download": links})
	})
}

// ============================================================================
// Rendering and interchange
// ============================================================================

func mirrored(c echo.Context) bool {
	return c.QueryParam("view") == "teacher"
}

func (s *Server) renderSVG(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		return c.Blob(http.StatusOK, "image/svg+xml", []byte(ed.RenderSVG(mirrored(c))))
	})
}

func (s *Server) renderPDF(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		doc, err := ed.RenderPDF(mirrored(c), c.QueryParam("qr"))
		if err != nil {
			return err
		}

		return c.Blob(http.StatusOK, "application/pdf", doc)
	})
}

func (s *Server) exportDocument(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		data, err := ed.ExportJSON()
		if err != nil {
			return err
		}

		return c.JSONBlob(http.StatusOK, data)
	})
}

func (s *Server) importDocument(c echo.Context) error {
	return s.withEditor(c, func(ed *seatplan.Editor) error {
		data, err := readBody(c)
		if err != nil {
			return err
		}
		if err := ed.ImportJSON(data); err != nil {
			return err
		}

		return view(c, ed, nil)
	})
}
