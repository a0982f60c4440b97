package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arloliu/seatplan/internal/blobstore"
	"github.com/arloliu/seatplan/strategy"
	"github.com/arloliu/seatplan/types"
)

var (
	// errSessionNotFound is returned for an unknown session id.
	errSessionNotFound = errors.New("session not found")

	// errTooManySessions is returned when the session cap is reached.
	errTooManySessions = errors.New("too many open sessions")
)

// statusOf maps an error to its HTTP status.
func statusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}

	switch {
	case errors.Is(err, errSessionNotFound),
		errors.Is(err, errInvalidLink),
		errors.Is(err, blobstore.ErrNotFound),
		errors.Is(err, types.ErrBatchNotFound),
		errors.Is(err, types.ErrConstraintNotFound):
		return http.StatusNotFound

	case errors.Is(err, types.ErrSolveInFlight),
		errors.Is(err, types.ErrSeatOccupied),
		errors.Is(err, types.ErrSeatForbidden),
		errors.Is(err, types.ErrCollision),
		errors.Is(err, types.ErrSelectionActive),
		errors.Is(err, types.ErrBatchedConstraint),
		errors.Is(err, types.ErrInvalidAssignment),
		errors.Is(err, strategy.ErrNoFreeSeats):
		return http.StatusConflict

	case errors.Is(err, types.ErrExportFailed),
		errors.Is(err, types.ErrSolveTransport):
		return http.StatusBadGateway

	case errors.Is(err, errTooManySessions),
		errors.Is(err, types.ErrSolverBackendRequired),
		errors.Is(err, types.ErrExportBackendRequired):
		return http.StatusServiceUnavailable

	case errors.Is(err, types.ErrInvalidConfig),
		errors.Is(err, types.ErrInvalidSchema),
		errors.Is(err, types.ErrInvalidSeat),
		errors.Is(err, types.ErrMalformedKey),
		errors.Is(err, types.ErrUnknownStudent),
		errors.Is(err, types.ErrDuplicateStudent),
		errors.Is(err, types.ErrNoSeatSelected),
		errors.Is(err, types.ErrUnsupportedKind),
		errors.Is(err, types.ErrMalformedConstraint),
		errors.Is(err, types.ErrNotEnoughStudents),
		errors.Is(err, types.ErrNoTableArmed),
		errors.Is(err, types.ErrUnknownTable),
		errors.Is(err, types.ErrNoStudents),
		errors.Is(err, types.ErrNoUsableSchema),
		errors.Is(err, types.ErrClassNameRequired),
		errors.Is(err, types.ErrInvalidDocument):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// handleError writes every handler error as {"error": message}.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := statusOf(err)
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}

	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"status", code,
			"error", err,
		)
	} else {
		s.logger.Debug("request rejected", "method", c.Request().Method, "path", c.Path(), "status", code, "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, echo.Map{"error": msg})
	}
	if err != nil {
		s.logger.Error("write error response", "error", err)
	}
}
