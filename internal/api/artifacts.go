package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/arloliu/seatplan"
	"github.com/arloliu/seatplan/internal/blobstore"
	"github.com/arloliu/seatplan/internal/room"
	"github.com/arloliu/seatplan/types"
)

// maxDocumentSize bounds imported documents.
const maxDocumentSize = 4 << 20

var contentTypes = map[string]string{
	"json": echo.MIMEApplicationJSON,
	"svg":  "image/svg+xml",
	"pdf":  "application/pdf",
	"txt":  echo.MIMETextPlainCharsetUTF8,
}

func readBody(c echo.Context) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxDocumentSize+1))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "read request body").SetInternal(err)
	}
	if len(data) > maxDocumentSize {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "document too large")
	}

	return data, nil
}

// artifactResponse lists the download links of one artifact group.
type artifactResponse struct {
	Link      string            `json:"link"`
	ExpiresAt time.Time         `json:"expires_at"`
	Download  map[string]string `json:"download"`
}

// createArtifacts renders the plan, stores every format under a fresh token
// and answers with signed download links. The PDF carries a QR code pointing
// to the JSON document, so a printed plan can be reopened in the editor.
// Every format comes from the same snapshot; a failed store leaves no
// partial group behind.
func (s *Server) createArtifacts(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	link, exp, err := s.links.Sign(token, s.cfg.ArtifactTTL)
	if err != nil {
		return err
	}

	urls := make(map[string]string, len(contentTypes))
	for format := range contentTypes {
		urls[format] = "/v1/artifacts/" + link + "/" + format
	}

	art, err := sess.editor.RenderArtifacts(s.cfg.PublicURL + urls["json"])
	if err != nil {
		return err
	}
	req := art.Request

	prefix := filePrefix(req.ClassName, req.Schema, s.now())
	blobs := map[string]blobstore.Blob{
		"json": {Data: art.Document, Name: prefix + ".json"},
		"svg":  {Data: []byte(req.SVGMarkup), Name: prefix + ".svg"},
		"pdf":  {Data: art.PDF, Name: prefix + ".pdf"},
		"txt":  {Data: []byte(humanSummary(req.Constraints)), Name: prefix + ".txt"},
	}

	ctx := c.Request().Context()
	stored := make([]string, 0, len(blobs))
	for format, blob := range blobs {
		if err := s.blobs.Put(ctx, token, format, blob, s.cfg.ArtifactTTL); err != nil {
			s.discardArtifacts(ctx, token, stored)
			return err
		}
		stored = append(stored, format)
	}
	s.logger.Info("artifacts stored", "session_id", sess.id, "class_name", req.ClassName, "expires_at", exp)

	return c.JSON(http.StatusCreated, artifactResponse{Link: link, ExpiresAt: exp, Download: urls})
}

// discardArtifacts removes the formats already stored under token.
func (s *Server) discardArtifacts(ctx context.Context, token string, formats []string) {
	// the request context may be the reason the store failed
	ctx = context.WithoutCancel(ctx)
	for _, format := range formats {
		if err := s.blobs.Delete(ctx, token, format); err != nil {
			s.logger.Warn("discard partial artifact", "format", format, "error", err)
		}
	}
}

func (s *Server) downloadArtifact(c echo.Context) error {
	format := c.Param("format")
	contentType, ok := contentTypes[format]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("unknown format %q", format))
	}

	token, err := s.links.Verify(c.Param("link"))
	if err != nil {
		return err
	}

	blob, err := s.blobs.Get(c.Request().Context(), token, format)
	if err != nil {
		return err
	}

	name := blob.Name
	if name == "" {
		name = "seatplan-export." + format
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))

	return c.Blob(http.StatusOK, contentType, blob.Data)
}

// filePrefix names downloads "plan_<class>_<room code>_<DD-MM>".
func filePrefix(className string, schema types.Schema, now time.Time) string {
	return fmt.Sprintf("plan_%s_%s_%s", slug(className), room.ConfigCode(schema), now.Format("02-01"))
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}

	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "class"
	}

	return out
}

// humanSummary lists one readable line per rule group and objective.
// Batched rules are summarized by their marker.
func humanSummary(entries []any) string {
	var b strings.Builder
	for _, e := range entries {
		var line string
		switch v := e.(type) {
		case seatplan.Constraint:
			if v.BatchID != "" {
				continue
			}
			line = v.Human
		case seatplan.BatchMarker:
			line = v.Human
		case types.Objective:
			line = v.Human
		}
		if line != "" {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	return b.String()
}
