package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/cornerpin/pkg/buildinfo"
	cperrors "github.com/matzehuels/cornerpin/pkg/errors"
	"github.com/matzehuels/cornerpin/pkg/projective"
)

type errorResponse struct {
	Code    cperrors.Code `json:"code"`
	Message string        `json:"message"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type matrixRequest struct {
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Points [][2]float64 `json:"points"`
}

type matrixResponse struct {
	Matrix [16]float64 `json:"matrix"`
	CSS    string      `json:"css"`
	Affine bool        `json:"affine"`
}

type pointsRequest struct {
	Points [][2]float64 `json:"points"`
}

type pointsResponse struct {
	Key    string        `json:"key"`
	Points [4][2]float64 `json:"points"`
}

type keysResponse struct {
	Keys []string `json:"keys"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: buildinfo.Version})
}

func (s *Server) handleMatrix(w http.ResponseWriter, r *http.Request) {
	var req matrixRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	q, err := quadFromJSON(req.Points)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMatrix(w, r, req.Width, req.Height, q)
}

func (s *Server) handleListPoints(w http.ResponseWriter, r *http.Request) {
	keys, err := s.points.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, keysResponse{Keys: keys})
}

func (s *Server) handleGetPoints(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q, err := s.points.MustGet(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pointsResponse{Key: key, Points: quadToJSON(q)})
}

func (s *Server) handlePutPoints(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req pointsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	q, err := quadFromJSON(req.Points)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.points.Set(r.Context(), key, q); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pointsResponse{Key: key, Points: quadToJSON(q)})
}

func (s *Server) handleDeletePoints(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.points.Delete(r.Context(), key); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStoredMatrix(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	width, err := floatQuery(r, "width")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	height, err := floatQuery(r, "height")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q, err := s.points.MustGet(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMatrix(w, r, width, height, q)
}

func (s *Server) writeMatrix(w http.ResponseWriter, r *http.Request, width, height float64, q projective.Quad) {
	if err := cperrors.ValidateDimensions(width, height); err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := projective.RectToQuad(width, height, q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, matrixResponse{Matrix: m, CSS: m.CSS(), Affine: m.IsAffine()})
}

// =============================================================================
// Helpers
// =============================================================================

func keyParam(r *http.Request) (string, error) {
	key := chi.URLParam(r, "key")
	if err := cperrors.ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

func floatQuery(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, cperrors.New(cperrors.ErrCodeInvalidDimensions, "missing query parameter %q", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, cperrors.New(cperrors.ErrCodeInvalidDimensions, "query parameter %q is not a number", name)
	}
	return v, nil
}

func quadFromJSON(pts [][2]float64) (projective.Quad, error) {
	if len(pts) != 4 {
		return projective.Quad{}, cperrors.New(cperrors.ErrCodeInvalidPoints, "need 4 points, got %d", len(pts))
	}
	vals := make([]float64, 0, 8)
	for _, p := range pts {
		vals = append(vals, p[0], p[1])
	}
	return projective.QuadFromFloats(vals)
}

func quadToJSON(q projective.Quad) [4][2]float64 {
	var out [4][2]float64
	for i, p := range q {
		out[i] = [2]float64{p.X, p.Y}
	}
	return out
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return cperrors.Wrap(cperrors.ErrCodeInvalidFormat, err, "invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError classifies err and writes it with the matching status.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	err = cperrors.Classify(err)
	code := cperrors.GetCode(err)
	status := cperrors.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "code", code, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: cperrors.UserMessage(err)})
}
