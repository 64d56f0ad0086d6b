// Package fingerprintbuf exposes locks.FingerprintBuffer over HTTP: the
// scan step of the original two-step scan-then-vote flow
// (original_source/e-vote-backend/fingerprint.py), modeled per spec §9 as
// a dedicated component rather than a free global variable.
package fingerprintbuf

import (
	"encoding/json"
	"net/http"

	"evotemfc/coreerr"
	"evotemfc/locks"
)

// Server exposes the capture buffer's set (capture) and get (current)
// operations; Clear is not exposed over HTTP.
type Server struct {
	Buffer *locks.FingerprintBuffer
}

func NewServer(buffer *locks.FingerprintBuffer) *Server {
	return &Server{Buffer: buffer}
}

type captureRequest struct {
	Fingerprint string `json:"fingerprint"`
}

type currentResponse struct {
	Fingerprint string `json:"fingerprint"`
	Present     bool   `json:"present"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// Routes registers the capture buffer's two endpoints on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/fingerprint/capture", s.handleCapture)
	mux.HandleFunc("/api/fingerprint/current", s.handleCurrent)
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, coreerr.New(coreerr.BadRequest, "method not allowed"))
		return
	}
	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Fingerprint == "" {
		writeError(w, coreerr.New(coreerr.BadRequest, "malformed capture body"))
		return
	}
	s.Buffer.Set(req.Fingerprint)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, coreerr.New(coreerr.BadRequest, "method not allowed"))
		return
	}
	fingerprint, ok := s.Buffer.Get()
	resp := currentResponse{Fingerprint: fingerprint, Present: ok}
	if ok {
		resp.UpdatedAt = s.Buffer.UpdatedAt().UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, err error) {
	kind := coreerr.KindOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(kind.HTTPStatus())
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
