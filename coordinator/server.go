package coordinator

import (
	"encoding/json"
	"net/http"
	"strings"

	"evotemfc/coreerr"
)

// Server exposes the external HTTP API of spec §6: cast_mpc and
// tally_mpc, aliasing the wire field names vote_id/party_id onto the
// internal election_id/candidate_id vocabulary.
type Server struct {
	Coordinator *Coordinator
}

func NewServer(c *Coordinator) *Server {
	return &Server{Coordinator: c}
}

type castRequest struct {
	Fingerprint string `json:"fingerprint"`
	VoteID      string `json:"vote_id"`
	PartyID     string `json:"party_id"`
}

type castResponse struct {
	Status string `json:"status"`
	TxID   string `json:"tx_id"`
}

type tallyEntry struct {
	PartyID    string `json:"party_id"`
	TotalVotes int64  `json:"total_votes"`
}

type tallyNodes struct {
	A string `json:"A"`
	B string `json:"B"`
}

type tallyResponse struct {
	VoteID  string       `json:"vote_id"`
	Tally   []tallyEntry `json:"tally"`
	Modulus int64        `json:"modulus"`
	Nodes   tallyNodes   `json:"nodes"`
}

// Routes registers the two external endpoints on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/vote/cast_mpc", s.handleCast)
	mux.HandleFunc("/api/vote/tally_mpc/", s.handleTally)
}

func (s *Server) handleCast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, coreerr.New(coreerr.BadRequest, "method not allowed"))
		return
	}
	var req castRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, coreerr.New(coreerr.BadRequest, "malformed cast body"))
		return
	}
	result, err := s.Coordinator.Cast(r.Context(), req.Fingerprint, req.VoteID, req.PartyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, castResponse{Status: "ok", TxID: result.TxRoot})
}

func (s *Server) handleTally(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, coreerr.New(coreerr.BadRequest, "method not allowed"))
		return
	}
	voteID := strings.TrimPrefix(r.URL.Path, "/api/vote/tally_mpc/")
	if voteID == "" {
		writeError(w, coreerr.New(coreerr.BadRequest, "missing vote_id"))
		return
	}
	result, err := s.Coordinator.Tally(r.Context(), voteID)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := tallyResponse{
		VoteID:  result.ElectionID,
		Modulus: result.Modulus,
		Nodes:   tallyNodes{A: result.NodeA, B: result.NodeB},
		Tally:   make([]tallyEntry, 0, len(result.Tallies)),
	}
	for _, t := range result.Tallies {
		resp.Tally = append(resp.Tally, tallyEntry{PartyID: t.CandidateID, TotalVotes: t.Total})
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	kind := coreerr.KindOf(err)
	writeJSON(w, kind.HTTPStatus(), map[string]string{"error": err.Error()})
}
