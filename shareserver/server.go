package shareserver

import (
	"encoding/json"
	"net/http"

	"evotemfc/configs"
	"evotemfc/coreerr"
	"evotemfc/logging"
	"evotemfc/transport"
)

// Server exposes the four share-node operations of spec §4.2 over signed
// HTTP, grounded on network/participant/manager.go's Manager-over-a-store
// shape (here, over a Store interface instead of a sharded in-memory KV).
type Server struct {
	NodeID  configs.NodeID
	Modulus int64
	Store   Store
	Log     *TxnLog // optional
	Key     []byte
	log     *logging.Logger
}

// NewServer builds a Server. wal may be nil to disable the WAL side-log.
func NewServer(nodeID configs.NodeID, modulus int64, store Store, wal *TxnLog, key []byte) *Server {
	return &Server{
		NodeID:  nodeID,
		Modulus: modulus,
		Store:   store,
		Log:     wal,
		Key:     key,
		log:     logging.New("shareserver." + string(nodeID)),
	}
}

type prepareRequest struct {
	TxID    string `json:"tx_id"`
	VoteID  string `json:"vote_id"`
	PartyID string `json:"party_id"`
	Delta   int64  `json:"delta"`
}

type txIDRequest struct {
	TxID string `json:"tx_id"`
}

type okResponse struct {
	Status string `json:"status"`
}

type snapshotTotal struct {
	ElectionID  string `json:"election_id"`
	CandidateID string `json:"candidate_id"`
	Share       int64  `json:"share"`
}

type snapshotResponse struct {
	NodeID  string          `json:"node_id"`
	Modulus int64           `json:"modulus"`
	Totals  []snapshotTotal `json:"totals"`
}

// Routes registers the four internal endpoints on mux, each behind
// transport.RequireSigned.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/internal/share/prepare", transport.RequireSigned(s.Key, configs.FreshnessWindow, s.handlePrepare))
	mux.HandleFunc("/internal/share/commit", transport.RequireSigned(s.Key, configs.FreshnessWindow, s.handleCommit))
	mux.HandleFunc("/internal/share/abort", transport.RequireSigned(s.Key, configs.FreshnessWindow, s.handleAbort))
	mux.HandleFunc("/internal/share/snapshot", transport.RequireSigned(s.Key, configs.FreshnessWindow, s.handleSnapshot))
}

func (s *Server) handlePrepare(w http.ResponseWriter, r *http.Request) {
	var req prepareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, coreerr.New(coreerr.BadRequest, "malformed prepare body"))
		return
	}
	status, err := s.Store.Prepare(r.Context(), req.TxID, req.VoteID, req.PartyID, req.Delta)
	if err != nil {
		s.log.Warnf("prepare %s rejected: %v", req.TxID, err)
		writeError(w, err)
		return
	}
	if s.Log != nil {
		if err := s.Log.Append(req.TxID, status); err != nil {
			s.log.Errorf("wal append failed for %s: %v", req.TxID, err)
		}
	}
	writeJSON(w, http.StatusOK, okResponse{Status: status.String()})
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	var req txIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, coreerr.New(coreerr.BadRequest, "malformed commit body"))
		return
	}
	status, err := s.Store.Commit(r.Context(), req.TxID)
	if err != nil {
		s.log.Warnf("commit %s rejected: %v", req.TxID, err)
		writeError(w, err)
		return
	}
	if s.Log != nil {
		if err := s.Log.Append(req.TxID, status); err != nil {
			s.log.Errorf("wal append failed for %s: %v", req.TxID, err)
		}
	}
	writeJSON(w, http.StatusOK, okResponse{Status: status.String()})
}

func (s *Server) handleAbort(w http.ResponseWriter, r *http.Request) {
	var req txIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, coreerr.New(coreerr.BadRequest, "malformed abort body"))
		return
	}
	status, err := s.Store.Abort(r.Context(), req.TxID)
	if err != nil {
		s.log.Warnf("abort %s rejected: %v", req.TxID, err)
		writeError(w, err)
		return
	}
	if s.Log != nil {
		if err := s.Log.Append(req.TxID, status); err != nil {
			s.log.Errorf("wal append failed for %s: %v", req.TxID, err)
		}
	}
	writeJSON(w, http.StatusOK, okResponse{Status: status.String()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	totals, err := s.Store.Snapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	resp := snapshotResponse{NodeID: string(s.NodeID), Modulus: s.Modulus, Totals: make([]snapshotTotal, 0, len(totals))}
	for _, t := range totals {
		resp.Totals = append(resp.Totals, snapshotTotal{ElectionID: t.ElectionID, CandidateID: t.CandidateID, Share: t.Share})
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
