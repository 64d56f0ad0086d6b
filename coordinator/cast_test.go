package coordinator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"evotemfc/configs"
	"evotemfc/coreerr"
	"evotemfc/locks"
	"evotemfc/registry"
	"evotemfc/shareserver"
	"evotemfc/transport"
)

var castTestKey = []byte("0123456789abcdef0123456789abcdef")

const testModulus = int64(101)

type fakeRegistry struct {
	election   *registry.Election
	candidates map[string]*registry.Candidate
	voters     map[string]int64 // fingerprint -> voter id
	casts      []int64
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		election: &registry.Election{ID: "7", Status: registry.ElectionOpen},
		candidates: map[string]*registry.Candidate{
			"3": {ID: "3", ElectionID: "7", Active: true},
		},
		voters: map[string]int64{"fp-42": 11},
	}
}

func (f *fakeRegistry) ResolveVoter(_ context.Context, _, fingerprint string) (int64, error) {
	id, ok := f.voters[fingerprint]
	if !ok {
		return 0, registryNotFound("voter")
	}
	return id, nil
}

func (f *fakeRegistry) Election(_ context.Context, electionID string) (*registry.Election, error) {
	if electionID != f.election.ID {
		return nil, registryNotFound("election")
	}
	return f.election, nil
}

func (f *fakeRegistry) ActiveCandidate(_ context.Context, electionID, candidateID string) (*registry.Candidate, error) {
	c, ok := f.candidates[candidateID]
	if !ok || c.ElectionID != electionID || !c.Active {
		return nil, registryNotFound("candidate")
	}
	return c, nil
}

func (f *fakeRegistry) RecordCast(_ context.Context, _ string, voterID int64) error {
	f.casts = append(f.casts, voterID)
	return nil
}

func registryNotFound(what string) error {
	return notFoundErr{what}
}

type notFoundErr struct{ what string }

func (e notFoundErr) Error() string { return "unknown " + e.what }

func newShareNodeMux(nodeID configs.NodeID) *http.ServeMux {
	srv := shareserver.NewServer(nodeID, testModulus, shareserver.NewMemoryStore(testModulus), nil, castTestKey)
	mux := http.NewServeMux()
	srv.Routes(mux)
	return mux
}

func failingOn(real http.Handler, failPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == failPath {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		real.ServeHTTP(w, r)
	}
}

func newCoordinator(t *testing.T, nodeAURL, nodeBURL string) (*Coordinator, *fakeRegistry) {
	t.Helper()
	reg := newFakeRegistry()
	client := transport.NewClient(castTestKey, 2*time.Second)
	nodeA := NewShareNode("A", nodeAURL, client)
	nodeB := NewShareNode("B", nodeBURL, client)
	store := NewMemoryStore()
	voterLocks := locks.NewVoterLocks()
	c := New(reg, nodeA, nodeB, store, voterLocks, nil, testModulus, 2*time.Second)
	return c, reg
}

func TestCastHappyPathAndTally(t *testing.T) {
	tsA := httptest.NewServer(newShareNodeMux(configs.NodeA))
	defer tsA.Close()
	tsB := httptest.NewServer(newShareNodeMux(configs.NodeB))
	defer tsB.Close()

	c, reg := newCoordinator(t, tsA.URL, tsB.URL)

	result, err := c.Cast(context.Background(), "fp-42", "7", "3")
	require.NoError(t, err)
	require.NotEmpty(t, result.TxRoot)
	require.Len(t, reg.casts, 1)

	tally, err := c.Tally(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, tally.Tallies, 1)
	require.Equal(t, "3", tally.Tallies[0].CandidateID)
	require.Equal(t, int64(1), tally.Tallies[0].Total)
}

func TestCastDoubleVoteRejected(t *testing.T) {
	tsA := httptest.NewServer(newShareNodeMux(configs.NodeA))
	defer tsA.Close()
	tsB := httptest.NewServer(newShareNodeMux(configs.NodeB))
	defer tsB.Close()

	c, _ := newCoordinator(t, tsA.URL, tsB.URL)

	_, err := c.Cast(context.Background(), "fp-42", "7", "3")
	require.NoError(t, err)

	_, err = c.Cast(context.Background(), "fp-42", "7", "3")
	require.Error(t, err)

	tally, err := c.Tally(context.Background(), "7")
	require.NoError(t, err)
	require.Equal(t, int64(1), tally.Tallies[0].Total)
}

func TestCastPrepareFailureOnBAbortsBoth(t *testing.T) {
	tsA := httptest.NewServer(newShareNodeMux(configs.NodeA))
	defer tsA.Close()
	tsB := httptest.NewServer(failingOn(newShareNodeMux(configs.NodeB), "/internal/share/prepare"))
	defer tsB.Close()

	c, _ := newCoordinator(t, tsA.URL, tsB.URL)

	_, err := c.Cast(context.Background(), "fp-42", "7", "3")
	require.Error(t, err)

	tally, err := c.Tally(context.Background(), "7")
	require.NoError(t, err)
	require.Empty(t, tally.Tallies)
}

func TestCastCommitFailureOnBAfterACommits(t *testing.T) {
	tsA := httptest.NewServer(newShareNodeMux(configs.NodeA))
	defer tsA.Close()
	tsB := httptest.NewServer(failingOn(newShareNodeMux(configs.NodeB), "/internal/share/commit"))
	defer tsB.Close()

	c, _ := newCoordinator(t, tsA.URL, tsB.URL)

	_, err := c.Cast(context.Background(), "fp-42", "7", "3")
	require.Error(t, err)
	require.Equal(t, coreerr.Gateway, coreerr.KindOf(err))

	// A's share was already committed before B's commit failed; tally
	// reflects that unrecovered asymmetry until an operator intervenes.
	tally, err := c.Tally(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, tally.Tallies, 1)
	require.GreaterOrEqual(t, tally.Tallies[0].Total, int64(0))
	require.Less(t, tally.Tallies[0].Total, testModulus)
}

func TestTallyModulusMismatch(t *testing.T) {
	tsA := httptest.NewServer(newShareNodeMux(configs.NodeA))
	defer tsA.Close()
	mismatched := shareserver.NewServer(configs.NodeB, testModulus+1, shareserver.NewMemoryStore(testModulus+1), nil, castTestKey)
	muxB := http.NewServeMux()
	mismatched.Routes(muxB)
	tsB := httptest.NewServer(muxB)
	defer tsB.Close()

	c, _ := newCoordinator(t, tsA.URL, tsB.URL)

	_, err := c.Tally(context.Background(), "7")
	require.Error(t, err)
}
