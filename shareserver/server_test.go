package shareserver

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"evotemfc/configs"
	"evotemfc/transport"
)

var serverTestKey = []byte("0123456789abcdef0123456789abcdef")

func newTestServer() (*Server, *httptest.Server) {
	srv := NewServer(configs.NodeA, 101, NewMemoryStore(101), nil, serverTestKey)
	mux := http.NewServeMux()
	srv.Routes(mux)
	return srv, httptest.NewServer(mux)
}

func signedPost(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	canonical, err := transport.CanonicalBody(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(canonical))
	require.NoError(t, err)
	ts := time.Now().Unix()
	req.Header.Set(transport.HeaderTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(transport.HeaderSignature, transport.Sign(serverTestKey, ts, canonical))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func signedGet(t *testing.T, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	ts := time.Now().Unix()
	req.Header.Set(transport.HeaderTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(transport.HeaderSignature, transport.Sign(serverTestKey, ts, []byte("{}")))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestServerPrepareCommitSnapshot(t *testing.T) {
	_, ts := newTestServer()
	defer ts.Close()

	resp := signedPost(t, ts.URL+"/internal/share/prepare", map[string]interface{}{
		"tx_id": "tx1", "vote_id": "e1", "party_id": "c1", "delta": 40,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = signedPost(t, ts.URL+"/internal/share/commit", map[string]interface{}{"tx_id": "tx1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = signedGet(t, ts.URL+"/internal/share/snapshot")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestServerAbortAfterPrepare(t *testing.T) {
	_, ts := newTestServer()
	defer ts.Close()

	resp := signedPost(t, ts.URL+"/internal/share/prepare", map[string]interface{}{
		"tx_id": "tx1", "vote_id": "e1", "party_id": "c1", "delta": 40,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = signedPost(t, ts.URL+"/internal/share/abort", map[string]interface{}{"tx_id": "tx1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = signedPost(t, ts.URL+"/internal/share/commit", map[string]interface{}{"tx_id": "tx1"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestServerRejectsUnsignedRequest(t *testing.T) {
	_, ts := newTestServer()
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/internal/share/prepare", "application/json", bytes.NewReader([]byte(`{"tx_id":"tx1"}`)))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestServerCommitUnknownTxIsNotFound(t *testing.T) {
	_, ts := newTestServer()
	defer ts.Close()

	resp := signedPost(t, ts.URL+"/internal/share/commit", map[string]interface{}{"tx_id": "ghost"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestServerPrepareWithWALAppendsEntries(t *testing.T) {
	dir := t.TempDir()
	wal, err := OpenTxnLog(dir)
	require.NoError(t, err)
	defer wal.Close()

	store := NewMemoryStore(101)
	srv := NewServer(configs.NodeB, 101, store, wal, serverTestKey)
	mux := http.NewServeMux()
	srv.Routes(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	resp := signedPost(t, ts.URL+"/internal/share/prepare", map[string]interface{}{
		"tx_id": "tx1", "vote_id": "e1", "party_id": "c1", "delta": 5,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	_, found, err := store.Lookup(context.Background(), "tx1")
	require.NoError(t, err)
	require.True(t, found)

	last, err := wal.log.LastIndex()
	require.NoError(t, err)
	require.Equal(t, uint64(1), last)
}
