package fingerprintbuf

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"evotemfc/locks"
)

func TestCaptureThenCurrent(t *testing.T) {
	srv := NewServer(locks.NewFingerprintBuffer())
	mux := http.NewServeMux()
	srv.Routes(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/fingerprint/capture", "application/json", bytes.NewReader([]byte(`{"fingerprint":"fp-42"}`)))
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/fingerprint/current")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var current currentResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&current))
	require.True(t, current.Present)
	require.Equal(t, "fp-42", current.Fingerprint)
}

func TestCurrentWhenEmpty(t *testing.T) {
	srv := NewServer(locks.NewFingerprintBuffer())
	mux := http.NewServeMux()
	srv.Routes(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/fingerprint/current")
	require.NoError(t, err)
	defer resp.Body.Close()

	var current currentResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&current))
	require.False(t, current.Present)
}
