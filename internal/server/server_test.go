package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nverrors "github.com/ya-spark/netview-backendlog/internal/errors"
	"github.com/ya-spark/netview-backendlog/internal/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*Server, *logging.RotatingLogger) {
	t.Helper()
	l, err := logging.New(logging.Config{Directory: t.TempDir()})
	require.NoError(t, err)
	return New(l, Options{Addr: "127.0.0.1:0", TailLimit: 5}), l
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestWrite_AppendsRecord(t *testing.T) {
	// Given: a running server
	s, l := newTestServer(t)

	// When: posting a record
	rec := do(t, s, http.MethodPost, "/api/logs", `{"level":"warn","message":"cpu high","source":"probe"}`)

	// Then: it lands in the current file
	require.Equal(t, http.StatusNoContent, rec.Code)
	data, err := os.ReadFile(l.CurrentFile())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[WARN] [probe] cpu high")
}

func TestWrite_DefaultsToInfoAndDefaultSource(t *testing.T) {
	s, l := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/logs", `{"message":"hello"}`)

	require.Equal(t, http.StatusNoContent, rec.Code)
	data, err := os.ReadFile(l.CurrentFile())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] [backend] hello")
}

func TestWrite_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"unknown level", `{"level":"loud","message":"x"}`, nverrors.ErrCodeInvalidLevel},
		{"empty message", `{"level":"info","message":""}`, nverrors.ErrCodeEmptyMessage},
		{"not json", `level=info`, nverrors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)

			rec := do(t, s, http.MethodPost, "/api/logs", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			errBody, ok := decode(t, rec)["error"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.code, errBody["code"])
		})
	}
}

func TestWrite_FilesystemFailureIs500(t *testing.T) {
	s, l := newTestServer(t)
	require.NoError(t, os.RemoveAll(l.Directory()))

	rec := do(t, s, http.MethodPost, "/api/logs", `{"message":"lost"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	errBody := decode(t, rec)["error"].(map[string]any)
	assert.Equal(t, nverrors.ErrCodeFileNotFound, errBody["code"])
}

func TestStats(t *testing.T) {
	s, l := newTestServer(t)
	require.NoError(t, l.Info("one"))
	require.NoError(t, l.Info("two"))

	rec := do(t, s, http.MethodGet, "/api/logs/stats", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var stats logging.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.FileCount)
	assert.Equal(t, l.CurrentSize(), stats.TotalSize)
	assert.Equal(t, l.CurrentFile(), stats.CurrentFile)
}

func TestFiles(t *testing.T) {
	s, l := newTestServer(t)
	require.NoError(t, l.Info("one"))
	require.NoError(t, l.Rotate())
	require.NoError(t, l.Info("two"))

	rec := do(t, s, http.MethodGet, "/api/logs/files", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Files []string `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Files, 2)
	assert.Equal(t, l.CurrentFile(), body.Files[0])
}

func TestTail(t *testing.T) {
	s, l := newTestServer(t)
	for _, m := range []string{"a", "b", "c"} {
		require.NoError(t, l.Info(m))
	}

	rec := do(t, s, http.MethodGet, "/api/logs/tail?n=2", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Entries []logging.LogEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Entries, 2)
	assert.Equal(t, "b", body.Entries[0].Msg)
	assert.Equal(t, "c", body.Entries[1].Msg)
}

func TestTail_CapsAtLimit(t *testing.T) {
	s, l := newTestServer(t)
	for range 10 {
		require.NoError(t, l.Info("x"))
	}

	rec := do(t, s, http.MethodGet, "/api/logs/tail?n=500", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Entries []logging.LogEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Entries, 5)
}

func TestTail_EmptyDirectoryReturnsEmptyList(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/logs/tail", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"entries":[]}`, rec.Body.String())
}

func TestTail_RejectsBadN(t *testing.T) {
	s, _ := newTestServer(t)

	for _, n := range []string{"abc", "0", "-4"} {
		rec := do(t, s, http.MethodGet, "/api/logs/tail?n="+n, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, n)
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRun_ListenFailure(t *testing.T) {
	l, err := logging.New(logging.Config{Directory: t.TempDir()})
	require.NoError(t, err)
	s := New(l, Options{Addr: "256.0.0.1:bad"})

	err = s.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, nverrors.ErrCodeListenFailed, nverrors.GetCode(err))
}

func TestRotate_StartsNewFile(t *testing.T) {
	s, l := newTestServer(t)
	require.NoError(t, l.Info("one"))
	before := l.CurrentFile()

	rec := do(t, s, http.MethodPost, "/api/logs/rotate", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, before, l.CurrentFile())
	assert.Equal(t, l.CurrentFile(), decode(t, rec)["current_file"])
}
