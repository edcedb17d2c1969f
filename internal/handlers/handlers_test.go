package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/middleware"
	"taskdeck/internal/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		panic("unexpected validator engine")
	}
	if err := validation.Register(v, validation.PolicyBasic); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type stubRevoker struct {
	revoked map[string]time.Time
}

func (s *stubRevoker) Revoke(_ context.Context, jti string, exp time.Time) error {
	if s.revoked == nil {
		s.revoked = map[string]time.Time{}
	}
	s.revoked[jti] = exp
	return nil
}

func (s *stubRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := s.revoked[jti]
	return ok, nil
}

type testServer struct {
	router *gin.Engine
	tokens *middleware.TokenManager
}

func newTestServer() *testServer {
	return &testServer{router: gin.New(), tokens: middleware.NewTokenManager("test-secret", time.Hour)}
}

func (ts *testServer) protected(rv middleware.Revoker) *gin.RouterGroup {
	return ts.router.Group("", middleware.AuthMiddleware(ts.tokens, rv))
}

func (ts *testServer) token(t *testing.T, userID int64) string {
	t.Helper()
	tok, _, err := ts.tokens.Issue(userID)
	require.NoError(t, err)
	return tok
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
