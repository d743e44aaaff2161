package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blocktek-radio/internal/config"
	"blocktek-radio/internal/repository"
	"blocktek-radio/internal/server"
	"blocktek-radio/internal/service"
	"blocktek-radio/internal/testutil"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	logger := zap.NewNop()

	cfg := &config.Config{}
	cfg.Auth.SessionTTLHours = 24
	cfg.Auth.NonceTTLMinutes = 5

	// Seed an admin the way main does.
	auth := service.NewAuthService(repository.NewAuthRepository(db, logger), 24*time.Hour, logger)
	require.NoError(t, auth.EnsureAdmin("admin@x.com", "adminpass"))

	return server.NewServer(db, cfg, logger, nil).Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func login(t *testing.T, router *gin.Engine, email, password string) *http.Cookie {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	return sessionCookie(t, w)
}

func register(t *testing.T, router *gin.Engine, email string) *http.Cookie {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/auth/register", gin.H{"email": email, "password": "password123"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	return sessionCookie(t, w)
}

func TestPing(t *testing.T) {
	router := newTestServer(t)
	w := doJSON(t, router, http.MethodGet, "/ping", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthFlow(t *testing.T) {
	router := newTestServer(t)

	cookie := register(t, router, "alice@x.com")

	w := doJSON(t, router, http.MethodGet, "/api/me", nil, []*http.Cookie{cookie})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "alice@x.com")

	// Duplicate registration conflicts.
	w = doJSON(t, router, http.MethodPost, "/api/auth/register", gin.H{"email": "alice@x.com", "password": "x"}, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	// Logout revokes the cookie's session immediately.
	w = doJSON(t, router, http.MethodPost, "/api/auth/logout", nil, []*http.Cookie{cookie})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodGet, "/api/me", nil, []*http.Cookie{cookie})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWalletLinkOverHTTP(t *testing.T) {
	router := newTestServer(t)
	cookie := register(t, router, "alice@x.com")

	w := doJSON(t, router, http.MethodPost, "/api/wallet/nonce", nil, []*http.Cookie{cookie})
	require.Equal(t, http.StatusOK, w.Code)
	var nonceResp struct {
		Nonce string `json:"nonce"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nonceResp))
	require.NotEmpty(t, nonceResp.Nonce)

	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	message := service.Challenge("alice@x.com", nonceResp.Nonce)
	sig, err := ethcrypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)

	w = doJSON(t, router, http.MethodPost, "/api/wallet/link",
		gin.H{"nonce": nonceResp.Nonce, "signature": hexutil.Encode(sig)},
		[]*http.Cookie{cookie})
	require.Equal(t, http.StatusOK, w.Code)

	var linkResp struct {
		Address string `json:"address"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &linkResp))

	// Replaying the consumed nonce fails.
	w = doJSON(t, router, http.MethodPost, "/api/wallet/link",
		gin.H{"nonce": nonceResp.Nonce, "signature": hexutil.Encode(sig)},
		[]*http.Cookie{cookie})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "invalid_nonce")

	// Unlink, then unlink again.
	w = doJSON(t, router, http.MethodPost, "/api/wallet/unlink", gin.H{"address": linkResp.Address}, []*http.Cookie{cookie})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodPost, "/api/wallet/unlink", gin.H{"address": linkResp.Address}, []*http.Cookie{cookie})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestModerationFlowOverHTTP(t *testing.T) {
	router := newTestServer(t)

	listenerCookie := register(t, router, "hopeful@x.com")
	adminCookie := login(t, router, "admin@x.com", "adminpass")

	w := doJSON(t, router, http.MethodPost, "/api/admin/request-dj", nil, []*http.Cookie{listenerCookie})
	require.Equal(t, http.StatusOK, w.Code)
	var fileResp struct {
		RequestID int64 `json:"requestId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fileResp))

	// Non-admin callers are rejected from the moderation surface.
	w = doJSON(t, router, http.MethodGet, "/api/admin/requests", nil, []*http.Cookie{listenerCookie})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/admin/requests?status=pending&page=1&pageSize=10", nil, []*http.Cookie{adminCookie})
	require.Equal(t, http.StatusOK, w.Code)
	var listResp struct {
		Total    int `json:"total"`
		Page     int `json:"page"`
		PageSize int `json:"pageSize"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	require.Equal(t, 1, listResp.Total)
	require.Equal(t, 1, listResp.Page)
	require.Equal(t, 10, listResp.PageSize)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/admin/requests/%d", fileResp.RequestID), nil, []*http.Cookie{adminCookie})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "hopeful@x.com")

	w = doJSON(t, router, http.MethodPost, "/api/admin/approve", gin.H{"requestId": fileResp.RequestID}, []*http.Cookie{adminCookie})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "approved")

	// The owner's profile now reads role dj.
	w = doJSON(t, router, http.MethodGet, "/api/me", nil, []*http.Cookie{listenerCookie})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"role":"dj"`)

	// Terminal states are final.
	w = doJSON(t, router, http.MethodPost, "/api/admin/reject", gin.H{"requestId": fileResp.RequestID}, []*http.Cookie{adminCookie})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "already_processed")
}
