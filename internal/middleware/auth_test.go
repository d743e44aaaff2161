package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blocktek-radio/internal/middleware"
	"blocktek-radio/internal/repository"
	"blocktek-radio/internal/service"
	"blocktek-radio/internal/testutil"
)

func newAuthRouter(t *testing.T) (*gin.Engine, service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	logger := zap.NewNop()
	auth := service.NewAuthService(repository.NewAuthRepository(db, logger), 24*time.Hour, logger)

	router := gin.New()
	router.GET("/whoami", middleware.SessionAuth(auth, logger), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": middleware.Account(c).Email})
	})
	return router, auth
}

func TestSessionAuth_NoCookie(t *testing.T) {
	router, _ := newAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionAuth_UnknownToken(t *testing.T) {
	router, _ := newAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "bogus"})
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionAuth_ValidSession(t *testing.T) {
	router, auth := newAuthRouter(t)

	_, session, err := auth.Register("alice@x.com", "password123")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: session.Token})
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "alice@x.com")
}

func TestSessionAuth_LoggedOutToken(t *testing.T) {
	router, auth := newAuthRouter(t)

	_, session, err := auth.Register("alice@x.com", "password123")
	require.NoError(t, err)
	require.NoError(t, auth.Logout(session.Token))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: session.Token})
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
