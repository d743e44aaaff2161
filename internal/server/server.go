package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"blocktek-radio/internal/config"
	"blocktek-radio/internal/handler"
	"blocktek-radio/internal/middleware"
	"blocktek-radio/internal/repository"
	"blocktek-radio/internal/service"
)

type Server struct {
	router   *gin.Engine
	db       *sqlx.DB
	cfg      *config.Config
	logger   *zap.Logger
	notifier service.Notifier
}

func NewServer(db *sqlx.DB, cfg *config.Config, logger *zap.Logger, notifier service.Notifier) *Server {
	s := &Server{
		router:   gin.Default(),
		db:       db,
		cfg:      cfg,
		logger:   logger,
		notifier: notifier,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	authRepo := repository.NewAuthRepository(s.db, s.logger)
	walletRepo := repository.NewWalletRepository(s.db, s.logger)
	djRepo := repository.NewDJRequestRepository(s.db, s.logger)

	sessionTTL := time.Duration(s.cfg.Auth.SessionTTLHours) * time.Hour
	nonceTTL := time.Duration(s.cfg.Auth.NonceTTLMinutes) * time.Minute

	authService := service.NewAuthService(authRepo, sessionTTL, s.logger)
	walletService := service.NewWalletService(walletRepo, nonceTTL, s.logger)
	djService := service.NewDJRequestService(djRepo, s.notifier, s.cfg.Admin.SinglePendingRequest, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	profileHandler := handler.NewProfileHandler(authService, walletService, s.logger)
	walletHandler := handler.NewWalletHandler(walletService, s.logger)
	adminHandler := handler.NewAdminHandler(djService, s.logger)

	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)

	authRequired := s.router.Group("/api")
	authRequired.Use(middleware.SessionAuth(authService, s.logger))
	{
		authRequired.GET("/me", profileHandler.Me)
		authRequired.PATCH("/me", profileHandler.UpdateMe)

		authRequired.POST("/wallet/nonce", walletHandler.Nonce)
		authRequired.POST("/wallet/link", walletHandler.Link)
		authRequired.POST("/wallet/unlink", walletHandler.Unlink)

		authRequired.POST("/admin/request-dj", adminHandler.RequestDJ)
		authRequired.GET("/admin/requests", adminHandler.ListRequests)
		authRequired.GET("/admin/requests/:id", adminHandler.GetRequest)
		authRequired.POST("/admin/approve", adminHandler.Approve)
		authRequired.POST("/admin/reject", adminHandler.Reject)
	}
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
