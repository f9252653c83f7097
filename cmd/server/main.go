package main

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	_ "codecrafting/docs" // swagger docs
	"codecrafting/internal/auth"
	"codecrafting/internal/cache"
	"codecrafting/internal/config"
	"codecrafting/internal/db"
	"codecrafting/internal/handler"
	"codecrafting/internal/middleware"
	"codecrafting/internal/model"
	"codecrafting/internal/oauth"
	"codecrafting/internal/ratelimit"
	"codecrafting/internal/repository"
	"codecrafting/internal/router"
	"codecrafting/internal/service"
)

// @title Codecrafting Auth API
// @version 1.0
// @description Authentication and authorization core: credential login, registration, Google sign-in and JWT sessions.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(echomw.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.OAuthAccount{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	oauthAccountRepo := repository.NewOAuthAccountRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.SessionMaxAge)
	roleMapping := auth.NewRoleMapping(cfg.AdminEmails)
	googleClient := oauth.NewGoogleClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL)

	// Per-concern rate limiters; both stop with the process.
	registerLimiter := ratelimit.New(cfg.RegisterRateMax, cfg.RegisterRateWindow)
	defer registerLimiter.Stop()
	loginLimiter := ratelimit.New(cfg.LoginRateMax, cfg.LoginRateWindow)
	defer loginLimiter.Stop()

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		oauthAccountRepo,
		jwtService,
		roleMapping,
		cacheClient,
		cfg.AllowedOAuthDomains,
		cfg.RevalidateRole,
	)

	// Initialize handlers and the route guard
	authHandler := handler.NewAuthHandler(authService, jwtService, registerLimiter, loginLimiter)
	oauthHandler := handler.NewOAuthHandler(googleClient, authService, jwtService)
	guard := middleware.NewGuard(jwtService, authService)

	// Register routes
	router.Register(e, cfg, guard, authHandler, oauthHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
