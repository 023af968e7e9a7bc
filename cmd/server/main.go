package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "usermgmt/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"usermgmt/internal/auth"
	"usermgmt/internal/cache"
	"usermgmt/internal/config"
	"usermgmt/internal/db"
	"usermgmt/internal/handler"
	"usermgmt/internal/repository"
	"usermgmt/internal/router"
	"usermgmt/internal/service"
)

// @title User Management API
// @version 1.0
// @description User registration, cookie-based JWT sessions and user CRUD.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name token
func main() {
	cfg := config.Load()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if cfg.ResetDB {
		log.Println("RESET_DB=true detected, dropping users table...")
		if err := db.Reset(gormDB); err != nil {
			log.Printf("Warning: failed to drop users table: %v", err)
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		log.Printf("Warning: redis unavailable at %s, running without cache and revocation: %v", cfg.RedisAddr, err)
	}
	cancelPing()
	defer cacheClient.Close()

	userRepo := repository.NewUserRepository(gormDB)

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	cookies := auth.NewCookieManager(cfg.CookieName, cfg.IsProduction(), jwtService.TTL())

	authService := service.NewAuthService(userRepo, hasher, jwtService, tokenStore)
	userService := service.NewUserService(userRepo, hasher, cacheClient)

	authHandler := handler.NewAuthHandler(authService, userService, jwtService, cookies)
	userHandler := handler.NewUserHandler(userService)
	healthHandler := handler.NewHealthHandler()

	router.Register(e, cfg, jwtService, tokenStore, authHandler, userHandler, healthHandler)

	log.Printf("Swagger documentation available at: %s", swaggerURL(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

// swaggerURL builds the docs URL; SwaggerHost may already include a scheme.
func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/") + "/swagger/index.html"
}
