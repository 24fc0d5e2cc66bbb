package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"zuvomo/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"zuvomo/internal/auth"
	"zuvomo/internal/cache"
	"zuvomo/internal/config"
	"zuvomo/internal/db"
	"zuvomo/internal/handler"
	"zuvomo/internal/notify"
	"zuvomo/internal/repository"
	"zuvomo/internal/router"
	"zuvomo/internal/service"
)

// @title Zuvomo API
// @version 1.0
// @description Founders and investors platform: authentication, account approval and project lifecycle.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.LoadAPI()
	if err := cfg.Validate(); err != nil {
		if cfg.IsProduction() {
			log.Fatalf("configuration: %v", err)
		}
		log.Printf("Warning: configuration problems: %v", err)
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		log.Fatalf("%v", err)
	}

	var store cache.Store
	if cfg.RedisAddr != "" {
		client := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := client.Ping(ctx); err != nil {
			log.Printf("Warning: redis unreachable at %s: %v", cfg.RedisAddr, err)
		}
		cancel()
		defer client.Close()
		store = client
	} else {
		log.Println("REDIS_ADDR not set, using in-process token store")
		store = cache.NewMemory()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	projectRepo := repository.NewProjectRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTRefreshSecret)
	tokenStore := auth.NewTokenStore(store)

	notifier := notify.New(cfg.SMTP, cfg.FrontendURL)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	userService := service.NewUserService(userRepo, store, notifier)
	projectService := service.NewProjectService(projectRepo, userRepo, notifier)

	// Register routes
	router.Register(e, router.Deps{
		JWT:            jwtService,
		Tokens:         tokenStore,
		Users:          userService,
		AuthHandler:    handler.NewAuthHandler(authService),
		UserHandler:    handler.NewUserHandler(userService),
		ProjectHandler: handler.NewProjectHandler(projectService),
	})

	var swaggerURL string
	if cfg.SwaggerHost != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
		docs.SwaggerInfo.Host = host
		if strings.HasPrefix(cfg.SwaggerHost, "http") {
			swaggerURL = cfg.SwaggerHost + "/swagger/index.html"
		} else {
			swaggerURL = "http://" + cfg.SwaggerHost + "/swagger/index.html"
		}
	} else {
		swaggerURL = "http://localhost:" + cfg.ServerPort + "/swagger/index.html"
	}
	log.Printf("Swagger documentation available at: %s", swaggerURL)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
