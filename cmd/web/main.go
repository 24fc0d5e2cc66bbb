package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"zuvomo/internal/apiclient"
	"zuvomo/internal/cache"
	"zuvomo/internal/config"
	"zuvomo/internal/session"
	"zuvomo/internal/web"
)

func main() {
	cfg := config.LoadWeb()

	e := echo.New()
	e.Use(middleware.RequestID())

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
		log.Println("REDIS_ADDR not set, sessions are kept in process")
		store = cache.NewMemory()
	}

	client := apiclient.New(cfg.APIBaseURL, cfg.APITimeout)

	web.Register(e, web.Deps{
		Sessions: session.NewStore(store, cfg.SessionTTL),
		Auth:     apiclient.NewAuthService(client),
		Projects: apiclient.NewProjectService(client),
		Cookie: web.CookieConfig{
			Name:   cfg.SessionCookie,
			Secure: cfg.CookieSecure,
			MaxAge: cfg.SessionTTL,
		},
	})

	log.Printf("Gateway proxying %s", cfg.APIBaseURL)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
