package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/login-auth-api/internal/config"     // Internal config loader
	"github.com/iliyamo/login-auth-api/internal/database"   // MySQL connection helper
	"github.com/iliyamo/login-auth-api/internal/handler"    // HTTP handlers
	"github.com/iliyamo/login-auth-api/internal/queue"      // Background email consumer
	"github.com/iliyamo/login-auth-api/internal/repository" // User repository
	"github.com/iliyamo/login-auth-api/internal/reset"      // Redis-backed recovery state
	"github.com/iliyamo/login-auth-api/internal/router"     // Route registration
)

func main() {
	// Load .env when present; real environments set variables directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis holds the one-time-code and reset-session state; without it the
	// recovery endpoints cannot work, so failing to connect is fatal.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis: connection failed")
	}

	users := repository.NewUserRepo(db)
	resetStore := reset.NewStore(rdb)
	auth := handler.NewAuthHandler(cfg, users, resetStore)

	// Deliver queued auth emails in the background.  The consumer keeps its
	// own reconnect loop and never takes the server down.
	go func() {
		if err := queue.StartEmailConsumer(queue.FileSender{}); err != nil {
			log.Printf("email consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, cfg.AccessSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
