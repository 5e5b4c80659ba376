// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"gridline/internal/auth"
	"gridline/internal/cache"
	"gridline/internal/database"
	"gridline/internal/game"
	"gridline/internal/handlers"
	"gridline/internal/middleware"
)

func main() {
	auth.Init()
	database.ConnectDB()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	// journal is best effort, the server runs without Redis
	if err := cache.ConnectRedis(); err != nil {
		logger.WithError(err).Warn("redis unavailable, match event journal disabled")
		cache.Rdb = nil
	}

	manager := game.NewManager(database.NewPostgresStore(), logger)
	srv := handlers.NewServer(manager, logger)

	mux := http.NewServeMux()

	// user endpoints
	mux.HandleFunc("/user/create", handlers.CreateUserHandler)
	mux.HandleFunc("/user/login", handlers.LoginHandler)
	mux.HandleFunc("/user/claim", handlers.ClaimEphemeralHandler)
	mux.HandleFunc("/user/me", handlers.MeHandler)

	// match gateway
	mux.Handle("/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.WSHandler(logger, srv),
	)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
