// cmd/server/main.go
package main

import (
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/yamachris/unit-bolt-sub001/internal/auth"
	"github.com/yamachris/unit-bolt-sub001/internal/cache"
	"github.com/yamachris/unit-bolt-sub001/internal/database"
	"github.com/yamachris/unit-bolt-sub001/internal/handlers"
	"github.com/yamachris/unit-bolt-sub001/internal/middleware"
)

func main() {
	auth.Init()
	database.ConnectDB()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := cache.ConnectRedis(); err != nil {
		// The engine degrades to not publishing history; only the
		// historian pipeline goes dark.
		logger.WithError(err).Warn("redis unavailable, action history disabled")
	}

	mux := http.NewServeMux()

	// user endpoints
	mux.HandleFunc("/user/create", handlers.CreateUserHandler)
	mux.HandleFunc("/user/login", handlers.LoginHandler)

	srv := handlers.NewGameServer(logger)

	// matchmaking endpoints
	mux.Handle("/game/join", middleware.LogMiddleware(logger)(http.HandlerFunc(
		srv.JoinQueueHandler,
	)))
	mux.Handle("/game/solo", middleware.LogMiddleware(logger)(http.HandlerFunc(
		srv.SoloGameHandler,
	)))

	// game websocket
	mux.Handle("/game/ws/", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.GameWSHandler(logger, srv),
	)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
}
