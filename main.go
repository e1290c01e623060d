package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"inkwell/database"
	"inkwell/handlers"
	"inkwell/managers"
	"inkwell/routes"
	"inkwell/store"
	"inkwell/store/memstore"
	"inkwell/store/mongostore"
)

func main() {
	log.Println("Starting Inkwell API server...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	recordStore, teardown, err := openStore()
	if err != nil {
		log.Fatal("Failed to open store: ", err)
	}
	defer teardown()

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	users := managers.NewUserManager(recordStore)
	posts := managers.NewPostManager(recordStore, recordStore)
	comments := managers.NewCommentManager(recordStore, recordStore, recordStore)
	reactions := managers.NewReactionManager(recordStore, recordStore)
	follows := managers.NewFollowManager(recordStore, recordStore)

	api := handlers.NewAPI(users, posts, comments, reactions, follows)
	router := routes.SetupRouter(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown: ", err)
	}

	log.Println("Server stopped gracefully")
}

// openStore picks the storage backend: MongoDB by default, in-memory
// when STORE=memory (local development without a database).
func openStore() (store.Store, func(), error) {
	if os.Getenv("STORE") == "memory" {
		log.Println("Using in-memory store; data will not survive a restart")
		return memstore.New(), func() {}, nil
	}

	var db, err = database.Connect()
	for attempt := 2; err != nil && attempt <= 3; attempt++ {
		log.Printf("MongoDB connection failed, retrying (attempt %d): %v", attempt, err)
		time.Sleep(2 * time.Second)
		db, err = database.Connect()
	}
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := database.EnsureIndexes(ctx, db); err != nil {
		return nil, nil, err
	}

	teardown := func() {
		if err := database.Disconnect(); err != nil {
			log.Println("Failed to disconnect MongoDB: ", err)
		}
	}
	return mongostore.New(db), teardown, nil
}
