package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/photoshare/backend/internal/config"
	"github.com/photoshare/backend/internal/database"
	"github.com/photoshare/backend/internal/handler"
	"github.com/photoshare/backend/internal/middleware"
	"github.com/photoshare/backend/internal/queue"
	"github.com/photoshare/backend/internal/repository"
	"github.com/photoshare/backend/internal/router"
	"github.com/photoshare/backend/internal/service"
	"github.com/photoshare/backend/internal/storage"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: with no reachable server the user cache and the
	// response cache are simply disabled.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, caching disabled")
	}

	s3Client, err := config.NewStorageClient(context.Background())
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	store := storage.New(s3Client, config.LoadStorageConfig())

	// Repositories.
	users := repository.NewUserRepo(db)
	tags := repository.NewTagRepo(db)
	images := repository.NewImageRepo(db, tags)
	ratings := repository.NewRatingRepo(db)
	comments := repository.NewCommentRepo(db)

	auth := service.NewAuth(cfg, users, rdb)

	// Background email consumer. Runs for the lifetime of the process and
	// reconnects to the broker on its own.
	go func() {
		if err := queue.StartEmailConsumer(config.LoadMailConfig()); err != nil {
			log.Printf("email consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	var cache echo.MiddlewareFunc
	if rdb != nil {
		cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}
	router.RegisterRoutes(e, router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, auth, users),
		Users:    handler.NewUserHandler(auth, users, store),
		Images:   handler.NewImageHandler(auth, images, store),
		Ratings:  handler.NewRatingHandler(auth, ratings, images),
		Comments: handler.NewCommentHandler(auth, comments, images),
		Admin:    handler.NewAdminHandler(auth, users),
	}, cfg.JWTSecret, cache)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
