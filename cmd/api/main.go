package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-feed-nosql/internal/application/feed"
	"github.com/go-feed-nosql/internal/application/interaction"
	"github.com/go-feed-nosql/internal/config"
	"github.com/go-feed-nosql/internal/infrastructure/collab"
	"github.com/go-feed-nosql/internal/infrastructure/dynamo"
	snsinfra "github.com/go-feed-nosql/internal/infrastructure/sns"
	transporthttp "github.com/go-feed-nosql/internal/transport/http"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Schema bootstrap runs in the background with backoff; startup never
	// waits on the store. Until it succeeds, /ready reports the reason.
	dynamoClient := dynamo.NewClient(cfg)
	supervisor := dynamo.NewSupervisor(func(ctx context.Context) error {
		return dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)
	})
	supervisor.Start(ctx)

	feedRepo := dynamo.NewFeedRepo(dynamoClient, cfg.DynamoTables.UnseenFeed, cfg.DynamoTables.SeenFeed).
		WithCallTimeout(cfg.StoreCallTimeout)
	interactionRepo := dynamo.NewInteractionRepo(dynamoClient, cfg.DynamoTables.InteractionCounters, cfg.DynamoTables.InteractionMeta).
		WithCallTimeout(cfg.StoreCallTimeout)

	// SNS feed events (optional — graceful fallback).
	var events snsinfra.EventPublisher
	if p, err := snsinfra.NewPublisher(cfg); err == nil {
		events = p
	} else {
		log.Printf("WARN: feed event publisher not available: %v", err)
	}

	// Collaborator services (optional — the embedding host may supply its own).
	feedDeps := feed.ServiceDeps{
		FeedRepo:    feedRepo,
		Events:      events,
		Concurrency: cfg.FanoutConcurrency,
		PageSize:    cfg.FeedPageSize,
	}
	if cfg.FanoutRatePerSec > 0 {
		feedDeps.WriteRate = rate.NewLimiter(rate.Limit(cfg.FanoutRatePerSec), cfg.FanoutRatePerSec)
	}
	if cfg.FriendsServiceURL != "" {
		feedDeps.Friends = collab.NewFriendClient(cfg.FriendsServiceURL, cfg.CollabTimeout)
	} else {
		log.Println("WARN: no friends service configured, fan-out by friend set unavailable")
	}
	if cfg.PostsServiceURL != "" {
		feedDeps.Posts = collab.NewPostClient(cfg.PostsServiceURL, cfg.CollabTimeout)
	} else {
		log.Println("WARN: no posts service configured, feed hydration unavailable")
	}

	deps := &transporthttp.Deps{
		FeedService:        feed.NewService(feedDeps),
		InteractionService: interaction.NewService(interaction.ServiceDeps{Repo: interactionRepo}),
		Readiness:          supervisor,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
