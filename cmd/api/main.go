package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mealbridge/foodshare-backend/api/routes"
	"github.com/mealbridge/foodshare-backend/internal/config"
	"github.com/mealbridge/foodshare-backend/internal/handlers"
	"github.com/mealbridge/foodshare-backend/internal/repositories"
	mongorepo "github.com/mealbridge/foodshare-backend/internal/repositories/mongodb"
	"github.com/mealbridge/foodshare-backend/internal/services"
	"github.com/mealbridge/foodshare-backend/pkg/functions"
	"github.com/mealbridge/foodshare-backend/pkg/logger"
	"github.com/mealbridge/foodshare-backend/pkg/mongodb"
)

func main() {
	_ = godotenv.Load()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(err, "stage", "config")
	}

	connectCtx, connectCancel := context.WithTimeout(context.Background(), 10*time.Second)
	mongoClient, err := mongodb.NewClient(connectCtx, cfg.MongoDB.URI)
	connectCancel()
	if err != nil {
		logger.Fatal(err, "stage", "mongodb")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("disconnecting from MongoDB failed", "error", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	// Repositories
	var listingRepo repositories.ListingRepository = mongorepo.NewListingRepository(db)
	var claimRepo repositories.ClaimRepository = mongorepo.NewClaimRepository(db)
	var deliveryRepo repositories.DeliveryRepository = mongorepo.NewDeliveryRepository(db)
	var chatRepo repositories.ChatRepository = mongorepo.NewChatRepository(db)
	var userRepo repositories.UserRepository = mongorepo.NewUserRepository(db)

	// Outbound clients
	fns := functions.NewClient(cfg.Functions.BaseURL, cfg.Functions.MockFunctions)

	// Services
	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo)
	listingService := services.NewListingService(listingRepo, claimRepo)
	lifecycleService := services.NewLifecycleService(listingRepo, claimRepo, deliveryRepo, mongoClient)
	chatService := services.NewChatService(chatRepo, fns, cfg.Chat.DedupeWindow, cfg.Chat.FailedMessageTTL)

	// Background volunteer-timeout watcher
	watcherCtx, watcherCancel := context.WithCancel(context.Background())
	defer watcherCancel()
	watcher := services.NewTimeoutWatcher(claimRepo, listingRepo, cfg.Timeout.PollInterval)
	go watcher.Run(watcherCtx)

	// Handlers
	deps := routes.HandlerDependencies{
		AuthHandler:     handlers.NewAuthHandler(authService),
		UserHandler:     handlers.NewUserHandler(userService, fns),
		ListingHandler:  handlers.NewListingHandler(listingService, userService),
		ClaimHandler:    handlers.NewClaimHandler(lifecycleService, userService),
		DeliveryHandler: handlers.NewDeliveryHandler(lifecycleService, userService),
		ChatHandler:     handlers.NewChatHandler(chatService, userService),
	}

	router := routes.SetupRouter(cfg, deps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(err, "stage", "listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal(err, "stage", "shutdown")
	}

	logger.Info("server exiting")
}
