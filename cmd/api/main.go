package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"pulsechat/internal/adapter/api"
	"pulsechat/internal/adapter/api/handler"
	apimiddleware "pulsechat/internal/adapter/api/middleware"
	"pulsechat/internal/adapter/api/router"
	"pulsechat/internal/adapter/repository"
	"pulsechat/internal/infrastructure/firebase"
	"pulsechat/internal/infrastructure/ratelimit"
	"pulsechat/internal/infrastructure/realtime"
	"pulsechat/internal/infrastructure/scheduler"
	"pulsechat/internal/infrastructure/storage"
	"pulsechat/internal/usecase"
	"pulsechat/pkg/config"
	"pulsechat/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var opt option.ClientOption
	credentialsPath := ""

	// Service account JSON env var wins (for deployed environments); fall
	// back to a file path for local development.
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		credentialsPath = os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if credentialsPath == "" {
			credentialsPath = "./service-account.json"
		}
		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", credentialsPath)
		}
		opt = option.WithCredentialsFile(credentialsPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	fbAuth, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	blobStore, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, credentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer blobStore.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)
	messageRepo := repository.NewFirestoreMessageRepository(firestoreClient)
	statusRepo := repository.NewFirestoreStatusRepository(firestoreClient)
	storyRepo := repository.NewFirestoreStoryRepository(firestoreClient)

	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine(ctx)

	hub := realtime.NewHub()

	identityUseCase := usecase.NewIdentityUseCase(userRepo, blobStore)
	chatUseCase := usecase.NewChatUseCase(chatRepo, userRepo, messageRepo, statusRepo, identityUseCase, hub, rateLimiter)
	messageUseCase := usecase.NewMessageUseCase(chatRepo, userRepo, messageRepo, statusRepo, blobStore, identityUseCase, hub, rateLimiter)
	storyUseCase := usecase.NewStoryUseCase(storyRepo, userRepo, blobStore, identityUseCase, hub, rateLimiter, cfg.StoryTTL())

	hub.SetPresenceHooks(
		func(userID string) {
			if err := identityUseCase.UpdatePresence(ctx, userID, true); err != nil {
				logger.Error("Failed to mark %s online: %v", userID, err)
			}
		},
		func(userID string) {
			if err := identityUseCase.UpdatePresence(ctx, userID, false); err != nil {
				logger.Error("Failed to mark %s offline: %v", userID, err)
			}
		},
	)
	hub.Start(ctx)

	sweep := scheduler.NewDailyJob("expire-stories", int(cfg.StorySweepHourUTC), storyUseCase.ExpireStories)
	sweep.Start(ctx)

	verifiers := []apimiddleware.TokenVerifier{firebase.NewAuthClient(fbAuth)}

	var devHandler *handler.DevTokenHandler
	if cfg.Environment == "development" {
		devIssuer := firebase.NewDevTokenIssuer(cfg.DevTokenSecret)
		verifiers = append(verifiers, devIssuer)
		devHandler = handler.NewDevTokenHandler(devIssuer, identityUseCase)
	}
	authMiddleware := apimiddleware.NewAuthMiddleware(verifiers...)

	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	router.Setup(e, router.Handlers{
		User:      handler.NewUserHandler(identityUseCase),
		Chat:      handler.NewChatHandler(chatUseCase, messageUseCase, identityUseCase),
		Story:     handler.NewStoryHandler(storyUseCase, identityUseCase),
		Upload:    handler.NewUploadHandler(blobStore, identityUseCase),
		Webhook:   handler.NewWebhookHandler(identityUseCase, cfg.WebhookSecret),
		WebSocket: handler.NewWebSocketHandler(hub, identityUseCase),
		DevToken:  devHandler,
	}, authMiddleware)

	logger.Info("Starting server on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
