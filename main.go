package main

import (
	"log"

	api "github.com/jindalsaj/aura/cmd/api"
	authdomain "github.com/jindalsaj/aura/internal/auth/domain"
	authRepo "github.com/jindalsaj/aura/internal/auth/repository"
	authUsecase "github.com/jindalsaj/aura/internal/auth/usecase"
	"github.com/jindalsaj/aura/internal/connector"
	"github.com/jindalsaj/aura/internal/notification"
	propertydomain "github.com/jindalsaj/aura/internal/property/domain"
	propertyRepo "github.com/jindalsaj/aura/internal/property/repository"
	recorddomain "github.com/jindalsaj/aura/internal/record/domain"
	recordRepo "github.com/jindalsaj/aura/internal/record/repository"
	"github.com/jindalsaj/aura/internal/relevance"
	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
	sourceRepo "github.com/jindalsaj/aura/internal/source/repository"
	sourceUsecase "github.com/jindalsaj/aura/internal/source/usecase"
	syncdomain "github.com/jindalsaj/aura/internal/sync/domain"
	syncRepo "github.com/jindalsaj/aura/internal/sync/repository"
	syncUsecase "github.com/jindalsaj/aura/internal/sync/usecase"
	"github.com/jindalsaj/aura/pkg/amplitude"
	"github.com/jindalsaj/aura/pkg/config"
	"github.com/jindalsaj/aura/pkg/crypto"
	"github.com/jindalsaj/aura/pkg/database"
	"github.com/jindalsaj/aura/pkg/fcm"
	"github.com/jindalsaj/aura/pkg/gemini"
	"github.com/jindalsaj/aura/pkg/googleauth"
	"github.com/jindalsaj/aura/pkg/plaid"
	"github.com/jindalsaj/aura/pkg/whatsapp"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&authdomain.DeviceToken{},
		&sourcedomain.Credential{},
		&syncdomain.SyncSession{},
		&recorddomain.Record{},
		&propertydomain.Property{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	cipher := crypto.NewCipher(cfg.EncryptionKey)
	userRepository := authRepo.NewUserRepository(db)
	deviceTokenRepo := authRepo.NewDeviceTokenRepository(db)
	credentialRepo := sourceRepo.NewCredentialRepository(db, cipher)
	sessionRepo := syncRepo.NewSessionRepository(db)
	recordRepository := recordRepo.NewRecordRepository(db)
	propertyRepository := propertyRepo.NewPropertyRepository(db)

	// External service clients
	googleService := googleauth.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)
	plaidClient := plaid.NewClient(cfg.PlaidClientID, cfg.PlaidSecret, cfg.PlaidEnv)
	whatsappClient := whatsapp.NewClient(cfg.WhatsAppBaseURL, cfg.WhatsAppPhoneNumberID)

	// Relevance filter: keyword stage always on, Gemini refinement when a key
	// is configured.
	var classifier relevance.Classifier
	if cfg.GeminiAPIKey != "" {
		classifier = relevance.NewGeminiClassifier(gemini.NewGeminiService(cfg.GeminiAPIKey))
		log.Println("Gemini classifier enabled for relevance filtering")
	} else {
		log.Println("GEMINI_API_KEY not set, relevance filtering is keyword-only")
	}
	filter := relevance.NewFilter(classifier)

	// FCM client (optional, notifications disabled without credentials)
	var fcmClient *fcm.Client
	if cfg.FirebaseCredentials != "" {
		fcmClient, err = fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("Failed to initialize FCM client (push notifications disabled): %v", err)
			fcmClient = nil
		}
	}
	notifier := notification.NewService(fcmClient, deviceTokenRepo)

	tracker := amplitude.NewClient(cfg.AmplitudeAPIKey)

	// Connectors
	registry := connector.NewRegistry(
		connector.NewMailConnector(),
		connector.NewDriveConnector(),
		connector.NewCalendarConnector(),
		connector.NewBankConnector(plaidClient),
		connector.NewWhatsAppConnector(whatsappClient),
	)

	// Initialize use cases (dependency injection)
	credUc := sourceUsecase.NewCredentialUsecase(credentialRepo, googleService, plaidClient, cfg)
	authUc := authUsecase.NewAuthUsecase(userRepository, googleService, credUc, cfg)
	syncUc := syncUsecase.NewSyncUsecase(
		sessionRepo,
		recordRepository,
		propertyRepository,
		credUc,
		registry,
		filter,
		notifier,
		tracker,
		cfg,
	)

	// Initialize HTTP handler
	handler := api.NewHandler(authUc, credUc, syncUc, propertyRepository, recordRepository, deviceTokenRepo, googleService, plaidClient, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
