package api

import (
	"github.com/gin-gonic/gin"

	authRepo "github.com/jindalsaj/aura/internal/auth/repository"
	authUsecasePkg "github.com/jindalsaj/aura/internal/auth/usecase"
	propertyRepo "github.com/jindalsaj/aura/internal/property/repository"
	recordRepo "github.com/jindalsaj/aura/internal/record/repository"
	sourceUsecasePkg "github.com/jindalsaj/aura/internal/source/usecase"
	syncUsecasePkg "github.com/jindalsaj/aura/internal/sync/usecase"
	"github.com/jindalsaj/aura/pkg/config"
	"github.com/jindalsaj/aura/pkg/googleauth"
	"github.com/jindalsaj/aura/pkg/plaid"
)

type Handler struct {
	authUsecase   authUsecasePkg.AuthUsecase
	credUsecase   sourceUsecasePkg.CredentialUsecase
	syncUsecase   syncUsecasePkg.SyncUsecase
	propertyRepo  propertyRepo.PropertyRepository
	recordRepo    recordRepo.RecordRepository
	deviceTokens  authRepo.DeviceTokenRepository
	googleService *googleauth.Service
	plaidClient   *plaid.Client
	config        *config.Config
}

func NewHandler(
	authUc authUsecasePkg.AuthUsecase,
	credUc sourceUsecasePkg.CredentialUsecase,
	syncUc syncUsecasePkg.SyncUsecase,
	properties propertyRepo.PropertyRepository,
	records recordRepo.RecordRepository,
	deviceTokens authRepo.DeviceTokenRepository,
	googleService *googleauth.Service,
	plaidClient *plaid.Client,
	cfg *config.Config,
) *Handler {
	return &Handler{
		authUsecase:   authUc,
		credUsecase:   credUc,
		syncUsecase:   syncUc,
		propertyRepo:  properties,
		recordRepo:    records,
		deviceTokens:  deviceTokens,
		googleService: googleService,
		plaidClient:   plaidClient,
		config:        cfg,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h)

	return r.Run(addr)
}
